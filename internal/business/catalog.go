package business

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type selects the prompt context used for recommendations.
type Type string

const (
	Cafe    Type = "CAFE"
	Bar     Type = "BAR"
	Gallery Type = "GALLERY"
)

func (t Type) Valid() bool {
	switch t {
	case Cafe, Bar, Gallery:
		return true
	}
	return false
}

// Context describes the business type in a phrase suitable for a prompt.
func (t Type) Context() string {
	switch t {
	case Cafe:
		return "a cafe serving coffee, pastries, and light meals"
	case Bar:
		return "a cocktail bar with a speakeasy atmosphere and live music"
	case Gallery:
		return "an art gallery showcasing contemporary artists"
	default:
		return "a local business"
	}
}

// Business is one analysed venue. Table names the review table in Postgres.
type Business struct {
	Slug        string `yaml:"slug" json:"slug"`
	Name        string `yaml:"name" json:"name"`
	Type        Type   `yaml:"type" json:"type"`
	Table       string `yaml:"table" json:"table"`
	DisplayName string `yaml:"display_name" json:"displayName"`
	Color       string `yaml:"color" json:"color"`
	Icon        string `yaml:"icon" json:"icon"`
	Description string `yaml:"description" json:"description"`
}

type Catalog struct {
	businesses []Business
	bySlug     map[string]int
}

// DefaultCatalog returns the built-in businesses.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog([]Business{
		{
			Slug:        "little-prince-cafe",
			Name:        "The Little Prince Cafe",
			Type:        Cafe,
			Color:       "#8B4513",
			Icon:        "coffee",
			Description: "Cozy cafe with specialty coffee and pastries",
		},
		{
			Slug:        "vol-de-nuit",
			Name:        "Vol de Nuit, The Hidden Bar",
			Type:        Bar,
			Color:       "#4B0082",
			Icon:        "glass-martini-alt",
			Description: "Speakeasy cocktail bar with live jazz",
		},
		{
			Slug:        "envol-art-space",
			Name:        "L'Envol Art Space",
			Type:        Gallery,
			Color:       "#009688",
			Icon:        "paint-brush",
			Description: "Contemporary art gallery featuring local artists",
		},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// NewCatalog validates the list and fills Table and DisplayName from Name
// when they are unset.
func NewCatalog(businesses []Business) (*Catalog, error) {
	c := &Catalog{bySlug: make(map[string]int, len(businesses))}
	for i, b := range businesses {
		b.Slug = strings.TrimSpace(b.Slug)
		b.Name = strings.TrimSpace(b.Name)
		b.Type = Type(strings.ToUpper(strings.TrimSpace(string(b.Type))))
		if b.Slug == "" {
			return nil, fmt.Errorf("business %d: slug is required", i)
		}
		if b.Name == "" {
			return nil, fmt.Errorf("business %q: name is required", b.Slug)
		}
		if !b.Type.Valid() {
			return nil, fmt.Errorf("business %q: unknown type %q", b.Slug, b.Type)
		}
		if _, dup := c.bySlug[b.Slug]; dup {
			return nil, fmt.Errorf("business %q: duplicate slug", b.Slug)
		}
		if b.Table == "" {
			b.Table = b.Name
		}
		if b.DisplayName == "" {
			b.DisplayName = b.Name
		}
		c.bySlug[b.Slug] = len(c.businesses)
		c.businesses = append(c.businesses, b)
	}
	return c, nil
}

type catalogFile struct {
	Businesses []Business `yaml:"businesses"`
}

// LoadCatalog reads a YAML catalog. An empty path yields DefaultCatalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Businesses) == 0 {
		return nil, fmt.Errorf("parse catalog: no businesses in %s", path)
	}
	return NewCatalog(f.Businesses)
}

func (c *Catalog) Lookup(slug string) (Business, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return Business{}, false
	}
	return c.businesses[i], true
}

// ByName matches the business name exactly, as stored on ingest events.
func (c *Catalog) ByName(name string) (Business, bool) {
	for _, b := range c.businesses {
		if b.Name == name {
			return b, true
		}
	}
	return Business{}, false
}

// List returns the businesses in catalog order.
func (c *Catalog) List() []Business {
	out := make([]Business, len(c.businesses))
	copy(out, c.businesses)
	return out
}
