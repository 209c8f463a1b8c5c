package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/reviewlens/internal/analytics"
	"github.com/MikeSquared-Agency/reviewlens/internal/business"
)

var (
	ErrEmptyRecommendations = errors.New("no recommendations in model output")
	ErrUnknownProvider      = errors.New("unknown recommendation provider")
	ErrMissingAPIKey        = errors.New("api key is required for this provider")
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
	ProviderLocal     = "local"
	ProviderStatic    = "static"
)

const (
	maxOutputTokens    = 1500
	defaultTemperature = 0.7
)

var defaultModels = map[string]string{
	ProviderAnthropic: "claude-sonnet-4-20250514",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderGemini:    "gemini-2.5-flash",
	ProviderOllama:    "llama3",
}

// Generator produces recommendations for one analysed business.
type Generator interface {
	Generate(ctx context.Context, analysis *analytics.Analysis, typ business.Type) (*Recommendations, error)
}

// ProviderConfig selects and configures a provider for a single request.
type ProviderConfig struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"apiKey,omitempty"`
	BaseURL  string `json:"baseUrl,omitempty"`
}

// Merge overlays the non-empty fields of o. Switching to a different
// provider discards the receiver's model, key and URL so credentials never
// leak across providers.
func (c ProviderConfig) Merge(o ProviderConfig) ProviderConfig {
	out := c
	if p := normalizeProvider(o.Provider); p != "" && p != normalizeProvider(c.Provider) {
		out = ProviderConfig{Provider: p}
	}
	if o.Model != "" {
		out.Model = o.Model
	}
	if o.APIKey != "" {
		out.APIKey = o.APIKey
	}
	if o.BaseURL != "" {
		out.BaseURL = o.BaseURL
	}
	return out
}

func normalizeProvider(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == ProviderLocal {
		return ProviderOllama
	}
	return p
}

// completer sends one prompt to a text model.
type completer interface {
	complete(ctx context.Context, system, prompt string) (string, error)
}

// New builds a generator for cfg. Cloud providers require an API key.
func New(cfg ProviderConfig, logger *slog.Logger) (Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	provider := normalizeProvider(cfg.Provider)
	if provider == ProviderStatic {
		return Static{}, nil
	}
	if cfg.Model == "" {
		cfg.Model = defaultModels[provider]
	}

	var c completer
	switch provider {
	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s: %w", provider, ErrMissingAPIKey)
		}
		c = newAnthropicCompleter(cfg)
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s: %w", provider, ErrMissingAPIKey)
		}
		c = newOpenAICompleter(cfg)
	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s: %w", provider, ErrMissingAPIKey)
		}
		c = newGeminiCompleter(cfg)
	case ProviderOllama:
		oc, err := newOllamaCompleter(cfg)
		if err != nil {
			return nil, err
		}
		c = oc
	default:
		return nil, fmt.Errorf("%q: %w", cfg.Provider, ErrUnknownProvider)
	}

	return &modelGenerator{
		provider: provider,
		model:    cfg.Model,
		llm:      c,
		logger:   logger,
	}, nil
}

// modelGenerator renders the prompt, calls the model and parses its reply.
type modelGenerator struct {
	provider string
	model    string
	llm      completer
	logger   *slog.Logger
}

func (g *modelGenerator) Name() string { return g.provider + "/" + g.model }

func (g *modelGenerator) Generate(ctx context.Context, analysis *analytics.Analysis, typ business.Type) (*Recommendations, error) {
	prompt := BuildPrompt(analysis, typ)

	g.logger.Info("generating recommendations",
		"provider", g.provider,
		"model", g.model,
		"business_type", string(typ),
		"prompt_len", len(prompt),
	)

	raw, err := g.llm.complete(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("%s completion: %w", g.provider, err)
	}

	recs, err := Parse(raw)
	if err != nil {
		g.logger.Warn("unparseable recommendation output",
			"provider", g.provider,
			"error", err,
			"raw_len", len(raw),
		)
		return nil, fmt.Errorf("parse %s output: %w", g.provider, err)
	}

	g.logger.Info("recommendations generated",
		"provider", g.provider,
		"urgent", len(recs.UrgentActions),
		"growth", len(recs.GrowthStrategies),
		"marketing", len(recs.MarketingIdeas),
		"positioning", len(recs.CompetitivePositioning),
		"scenarios", len(recs.FutureScenarios),
	)
	return recs, nil
}

// Chain tries each generator in order and returns the first success.
type Chain struct {
	generators []Generator
	logger     *slog.Logger
}

func NewChain(logger *slog.Logger, generators ...Generator) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	var gens []Generator
	for _, g := range generators {
		if g != nil {
			gens = append(gens, g)
		}
	}
	return &Chain{generators: gens, logger: logger}
}

func (c *Chain) Generate(ctx context.Context, analysis *analytics.Analysis, typ business.Type) (*Recommendations, error) {
	recs, _, err := c.Run(ctx, analysis, typ)
	return recs, err
}

// Run is Generate that also reports which generator answered, as
// "provider/model" or "static".
func (c *Chain) Run(ctx context.Context, analysis *analytics.Analysis, typ business.Type) (*Recommendations, string, error) {
	if len(c.generators) == 0 {
		return nil, "", errors.New("no recommendation generators configured")
	}
	var errs []error
	for i, g := range c.generators {
		recs, err := g.Generate(ctx, analysis, typ)
		if err == nil {
			return recs, generatorName(g), nil
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		errs = append(errs, err)
		if i < len(c.generators)-1 {
			c.logger.Warn("recommendation generator failed, falling back",
				"generator", generatorName(g),
				"next", generatorName(c.generators[i+1]),
				"error", err,
			)
		}
	}
	return nil, "", fmt.Errorf("all recommendation generators failed: %w", errors.Join(errs...))
}

func generatorName(g Generator) string {
	if n, ok := g.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", g)
}

// Static returns a fixed set of generic recommendations. It never fails and
// is used as the last link of a chain.
type Static struct{}

func (Static) Name() string { return ProviderStatic }

func (Static) Generate(context.Context, *analytics.Analysis, business.Type) (*Recommendations, error) {
	return &Recommendations{
		UrgentActions:          []string{"Address customer service issues", "Improve response time to reviews"},
		GrowthStrategies:       []string{"Focus on core strengths", "Consider expanding popular offerings"},
		MarketingIdeas:         []string{"Leverage positive reviews in social media", "Create loyalty program"},
		CompetitivePositioning: []string{"Emphasize unique atmosphere", "Highlight quality of products/services"},
		FutureScenarios:        []string{"Prepare for seasonal variations", "Explore potential partnerships"},
	}, nil
}
