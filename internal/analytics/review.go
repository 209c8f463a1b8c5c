package analytics

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Review is one customer review as stored by the scraper pipeline.
type Review struct {
	Stars                 int       `json:"stars"`
	Name                  string    `json:"name"`
	Text                  string    `json:"text"`
	TextTranslated        string    `json:"textTranslated,omitempty"`
	PublishedAtDate       string    `json:"publishedAtDate"`
	ReviewURL             string    `json:"reviewUrl,omitempty"`
	ResponseFromOwnerText string    `json:"responseFromOwnerText,omitempty"`
	Sentiment             string    `json:"sentiment,omitempty"`
	StaffMentioned        ListField `json:"staffMentioned,omitempty"`
	MainThemes            ListField `json:"mainThemes,omitempty"`
}

// HasOwnerResponse reports whether the owner replied with non-blank text.
func (r Review) HasOwnerResponse() bool {
	return strings.TrimSpace(r.ResponseFromOwnerText) != ""
}

// ListField is a text column holding a list either as a JSON array
// (`["Coffee","Service"]`) or as comma-separated text (`Coffee, Service`).
type ListField string

// UnmarshalJSON accepts a JSON string or any other JSON literal. Non-string
// literals (usually arrays) are kept verbatim as their JSON text.
func (f *ListField) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = ListField(s)
		return nil
	}
	*f = ListField(trimmed)
	return nil
}

// Items decodes the field. JSON arrays yield their string elements; anything
// that does not decode as a JSON array is split on commas and trimmed. An
// empty field yields nil. Items are not deduplicated or normalized.
func (f ListField) Items() []string {
	raw := string(f)
	if raw == "" {
		return nil
	}

	var decoded []any
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		items := make([]string, 0, len(decoded))
		for _, v := range decoded {
			if s, ok := v.(string); ok {
				items = append(items, s)
			}
		}
		return items
	}

	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
