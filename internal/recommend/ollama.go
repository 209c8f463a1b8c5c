package recommend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const defaultOllamaURL = "http://localhost:11434"

// ollamaCompleter talks to a local model server. It needs no API key, which
// makes it the default first link of the chain.
type ollamaCompleter struct {
	client *api.Client
	model  string
}

func newOllamaCompleter(cfg ProviderConfig) (*ollamaCompleter, error) {
	base := cfg.BaseURL
	if base == "" {
		base = defaultOllamaURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url: %w", err)
	}
	return &ollamaCompleter{
		client: api.NewClient(u, &http.Client{Timeout: 5 * time.Minute}),
		model:  cfg.Model,
	}, nil
}

func (c *ollamaCompleter) complete(ctx context.Context, system, prompt string) (string, error) {
	var content strings.Builder
	err := c.client.Chat(ctx, &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Format: []byte(`"json"`),
		Options: map[string]interface{}{
			"temperature": defaultTemperature,
			"num_predict": maxOutputTokens,
		},
	}, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	return content.String(), nil
}
