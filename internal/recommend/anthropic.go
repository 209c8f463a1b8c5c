package recommend

import (
	"context"

	"github.com/MikeSquared-Agency/reviewlens/internal/anthropic"
)

type anthropicCompleter struct {
	client *anthropic.Client
}

func newAnthropicCompleter(cfg ProviderConfig) *anthropicCompleter {
	client := anthropic.NewClient(cfg.APIKey, cfg.Model)
	if cfg.BaseURL != "" {
		client.SetBaseURL(cfg.BaseURL)
	}
	return &anthropicCompleter{client: client}
}

func (c *anthropicCompleter) complete(ctx context.Context, system, prompt string) (string, error) {
	temperature := defaultTemperature
	return c.client.Complete(ctx, system, []anthropic.Message{
		{Role: "user", Content: prompt},
	}, anthropic.Options{MaxTokens: maxOutputTokens, Temperature: &temperature})
}
