package recommend

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

type geminiCompleter struct {
	apiKey  string
	model   string
	baseURL string
}

func newGeminiCompleter(cfg ProviderConfig) *geminiCompleter {
	return &geminiCompleter{apiKey: cfg.APIKey, model: cfg.Model, baseURL: cfg.BaseURL}
}

// complete creates a client per call; genai clients need a context to
// construct and hold no state worth reusing across requests.
func (c *geminiCompleter) complete(ctx context.Context, system, prompt string) (string, error) {
	cc := &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(system+"\n\n"+prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
