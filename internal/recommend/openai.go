package recommend

import (
	"context"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// openAICompleter uses the Responses API with a strict JSON schema so the
// reply always decodes as Recommendations.
type openAICompleter struct {
	client *openai.Client
	model  string
}

func newOpenAICompleter(cfg ProviderConfig) *openAICompleter {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}
	client := openai.NewClient(opts...)
	return &openAICompleter{client: &client, model: cfg.Model}
}

func (c *openAICompleter) complete(ctx context.Context, system, prompt string) (string, error) {
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "Recommendations",
			Schema:      recommendationsSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Business recommendations JSON"),
			Type:        "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(maxOutputTokens),
		Instructions:    openai.String(system),
		Temperature:     openai.Float(defaultTemperature),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", err
	}
	return resp.OutputText(), nil
}
