package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/reviewlens/internal/analytics"
	"github.com/MikeSquared-Agency/reviewlens/internal/business"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleAnalysis() *analytics.Analysis {
	opts := analytics.DefaultOptions()
	return analytics.New(opts, discardLogger()).Analyze([]analytics.Review{
		{Stars: 5, Sentiment: "very positive", MainThemes: `["coffee"]`, StaffMentioned: "Anna"},
		{Stars: 2, Sentiment: "negative", MainThemes: `["noise"]`},
	})
}

const recsJSON = `{"urgentActions":["Fix the noise"],"growthStrategies":["More coffee"],"marketingIdeas":["Feature Anna"],"competitivePositioning":["Quiet corner"],"futureScenarios":["Busy summer"]}`

func TestProviderConfigMerge(t *testing.T) {
	base := ProviderConfig{Provider: "openai", Model: "gpt-4o-mini", APIKey: "server-key", BaseURL: "http://proxy"}

	tests := []struct {
		name     string
		override ProviderConfig
		want     ProviderConfig
	}{
		{"empty override", ProviderConfig{}, base},
		{"same provider new model", ProviderConfig{Provider: "OpenAI", Model: "gpt-4.1"}, ProviderConfig{Provider: "openai", Model: "gpt-4.1", APIKey: "server-key", BaseURL: "http://proxy"}},
		{"user key", ProviderConfig{APIKey: "user-key"}, ProviderConfig{Provider: "openai", Model: "gpt-4o-mini", APIKey: "user-key", BaseURL: "http://proxy"}},
		{"switch provider drops credentials", ProviderConfig{Provider: "anthropic"}, ProviderConfig{Provider: "anthropic"}},
		{"local alias", ProviderConfig{Provider: "local", Model: "mistral"}, ProviderConfig{Provider: "ollama", Model: "mistral"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Merge(tt.override); got != tt.want {
				t.Errorf("Merge() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNew_Errors(t *testing.T) {
	for _, p := range []string{ProviderAnthropic, ProviderOpenAI, ProviderGemini} {
		if _, err := New(ProviderConfig{Provider: p}, discardLogger()); !errors.Is(err, ErrMissingAPIKey) {
			t.Errorf("%s without key: expected ErrMissingAPIKey, got %v", p, err)
		}
	}
	if _, err := New(ProviderConfig{Provider: "browser"}, discardLogger()); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
	if _, err := New(ProviderConfig{Provider: "ollama", BaseURL: "://bad"}, discardLogger()); err == nil {
		t.Error("expected error for invalid ollama url")
	}
}

func TestNew_DefaultModels(t *testing.T) {
	g, err := New(ProviderConfig{Provider: "local"}, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mg, ok := g.(*modelGenerator)
	if !ok {
		t.Fatalf("expected *modelGenerator, got %T", g)
	}
	if mg.provider != ProviderOllama || mg.model != "llama3" {
		t.Errorf("unexpected provider/model %s/%s", mg.provider, mg.model)
	}

	if g, err := New(ProviderConfig{Provider: "static"}, nil); err != nil || generatorName(g) != "static" {
		t.Errorf("expected static generator, got %v %v", g, err)
	}
}

func TestAnthropicProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "sk-ant" {
			t.Errorf("unexpected api key %q", r.Header.Get("x-api-key"))
		}
		var req struct {
			Model    string `json:"model"`
			System   string `json:"system"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "claude-test" {
			t.Errorf("expected model claude-test, got %s", req.Model)
		}
		if req.System != systemPrompt {
			t.Error("expected system prompt")
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "a cocktail bar") {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content":     []map[string]any{{"type": "text", "text": recsJSON}},
			"stop_reason": "end_turn",
		})
	}))
	defer server.Close()

	g, err := New(ProviderConfig{Provider: "anthropic", Model: "claude-test", APIKey: "sk-ant", BaseURL: server.URL}, discardLogger())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	recs, err := g.Generate(context.Background(), sampleAnalysis(), business.Bar)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(recs.UrgentActions) != 1 || recs.UrgentActions[0] != "Fix the noise" {
		t.Errorf("unexpected recommendations %+v", recs)
	}
}

func TestOllamaProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "llama3" {
			t.Errorf("expected default model llama3, got %s", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/x-ndjson")
		half := len(recsJSON) / 2
		enc := json.NewEncoder(w)
		enc.Encode(map[string]any{"model": "llama3", "message": map[string]any{"role": "assistant", "content": recsJSON[:half]}, "done": false})
		enc.Encode(map[string]any{"model": "llama3", "message": map[string]any{"role": "assistant", "content": recsJSON[half:]}, "done": true})
	}))
	defer server.Close()

	g, err := New(ProviderConfig{Provider: "ollama", BaseURL: server.URL}, discardLogger())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	recs, err := g.Generate(context.Background(), sampleAnalysis(), business.Cafe)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(recs.FutureScenarios) != 1 || recs.FutureScenarios[0] != "Busy summer" {
		t.Errorf("unexpected recommendations %+v", recs)
	}
}

func TestOpenAIProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-openai" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["model"] != "gpt-test" {
			t.Errorf("expected model gpt-test, got %v", req["model"])
		}
		text, _ := req["text"].(map[string]any)
		format, _ := text["format"].(map[string]any)
		if format["type"] != "json_schema" || format["strict"] != true {
			t.Errorf("expected strict json_schema format, got %v", format)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":         "resp_1",
			"object":     "response",
			"created_at": 1700000000,
			"status":     "completed",
			"model":      "gpt-test",
			"output": []map[string]any{{
				"type":   "message",
				"id":     "msg_1",
				"status": "completed",
				"role":   "assistant",
				"content": []map[string]any{{
					"type":        "output_text",
					"text":        recsJSON,
					"annotations": []any{},
				}},
			}},
		})
	}))
	defer server.Close()

	g, err := New(ProviderConfig{Provider: "openai", Model: "gpt-test", APIKey: "sk-openai", BaseURL: server.URL + "/v1"}, discardLogger())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	recs, err := g.Generate(context.Background(), sampleAnalysis(), business.Gallery)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(recs.MarketingIdeas) != 1 || recs.MarketingIdeas[0] != "Feature Anna" {
		t.Errorf("unexpected recommendations %+v", recs)
	}
}

func TestModelGenerator_UnparseableOutput(t *testing.T) {
	g := &modelGenerator{provider: "fake", model: "m", llm: fakeCompleter{text: "no idea"}, logger: discardLogger()}

	_, err := g.Generate(context.Background(), sampleAnalysis(), business.Cafe)
	if !errors.Is(err, ErrEmptyRecommendations) {
		t.Errorf("expected ErrEmptyRecommendations, got %v", err)
	}
}

type fakeCompleter struct {
	text string
	err  error
}

func (f fakeCompleter) complete(context.Context, string, string) (string, error) {
	return f.text, f.err
}

type fakeGenerator struct {
	recs  *Recommendations
	err   error
	calls int
}

func (f *fakeGenerator) Generate(context.Context, *analytics.Analysis, business.Type) (*Recommendations, error) {
	f.calls++
	return f.recs, f.err
}

func TestChain_FallsBack(t *testing.T) {
	failing := &fakeGenerator{err: errors.New("model not loaded")}
	working := &fakeGenerator{recs: &Recommendations{UrgentActions: []string{"x"}}}
	unused := &fakeGenerator{recs: &Recommendations{UrgentActions: []string{"y"}}}

	chain := NewChain(discardLogger(), failing, nil, working, unused)
	recs, err := chain.Generate(context.Background(), sampleAnalysis(), business.Cafe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs.UrgentActions[0] != "x" {
		t.Errorf("expected result from second generator, got %+v", recs)
	}
	if failing.calls != 1 || working.calls != 1 || unused.calls != 0 {
		t.Errorf("unexpected call counts %d/%d/%d", failing.calls, working.calls, unused.calls)
	}
}

func TestChain_AllFail(t *testing.T) {
	first := errors.New("first down")
	chain := NewChain(discardLogger(), &fakeGenerator{err: first}, &fakeGenerator{err: ErrEmptyRecommendations})

	_, err := chain.Generate(context.Background(), sampleAnalysis(), business.Cafe)
	if !errors.Is(err, first) || !errors.Is(err, ErrEmptyRecommendations) {
		t.Errorf("expected joined errors, got %v", err)
	}

	if _, err := NewChain(discardLogger()).Generate(context.Background(), sampleAnalysis(), business.Cafe); err == nil {
		t.Error("expected error for empty chain")
	}
}

func TestChain_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	next := &fakeGenerator{recs: &Recommendations{UrgentActions: []string{"x"}}}

	_, err := NewChain(discardLogger(), &fakeGenerator{err: context.Canceled}, next).Generate(ctx, sampleAnalysis(), business.Cafe)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if next.calls != 0 {
		t.Error("chain should stop once the context is done")
	}
}

func TestStatic(t *testing.T) {
	recs, err := Static{}.Generate(context.Background(), nil, business.Bar)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs.Empty() {
		t.Error("static recommendations must not be empty")
	}
	if len(recs.UrgentActions) != 2 || recs.UrgentActions[0] != "Address customer service issues" {
		t.Errorf("unexpected static urgent actions %v", recs.UrgentActions)
	}
}

func TestRecommendationsSchema(t *testing.T) {
	if recommendationsSchema["type"] != "object" {
		t.Fatalf("expected object schema, got %v", recommendationsSchema["type"])
	}
	if recommendationsSchema["additionalProperties"] != false {
		t.Error("expected additionalProperties false")
	}
	required, _ := recommendationsSchema["required"].([]string)
	want := []string{"competitivePositioning", "futureScenarios", "growthStrategies", "marketingIdeas", "urgentActions"}
	if strings.Join(required, ",") != strings.Join(want, ",") {
		t.Errorf("unexpected required fields %v", required)
	}
	props, _ := recommendationsSchema["properties"].(map[string]any)
	urgent, _ := props["urgentActions"].(map[string]any)
	if urgent["type"] != "array" {
		t.Errorf("expected urgentActions to be an array, got %v", urgent)
	}
}

func TestChain_RunReportsGenerator(t *testing.T) {
	chain := NewChain(discardLogger(), &fakeGenerator{err: errors.New("down")}, Static{})

	recs, name, err := chain.Run(context.Background(), sampleAnalysis(), business.Cafe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "static" || recs.Empty() {
		t.Errorf("expected static answer, got %q %+v", name, recs)
	}
}
