package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/reviewlens/internal/business"
	"github.com/MikeSquared-Agency/reviewlens/internal/hermes"
	"github.com/MikeSquared-Agency/reviewlens/internal/recommend"
	"github.com/MikeSquared-Agency/reviewlens/internal/store"
)

// RecommendationResult is returned to API callers.
type RecommendationResult struct {
	RunID           string                     `json:"runId,omitempty"`
	Business        business.Business          `json:"business"`
	Generator       string                     `json:"generator"`
	Recommendations *recommend.Recommendations `json:"recommendations"`
	GeneratedAt     time.Time                  `json:"generatedAt"`
}

// Recommend analyses a business and asks the configured generators for
// recommendations. override is merged onto the server defaults for this
// call only.
func (p *Processor) Recommend(ctx context.Context, slug string, override recommend.ProviderConfig) (*RecommendationResult, error) {
	b, err := p.lookup(slug)
	if err != nil {
		return nil, err
	}
	chain, err := p.chainFor(override)
	if err != nil {
		return nil, err
	}

	report, err := p.Analyze(ctx, slug)
	if err != nil {
		return nil, err
	}

	recs, generator, err := chain.Run(ctx, report.Analysis, b.Type)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w for %s: %w", ErrGenerationFailed, b.Slug, err)
	}

	result := &RecommendationResult{
		Business:        b,
		Generator:       generator,
		Recommendations: recs,
		GeneratedAt:     p.now().UTC(),
	}

	if p.runs != nil {
		provider, model, _ := strings.Cut(generator, "/")
		id, err := p.runs.WriteRecommendationRun(ctx, store.RecommendationRun{
			BusinessSlug:    b.Slug,
			Provider:        provider,
			Model:           model,
			ReviewCount:     report.Analysis.Metrics.TotalReviews,
			AvgRating:       report.Analysis.Metrics.AvgRating,
			Recommendations: *recs,
		})
		if err != nil {
			p.logger.Error("failed to store recommendation run", "business", b.Slug, "error", err)
		} else {
			result.RunID = id.String()
		}
	}

	if p.publisher != nil {
		provider, model, _ := strings.Cut(generator, "/")
		if err := p.publisher.RecommendationsGenerated(hermes.RecommendationsGenerated{
			Business:  b.Slug,
			RunID:     result.RunID,
			Provider:  provider,
			Model:     model,
			Timestamp: result.GeneratedAt,
		}); err != nil {
			p.logger.Error("failed to publish recommendations event", "business", b.Slug, "error", err)
		}
	}

	if p.notifier != nil {
		p.mu.Lock()
		threadTS := p.digestTS[b.Slug]
		p.mu.Unlock()
		if _, err := p.notifier.PostRecommendations(ctx, threadTS, b, recs); err != nil {
			p.logger.Error("slack recommendations post failed", "business", b.Slug, "error", err)
		}
	}

	return result, nil
}

// chainFor builds the request-scoped generator chain: the merged primary,
// then the server fallback, then the static set when enabled.
func (p *Processor) chainFor(override recommend.ProviderConfig) (*recommend.Chain, error) {
	primaryCfg := p.settings.Primary.Merge(override)
	primary, err := p.newGenerator(primaryCfg, p.logger)
	if err != nil {
		return nil, fmt.Errorf("configure %s generator: %w", primaryCfg.Provider, err)
	}

	gens := []recommend.Generator{primary}
	if fb := p.settings.Fallback; fb != nil {
		g, err := p.newGenerator(*fb, p.logger)
		if err != nil {
			p.logger.Warn("fallback generator unavailable", "provider", fb.Provider, "error", err)
		} else {
			gens = append(gens, g)
		}
	}
	if p.settings.StaticFallback {
		gens = append(gens, recommend.Static{})
	}
	return recommend.NewChain(p.logger, gens...), nil
}

// History lists stored recommendation runs, newest first.
func (p *Processor) History(ctx context.Context, slug string, limit int) ([]store.RecommendationRun, error) {
	b, err := p.lookup(slug)
	if err != nil {
		return nil, err
	}
	if p.runs == nil {
		return nil, ErrHistoryDisabled
	}
	runs, err := p.runs.ListRecommendationRuns(ctx, b.Slug, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs for %s: %w", b.Slug, err)
	}
	return runs, nil
}
