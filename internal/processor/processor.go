package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/reviewlens/internal/analytics"
	"github.com/MikeSquared-Agency/reviewlens/internal/business"
	"github.com/MikeSquared-Agency/reviewlens/internal/hermes"
	"github.com/MikeSquared-Agency/reviewlens/internal/recommend"
	"github.com/MikeSquared-Agency/reviewlens/internal/store"
)

var (
	ErrUnknownBusiness   = errors.New("unknown business")
	ErrHistoryDisabled   = errors.New("recommendation history requires a database")
	ErrRefreshInProgress = errors.New("refresh already running")
	ErrGenerationFailed  = errors.New("recommendation generation failed")
)

const (
	eventTopThemes = 5
	ingestTimeout  = 2 * time.Minute
)

// ReviewSource loads the reviews of one business table, newest first.
type ReviewSource interface {
	FetchReviews(ctx context.Context, table string) ([]analytics.Review, error)
}

type RunStore interface {
	WriteRecommendationRun(ctx context.Context, run store.RecommendationRun) (uuid.UUID, error)
	ListRecommendationRuns(ctx context.Context, slug string, limit int) ([]store.RecommendationRun, error)
}

// Publisher emits the analysis and recommendation events; *hermes.Events
// implements it.
type Publisher interface {
	AnalysisCompleted(evt hermes.AnalysisCompleted) error
	RecommendationsGenerated(evt hermes.RecommendationsGenerated) error
}

type Notifier interface {
	PostDigest(ctx context.Context, b business.Business, a *analytics.Analysis) (string, error)
	PostRecommendations(ctx context.Context, threadTS string, b business.Business, recs *recommend.Recommendations) (string, error)
}

// RecommendSettings are the server-side defaults that request overrides are
// merged onto.
type RecommendSettings struct {
	Primary        recommend.ProviderConfig
	Fallback       *recommend.ProviderConfig
	StaticFallback bool
}

// Deps wires a Processor. Runs, Publisher and Notifier are optional.
type Deps struct {
	Catalog   *business.Catalog
	Engine    *analytics.Engine
	Reviews   ReviewSource
	Runs      RunStore
	Publisher Publisher
	Notifier  Notifier
	Recommend RecommendSettings
	Location  *time.Location
	Logger    *slog.Logger
}

// Processor fetches reviews, runs the analytics engine and fans results out
// to recommendation generators, storage, NATS and Slack.
type Processor struct {
	catalog   *business.Catalog
	engine    *analytics.Engine
	reviews   ReviewSource
	runs      RunStore
	publisher Publisher
	notifier  Notifier
	settings  RecommendSettings
	loc       *time.Location
	logger    *slog.Logger

	newGenerator func(recommend.ProviderConfig, *slog.Logger) (recommend.Generator, error)
	now          func() time.Time

	refreshing atomic.Bool

	mu       sync.Mutex
	digestTS map[string]string // latest Slack digest per business slug
}

func New(d Deps) *Processor {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Engine == nil {
		opts := analytics.DefaultOptions()
		opts.Location = d.Location
		d.Engine = analytics.New(opts, d.Logger)
	}
	if d.Catalog == nil {
		d.Catalog = business.DefaultCatalog()
	}
	return &Processor{
		catalog:      d.Catalog,
		engine:       d.Engine,
		reviews:      d.Reviews,
		runs:         d.Runs,
		publisher:    d.Publisher,
		notifier:     d.Notifier,
		settings:     d.Recommend,
		loc:          d.Location,
		logger:       d.Logger,
		newGenerator: recommend.New,
		now:          time.Now,
		digestTS:     make(map[string]string),
	}
}

// Report is an analysis of one business plus data-set diagnostics.
type Report struct {
	Business    business.Business     `json:"business"`
	Analysis    *analytics.Analysis   `json:"analysis"`
	Diagnostics analytics.DateSummary `json:"diagnostics"`
	GeneratedAt time.Time             `json:"generatedAt"`
}

func (p *Processor) Businesses() []business.Business {
	return p.catalog.List()
}

func (p *Processor) lookup(slug string) (business.Business, error) {
	b, ok := p.catalog.Lookup(slug)
	if !ok {
		return business.Business{}, fmt.Errorf("%q: %w", slug, ErrUnknownBusiness)
	}
	return b, nil
}

func (p *Processor) fetch(ctx context.Context, b business.Business) ([]analytics.Review, error) {
	if p.reviews == nil {
		return nil, errors.New("no review source configured")
	}
	reviews, err := p.reviews.FetchReviews(ctx, b.Table)
	if err != nil {
		return nil, fmt.Errorf("fetch reviews for %s: %w", b.Slug, err)
	}
	return reviews, nil
}

// Analyze fetches and analyses one business and publishes a summary event.
func (p *Processor) Analyze(ctx context.Context, slug string) (*Report, error) {
	b, err := p.lookup(slug)
	if err != nil {
		return nil, err
	}
	reviews, err := p.fetch(ctx, b)
	if err != nil {
		return nil, err
	}

	now := p.now()
	diag := analytics.Summarize(reviews, now, p.loc)
	p.logDiagnostics(b, diag)

	report := &Report{
		Business:    b,
		Analysis:    p.engine.Analyze(reviews),
		Diagnostics: diag,
		GeneratedAt: now.UTC(),
	}
	p.publishAnalysis(b, report.Analysis, now)
	return report, nil
}

// AnalyzeReviews runs the engine on caller-supplied reviews.
func (p *Processor) AnalyzeReviews(reviews []analytics.Review) *analytics.Analysis {
	return p.engine.Analyze(reviews)
}

func (p *Processor) logDiagnostics(b business.Business, d analytics.DateSummary) {
	p.logger.Info("reviews fetched",
		"business", b.Slug,
		"total", d.Total,
		"dated", d.Dated,
		"recent_share", d.RecentShare,
	)
	if d.PossibleDateFiltering {
		p.logger.Warn("nearly all reviews are recent, upstream export may be date filtered",
			"business", b.Slug,
			"recent_share", d.RecentShare,
			"by_year", d.ByYear,
		)
	}
}

func (p *Processor) publishAnalysis(b business.Business, a *analytics.Analysis, now time.Time) {
	if p.publisher == nil {
		return
	}
	themes := make([]string, 0, eventTopThemes)
	for _, t := range a.Themes[:min(len(a.Themes), eventTopThemes)] {
		themes = append(themes, t.Theme)
	}
	if err := p.publisher.AnalysisCompleted(hermes.AnalysisCompleted{
		Business:     b.Slug,
		TotalReviews: a.Metrics.TotalReviews,
		AvgRating:    a.Metrics.AvgRating,
		ResponseRate: a.Metrics.ResponseRate,
		Sentiment:    a.Sentiment.Overall,
		TopThemes:    themes,
		Timestamp:    now.UTC(),
	}); err != nil {
		p.logger.Error("failed to publish analysis event", "business", b.Slug, "error", err)
	}
}

// Comparison contrasts the last Months months with the Months before them.
type Comparison struct {
	Business     business.Business          `json:"business"`
	Months       int                        `json:"months"`
	CurrentFrom  time.Time                  `json:"currentFrom"`
	PreviousFrom time.Time                  `json:"previousFrom"`
	Until        time.Time                  `json:"until"`
	Current      analytics.Metrics          `json:"current"`
	Previous     analytics.Metrics          `json:"previous"`
	Changes      analytics.PeriodComparison `json:"changes"`
}

// Compare splits the reviews of one business into two adjacent windows of
// months ending at now and compares them.
func (p *Processor) Compare(ctx context.Context, slug string, months int, now time.Time) (*Comparison, error) {
	if months <= 0 {
		return nil, fmt.Errorf("months must be positive, got %d", months)
	}
	b, err := p.lookup(slug)
	if err != nil {
		return nil, err
	}
	reviews, err := p.fetch(ctx, b)
	if err != nil {
		return nil, err
	}

	until := now.In(p.loc)
	currentFrom := until.AddDate(0, -months, 0)
	previousFrom := currentFrom.AddDate(0, -months, 0)

	current := p.engine.Analyze(analytics.FilterByDate(reviews, currentFrom, until, p.loc))
	previous := p.engine.Analyze(analytics.FilterByDate(reviews, previousFrom, currentFrom, p.loc))

	return &Comparison{
		Business:     b,
		Months:       months,
		CurrentFrom:  currentFrom,
		PreviousFrom: previousFrom,
		Until:        until,
		Current:      current.Metrics,
		Previous:     previous.Metrics,
		Changes:      analytics.ComparePeriods(current, previous),
	}, nil
}

// RefreshAll analyses every catalog business and posts a Slack digest for
// each when Slack is configured. Overlapping calls are rejected.
func (p *Processor) RefreshAll(ctx context.Context) error {
	if !p.refreshing.CompareAndSwap(false, true) {
		return ErrRefreshInProgress
	}
	defer p.refreshing.Store(false)

	start := p.now()
	var errs []error
	for _, b := range p.catalog.List() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		report, err := p.Analyze(ctx, b.Slug)
		if err != nil {
			p.logger.Error("refresh failed", "business", b.Slug, "error", err)
			errs = append(errs, err)
			continue
		}
		p.postDigest(ctx, b, report.Analysis)
	}

	p.logger.Info("refresh complete",
		"businesses", len(p.catalog.List()),
		"failed", len(errs),
		"duration_ms", p.now().Sub(start).Milliseconds(),
	)
	return errors.Join(errs...)
}

func (p *Processor) postDigest(ctx context.Context, b business.Business, a *analytics.Analysis) {
	if p.notifier == nil {
		return
	}
	ts, err := p.notifier.PostDigest(ctx, b, a)
	if err != nil {
		p.logger.Error("slack digest failed", "business", b.Slug, "error", err)
		return
	}
	p.mu.Lock()
	p.digestTS[b.Slug] = ts
	p.mu.Unlock()
}

// lookupBusinessRef accepts either a catalog slug or an exact business name.
func (p *Processor) lookupBusinessRef(ref string) (business.Business, bool) {
	ref = strings.TrimSpace(ref)
	if b, ok := p.catalog.Lookup(ref); ok {
		return b, true
	}
	return p.catalog.ByName(ref)
}
