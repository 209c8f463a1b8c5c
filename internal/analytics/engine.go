package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// KeyPolicy controls how a mention is turned into its grouping key.
type KeyPolicy int

const (
	// FoldCase trims and lowercases, so "Coffee" and "coffee" group together.
	FoldCase KeyPolicy = iota
	// PreserveCase only trims, so "Anna" and "anna" stay distinct.
	PreserveCase
)

func (p KeyPolicy) key(s string) string {
	s = strings.TrimSpace(s)
	if p == FoldCase {
		return strings.ToLower(s)
	}
	return s
}

// ParseKeyPolicy accepts "fold" or "preserve", case-insensitively.
func ParseKeyPolicy(s string) (KeyPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold":
		return FoldCase, nil
	case "preserve":
		return PreserveCase, nil
	}
	return 0, fmt.Errorf("unknown key policy %q, want fold or preserve", s)
}

// Options configures an Engine.
type Options struct {
	// Location is the calendar used for YYYY-MM buckets and for dates that
	// carry no zone offset.
	Location  *time.Location
	ThemeKeys KeyPolicy
	StaffKeys KeyPolicy
}

// DefaultOptions buckets by the process time zone, folds theme case and
// keeps staff names as written.
func DefaultOptions() Options {
	return Options{
		Location:  time.Local,
		ThemeKeys: FoldCase,
		StaffKeys: PreserveCase,
	}
}

// Engine turns a review set into an Analysis. It holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Engine {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{opts: opts, logger: logger}
}

// Analyze recomputes every aggregate from scratch. Malformed fields never
// fail the run; they only drop the review from the affected aggregate.
func (e *Engine) Analyze(reviews []Review) *Analysis {
	if reviews == nil {
		reviews = []Review{}
	}
	e.logDateRange(reviews)

	themes := e.extractThemes(reviews)

	return &Analysis{
		Reviews:       reviews,
		Metrics:       computeMetrics(reviews),
		Themes:        themes,
		Sentiment:     e.analyzeSentiment(reviews, themes),
		StaffMentions: e.extractStaffMentions(reviews),
		Trends:        e.analyzeTrends(reviews),
	}
}

func (e *Engine) logDateRange(reviews []Review) {
	if len(reviews) == 0 || !e.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	var oldest, newest time.Time
	dated := 0
	for _, r := range reviews {
		t, ok := ParseDate(r.PublishedAtDate, e.opts.Location)
		if !ok {
			continue
		}
		if dated == 0 || t.Before(oldest) {
			oldest = t
		}
		if dated == 0 || t.After(newest) {
			newest = t
		}
		dated++
	}
	if dated == 0 {
		e.logger.Debug("no dated reviews", "reviews", len(reviews))
		return
	}
	e.logger.Debug("review date range",
		"reviews", len(reviews),
		"dated", dated,
		"oldest", oldest.UTC().Format(time.RFC3339),
		"newest", newest.UTC().Format(time.RFC3339),
	)
}

// month returns the YYYY-MM bucket of a review, or false when its date is
// missing or unparsable.
func (e *Engine) month(r Review) (string, bool) {
	t, ok := ParseDate(r.PublishedAtDate, e.opts.Location)
	if !ok {
		return "", false
	}
	return t.In(e.opts.Location).Format("2006-01"), true
}

var zonedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05Z07",
	"2006-01-02T15:04:05Z07",
	time.RFC1123Z,
	time.RFC1123,
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate parses the date formats seen in review exports. Timestamps
// without an offset are read in loc. Fractional seconds are accepted by every
// layout.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
