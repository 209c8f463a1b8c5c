package analytics

import (
	"sort"
	"strings"
)

// Polarity is the three-way bucket used by the headline metrics.
type Polarity string

const (
	Positive Polarity = "positive"
	Neutral  Polarity = "neutral"
	Negative Polarity = "negative"
)

// byThemeLimit is how many top themes feed SentimentAnalysis.ByTheme.
const byThemeLimit = 10

// SentimentScore maps a free-text sentiment label onto [-1, 1]. The "very"
// forms must be checked first because the plain words are substrings of them.
func SentimentScore(label string) float64 {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "very positive"):
		return 1
	case strings.Contains(l, "positive"):
		return 0.5
	case strings.Contains(l, "very negative"):
		return -1
	case strings.Contains(l, "negative"):
		return -0.5
	default:
		return 0
	}
}

// Classify buckets a sentiment label by the sign of its score.
func Classify(label string) Polarity {
	score := SentimentScore(label)
	switch {
	case score > 0:
		return Positive
	case score < 0:
		return Negative
	default:
		return Neutral
	}
}

func (e *Engine) analyzeSentiment(reviews []Review, themes []ThemeAnalysis) SentimentAnalysis {
	out := SentimentAnalysis{
		ByMonth: e.sentimentByMonth(reviews),
		ByTheme: make([]ThemeSentiment, 0, min(len(themes), byThemeLimit)),
	}

	if len(reviews) > 0 {
		sum := 0.0
		for _, r := range reviews {
			sum += SentimentScore(r.Sentiment)
		}
		out.Overall = sum / float64(len(reviews))
	}

	for _, t := range themes[:min(len(themes), byThemeLimit)] {
		out.ByTheme = append(out.ByTheme, ThemeSentiment{Theme: t.Theme, Sentiment: t.AverageSentiment})
	}
	return out
}

func (e *Engine) sentimentByMonth(reviews []Review) []MonthlySentiment {
	months := make(monthAccs)
	for _, r := range reviews {
		month, ok := e.month(r)
		if !ok {
			continue
		}
		months.add(month, SentimentScore(r.Sentiment))
	}

	out := make([]MonthlySentiment, 0, len(months))
	for _, month := range months.sortedKeys() {
		acc := months[month]
		out = append(out, MonthlySentiment{Month: month, Sentiment: acc.mean(), Count: acc.count})
	}
	return out
}

// monthAcc is a running sum/count for one month bucket.
type monthAcc struct {
	sum   float64
	count int
}

func (a *monthAcc) mean() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

type monthAccs map[string]*monthAcc

func (m monthAccs) add(month string, v float64) {
	acc, ok := m[month]
	if !ok {
		acc = &monthAcc{}
		m[month] = acc
	}
	acc.sum += v
	acc.count++
}

// sortedKeys returns the month keys ascending. YYYY-MM is zero padded, so
// lexical order is chronological.
func (m monthAccs) sortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
