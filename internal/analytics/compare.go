package analytics

import (
	"sort"
	"time"
)

// areaShiftThreshold is the minimum move in a theme's average sentiment for it
// to count as improving or declining.
const areaShiftThreshold = 0.1

// PeriodComparison contrasts two analyses of the same business.
type PeriodComparison struct {
	RatingChange    float64  `json:"ratingChange"`
	ReviewGrowth    float64  `json:"reviewGrowth"`
	SentimentShift  float64  `json:"sentimentShift"`
	EmergingThemes  []string `json:"emergingThemes"`
	DecliningThemes []string `json:"decliningThemes"`
	ImprovingAreas  []string `json:"improvingAreas"`
	DecliningAreas  []string `json:"decliningAreas"`
}

// FilterByDate keeps the reviews published in [from, to). Undated reviews
// are dropped.
func FilterByDate(reviews []Review, from, to time.Time, loc *time.Location) []Review {
	out := make([]Review, 0, len(reviews))
	for _, r := range reviews {
		t, ok := ParseDate(r.PublishedAtDate, loc)
		if !ok {
			continue
		}
		if !t.Before(from) && t.Before(to) {
			out = append(out, r)
		}
	}
	return out
}

// ComparePeriods reports how current moved relative to previous. Growth is 0
// when the previous period had no reviews.
func ComparePeriods(current, previous *Analysis) PeriodComparison {
	cmp := PeriodComparison{
		RatingChange:    current.Metrics.AvgRating - previous.Metrics.AvgRating,
		SentimentShift:  current.Sentiment.Overall - previous.Sentiment.Overall,
		EmergingThemes:  []string{},
		DecliningThemes: []string{},
		ImprovingAreas:  []string{},
		DecliningAreas:  []string{},
	}
	if prev := previous.Metrics.TotalReviews; prev > 0 {
		cmp.ReviewGrowth = float64(current.Metrics.TotalReviews-prev) / float64(prev)
	}

	before := make(map[string]ThemeAnalysis, len(previous.Themes))
	for _, t := range previous.Themes {
		before[t.Theme] = t
	}
	now := make(map[string]bool, len(current.Themes))

	// Themes are already ranked, so appending in order keeps each list ranked.
	var improving, declining []ThemeAnalysis
	for _, t := range current.Themes {
		now[t.Theme] = true
		old, seen := before[t.Theme]
		if !seen {
			cmp.EmergingThemes = append(cmp.EmergingThemes, t.Theme)
			continue
		}
		switch delta := t.AverageSentiment - old.AverageSentiment; {
		case delta > areaShiftThreshold:
			improving = append(improving, t)
		case delta < -areaShiftThreshold:
			declining = append(declining, t)
		}
	}
	for _, t := range previous.Themes {
		if !now[t.Theme] {
			cmp.DecliningThemes = append(cmp.DecliningThemes, t.Theme)
		}
	}

	cmp.ImprovingAreas = themeNames(improving)
	cmp.DecliningAreas = themeNames(declining)
	return cmp
}

func themeNames(themes []ThemeAnalysis) []string {
	sort.SliceStable(themes, func(i, j int) bool {
		if themes[i].Count != themes[j].Count {
			return themes[i].Count > themes[j].Count
		}
		return themes[i].Theme < themes[j].Theme
	})
	names := make([]string, 0, len(themes))
	for _, t := range themes {
		names = append(names, t.Theme)
	}
	return names
}
