package analytics

import "time"

const (
	recentWindowMonths = 3
	dateFilteringShare = 0.95
)

// DateSummary describes the time span of a review set. It is used to spot
// upstream exports that silently dropped older reviews.
type DateSummary struct {
	Total                 int         `json:"total"`
	Dated                 int         `json:"dated"`
	Oldest                time.Time   `json:"oldest"`
	Newest                time.Time   `json:"newest"`
	ByYear                map[int]int `json:"byYear"`
	RecentShare           float64     `json:"recentShare"`
	PossibleDateFiltering bool        `json:"possibleDateFiltering"`
}

// Summarize counts reviews per year and the share published in the three
// months before now. RecentShare is relative to all reviews, dated or not.
func Summarize(reviews []Review, now time.Time, loc *time.Location) DateSummary {
	if loc == nil {
		loc = time.Local
	}
	s := DateSummary{Total: len(reviews), ByYear: make(map[int]int)}
	cutoff := now.In(loc).AddDate(0, -recentWindowMonths, 0)

	recent := 0
	for _, r := range reviews {
		t, ok := ParseDate(r.PublishedAtDate, loc)
		if !ok {
			continue
		}
		if s.Dated == 0 || t.Before(s.Oldest) {
			s.Oldest = t
		}
		if s.Dated == 0 || t.After(s.Newest) {
			s.Newest = t
		}
		s.Dated++
		s.ByYear[t.In(loc).Year()]++
		if !t.Before(cutoff) {
			recent++
		}
	}

	if s.Total > 0 {
		s.RecentShare = float64(recent) / float64(s.Total)
		s.PossibleDateFiltering = s.RecentShare > dateFilteringShare
	}
	return s
}
