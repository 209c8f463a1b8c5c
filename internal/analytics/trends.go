package analytics

import "sort"

// themeTrendLimit is how many themes are kept per month.
const themeTrendLimit = 5

func (e *Engine) analyzeTrends(reviews []Review) TrendData {
	return TrendData{
		RatingTrend: e.ratingByMonth(reviews),
		ThemeTrend:  e.themesByMonth(reviews),
	}
}

func (e *Engine) ratingByMonth(reviews []Review) []MonthlyRating {
	months := make(monthAccs)
	for _, r := range reviews {
		month, ok := e.month(r)
		if !ok {
			continue
		}
		months.add(month, float64(r.Stars))
	}

	out := make([]MonthlyRating, 0, len(months))
	for _, month := range months.sortedKeys() {
		acc := months[month]
		out = append(out, MonthlyRating{Month: month, AvgRating: acc.mean(), Count: acc.count})
	}
	return out
}

// themesByMonth only considers reviews that have both a bucketable date and
// at least one decoded theme item.
func (e *Engine) themesByMonth(reviews []Review) []MonthlyThemes {
	months := make(map[string]map[string]int)
	for _, r := range reviews {
		items := r.MainThemes.Items()
		if len(items) == 0 {
			continue
		}
		month, ok := e.month(r)
		if !ok {
			continue
		}
		counts, ok := months[month]
		if !ok {
			counts = make(map[string]int)
			months[month] = counts
		}
		for _, item := range items {
			key := e.opts.ThemeKeys.key(item)
			if key == "" {
				continue
			}
			counts[key]++
		}
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]MonthlyThemes, 0, len(keys))
	for _, month := range keys {
		out = append(out, MonthlyThemes{Month: month, Themes: topThemes(months[month], themeTrendLimit)})
	}
	return out
}

func topThemes(counts map[string]int, limit int) []ThemeCount {
	themes := make([]ThemeCount, 0, len(counts))
	for theme, count := range counts {
		themes = append(themes, ThemeCount{Theme: theme, Count: count})
	}
	sort.Slice(themes, func(i, j int) bool {
		if themes[i].Count != themes[j].Count {
			return themes[i].Count > themes[j].Count
		}
		return themes[i].Theme < themes[j].Theme
	})
	if len(themes) > limit {
		themes = themes[:limit]
	}
	return themes
}
