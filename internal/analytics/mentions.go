package analytics

import "sort"

// mention is the running aggregate for one theme or staff key.
type mention struct {
	key     string
	count   int
	sum     float64
	indices []int
}

func (m *mention) average() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}

// tallyMentions groups the decoded list items of one review field. Each
// non-blank item adds one to its key's count, so an item repeated within a
// review is counted (and indexed) once per repetition. Results are ordered by
// count descending, then key ascending.
func tallyMentions(reviews []Review, field func(Review) ListField, policy KeyPolicy) []*mention {
	byKey := make(map[string]*mention)
	var order []*mention

	for i, r := range reviews {
		items := field(r).Items()
		if len(items) == 0 {
			continue
		}
		score := SentimentScore(r.Sentiment)
		for _, item := range items {
			key := policy.key(item)
			if key == "" {
				continue
			}
			m, ok := byKey[key]
			if !ok {
				m = &mention{key: key}
				byKey[key] = m
				order = append(order, m)
			}
			m.count++
			m.sum += score
			m.indices = append(m.indices, i)
		}
	}

	sortMentions(order)
	return order
}

func sortMentions(ms []*mention) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].count != ms[j].count {
			return ms[i].count > ms[j].count
		}
		return ms[i].key < ms[j].key
	})
}

func (e *Engine) extractThemes(reviews []Review) []ThemeAnalysis {
	tallies := tallyMentions(reviews, func(r Review) ListField { return r.MainThemes }, e.opts.ThemeKeys)
	out := make([]ThemeAnalysis, 0, len(tallies))
	for _, m := range tallies {
		out = append(out, ThemeAnalysis{
			Theme:            m.key,
			Count:            m.count,
			AverageSentiment: m.average(),
			ReviewIndices:    m.indices,
		})
	}
	return out
}

func (e *Engine) extractStaffMentions(reviews []Review) []StaffMention {
	tallies := tallyMentions(reviews, func(r Review) ListField { return r.StaffMentioned }, e.opts.StaffKeys)
	out := make([]StaffMention, 0, len(tallies))
	for _, m := range tallies {
		out = append(out, StaffMention{
			Name:             m.key,
			Count:            m.count,
			AverageSentiment: m.average(),
			ReviewIndices:    m.indices,
		})
	}
	return out
}
