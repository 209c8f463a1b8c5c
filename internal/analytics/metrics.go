package analytics

func computeMetrics(reviews []Review) Metrics {
	m := Metrics{TotalReviews: len(reviews)}

	totalStars := 0
	for _, r := range reviews {
		totalStars += r.Stars
		switch Classify(r.Sentiment) {
		case Positive:
			m.PositiveReviews++
		case Negative:
			m.NegativeReviews++
		default:
			m.NeutralReviews++
		}
		if r.HasOwnerResponse() {
			m.ResponsesFromOwner++
		}
	}

	if m.TotalReviews > 0 {
		m.AvgRating = float64(totalStars) / float64(m.TotalReviews)
		m.ResponseRate = float64(m.ResponsesFromOwner) / float64(m.TotalReviews)
	}
	return m
}
