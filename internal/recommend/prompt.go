package recommend

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/reviewlens/internal/analytics"
	"github.com/MikeSquared-Agency/reviewlens/internal/business"
)

const (
	promptThemes = 5
	promptStaff  = 3
)

const systemPrompt = `You are an expert business consultant for small hospitality and culture venues.

You read aggregated customer review data and give concrete, specific advice grounded in what reviewers actually say. Refer to themes and staff by name where it helps. Avoid generic advice that would apply to any business.

Respond with a single JSON object and nothing else.`

const responseFormat = `Respond with JSON in exactly this shape, 2 to 4 short items per list:
{
  "urgentActions": ["..."],
  "growthStrategies": ["..."],
  "marketingIdeas": ["..."],
  "competitivePositioning": ["..."],
  "futureScenarios": ["..."]
}`

// BuildPrompt renders the analysis summary sent to the model.
func BuildPrompt(a *analytics.Analysis, typ business.Type) string {
	m := a.Metrics
	var b strings.Builder

	fmt.Fprintf(&b, "Based on the following customer review data for %s, provide strategic recommendations in these categories: urgent actions, growth strategies, marketing ideas, competitive positioning, and future scenarios.\n\n", typ.Context())

	b.WriteString("REVIEW METRICS:\n")
	fmt.Fprintf(&b, "Total reviews: %d\n", m.TotalReviews)
	fmt.Fprintf(&b, "Average rating: %.1f/5\n", m.AvgRating)
	fmt.Fprintf(&b, "Positive reviews: %d (%s)\n", m.PositiveReviews, percent(m.PositiveReviews, m.TotalReviews))
	fmt.Fprintf(&b, "Neutral reviews: %d (%s)\n", m.NeutralReviews, percent(m.NeutralReviews, m.TotalReviews))
	fmt.Fprintf(&b, "Negative reviews: %d (%s)\n", m.NegativeReviews, percent(m.NegativeReviews, m.TotalReviews))
	fmt.Fprintf(&b, "Owner response rate: %s\n", percent(m.ResponsesFromOwner, m.TotalReviews))
	fmt.Fprintf(&b, "Overall sentiment: %.2f (-1 to 1 scale)\n\n", a.Sentiment.Overall)

	b.WriteString("TOP THEMES:\n")
	themes := a.Themes[:min(len(a.Themes), promptThemes)]
	if len(themes) == 0 {
		b.WriteString("No recurring themes\n")
	}
	for _, t := range themes {
		fmt.Fprintf(&b, "%s (mentioned %d times, sentiment: %.2f)\n", t.Theme, t.Count, t.AverageSentiment)
	}

	b.WriteString("\nSTAFF MENTIONS:\n")
	staff := a.StaffMentions[:min(len(a.StaffMentions), promptStaff)]
	if len(staff) == 0 {
		b.WriteString("No staff specifically mentioned\n")
	}
	for _, s := range staff {
		fmt.Fprintf(&b, "%s (mentioned %d times, sentiment: %.2f)\n", s.Name, s.Count, s.AverageSentiment)
	}

	if n := len(a.Trends.RatingTrend); n > 0 {
		b.WriteString("\nRECENT MONTHLY RATINGS:\n")
		for _, r := range a.Trends.RatingTrend[max(0, n-3):] {
			fmt.Fprintf(&b, "%s: %.1f over %d reviews\n", r.Month, r.AvgRating, r.Count)
		}
	}

	b.WriteString("\n")
	b.WriteString(responseFormat)
	return b.String()
}

// percent renders part/total as a whole percentage, 0% when total is 0.
func percent(part, total int) string {
	if total <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(part)*100/float64(total))
}
