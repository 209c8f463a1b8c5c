package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/reviewlens/internal/analytics"
	"github.com/MikeSquared-Agency/reviewlens/internal/business"
	"github.com/MikeSquared-Agency/reviewlens/internal/recommend"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

const (
	digestThemes = 5
	digestStaff  = 3

	// maxSectionText is Slack's limit for the text of one section block.
	maxSectionText = 3000
)

type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// PostDigest posts a one-message summary of an analysis and returns the
// message timestamp.
func (p *Poster) PostDigest(ctx context.Context, b business.Business, a *analytics.Analysis) (string, error) {
	text := formatDigest(b, a)
	ts, err := p.post(ctx, "", text, []map[string]any{sectionBlock(text)})
	if err != nil {
		return "", err
	}
	p.logger.Info("posted digest to slack", "ts", ts, "business", b.Slug)
	return ts, nil
}

// PostRecommendations posts generated recommendations, threaded under
// threadTS when it is set.
func (p *Poster) PostRecommendations(ctx context.Context, threadTS string, b business.Business, recs *recommend.Recommendations) (string, error) {
	parts := recommendationSections(b, recs)
	blocks := make([]map[string]any, 0, len(parts))
	for _, part := range parts {
		blocks = append(blocks, sectionBlock(part))
	}
	ts, err := p.post(ctx, threadTS, strings.Join(parts, "\n\n"), blocks)
	if err != nil {
		return "", err
	}
	p.logger.Info("posted recommendations to slack", "ts", ts, "business", b.Slug)
	return ts, nil
}

// post sends text as the notification fallback and blocks as the rendered
// message.
func (p *Poster) post(ctx context.Context, threadTS, text string, blocks []map[string]any) (string, error) {
	payload := map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks":  blocks,
	}
	if threadTS != "" {
		payload["thread_ts"] = threadTS
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}
	return slackResp.TS, nil
}

func formatDigest(b business.Business, a *analytics.Analysis) string {
	var sb strings.Builder
	m := a.Metrics

	fmt.Fprintf(&sb, "*%s* review digest\n", b.DisplayName)
	if m.TotalReviews == 0 {
		sb.WriteString("_No reviews yet._")
		return sb.String()
	}

	fmt.Fprintf(&sb, "Rating: %.2f/5 over %d reviews\n", m.AvgRating, m.TotalReviews)
	fmt.Fprintf(&sb, "Positive %d | Neutral %d | Negative %d\n", m.PositiveReviews, m.NeutralReviews, m.NegativeReviews)
	fmt.Fprintf(&sb, "Owner response rate: %.0f%%\n", m.ResponseRate*100)
	fmt.Fprintf(&sb, "Overall sentiment: %+.2f\n", a.Sentiment.Overall)

	if n := len(a.Trends.RatingTrend); n > 0 {
		last := a.Trends.RatingTrend[n-1]
		fmt.Fprintf(&sb, "Latest month %s: %.2f over %d reviews\n", last.Month, last.AvgRating, last.Count)
	}

	if len(a.Themes) > 0 {
		sb.WriteString("\n*Top themes*\n")
		for i, t := range a.Themes[:min(len(a.Themes), digestThemes)] {
			fmt.Fprintf(&sb, "%d. %s (%d, sentiment %+.2f)\n", i+1, t.Theme, t.Count, t.AverageSentiment)
		}
	}

	if len(a.StaffMentions) > 0 {
		sb.WriteString("\n*Staff mentioned*\n")
		for _, s := range a.StaffMentions[:min(len(a.StaffMentions), digestStaff)] {
			fmt.Fprintf(&sb, "• %s (%d, sentiment %+.2f)\n", s.Name, s.Count, s.AverageSentiment)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

func sectionBlock(text string) map[string]any {
	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": truncate(text, maxSectionText),
		},
	}
}

// truncate cuts s to at most limit characters, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}

func formatRecommendations(b business.Business, recs *recommend.Recommendations) string {
	return strings.Join(recommendationSections(b, recs), "\n\n")
}

// recommendationSections returns a header followed by one text per non-empty
// category.
func recommendationSections(b business.Business, recs *recommend.Recommendations) []string {
	parts := []string{fmt.Sprintf("*Recommendations for %s*", b.DisplayName)}

	categories := []struct {
		title string
		items []string
	}{
		{"Urgent actions", recs.UrgentActions},
		{"Growth strategies", recs.GrowthStrategies},
		{"Marketing ideas", recs.MarketingIdeas},
		{"Competitive positioning", recs.CompetitivePositioning},
		{"Future scenarios", recs.FutureScenarios},
	}
	for _, c := range categories {
		if len(c.items) == 0 {
			continue
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "*%s*", c.title)
		for _, item := range c.items {
			fmt.Fprintf(&sb, "\n• %s", item)
		}
		parts = append(parts, sb.String())
	}
	return parts
}
