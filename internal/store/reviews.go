package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/reviewlens/internal/analytics"
)

// FetchReviews reads every review in a business table, newest first. The
// table name is quoted, so names with spaces and punctuation are allowed.
// NULL columns come back as empty strings or zero stars.
func (s *Store) FetchReviews(ctx context.Context, table string) ([]analytics.Review, error) {
	query := fmt.Sprintf(`
		SELECT
			COALESCE("stars", 0)::int,
			COALESCE("name"::text, ''),
			COALESCE("text"::text, ''),
			COALESCE("textTranslated"::text, ''),
			COALESCE("publishedAtDate"::text, ''),
			COALESCE("reviewUrl"::text, ''),
			COALESCE("responseFromOwnerText"::text, ''),
			COALESCE("sentiment"::text, ''),
			COALESCE("staffMentioned"::text, ''),
			COALESCE("mainThemes"::text, '')
		FROM %s
		ORDER BY "publishedAtDate" DESC NULLS LAST`,
		pgx.Identifier{table}.Sanitize(),
	)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query reviews from %q: %w", table, err)
	}
	defer rows.Close()

	reviews := []analytics.Review{}
	for rows.Next() {
		var r analytics.Review
		var staff, themes string
		if err := rows.Scan(
			&r.Stars, &r.Name, &r.Text, &r.TextTranslated, &r.PublishedAtDate,
			&r.ReviewURL, &r.ResponseFromOwnerText, &r.Sentiment, &staff, &themes,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		r.StaffMentioned = analytics.ListField(staff)
		r.MainThemes = analytics.ListField(themes)
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}
