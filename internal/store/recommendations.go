package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/reviewlens/internal/recommend"
)

// RecommendationRun is one stored generation for a business.
type RecommendationRun struct {
	ID              uuid.UUID                 `json:"id"`
	BusinessSlug    string                    `json:"businessSlug"`
	Provider        string                    `json:"provider"`
	Model           string                    `json:"model"`
	ReviewCount     int                       `json:"reviewCount"`
	AvgRating       float64                   `json:"avgRating"`
	Recommendations recommend.Recommendations `json:"recommendations"`
	CreatedAt       time.Time                 `json:"createdAt"`
}

// WriteRecommendationRun inserts a run and returns its ID.
func (s *Store) WriteRecommendationRun(ctx context.Context, run RecommendationRun) (uuid.UUID, error) {
	payload, err := json.Marshal(run.Recommendations)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal recommendations: %w", err)
	}

	id := run.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO recommendation_runs (id, business_slug, provider, model, review_count, avg_rating, recommendations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
		id, run.BusinessSlug, run.Provider, run.Model, run.ReviewCount, run.AvgRating, payload,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert recommendation run: %w", err)
	}
	return id, nil
}

// ListRecommendationRuns returns the most recent runs for a business.
func (s *Store) ListRecommendationRuns(ctx context.Context, slug string, limit int) ([]RecommendationRun, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, business_slug, provider, model, review_count, avg_rating, recommendations, created_at
		FROM recommendation_runs
		WHERE business_slug = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		slug, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recommendation runs: %w", err)
	}
	defer rows.Close()

	runs := []RecommendationRun{}
	for rows.Next() {
		var r RecommendationRun
		var payload []byte
		if err := rows.Scan(&r.ID, &r.BusinessSlug, &r.Provider, &r.Model, &r.ReviewCount, &r.AvgRating, &payload, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recommendation run: %w", err)
		}
		if err := json.Unmarshal(payload, &r.Recommendations); err != nil {
			return nil, fmt.Errorf("decode recommendations %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recommendation runs: %w", err)
	}
	return runs, nil
}
