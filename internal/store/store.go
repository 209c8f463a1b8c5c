package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the tables this service owns. Review tables belong to
// the scraper pipeline and are only read.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS recommendation_runs (
			id              uuid PRIMARY KEY,
			business_slug   text NOT NULL,
			provider        text NOT NULL,
			model           text NOT NULL DEFAULT '',
			review_count    integer NOT NULL DEFAULT 0,
			avg_rating      double precision NOT NULL DEFAULT 0,
			recommendations jsonb NOT NULL,
			created_at      timestamptz NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS recommendation_runs_slug_created_idx
			ON recommendation_runs (business_slug, created_at DESC);`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
