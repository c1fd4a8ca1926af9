package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	cfg.MaxConns = 25
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// RunMigrations applies the schema. Statements are idempotent so the
// call is safe on every startup.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		`DO $$ BEGIN
			CREATE TYPE match_status AS ENUM ('scheduled', 'live', 'finished');
		EXCEPTION WHEN duplicate_object THEN NULL;
		END $$`,
		`CREATE TABLE IF NOT EXISTS matches (
			id BIGSERIAL PRIMARY KEY,
			sport TEXT NOT NULL,
			home_team TEXT NOT NULL,
			away_team TEXT NOT NULL,
			status match_status NOT NULL DEFAULT 'scheduled',
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ NOT NULL,
			home_score INTEGER NOT NULL DEFAULT 0,
			away_score INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT matches_time_order CHECK (end_time > start_time)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status)`,
		`CREATE TABLE IF NOT EXISTS commentary (
			id BIGSERIAL PRIMARY KEY,
			match_id BIGINT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			minute INTEGER NOT NULL,
			sequence INTEGER NOT NULL,
			period INTEGER NOT NULL,
			event_type TEXT NOT NULL,
			actor TEXT,
			team TEXT,
			message TEXT NOT NULL,
			metadata JSONB,
			tags TEXT[],
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_commentary_match_id ON commentary(match_id)`,
	}

	for _, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	slog.Info("Database migrations completed")
	return nil
}
