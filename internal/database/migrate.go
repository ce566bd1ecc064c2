package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS match_predictions (
		mid              TEXT PRIMARY KEY,
		home_team        TEXT NOT NULL,
		away_team        TEXT NOT NULL,
		match_date       TIMESTAMPTZ NOT NULL,
		competition_name TEXT NOT NULL DEFAULT '',
		prediction       JSONB NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_match_predictions_date ON match_predictions (match_date)`,
	`CREATE INDEX IF NOT EXISTS idx_match_predictions_competition ON match_predictions (competition_name)`,
}

// Migrate creates the tables the services need. Statements are idempotent.
func Migrate(ctx context.Context, db Service) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
