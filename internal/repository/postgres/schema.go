package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          BIGSERIAL PRIMARY KEY,
		username    TEXT NOT NULL UNIQUE,
		password    TEXT NOT NULL,
		is_japanese BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS photos (
		id          BIGSERIAL PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT,
		image_url   TEXT NOT NULL,
		user_id     BIGINT NOT NULL REFERENCES users(id),
		likes       BIGINT NOT NULL DEFAULT 0 CHECK (likes >= 0),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_photos_ranking ON photos (likes DESC, id ASC)`,
	`CREATE TABLE IF NOT EXISTS words (
		id          BIGSERIAL PRIMARY KEY,
		original    VARCHAR(140) NOT NULL,
		translation VARCHAR(140),
		description TEXT NOT NULL,
		user_id     BIGINT NOT NULL REFERENCES users(id),
		likes       BIGINT NOT NULL DEFAULT 0 CHECK (likes >= 0),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_words_ranking ON words (likes DESC, id ASC)`,
	`CREATE TABLE IF NOT EXISTS experiences (
		id          BIGSERIAL PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		image_url   TEXT NOT NULL,
		location    TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the tables if they do not exist
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", mapError(err))
		}
	}
	return nil
}
