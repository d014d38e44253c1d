package store

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         UUID PRIMARY KEY,
		username   TEXT NOT NULL UNIQUE,
		email      TEXT NOT NULL UNIQUE,
		password   TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id              UUID PRIMARY KEY,
		name            TEXT NOT NULL,
		quantity        DOUBLE PRECISION NOT NULL,
		unit            TEXT NOT NULL,
		expiration_date TIMESTAMPTZ NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id           UUID PRIMARY KEY,
		name         TEXT NOT NULL,
		due_date     TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		resources    TEXT[] NOT NULL DEFAULT '{}',
		is_completed BOOLEAN NOT NULL DEFAULT false,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS conversations (
		id         UUID PRIMARY KEY,
		user_id    UUID NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id              UUID PRIMARY KEY,
		conversation_id UUID NOT NULL REFERENCES conversations(id),
		sender          TEXT NOT NULL CHECK (sender IN ('user', 'ai')),
		body            TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS messages_conversation_idx
		ON messages (conversation_id, created_at)`,
}

// EnsureSchema creates missing tables. Statements are idempotent so this is
// safe to run on every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
