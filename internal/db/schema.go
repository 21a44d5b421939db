package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	phone      TEXT NOT NULL,
	country    TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS users_phone_country_idx ON users (phone, country);

CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	phone      TEXT NOT NULL,
	country    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS contacts (
	id              TEXT PRIMARY KEY,
	first_name      TEXT NOT NULL,
	last_name       TEXT NOT NULL DEFAULT '',
	full_name       TEXT NOT NULL,
	phone           TEXT NOT NULL,
	country_code    TEXT NOT NULL,
	avatar_initials TEXT NOT NULL DEFAULT '',
	avatar_color    TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	chat_id    TEXT NOT NULL,
	sender_id  TEXT NOT NULL,
	content    TEXT NOT NULL DEFAULT '',
	audio_url  TEXT,
	duration   INTEGER NOT NULL DEFAULT 0,
	kind       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS messages_chat_created_idx ON messages (chat_id, created_at);
`

// EnsureSchema crea las tablas si no existen.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
