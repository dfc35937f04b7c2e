package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// ErrNotFound is returned when a mutation targets a record that does not exist
var ErrNotFound = errors.New("record not found")

// ErrAlreadyReviewed is returned when resolving a suggestion that is no longer pending
var ErrAlreadyReviewed = errors.New("suggestion already reviewed")

// NewDB opens a PostgreSQL connection pool and verifies it is reachable
func NewDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// schema creates the tables this service reads and writes when missing
const schema = `
CREATE TABLE IF NOT EXISTS local_events (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL,
	month       INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
	day         INTEGER NOT NULL CHECK (day BETWEEN 1 AND 31),
	year        INTEGER NOT NULL,
	category    TEXT NOT NULL DEFAULT 'General',
	approved    BOOLEAN NOT NULL DEFAULT FALSE,
	created_by  TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_local_events_date ON local_events (month, day) WHERE approved;

CREATE TABLE IF NOT EXISTS suggestions (
	id                TEXT PRIMARY KEY,
	event_id          TEXT NOT NULL REFERENCES local_events (id) ON DELETE CASCADE,
	user_id           TEXT NOT NULL DEFAULT '',
	suggested_changes JSONB NOT NULL,
	original_data     JSONB NOT NULL,
	reason            TEXT NOT NULL,
	status            TEXT NOT NULL DEFAULT 'pending',
	admin_notes       TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	reviewed_at       TIMESTAMPTZ
);
`

// EnsureSchema creates missing tables. Existing tables are left untouched.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
