package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jjenkins/onthisday/internal/model"
)

const eventColumns = `id, title, description, month, day, year, category, approved, created_by, created_at`

// EventStore handles database operations for user-submitted events
type EventStore struct {
	db *sql.DB
}

// NewEventStore creates a new EventStore
func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// Add inserts a new event awaiting moderation. ID and CreatedAt are
// assigned when empty.
func (s *EventStore) Add(ctx context.Context, e *model.LocalEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO local_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.Title,
		e.Description,
		e.Month,
		e.Day,
		e.Year,
		e.Category,
		e.Approved,
		e.CreatedBy,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event %s: %w", e.ID, err)
	}

	return nil
}

// GetByID retrieves an event by id, or nil when it does not exist
func (s *EventStore) GetByID(ctx context.Context, id string) (*model.LocalEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM local_events WHERE id = $1`

	e, err := scanEvent(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}

	return e, nil
}

// ListApproved retrieves approved events for a date. Zero month or day matches any.
func (s *EventStore) ListApproved(ctx context.Context, month, day int) ([]model.LocalEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM local_events
		WHERE approved = TRUE
		  AND ($1 = 0 OR month = $1)
		  AND ($2 = 0 OR day = $2)
		ORDER BY year DESC, created_at
	`

	return s.list(ctx, query, month, day)
}

// ListPending retrieves events awaiting moderation, oldest first
func (s *EventStore) ListPending(ctx context.Context) ([]model.LocalEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM local_events
		WHERE approved = FALSE
		ORDER BY created_at
	`

	return s.list(ctx, query)
}

// ListAll retrieves every event regardless of moderation state
func (s *EventStore) ListAll(ctx context.Context) ([]model.LocalEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM local_events ORDER BY created_at`

	return s.list(ctx, query)
}

// Approve marks an event as approved
func (s *EventStore) Approve(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE local_events SET approved = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to approve event %s: %w", id, err)
	}
	return requireAffected(result, id)
}

// Deny removes an event
func (s *EventStore) Deny(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM local_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	return requireAffected(result, id)
}

// Update overwrites the editable fields of an event
func (s *EventStore) Update(ctx context.Context, e *model.LocalEvent) error {
	query := `
		UPDATE local_events
		SET title = $2, description = $3, month = $4, day = $5, year = $6, category = $7
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.Title,
		e.Description,
		e.Month,
		e.Day,
		e.Year,
		e.Category,
	)
	if err != nil {
		return fmt.Errorf("failed to update event %s: %w", e.ID, err)
	}
	return requireAffected(result, e.ID)
}

func (s *EventStore) list(ctx context.Context, query string, args ...any) ([]model.LocalEvent, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []model.LocalEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}

	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*model.LocalEvent, error) {
	var e model.LocalEvent
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.Month,
		&e.Day,
		&e.Year,
		&e.Category,
		&e.Approved,
		&e.CreatedBy,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func requireAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}
