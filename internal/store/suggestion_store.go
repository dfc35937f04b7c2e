package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jjenkins/onthisday/internal/model"
)

const suggestionColumns = `id, event_id, user_id, suggested_changes, original_data, reason,
		       status, admin_notes, created_at, reviewed_at`

// SuggestionStore handles database operations for edit suggestions
type SuggestionStore struct {
	db *sql.DB
}

// NewSuggestionStore creates a new SuggestionStore
func NewSuggestionStore(db *sql.DB) *SuggestionStore {
	return &SuggestionStore{db: db}
}

// Create inserts a pending suggestion
func (s *SuggestionStore) Create(ctx context.Context, sg *model.Suggestion) error {
	if sg.ID == "" {
		sg.ID = uuid.NewString()
	}
	if sg.CreatedAt.IsZero() {
		sg.CreatedAt = time.Now().UTC()
	}
	if sg.Status == "" {
		sg.Status = model.SuggestionPending
	}

	changes, err := json.Marshal(sg.Changes)
	if err != nil {
		return fmt.Errorf("failed to encode suggested changes: %w", err)
	}
	original, err := json.Marshal(sg.Original)
	if err != nil {
		return fmt.Errorf("failed to encode original data: %w", err)
	}

	query := `
		INSERT INTO suggestions (id, event_id, user_id, suggested_changes, original_data,
		                         reason, status, admin_notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = s.db.ExecContext(ctx, query,
		sg.ID,
		sg.EventID,
		sg.UserID,
		changes,
		original,
		sg.Reason,
		string(sg.Status),
		sg.AdminNotes,
		sg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert suggestion for event %s: %w", sg.EventID, err)
	}

	return nil
}

// GetByID retrieves a suggestion, or nil when it does not exist
func (s *SuggestionStore) GetByID(ctx context.Context, id string) (*model.Suggestion, error) {
	query := `SELECT ` + suggestionColumns + ` FROM suggestions WHERE id = $1`

	sg, err := scanSuggestion(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestion %s: %w", id, err)
	}

	return sg, nil
}

// ListByStatus retrieves suggestions, newest first. An empty status lists all.
func (s *SuggestionStore) ListByStatus(ctx context.Context, status model.SuggestionStatus) ([]model.Suggestion, error) {
	query := `
		SELECT ` + suggestionColumns + `
		FROM suggestions
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []model.Suggestion
	for rows.Next() {
		sg, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		suggestions = append(suggestions, *sg)
	}

	return suggestions, rows.Err()
}

// CountByStatus counts suggestions in the given state
func (s *SuggestionStore) CountByStatus(ctx context.Context, status model.SuggestionStatus) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM suggestions WHERE status = $1`, string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count suggestions: %w", err)
	}
	return count, nil
}

// Resolve records the review outcome of a pending suggestion. An approved
// suggestion applies its changes to the event in the same transaction.
func (s *SuggestionStore) Resolve(ctx context.Context, id string, status model.SuggestionStatus, notes string) (*model.Suggestion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + suggestionColumns + ` FROM suggestions WHERE id = $1 FOR UPDATE`
	sg, err := scanSuggestion(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("suggestion %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestion %s: %w", id, err)
	}
	if sg.Status != model.SuggestionPending {
		return nil, fmt.Errorf("suggestion %s is %s: %w", id, sg.Status, ErrAlreadyReviewed)
	}

	if status == model.SuggestionApproved {
		eventQuery := `SELECT ` + eventColumns + ` FROM local_events WHERE id = $1 FOR UPDATE`
		event, err := scanEvent(tx.QueryRowContext(ctx, eventQuery, sg.EventID))
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("event %s: %w", sg.EventID, ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get event %s: %w", sg.EventID, err)
		}

		updated := sg.Changes.Apply(*event)
		updateQuery := `
			UPDATE local_events
			SET title = $2, description = $3, month = $4, day = $5, year = $6, category = $7
			WHERE id = $1
		`
		_, err = tx.ExecContext(ctx, updateQuery,
			updated.ID,
			updated.Title,
			updated.Description,
			updated.Month,
			updated.Day,
			updated.Year,
			updated.Category,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to apply suggestion %s: %w", id, err)
		}
	}

	reviewedAt := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`UPDATE suggestions SET status = $2, admin_notes = $3, reviewed_at = $4 WHERE id = $1`,
		id, string(status), notes, reviewedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update suggestion %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	sg.Status = status
	sg.AdminNotes = notes
	sg.ReviewedAt = sql.NullTime{Time: reviewedAt, Valid: true}
	return sg, nil
}

func scanSuggestion(row rowScanner) (*model.Suggestion, error) {
	var (
		sg       model.Suggestion
		status   string
		changes  []byte
		original []byte
	)
	err := row.Scan(
		&sg.ID,
		&sg.EventID,
		&sg.UserID,
		&changes,
		&original,
		&sg.Reason,
		&status,
		&sg.AdminNotes,
		&sg.CreatedAt,
		&sg.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}

	sg.Status = model.SuggestionStatus(status)
	if err := json.Unmarshal(changes, &sg.Changes); err != nil {
		return nil, fmt.Errorf("failed to decode suggested changes: %w", err)
	}
	if err := json.Unmarshal(original, &sg.Original); err != nil {
		return nil, fmt.Errorf("failed to decode original data: %w", err)
	}
	return &sg, nil
}
