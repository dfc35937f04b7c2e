package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jjenkins/onthisday/internal/model"
)

// ErrInvalidEvent is returned for submissions that fail validation
var ErrInvalidEvent = errors.New("invalid event")

// ErrInvalidSuggestion is returned for suggestions that fail validation
var ErrInvalidSuggestion = errors.New("invalid suggestion")

// EventStore is the moderation store for user-submitted events
type EventStore interface {
	EventSource
	Add(ctx context.Context, e *model.LocalEvent) error
	GetByID(ctx context.Context, id string) (*model.LocalEvent, error)
	ListPending(ctx context.Context) ([]model.LocalEvent, error)
	ListAll(ctx context.Context) ([]model.LocalEvent, error)
	Approve(ctx context.Context, id string) error
	Deny(ctx context.Context, id string) error
	Update(ctx context.Context, e *model.LocalEvent) error
}

// SuggestionStore persists edit suggestions
type SuggestionStore interface {
	Create(ctx context.Context, sg *model.Suggestion) error
	GetByID(ctx context.Context, id string) (*model.Suggestion, error)
	ListByStatus(ctx context.Context, status model.SuggestionStatus) ([]model.Suggestion, error)
	CountByStatus(ctx context.Context, status model.SuggestionStatus) (int, error)
	Resolve(ctx context.Context, id string, status model.SuggestionStatus, notes string) (*model.Suggestion, error)
}

// SubmitEventInput is what a signed-in user fills in to add an event
type SubmitEventInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Month       int    `json:"month"`
	Day         int    `json:"day"`
	Year        int    `json:"year"`
	Category    string `json:"category"`
	CreatedBy   string `json:"created_by"`
}

// SubmitSuggestionInput proposes changes to an existing event
type SubmitSuggestionInput struct {
	EventID string             `json:"event_id"`
	UserID  string             `json:"user_id"`
	Changes model.EventChanges `json:"suggested_changes"`
	Reason  string             `json:"reason"`
}

// ModerationService owns the submit/approve/deny lifecycle of local events
// and their edit suggestions
type ModerationService struct {
	events      EventStore
	suggestions SuggestionStore
	categorizer *Categorizer
	logger      *slog.Logger
}

// NewModerationService creates a ModerationService
func NewModerationService(events EventStore, suggestions SuggestionStore, categorizer *Categorizer, logger *slog.Logger) *ModerationService {
	if categorizer == nil {
		categorizer = DefaultCategorizer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ModerationService{
		events:      events,
		suggestions: suggestions,
		categorizer: categorizer,
		logger:      logger,
	}
}

// Submit validates and stores a new event awaiting approval
func (m *ModerationService) Submit(ctx context.Context, in SubmitEventInput) (*model.LocalEvent, error) {
	event := model.LocalEvent{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Month:       in.Month,
		Day:         in.Day,
		Year:        in.Year,
		Category:    strings.TrimSpace(in.Category),
		CreatedBy:   in.CreatedBy,
	}
	if event.Category == "" {
		event.Category = model.GeneralCategory
	}

	if err := validateEvent(event, m.categorizer); err != nil {
		return nil, err
	}

	if err := m.events.Add(ctx, &event); err != nil {
		return nil, fmt.Errorf("failed to submit event: %w", err)
	}

	m.logger.Info("event submitted for review", "id", event.ID, "created_by", event.CreatedBy)
	return &event, nil
}

// Pending lists events awaiting approval
func (m *ModerationService) Pending(ctx context.Context) ([]model.LocalEvent, error) {
	return m.events.ListPending(ctx)
}

// Approve makes an event visible on the timeline
func (m *ModerationService) Approve(ctx context.Context, id string) error {
	if err := m.events.Approve(ctx, id); err != nil {
		return err
	}
	m.logger.Info("event approved", "id", id)
	return nil
}

// Deny discards a submitted event
func (m *ModerationService) Deny(ctx context.Context, id string) error {
	if err := m.events.Deny(ctx, id); err != nil {
		return err
	}
	m.logger.Info("event denied", "id", id)
	return nil
}

// Suggest records a proposed edit to an existing event together with a
// snapshot of the event as it is now
func (m *ModerationService) Suggest(ctx context.Context, in SubmitSuggestionInput) (*model.Suggestion, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, fmt.Errorf("%w: a reason for the change is required", ErrInvalidSuggestion)
	}
	if in.Changes.Empty() {
		return nil, fmt.Errorf("%w: no changes suggested", ErrInvalidSuggestion)
	}

	event, err := m.events.GetByID(ctx, in.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event %s: %w", in.EventID, err)
	}
	if event == nil {
		return nil, fmt.Errorf("%w: event %s does not exist", ErrInvalidSuggestion, in.EventID)
	}

	if err := validateEvent(in.Changes.Apply(*event), m.categorizer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSuggestion, err)
	}

	sg := &model.Suggestion{
		EventID:  in.EventID,
		UserID:   in.UserID,
		Changes:  in.Changes,
		Original: model.SnapshotOf(*event),
		Reason:   strings.TrimSpace(in.Reason),
		Status:   model.SuggestionPending,
	}
	if err := m.suggestions.Create(ctx, sg); err != nil {
		return nil, fmt.Errorf("failed to submit suggestion: %w", err)
	}

	m.logger.Info("suggestion submitted", "id", sg.ID, "event_id", sg.EventID)
	return sg, nil
}

// Suggestions lists suggestions in a state; an empty status lists all
func (m *ModerationService) Suggestions(ctx context.Context, status model.SuggestionStatus) ([]model.Suggestion, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidSuggestion, status)
	}
	return m.suggestions.ListByStatus(ctx, status)
}

// ReviewSuggestion approves or rejects a pending suggestion
func (m *ModerationService) ReviewSuggestion(ctx context.Context, id string, approve bool, notes string) (*model.Suggestion, error) {
	status := model.SuggestionRejected
	if approve {
		status = model.SuggestionApproved
	}

	sg, err := m.suggestions.Resolve(ctx, id, status, strings.TrimSpace(notes))
	if err != nil {
		return nil, err
	}

	m.logger.Info("suggestion reviewed", "id", id, "status", sg.Status)
	return sg, nil
}

func validateEvent(e model.LocalEvent, categorizer *Categorizer) error {
	switch {
	case strings.TrimSpace(e.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	case strings.TrimSpace(e.Description) == "":
		return fmt.Errorf("%w: description is required", ErrInvalidEvent)
	case e.Month < 1 || e.Month > 12:
		return fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidEvent)
	case e.Day < 1 || e.Day > 31:
		return fmt.Errorf("%w: day must be between 1 and 31", ErrInvalidEvent)
	case !categorizer.Known(e.Category):
		return fmt.Errorf("%w: unknown category %q", ErrInvalidEvent, e.Category)
	}
	return nil
}
