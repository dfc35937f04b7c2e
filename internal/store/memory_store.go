package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jjenkins/onthisday/internal/model"
)

// MemoryEventStore keeps events in process memory. It backs the server when
// no database is configured and is used by tests.
type MemoryEventStore struct {
	mu     sync.RWMutex
	events []model.LocalEvent
}

// NewMemoryEventStore creates a store seeded with events
func NewMemoryEventStore(events ...model.LocalEvent) *MemoryEventStore {
	return &MemoryEventStore{events: append([]model.LocalEvent(nil), events...)}
}

// Add inserts a new event
func (s *MemoryEventStore) Add(_ context.Context, e *model.LocalEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.events {
		if existing.ID == e.ID {
			return fmt.Errorf("failed to insert event %s: duplicate id", e.ID)
		}
	}
	s.events = append(s.events, *e)
	return nil
}

// GetByID retrieves an event by id, or nil when it does not exist
func (s *MemoryEventStore) GetByID(_ context.Context, id string) (*model.LocalEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		e := s.events[i]
		return &e, nil
	}
	return nil, nil
}

// ListApproved retrieves approved events for a date. Zero month or day matches any.
func (s *MemoryEventStore) ListApproved(_ context.Context, month, day int) ([]model.LocalEvent, error) {
	events := s.filter(func(e model.LocalEvent) bool {
		return e.Approved && (month == 0 || e.Month == month) && (day == 0 || e.Day == day)
	})
	sort.SliceStable(events, func(i, j int) bool { return events[i].Year > events[j].Year })
	return events, nil
}

// ListPending retrieves events awaiting moderation, oldest first
func (s *MemoryEventStore) ListPending(_ context.Context) ([]model.LocalEvent, error) {
	events := s.filter(func(e model.LocalEvent) bool { return !e.Approved })
	sort.SliceStable(events, func(i, j int) bool { return events[i].CreatedAt.Before(events[j].CreatedAt) })
	return events, nil
}

// ListAll retrieves every event
func (s *MemoryEventStore) ListAll(_ context.Context) ([]model.LocalEvent, error) {
	return s.filter(func(model.LocalEvent) bool { return true }), nil
}

// Approve marks an event as approved
func (s *MemoryEventStore) Approve(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	s.events[i].Approved = true
	return nil
}

// Deny removes an event
func (s *MemoryEventStore) Deny(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	s.events = append(s.events[:i], s.events[i+1:]...)
	return nil
}

// Update overwrites the editable fields of an event
func (s *MemoryEventStore) Update(_ context.Context, e *model.LocalEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(e.ID)
	if i < 0 {
		return fmt.Errorf("%s: %w", e.ID, ErrNotFound)
	}
	s.events[i] = mergeEditable(s.events[i], *e)
	return nil
}

func (s *MemoryEventStore) filter(pred func(model.LocalEvent) bool) []model.LocalEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.LocalEvent
	for _, e := range s.events {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// indexOf must be called with the lock held
func (s *MemoryEventStore) indexOf(id string) int {
	for i, e := range s.events {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func mergeEditable(dst, src model.LocalEvent) model.LocalEvent {
	dst.Title = src.Title
	dst.Description = src.Description
	dst.Month = src.Month
	dst.Day = src.Day
	dst.Year = src.Year
	dst.Category = src.Category
	return dst
}

// MemorySuggestionStore keeps suggestions in process memory and applies
// approved changes to a MemoryEventStore.
type MemorySuggestionStore struct {
	mu          sync.Mutex
	events      *MemoryEventStore
	suggestions []model.Suggestion
}

// NewMemorySuggestionStore creates a suggestion store bound to events
func NewMemorySuggestionStore(events *MemoryEventStore) *MemorySuggestionStore {
	return &MemorySuggestionStore{events: events}
}

// Create inserts a pending suggestion
func (s *MemorySuggestionStore) Create(_ context.Context, sg *model.Suggestion) error {
	if sg.ID == "" {
		sg.ID = uuid.NewString()
	}
	if sg.CreatedAt.IsZero() {
		sg.CreatedAt = time.Now().UTC()
	}
	if sg.Status == "" {
		sg.Status = model.SuggestionPending
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions = append(s.suggestions, *sg)
	return nil
}

// GetByID retrieves a suggestion, or nil when it does not exist
func (s *MemorySuggestionStore) GetByID(_ context.Context, id string) (*model.Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sg := range s.suggestions {
		if sg.ID == id {
			found := sg
			return &found, nil
		}
	}
	return nil, nil
}

// ListByStatus retrieves suggestions, newest first. An empty status lists all.
func (s *MemorySuggestionStore) ListByStatus(_ context.Context, status model.SuggestionStatus) ([]model.Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Suggestion
	for _, sg := range s.suggestions {
		if status == "" || sg.Status == status {
			out = append(out, sg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// CountByStatus counts suggestions in the given state
func (s *MemorySuggestionStore) CountByStatus(ctx context.Context, status model.SuggestionStatus) (int, error) {
	list, err := s.ListByStatus(ctx, status)
	return len(list), err
}

// Resolve records the review outcome of a pending suggestion, applying the
// changes to the event when approved
func (s *MemorySuggestionStore) Resolve(ctx context.Context, id string, status model.SuggestionStatus, notes string) (*model.Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, sg := range s.suggestions {
		if sg.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("suggestion %s: %w", id, ErrNotFound)
	}

	sg := &s.suggestions[idx]
	if sg.Status != model.SuggestionPending {
		return nil, fmt.Errorf("suggestion %s is %s: %w", id, sg.Status, ErrAlreadyReviewed)
	}

	if status == model.SuggestionApproved {
		event, err := s.events.GetByID(ctx, sg.EventID)
		if err != nil {
			return nil, err
		}
		if event == nil {
			return nil, fmt.Errorf("event %s: %w", sg.EventID, ErrNotFound)
		}
		updated := sg.Changes.Apply(*event)
		if err := s.events.Update(ctx, &updated); err != nil {
			return nil, fmt.Errorf("failed to apply suggestion %s: %w", id, err)
		}
	}

	sg.Status = status
	sg.AdminNotes = notes
	sg.ReviewedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}

	resolved := *sg
	return &resolved, nil
}
