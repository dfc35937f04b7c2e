package model

import (
	"database/sql"
	"time"
)

// SuggestionStatus is the review state of an edit suggestion
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
)

// Valid reports whether s is a known status
func (s SuggestionStatus) Valid() bool {
	switch s {
	case SuggestionPending, SuggestionApproved, SuggestionRejected:
		return true
	default:
		return false
	}
}

// EventChanges holds the fields of a local event a suggestion wants to change.
// Nil fields are left untouched.
type EventChanges struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Month       *int    `json:"month,omitempty"`
	Day         *int    `json:"day,omitempty"`
	Year        *int    `json:"year,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// Empty reports whether no field is set
func (c EventChanges) Empty() bool {
	return c.Title == nil && c.Description == nil && c.Month == nil &&
		c.Day == nil && c.Year == nil && c.Category == nil
}

// Apply returns a copy of e with the changes applied
func (c EventChanges) Apply(e LocalEvent) LocalEvent {
	if c.Title != nil {
		e.Title = *c.Title
	}
	if c.Description != nil {
		e.Description = *c.Description
	}
	if c.Month != nil {
		e.Month = *c.Month
	}
	if c.Day != nil {
		e.Day = *c.Day
	}
	if c.Year != nil {
		e.Year = *c.Year
	}
	if c.Category != nil {
		e.Category = *c.Category
	}
	return e
}

// SnapshotOf captures every editable field of e
func SnapshotOf(e LocalEvent) EventChanges {
	return EventChanges{
		Title:       &e.Title,
		Description: &e.Description,
		Month:       &e.Month,
		Day:         &e.Day,
		Year:        &e.Year,
		Category:    &e.Category,
	}
}

// Suggestion represents a user-proposed edit to an existing local event
type Suggestion struct {
	ID         string           `json:"id"`
	EventID    string           `json:"event_id"`
	UserID     string           `json:"user_id"`
	Changes    EventChanges     `json:"suggested_changes"`
	Original   EventChanges     `json:"original_data"`
	Reason     string           `json:"reason"`
	Status     SuggestionStatus `json:"status"`
	AdminNotes string           `json:"admin_notes,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	ReviewedAt sql.NullTime     `json:"-"`
}

// ModerationStats summarises the local event store
type ModerationStats struct {
	TotalEvents      int            `json:"total_events"`
	ApprovedEvents   int            `json:"approved_events"`
	PendingEvents    int            `json:"pending_events"`
	PendingSuggests  int            `json:"pending_suggestions"`
	CategoryCounts   map[string]int `json:"category_counts"`
	OldestYear       int            `json:"oldest_year"`
	NewestYear       int            `json:"newest_year"`
	HasApprovedYears bool           `json:"has_approved_years"`
}
