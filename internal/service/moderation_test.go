package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/onthisday/internal/model"
	"github.com/jjenkins/onthisday/internal/store"
)

func newModeration(events ...model.LocalEvent) (*ModerationService, *store.MemoryEventStore, *store.MemorySuggestionStore) {
	eventStore := store.NewMemoryEventStore(events...)
	suggestionStore := store.NewMemorySuggestionStore(eventStore)
	return NewModerationService(eventStore, suggestionStore, nil, nil), eventStore, suggestionStore
}

func validInput() SubmitEventInput {
	return SubmitEventInput{
		Title:       "  Town fair opens  ",
		Description: "The first annual town fair opens.",
		Month:       7,
		Day:         20,
		Year:        2001,
		CreatedBy:   "user-1",
	}
}

func TestSubmit(t *testing.T) {
	m, events, _ := newModeration()
	ctx := context.Background()

	event, err := m.Submit(ctx, validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "Town fair opens", event.Title)
	assert.Equal(t, model.GeneralCategory, event.Category)
	assert.False(t, event.Approved)
	assert.False(t, event.CreatedAt.IsZero())

	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, event.ID, pending[0].ID)

	approved, err := events.ListApproved(ctx, 7, 20)
	require.NoError(t, err)
	assert.Empty(t, approved)
}

func TestSubmitValidation(t *testing.T) {
	m, _, _ := newModeration()

	tests := []struct {
		name   string
		modify func(*SubmitEventInput)
	}{
		{"missing title", func(in *SubmitEventInput) { in.Title = "   " }},
		{"missing description", func(in *SubmitEventInput) { in.Description = "" }},
		{"month too small", func(in *SubmitEventInput) { in.Month = 0 }},
		{"month too large", func(in *SubmitEventInput) { in.Month = 13 }},
		{"day too small", func(in *SubmitEventInput) { in.Day = 0 }},
		{"day too large", func(in *SubmitEventInput) { in.Day = 32 }},
		{"unknown category", func(in *SubmitEventInput) { in.Category = "Sports" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.modify(&in)
			_, err := m.Submit(context.Background(), in)
			assert.ErrorIs(t, err, ErrInvalidEvent)
		})
	}
}

func TestApproveAndDeny(t *testing.T) {
	m, events, _ := newModeration()
	ctx := context.Background()

	keep, err := m.Submit(ctx, validInput())
	require.NoError(t, err)
	drop, err := m.Submit(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, m.Approve(ctx, keep.ID))
	require.NoError(t, m.Deny(ctx, drop.ID))

	approved, err := events.ListApproved(ctx, 7, 20)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, keep.ID, approved[0].ID)

	gone, err := events.GetByID(ctx, drop.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	assert.ErrorIs(t, m.Approve(ctx, "missing"), store.ErrNotFound)
	assert.ErrorIs(t, m.Deny(ctx, drop.ID), store.ErrNotFound)
}

func seededEvent() model.LocalEvent {
	return model.LocalEvent{
		ID: "event-1", Title: "Town fair", Description: "The annual town fair opens.",
		Month: 7, Day: 20, Year: 2001, Category: model.GeneralCategory, Approved: true,
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestSuggest(t *testing.T) {
	m, _, _ := newModeration(seededEvent())
	ctx := context.Background()

	sg, err := m.Suggest(ctx, SubmitSuggestionInput{
		EventID: "event-1",
		UserID:  "user-2",
		Changes: model.EventChanges{Year: intPtr(2002)},
		Reason:  "  the fair started a year later  ",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, sg.ID)
	assert.Equal(t, model.SuggestionPending, sg.Status)
	assert.Equal(t, "the fair started a year later", sg.Reason)
	require.NotNil(t, sg.Original.Year)
	assert.Equal(t, 2001, *sg.Original.Year)
	require.NotNil(t, sg.Original.Title)
	assert.Equal(t, "Town fair", *sg.Original.Title)

	pending, err := m.Suggestions(ctx, model.SuggestionPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSuggestValidation(t *testing.T) {
	m, _, _ := newModeration(seededEvent())
	ctx := context.Background()

	tests := []struct {
		name string
		in   SubmitSuggestionInput
	}{
		{"missing reason", SubmitSuggestionInput{EventID: "event-1", Changes: model.EventChanges{Year: intPtr(2002)}}},
		{"no changes", SubmitSuggestionInput{EventID: "event-1", Reason: "why not"}},
		{"unknown event", SubmitSuggestionInput{EventID: "nope", Changes: model.EventChanges{Year: intPtr(2002)}, Reason: "typo"}},
		{"invalid result", SubmitSuggestionInput{EventID: "event-1", Changes: model.EventChanges{Month: intPtr(13)}, Reason: "typo"}},
		{"blank title", SubmitSuggestionInput{EventID: "event-1", Changes: model.EventChanges{Title: strPtr(" ")}, Reason: "typo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Suggest(ctx, tt.in)
			assert.ErrorIs(t, err, ErrInvalidSuggestion)
		})
	}

	_, err := m.Suggestions(ctx, "archived")
	assert.ErrorIs(t, err, ErrInvalidSuggestion)
}

func TestReviewSuggestion(t *testing.T) {
	ctx := context.Background()

	t.Run("approve applies changes", func(t *testing.T) {
		m, events, _ := newModeration(seededEvent())
		sg, err := m.Suggest(ctx, SubmitSuggestionInput{
			EventID: "event-1",
			Changes: model.EventChanges{Title: strPtr("County fair"), Category: strPtr("Economics")},
			Reason:  "renamed",
		})
		require.NoError(t, err)

		reviewed, err := m.ReviewSuggestion(ctx, sg.ID, true, " looks right ")
		require.NoError(t, err)
		assert.Equal(t, model.SuggestionApproved, reviewed.Status)
		assert.Equal(t, "looks right", reviewed.AdminNotes)
		assert.True(t, reviewed.ReviewedAt.Valid)

		event, err := events.GetByID(ctx, "event-1")
		require.NoError(t, err)
		assert.Equal(t, "County fair", event.Title)
		assert.Equal(t, "Economics", event.Category)
		assert.Equal(t, 2001, event.Year)
		assert.True(t, event.Approved)

		_, err = m.ReviewSuggestion(ctx, sg.ID, false, "")
		assert.ErrorIs(t, err, store.ErrAlreadyReviewed)
	})

	t.Run("reject leaves the event", func(t *testing.T) {
		m, events, _ := newModeration(seededEvent())
		sg, err := m.Suggest(ctx, SubmitSuggestionInput{
			EventID: "event-1",
			Changes: model.EventChanges{Title: strPtr("Wrong title")},
			Reason:  "vandalism",
		})
		require.NoError(t, err)

		reviewed, err := m.ReviewSuggestion(ctx, sg.ID, false, "")
		require.NoError(t, err)
		assert.Equal(t, model.SuggestionRejected, reviewed.Status)

		event, err := events.GetByID(ctx, "event-1")
		require.NoError(t, err)
		assert.Equal(t, "Town fair", event.Title)
	})

	t.Run("unknown suggestion", func(t *testing.T) {
		m, _, _ := newModeration(seededEvent())
		_, err := m.ReviewSuggestion(ctx, "missing", true, "")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
