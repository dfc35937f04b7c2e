package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/onthisday/internal/model"
)

func TestMemoryEventStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryEventStore(
		model.LocalEvent{ID: "old", Title: "Old", Month: 7, Day: 20, Year: 1900, Approved: true},
		model.LocalEvent{ID: "new", Title: "New", Month: 7, Day: 20, Year: 2000, Approved: true},
		model.LocalEvent{ID: "other-day", Title: "Other", Month: 7, Day: 21, Year: 1950, Approved: true},
	)

	t.Run("list approved filters and sorts newest first", func(t *testing.T) {
		list, err := s.ListApproved(ctx, 7, 20)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "new", list[0].ID)
		assert.Equal(t, "old", list[1].ID)

		wholeMonth, err := s.ListApproved(ctx, 7, 0)
		require.NoError(t, err)
		assert.Len(t, wholeMonth, 3)
	})

	t.Run("add assigns id and rejects duplicates", func(t *testing.T) {
		e := &model.LocalEvent{Title: "Added", Month: 1, Day: 1, Year: 2020}
		require.NoError(t, s.Add(ctx, e))
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.CreatedAt.IsZero())

		assert.Error(t, s.Add(ctx, &model.LocalEvent{ID: e.ID}))

		pending, err := s.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, e.ID, pending[0].ID)

		require.NoError(t, s.Approve(ctx, e.ID))
		pending, err = s.ListPending(ctx)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("get returns a copy", func(t *testing.T) {
		e, err := s.GetByID(ctx, "old")
		require.NoError(t, err)
		e.Title = "changed"

		again, err := s.GetByID(ctx, "old")
		require.NoError(t, err)
		assert.Equal(t, "Old", again.Title)

		missing, err := s.GetByID(ctx, "missing")
		assert.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("update keeps moderation state", func(t *testing.T) {
		require.NoError(t, s.Update(ctx, &model.LocalEvent{ID: "old", Title: "Renamed", Month: 7, Day: 20, Year: 1901}))

		e, err := s.GetByID(ctx, "old")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", e.Title)
		assert.Equal(t, 1901, e.Year)
		assert.True(t, e.Approved)
	})

	t.Run("missing ids", func(t *testing.T) {
		assert.ErrorIs(t, s.Approve(ctx, "missing"), ErrNotFound)
		assert.ErrorIs(t, s.Deny(ctx, "missing"), ErrNotFound)
		assert.ErrorIs(t, s.Update(ctx, &model.LocalEvent{ID: "missing"}), ErrNotFound)
	})

	t.Run("deny removes", func(t *testing.T) {
		require.NoError(t, s.Deny(ctx, "other-day"))
		e, err := s.GetByID(ctx, "other-day")
		require.NoError(t, err)
		assert.Nil(t, e)
	})
}

func TestMemorySuggestionStore(t *testing.T) {
	ctx := context.Background()
	events := NewMemoryEventStore(model.LocalEvent{ID: "event-1", Title: "Town fair", Month: 7, Day: 20, Year: 2001, Approved: true})
	s := NewMemorySuggestionStore(events)

	title := "County fair"
	first := &model.Suggestion{EventID: "event-1", Changes: model.EventChanges{Title: &title}, Reason: "renamed", CreatedAt: time.Now().Add(-time.Hour)}
	second := &model.Suggestion{EventID: "event-1", Changes: model.EventChanges{Title: &title}, Reason: "again"}
	require.NoError(t, s.Create(ctx, first))
	require.NoError(t, s.Create(ctx, second))

	list, err := s.ListByStatus(ctx, model.SuggestionPending)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	resolved, err := s.Resolve(ctx, first.ID, model.SuggestionApproved, "ok")
	require.NoError(t, err)
	assert.Equal(t, model.SuggestionApproved, resolved.Status)
	assert.True(t, resolved.ReviewedAt.Valid)

	e, err := events.GetByID(ctx, "event-1")
	require.NoError(t, err)
	assert.Equal(t, "County fair", e.Title)

	_, err = s.Resolve(ctx, first.ID, model.SuggestionRejected, "")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	_, err = s.Resolve(ctx, "missing", model.SuggestionRejected, "")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.CountByStatus(ctx, model.SuggestionPending)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := s.ListByStatus(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
