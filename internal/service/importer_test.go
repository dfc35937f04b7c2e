package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/onthisday/internal/model"
	"github.com/jjenkins/onthisday/internal/store"
)

const browserExport = `[
  {"id": "existing", "title": "Already here", "description": "Imported before.", "month": 7, "day": 20, "year": 1999, "category": "General", "approved": true, "created_by": "u1", "created_at": "2024-01-02T03:04:05Z"},
  {"id": "fresh", "title": "Town fair", "description": "The annual town fair opens.", "month": 7, "day": 20, "year": 2001, "category": "", "approved": true, "created_by": "u2", "created_at": "2024-02-03T04:05:06Z"},
  {"id": "broken", "title": "", "description": "No title.", "month": 7, "day": 20, "year": 2002, "category": "General", "approved": false, "created_by": "u3", "created_at": "2024-03-04T05:06:07Z"},
  {"id": "bad-month", "title": "Bad month", "description": "Month out of range.", "month": 14, "day": 1, "year": 2003, "category": "General", "approved": false, "created_by": "u4", "created_at": "2024-03-04T05:06:07Z"}
]`

func TestImport(t *testing.T) {
	ctx := context.Background()
	events := store.NewMemoryEventStore(model.LocalEvent{
		ID: "existing", Title: "Already here", Description: "Imported before.", Month: 7, Day: 20, Year: 1999, Category: model.GeneralCategory,
	})
	importer := NewImporter(events, nil, nil)

	stats, err := importer.Import(ctx, strings.NewReader(browserExport), false)
	require.NoError(t, err)

	assert.Equal(t, &ImportStats{Total: 4, Imported: 1, Approved: 0, Skipped: 1, Failed: 2}, stats)

	fresh, err := events.GetByID(ctx, "fresh")
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.False(t, fresh.Approved)
	assert.Equal(t, model.GeneralCategory, fresh.Category)
	assert.Equal(t, "u2", fresh.CreatedBy)
	assert.Equal(t, 2024, fresh.CreatedAt.Year())
}

func TestImportKeepApproval(t *testing.T) {
	ctx := context.Background()
	events := store.NewMemoryEventStore()

	stats, err := NewImporter(events, nil, nil).Import(ctx, strings.NewReader(browserExport), true)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Imported)
	assert.Equal(t, 2, stats.Approved)

	approved, err := events.ListApproved(ctx, 7, 20)
	require.NoError(t, err)
	assert.Len(t, approved, 2)
}

func TestImportInvalidJSON(t *testing.T) {
	_, err := NewImporter(store.NewMemoryEventStore(), nil, nil).Import(context.Background(), strings.NewReader(`{"not": "an array"}`), false)
	assert.Error(t, err)
}

func TestImportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := NewImporter(store.NewMemoryEventStore(), nil, nil).Import(ctx, strings.NewReader(browserExport), false)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, stats)
	assert.Zero(t, stats.Imported)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	NewImporter(store.NewMemoryEventStore(), nil, nil).PrintSummary(&buf, &ImportStats{Total: 4, Imported: 1, Skipped: 2, Failed: 1})

	out := buf.String()
	assert.Contains(t, out, "=== Import Summary ===")
	assert.Contains(t, out, "Imported:        1")
	assert.Contains(t, out, "Success rate:    50.0%")
}
