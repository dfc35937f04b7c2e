package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jjenkins/onthisday/internal/model"
)

// ImportStats tracks import statistics
type ImportStats struct {
	Total    int
	Imported int
	Approved int
	Skipped  int
	Failed   int
}

// Importer loads a browser export of locally added events into the store
type Importer struct {
	store       EventStore
	categorizer *Categorizer
	logger      *slog.Logger
}

// NewImporter creates a new Importer
func NewImporter(store EventStore, categorizer *Categorizer, logger *slog.Logger) *Importer {
	if categorizer == nil {
		categorizer = DefaultCategorizer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: store, categorizer: categorizer, logger: logger}
}

// Import reads a JSON array of local events. Records whose id already exists
// are skipped, invalid records are counted as failed. Unless keepApproval is
// set every imported event lands in the moderation queue.
func (i *Importer) Import(ctx context.Context, r io.Reader, keepApproval bool) (*ImportStats, error) {
	var events []model.LocalEvent
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}

	stats := &ImportStats{Total: len(events)}
	i.logger.Info("importing local events", "count", stats.Total)

	for idx, e := range events {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		progress := fmt.Sprintf("%d/%d", idx+1, stats.Total)

		e.Title = strings.TrimSpace(e.Title)
		e.Description = strings.TrimSpace(e.Description)
		if e.Category == "" {
			e.Category = model.GeneralCategory
		}
		if !keepApproval {
			e.Approved = false
		}

		if e.ID != "" {
			existing, err := i.store.GetByID(ctx, e.ID)
			if err != nil {
				return stats, fmt.Errorf("failed to check event %s: %w", e.ID, err)
			}
			if existing != nil {
				i.logger.Debug("skipping existing event", "progress", progress, "id", e.ID)
				stats.Skipped++
				continue
			}
		}

		if err := validateEvent(e, i.categorizer); err != nil {
			i.logger.Warn("rejected event", "progress", progress, "id", e.ID, "error", err)
			stats.Failed++
			continue
		}

		if err := i.store.Add(ctx, &e); err != nil {
			i.logger.Error("failed to import event", "progress", progress, "id", e.ID, "error", err)
			stats.Failed++
			continue
		}

		stats.Imported++
		if e.Approved {
			stats.Approved++
		}
	}

	return stats, nil
}

// PrintSummary writes the import statistics
func (i *Importer) PrintSummary(w io.Writer, stats *ImportStats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Import Summary ===")
	fmt.Fprintf(w, "Total events:    %d\n", stats.Total)
	fmt.Fprintf(w, "Imported:        %d\n", stats.Imported)
	fmt.Fprintf(w, "Approved:        %d\n", stats.Approved)
	fmt.Fprintf(w, "Skipped:         %d (already present)\n", stats.Skipped)
	fmt.Fprintf(w, "Failed:          %d\n", stats.Failed)

	if attempted := stats.Total - stats.Skipped; attempted > 0 {
		successRate := float64(stats.Imported) / float64(attempted) * 100
		fmt.Fprintf(w, "Success rate:    %.1f%%\n", successRate)
	}
}
