package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jjenkins/onthisday/internal/model"
)

// MetricsService calculates moderation statistics for the local event store
type MetricsService struct {
	events      EventStore
	suggestions SuggestionStore
	normalizer  *Normalizer
	logger      *slog.Logger
}

// NewMetricsService creates a new MetricsService
func NewMetricsService(events EventStore, suggestions SuggestionStore, normalizer *Normalizer, logger *slog.Logger) *MetricsService {
	if normalizer == nil {
		normalizer = NewNormalizer(nil, IDSchemePrefix)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MetricsService{events: events, suggestions: suggestions, normalizer: normalizer, logger: logger}
}

// Calculate computes counts by moderation state and, for approved events,
// by category (own and inferred) and the year span.
func (m *MetricsService) Calculate(ctx context.Context) (*model.ModerationStats, error) {
	events, err := m.events.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	stats := &model.ModerationStats{
		TotalEvents:    len(events),
		CategoryCounts: make(map[string]int),
	}

	for _, e := range events {
		if !e.Approved {
			stats.PendingEvents++
			continue
		}
		stats.ApprovedEvents++

		if !stats.HasApprovedYears || e.Year < stats.OldestYear {
			stats.OldestYear = e.Year
		}
		if !stats.HasApprovedYears || e.Year > stats.NewestYear {
			stats.NewestYear = e.Year
		}
		stats.HasApprovedYears = true

		combined, err := m.normalizer.NormalizeLocalEvent(e)
		if err != nil {
			m.logger.Warn("skipping event categories", "id", e.ID, "error", err)
			continue
		}
		for _, c := range combined.Category {
			stats.CategoryCounts[c]++
		}
	}

	if m.suggestions != nil {
		pending, err := m.suggestions.CountByStatus(ctx, model.SuggestionPending)
		if err != nil {
			return nil, fmt.Errorf("failed to count pending suggestions: %w", err)
		}
		stats.PendingSuggests = pending
	}

	return stats, nil
}
