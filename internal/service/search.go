package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jjenkins/onthisday/internal/model"
)

// CategoryAll disables the category filter
const CategoryAll = "all"

// APIFetcher fetches raw events for a calendar date from the external API
type APIFetcher interface {
	FetchDay(ctx context.Context, month, day int) (*model.DayEvents, error)
}

// EventSource lists approved local events. Zero month or day matches any.
type EventSource interface {
	ListApproved(ctx context.Context, month, day int) ([]model.LocalEvent, error)
}

// APIStatus reports what happened to the API half of a search
type APIStatus string

const (
	APIStatusOK          APIStatus = "ok"
	APIStatusSkipped     APIStatus = "skipped"
	APIStatusUnavailable APIStatus = "unavailable"
	APIStatusSample      APIStatus = "sample"
)

// SearchSpec is the filter the timeline sends on every interaction
type SearchSpec struct {
	Month        int
	Day          int
	Year         *int
	Category     string
	Keywords     string
	Zoom         *model.YearBounds
	IncludeAPI   bool
	IncludeLocal bool
}

// SearchResult is the ordered event list plus the API outcome
type SearchResult struct {
	Events    []model.CombinedEvent `json:"events"`
	APIStatus APIStatus             `json:"apiStatus"`
	Warnings  []string              `json:"warnings,omitempty"`
}

// SearchEngine merges API and local events into one filtered timeline
type SearchEngine struct {
	api         APIFetcher
	local       EventSource
	normalizer  *Normalizer
	instruments *Instruments
	logger      *slog.Logger
}

// NewSearchEngine creates a SearchEngine. api or local may be nil to
// disable that source.
func NewSearchEngine(api APIFetcher, local EventSource, normalizer *Normalizer, instruments *Instruments, logger *slog.Logger) *SearchEngine {
	if normalizer == nil {
		normalizer = NewNormalizer(nil, IDSchemePrefix)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchEngine{
		api:         api,
		local:       local,
		normalizer:  normalizer,
		instruments: instruments,
		logger:      logger,
	}
}

// Search produces the filtered timeline for spec. It never fails: source
// errors degrade to empty subsets and are reported in the result.
func (e *SearchEngine) Search(ctx context.Context, spec SearchSpec) *SearchResult {
	defer e.instruments.searched(time.Now())

	result := &SearchResult{APIStatus: APIStatusSkipped}
	var combined []model.CombinedEvent

	if spec.IncludeAPI {
		apiEvents, status, warning := e.loadAPI(ctx, spec.Month, spec.Day)
		result.APIStatus = status
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		combined = append(combined, FilterEvents(apiEvents, spec)...)
	}

	if spec.IncludeLocal {
		localEvents, warning := e.loadLocal(ctx, spec.Month, spec.Day)
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		combined = append(combined, FilterEvents(localEvents, spec)...)
	}

	SortByYearDesc(combined)
	if combined == nil {
		combined = []model.CombinedEvent{}
	}
	result.Events = combined
	return result
}

// EventsForDate returns every canonical event for a date without filters
func (e *SearchEngine) EventsForDate(ctx context.Context, month, day int, includeAPI, includeLocal bool) ([]model.CombinedEvent, APIStatus) {
	status := APIStatusSkipped
	var events []model.CombinedEvent

	if includeAPI {
		var apiEvents []model.CombinedEvent
		apiEvents, status, _ = e.loadAPI(ctx, month, day)
		events = append(events, apiEvents...)
	}
	if includeLocal {
		localEvents, _ := e.loadLocal(ctx, month, day)
		events = append(events, localEvents...)
	}

	SortByYearDesc(events)
	return events, status
}

// Bounds computes the range control bounds for a date
func (e *SearchEngine) Bounds(ctx context.Context, month, day int, includeAPI, includeLocal bool, currentYear int) model.YearBounds {
	events, _ := e.EventsForDate(ctx, month, day, includeAPI, includeLocal)
	return CalculateBounds(events, currentYear)
}

func (e *SearchEngine) loadAPI(ctx context.Context, month, day int) ([]model.CombinedEvent, APIStatus, string) {
	if e.api == nil || month == 0 || day == 0 {
		return nil, APIStatusSkipped, ""
	}

	dayEvents, err := e.api.FetchDay(ctx, month, day)
	if err != nil {
		e.logger.Warn("on-this-day API fetch failed", "month", month, "day", day, "error", err)
		return nil, APIStatusUnavailable, "historical events service is unavailable"
	}

	records := make([]model.RawEvent, len(dayEvents.Events))
	for i, ev := range dayEvents.Events {
		records[i] = model.APIRecord{Event: ev, Month: month, Day: day}
	}
	events, _ := e.normalizer.NormalizeBatch(records, e.logger)
	e.instruments.skipped(string(model.SourceAPI), len(records)-len(events))

	if dayEvents.Source == model.FetchSample {
		return events, APIStatusSample, "historical events service is unavailable, showing sample events"
	}
	return events, APIStatusOK, ""
}

func (e *SearchEngine) loadLocal(ctx context.Context, month, day int) ([]model.CombinedEvent, string) {
	if e.local == nil {
		return nil, ""
	}

	approved, err := e.local.ListApproved(ctx, month, day)
	if err != nil {
		e.logger.Error("failed to list approved events", "month", month, "day", day, "error", err)
		return nil, "community events are unavailable"
	}

	records := make([]model.RawEvent, 0, len(approved))
	for _, ev := range approved {
		if !ev.Approved || !matchesDate(ev.Month, ev.Day, month, day) {
			continue
		}
		records = append(records, model.LocalRecord{Event: ev})
	}
	events, _ := e.normalizer.NormalizeBatch(records, e.logger)
	e.instruments.skipped(string(model.SourceLocal), len(records)-len(events))
	return events, ""
}

// FilterEvents applies the year, category, keyword and zoom filters in that
// order. Keyword search needs a concrete month and day; otherwise, or when
// the keywords are only punctuation, nothing matches.
func FilterEvents(events []model.CombinedEvent, spec SearchSpec) []model.CombinedEvent {
	filtered := events

	if spec.Year != nil {
		year := *spec.Year
		filtered = keep(filtered, func(e model.CombinedEvent) bool { return e.Year == year })
	}

	if spec.Category != "" && spec.Category != CategoryAll {
		filtered = keep(filtered, func(e model.CombinedEvent) bool { return e.HasCategory(spec.Category) })
	}

	if strings.TrimSpace(spec.Keywords) != "" {
		keywords := Normalize(spec.Keywords)
		if spec.Month == 0 || spec.Day == 0 || keywords == "" {
			return nil
		}
		filtered = keep(filtered, func(e model.CombinedEvent) bool {
			return strings.Contains(Normalize(e.Title), keywords) ||
				strings.Contains(Normalize(e.Description), keywords)
		})
	}

	if spec.Zoom != nil {
		zoom := *spec.Zoom
		filtered = keep(filtered, func(e model.CombinedEvent) bool { return zoom.Contains(e.Year) })
	}

	return filtered
}

// SortByYearDesc orders events newest first, keeping the order of equal years
func SortByYearDesc(events []model.CombinedEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Year > events[j].Year
	})
}

func matchesDate(month, day, wantMonth, wantDay int) bool {
	return (wantMonth == 0 || month == wantMonth) && (wantDay == 0 || day == wantDay)
}

func keep(events []model.CombinedEvent, pred func(model.CombinedEvent) bool) []model.CombinedEvent {
	out := make([]model.CombinedEvent, 0, len(events))
	for _, e := range events {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}
