package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/onthisday/internal/model"
)

type fakeFetcher struct {
	events []model.APIEvent
	err    error
	calls  atomic.Int32
}

func (f *fakeFetcher) FetchDay(_ context.Context, month, day int) (*model.DayEvents, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &model.DayEvents{Month: month, Day: day, Events: f.events, Source: model.FetchLive}, nil
}

type fakeSource struct {
	events []model.LocalEvent
	err    error
}

func (f *fakeSource) ListApproved(_ context.Context, _, _ int) ([]model.LocalEvent, error) {
	return f.events, f.err
}

func julyTwentieth() (*fakeFetcher, *fakeSource) {
	api := &fakeFetcher{events: []model.APIEvent{
		{Year: "1969", Text: apolloText},
		{Year: "1776", Text: "The Continental Congress debates the Declaration of Independence."},
		{Year: "356 BC", Text: "The Temple of Artemis is destroyed by arson."},
	}}
	local := &fakeSource{events: []model.LocalEvent{
		{ID: "l1", Title: "Town fair", Description: "The annual town fair opens.", Month: 7, Day: 20, Year: 2001, Category: "General", Approved: true},
		{ID: "l2", Title: "Unreviewed", Description: "Not yet approved.", Month: 7, Day: 20, Year: 2002, Approved: false},
		{ID: "l3", Title: "Other day", Description: "Belongs to another date.", Month: 7, Day: 21, Year: 2003, Approved: true},
		{ID: "l4", Title: "", Description: "Malformed record.", Month: 7, Day: 20, Year: 2004, Approved: true},
	}}
	return api, local
}

func years(events []model.CombinedEvent) []int {
	out := make([]int, len(events))
	for i, e := range events {
		out[i] = e.Year
	}
	return out
}

func baseSpec() SearchSpec {
	return SearchSpec{Month: 7, Day: 20, Category: CategoryAll, IncludeAPI: true, IncludeLocal: true}
}

func TestSearchMergesAndSorts(t *testing.T) {
	api, local := julyTwentieth()
	engine := NewSearchEngine(api, local, nil, nil, nil)

	result := engine.Search(context.Background(), baseSpec())

	assert.Equal(t, APIStatusOK, result.APIStatus)
	assert.Equal(t, []int{2001, 1969, 1776, -356}, years(result.Events))
	assert.Equal(t, model.SourceLocal, result.Events[0].Source)
}

func TestSearchStableForEqualYears(t *testing.T) {
	api := &fakeFetcher{events: []model.APIEvent{{Year: "1969", Text: "First event of the year happened."}}}
	local := &fakeSource{events: []model.LocalEvent{
		{ID: "l1", Title: "Second", Description: "Local event of the same year.", Month: 7, Day: 20, Year: 1969, Approved: true},
	}}
	engine := NewSearchEngine(api, local, nil, nil, nil)

	result := engine.Search(context.Background(), baseSpec())

	require.Len(t, result.Events, 2)
	assert.Equal(t, model.SourceAPI, result.Events[0].Source)
	assert.Equal(t, model.SourceLocal, result.Events[1].Source)
}

func TestSearchFilters(t *testing.T) {
	api, local := julyTwentieth()
	engine := NewSearchEngine(api, local, nil, nil, nil)
	ctx := context.Background()

	t.Run("year", func(t *testing.T) {
		spec := baseSpec()
		year := 1776
		spec.Year = &year
		assert.Equal(t, []int{1776}, years(engine.Search(ctx, spec).Events))
	})

	t.Run("category", func(t *testing.T) {
		spec := baseSpec()
		spec.Category = "Science"
		assert.Equal(t, []int{1969}, years(engine.Search(ctx, spec).Events))
	})

	t.Run("keywords ignore case and punctuation", func(t *testing.T) {
		spec := baseSpec()
		spec.Keywords = "  MOON!  "
		assert.Equal(t, []int{1969}, years(engine.Search(ctx, spec).Events))
	})

	t.Run("keywords match across punctuation", func(t *testing.T) {
		spec := baseSpec()
		spec.Keywords = "town-fair"
		assert.Equal(t, []int{2001}, years(engine.Search(ctx, spec).Events))
	})

	t.Run("zoom is inclusive", func(t *testing.T) {
		spec := baseSpec()
		spec.Zoom = &model.YearBounds{MinYear: 1776, MaxYear: 1969}
		assert.Equal(t, []int{1969, 1776}, years(engine.Search(ctx, spec).Events))
	})

	t.Run("no match is empty not nil", func(t *testing.T) {
		spec := baseSpec()
		spec.Keywords = "zeppelin"
		result := engine.Search(ctx, spec)
		assert.NotNil(t, result.Events)
		assert.Empty(t, result.Events)
	})
}

func TestSearchKeywordsFailClosed(t *testing.T) {
	api, local := julyTwentieth()
	engine := NewSearchEngine(api, local, nil, nil, nil)
	ctx := context.Background()

	t.Run("without a date", func(t *testing.T) {
		spec := baseSpec()
		spec.Month, spec.Day = 0, 0
		spec.Keywords = "fair"
		assert.Empty(t, engine.Search(ctx, spec).Events)
	})

	t.Run("any month on a concrete day", func(t *testing.T) {
		spec := baseSpec()
		spec.Month = 0
		spec.Keywords = "fair"
		result := engine.Search(ctx, spec)
		assert.Empty(t, result.Events)
		assert.Equal(t, APIStatusSkipped, result.APIStatus)
	})

	t.Run("any day in a concrete month", func(t *testing.T) {
		spec := baseSpec()
		spec.Day = 0
		spec.Keywords = "fair"
		assert.Empty(t, engine.Search(ctx, spec).Events)
	})

	t.Run("only punctuation", func(t *testing.T) {
		spec := baseSpec()
		spec.Keywords = "?!."
		assert.Empty(t, engine.Search(ctx, spec).Events)
	})
}

func TestSearchResultsContainedInSources(t *testing.T) {
	api, local := julyTwentieth()
	engine := NewSearchEngine(api, local, nil, nil, nil)
	ctx := context.Background()

	all, _ := engine.EventsForDate(ctx, 7, 20, true, true)
	ids := make(map[string]bool)
	for _, e := range all {
		ids[e.ID] = true
	}

	spec := baseSpec()
	spec.Category = "Politics"
	for _, e := range engine.Search(ctx, spec).Events {
		assert.True(t, ids[e.ID], "unexpected event %s", e.ID)
		assert.True(t, e.HasCategory("Politics"))
	}
}

func TestSearchLocalOnlyApprovedForDate(t *testing.T) {
	_, local := julyTwentieth()
	engine := NewSearchEngine(nil, local, nil, nil, nil)

	spec := baseSpec()
	spec.IncludeAPI = false
	result := engine.Search(context.Background(), spec)

	require.Len(t, result.Events, 1)
	assert.Equal(t, "l1", result.Events[0].ID)
	assert.Equal(t, APIStatusSkipped, result.APIStatus)
}

func TestSearchAPISkippedWithoutDate(t *testing.T) {
	api, local := julyTwentieth()
	engine := NewSearchEngine(api, local, nil, nil, nil)

	spec := baseSpec()
	spec.Day = 0
	result := engine.Search(context.Background(), spec)

	assert.Equal(t, APIStatusSkipped, result.APIStatus)
	assert.Equal(t, int32(0), api.calls.Load())
}

func TestSearchAPIUnavailable(t *testing.T) {
	_, local := julyTwentieth()
	api := &fakeFetcher{err: errors.New("connection refused")}
	engine := NewSearchEngine(api, local, nil, nil, nil)

	result := engine.Search(context.Background(), baseSpec())

	assert.Equal(t, APIStatusUnavailable, result.APIStatus)
	assert.NotEmpty(t, result.Warnings)
	assert.Equal(t, []int{2001}, years(result.Events))
}

func TestSearchSampleFallback(t *testing.T) {
	api := SampleFallback{Fetcher: &fakeFetcher{err: errors.New("blocked")}}
	engine := NewSearchEngine(api, nil, nil, nil, nil)

	spec := baseSpec()
	spec.IncludeLocal = false
	result := engine.Search(context.Background(), spec)

	assert.Equal(t, APIStatusSample, result.APIStatus)
	assert.Len(t, result.Events, len(SampleEvents()))
	assert.NotEmpty(t, result.Warnings)
}

func TestSearchLocalFailureKeepsAPI(t *testing.T) {
	api, _ := julyTwentieth()
	local := &fakeSource{err: errors.New("database down")}
	engine := NewSearchEngine(api, local, nil, nil, nil)

	result := engine.Search(context.Background(), baseSpec())

	assert.Len(t, result.Events, 3)
	assert.NotEmpty(t, result.Warnings)
}

func TestBounds(t *testing.T) {
	api, local := julyTwentieth()
	engine := NewSearchEngine(api, local, nil, nil, nil)

	bounds := engine.Bounds(context.Background(), 7, 20, true, true, 2026)
	assert.Equal(t, model.YearBounds{MinYear: -356, MaxYear: 2026}, bounds)

	bounds = engine.Bounds(context.Background(), 7, 20, false, false, 2026)
	assert.Equal(t, model.YearBounds{MinYear: 1926, MaxYear: 2026}, bounds)
}
