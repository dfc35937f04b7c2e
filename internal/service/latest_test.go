package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/onthisday/internal/model"
)

// blockingFetcher blocks its first call until the caller's context ends
type blockingFetcher struct {
	calls   atomic.Int32
	started chan struct{}
}

func (f *blockingFetcher) FetchDay(ctx context.Context, month, day int) (*model.DayEvents, error) {
	if f.calls.Add(1) == 1 {
		close(f.started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return &model.DayEvents{Month: month, Day: day, Events: SampleEvents(), Source: model.FetchLive}, nil
}

func TestLatestSearchDiscardsSupersededSearch(t *testing.T) {
	fetcher := &blockingFetcher{started: make(chan struct{})}
	reg := prometheus.NewRegistry()
	instruments := NewInstruments(reg)
	latest := NewLatestSearch(NewSearchEngine(fetcher, nil, nil, instruments, nil))

	spec := baseSpec()
	spec.IncludeLocal = false

	type outcome struct {
		result *SearchResult
		err    error
	}
	first := make(chan outcome, 1)
	go func() {
		result, err := latest.Search(context.Background(), "client-1", spec)
		first <- outcome{result, err}
	}()

	select {
	case <-fetcher.started:
	case <-time.After(5 * time.Second):
		t.Fatal("first search never reached the fetcher")
	}

	second, err := latest.Search(context.Background(), "client-1", spec)
	require.NoError(t, err)
	assert.Equal(t, APIStatusOK, second.APIStatus)
	assert.Len(t, second.Events, len(SampleEvents()))

	select {
	case got := <-first:
		assert.ErrorIs(t, got.err, ErrStaleSearch)
		assert.Nil(t, got.result)
	case <-time.After(5 * time.Second):
		t.Fatal("first search was not cancelled")
	}

	assert.Equal(t, 1.0, counterValue(t, reg, "onthisday_stale_searches_total"))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestLatestSearchKeysAreIndependent(t *testing.T) {
	api, local := julyTwentieth()
	latest := NewLatestSearch(NewSearchEngine(api, local, nil, nil, nil))

	a, err := latest.Search(context.Background(), "a", baseSpec())
	require.NoError(t, err)
	b, err := latest.Search(context.Background(), "b", baseSpec())
	require.NoError(t, err)

	assert.Equal(t, a.Events, b.Events)
}

func TestLatestSearchWithoutKey(t *testing.T) {
	api, local := julyTwentieth()
	latest := NewLatestSearch(NewSearchEngine(api, local, nil, nil, nil))

	result, err := latest.Search(context.Background(), "", baseSpec())
	require.NoError(t, err)
	assert.Len(t, result.Events, 4)
	assert.Same(t, latest.engine, latest.Engine())
}
