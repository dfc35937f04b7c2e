package service

import (
	"context"
	"errors"
	"sync"
)

// ErrStaleSearch is returned when a newer search for the same client
// started before this one finished
var ErrStaleSearch = errors.New("search superseded by a newer request")

// LatestSearch runs searches so that only the newest one per client key
// produces a result. Starting a search cancels the previous in-flight one.
type LatestSearch struct {
	engine *SearchEngine

	mu       sync.Mutex
	inflight map[string]*searchTicket
	nextGen  uint64
}

type searchTicket struct {
	gen    uint64
	cancel context.CancelFunc
}

// NewLatestSearch wraps engine with last-write-wins ordering
func NewLatestSearch(engine *SearchEngine) *LatestSearch {
	return &LatestSearch{
		engine:   engine,
		inflight: make(map[string]*searchTicket),
	}
}

// Engine returns the wrapped search engine
func (l *LatestSearch) Engine() *SearchEngine {
	return l.engine
}

// Search runs spec for key. An empty key disables stale detection.
func (l *LatestSearch) Search(ctx context.Context, key string, spec SearchSpec) (*SearchResult, error) {
	if key == "" {
		return l.engine.Search(ctx, spec), nil
	}

	ctx, ticket := l.begin(ctx, key)
	defer ticket.cancel()

	result := l.engine.Search(ctx, spec)

	if !l.finish(key, ticket) {
		l.engine.instruments.stale()
		return nil, ErrStaleSearch
	}
	return result, nil
}

func (l *LatestSearch) begin(ctx context.Context, key string) (context.Context, *searchTicket) {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	if prev, ok := l.inflight[key]; ok {
		prev.cancel()
	}
	l.nextGen++
	ticket := &searchTicket{gen: l.nextGen, cancel: cancel}
	l.inflight[key] = ticket
	return ctx, ticket
}

// finish reports whether ticket is still the newest search for key
func (l *LatestSearch) finish(key string, ticket *searchTicket) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.inflight[key]
	if !ok || current.gen != ticket.gen {
		return false
	}
	delete(l.inflight, key)
	return true
}
