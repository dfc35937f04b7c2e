package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Instruments holds the prometheus collectors of the event pipeline.
// A nil *Instruments records nothing.
type Instruments struct {
	apiFetches     *prometheus.CounterVec
	skippedRecords *prometheus.CounterVec
	searchDuration prometheus.Histogram
	staleSearches  prometheus.Counter
}

// NewInstruments creates and registers the collectors on reg
func NewInstruments(reg prometheus.Registerer) *Instruments {
	i := &Instruments{
		apiFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onthisday",
			Name:      "api_fetches_total",
			Help:      "On-this-day API fetches by outcome (live, cache, error, sample)",
		}, []string{"outcome"}),
		skippedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onthisday",
			Name:      "skipped_records_total",
			Help:      "Malformed raw records skipped during normalization",
		}, []string{"source"}),
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "onthisday",
			Name:      "search_duration_seconds",
			Help:      "Time spent producing a search result",
			Buckets:   prometheus.DefBuckets,
		}),
		staleSearches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "onthisday",
			Name:      "stale_searches_total",
			Help:      "Searches discarded because a newer search started",
		}),
	}
	reg.MustRegister(i.apiFetches, i.skippedRecords, i.searchDuration, i.staleSearches)
	return i
}

func (i *Instruments) fetch(outcome string) {
	if i == nil {
		return
	}
	i.apiFetches.WithLabelValues(outcome).Inc()
}

func (i *Instruments) skipped(source string, n int) {
	if i == nil || n == 0 {
		return
	}
	i.skippedRecords.WithLabelValues(source).Add(float64(n))
}

func (i *Instruments) searched(start time.Time) {
	if i == nil {
		return
	}
	i.searchDuration.Observe(time.Since(start).Seconds())
}

func (i *Instruments) stale() {
	if i == nil {
		return
	}
	i.staleSearches.Inc()
}
