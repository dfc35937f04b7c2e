package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/jjenkins/onthisday/internal/model"
)

const (
	DefaultBaseURL        = "https://history.muffinlabs.com"
	defaultTimeout        = 15 * time.Second
	defaultMaxRetries     = 3
	defaultInitialBackoff = 500 * time.Millisecond
	defaultRatePerSecond  = 2.0
	defaultBurst          = 4
	defaultCacheTTL       = 6 * time.Hour
	defaultCacheSize      = 366
)

// ClientConfig configures the on-this-day API client. Zero values pick defaults.
type ClientConfig struct {
	BaseURL       string
	Timeout       time.Duration
	MaxRetries    int
	Backoff       time.Duration
	RatePerSecond float64
	Burst         int
	CacheTTL      time.Duration
	CacheSize     int
}

// OnThisDayClient handles communication with the on-this-day API
type OnThisDayClient struct {
	client         *http.Client
	baseURL        string
	maxRetries     int
	initialBackoff time.Duration
	limiter        *rate.Limiter
	cache          *expirable.LRU[string, []model.APIEvent]
	group          singleflight.Group
	instruments    *Instruments
	logger         *slog.Logger
}

// NewOnThisDayClient creates a new API client
func NewOnThisDayClient(cfg ClientConfig, instruments *Instruments, logger *slog.Logger) *OnThisDayClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultInitialBackoff
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = defaultRatePerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &OnThisDayClient{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.Backoff,
		limiter:        rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		cache:          expirable.NewLRU[string, []model.APIEvent](cfg.CacheSize, nil, cfg.CacheTTL),
		instruments:    instruments,
		logger:         logger,
	}
}

// dayResponse represents the API response for /date/{month}/{day}
type dayResponse struct {
	Date string `json:"date"`
	Data struct {
		Events []struct {
			Year  string       `json:"year"`
			Text  string       `json:"text"`
			HTML  string       `json:"html"`
			Links []model.Link `json:"links"`
		} `json:"Events"`
	} `json:"data"`
}

// FetchDay retrieves the events for a calendar date. Concurrent calls for
// the same date share one request and results are cached.
func (c *OnThisDayClient) FetchDay(ctx context.Context, month, day int) (*model.DayEvents, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil, fmt.Errorf("invalid date %d/%d", month, day)
	}

	key := fmt.Sprintf("%d/%d", month, day)
	if events, ok := c.cache.Get(key); ok {
		c.instruments.fetch("cache")
		return &model.DayEvents{Month: month, Day: day, Events: events, Source: model.FetchCache}, nil
	}

	// the shared fetch outlives any single caller; the http timeout bounds it
	ch := c.group.DoChan(key, func() (interface{}, error) {
		return c.fetchDay(context.WithoutCancel(ctx), key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			c.instruments.fetch("error")
			return nil, res.Err
		}
		c.instruments.fetch("live")
		events := res.Val.([]model.APIEvent)
		return &model.DayEvents{Month: month, Day: day, Events: events, Source: model.FetchLive}, nil
	}
}

func (c *OnThisDayClient) fetchDay(ctx context.Context, key string) ([]model.APIEvent, error) {
	url := fmt.Sprintf("%s/date/%s", c.baseURL, key)

	body, err := c.fetchWithRetry(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events for %s: %w", key, err)
	}

	var resp dayResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse events response: %w", err)
	}

	events := make([]model.APIEvent, len(resp.Data.Events))
	for i, e := range resp.Data.Events {
		events[i] = model.APIEvent{
			Year:  e.Year,
			Text:  e.Text,
			HTML:  e.HTML,
			Links: e.Links,
		}
	}

	c.cache.Add(key, events)
	c.logger.Debug("fetched on-this-day events", "date", key, "count", len(events))
	return events, nil
}

// fetchWithRetry performs an HTTP GET with exponential backoff retry
func (c *OnThisDayClient) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()

		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (HTTP 429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			continue
		}

		return body, nil
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}

// SampleFallback serves the built-in sample events when the wrapped
// fetcher fails, marking the payload as FetchSample.
type SampleFallback struct {
	Fetcher APIFetcher
	Logger  *slog.Logger
}

// FetchDay implements APIFetcher
func (s SampleFallback) FetchDay(ctx context.Context, month, day int) (*model.DayEvents, error) {
	events, err := s.Fetcher.FetchDay(ctx, month, day)
	if err == nil {
		return events, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Warn("on-this-day API unavailable, serving sample events", "month", month, "day", day, "error", err)
	}
	return &model.DayEvents{Month: month, Day: day, Events: SampleEvents(), Source: model.FetchSample}, nil
}

// SampleEvents returns the events shown when the API cannot be reached
func SampleEvents() []model.APIEvent {
	texts := []struct{ year, text string }{
		{"1969", "Apollo 11 astronauts Neil Armstrong and Buzz Aldrin became the first humans to land on the Moon."},
		{"1776", "The United States Declaration of Independence was adopted by the Continental Congress."},
		{"2001", "The September 11 attacks occurred in the United States."},
		{"1989", "The Berlin Wall fell during the Peaceful Revolution opening the border between East and West Germany."},
	}

	events := make([]model.APIEvent, len(texts))
	for i, t := range texts {
		events[i] = model.APIEvent{Year: t.year, Text: t.text, HTML: t.text}
	}
	return events
}
