package model

import "time"

// Source identifies where a CombinedEvent came from
type Source string

const (
	SourceAPI   Source = "api"
	SourceLocal Source = "local"
)

// GeneralCategory is assigned when no keyword category matches
const GeneralCategory = "General"

// Link is a reference attached to an API event (usually Wikipedia)
type Link struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// APIEvent represents an event from the "on this day" API.
// Year is free-form text such as "1969" or "42 BC".
type APIEvent struct {
	Year  string `json:"year"`
	Text  string `json:"text"`
	HTML  string `json:"html"`
	Links []Link `json:"links"`
}

// FetchSource tells where a DayEvents payload was served from
type FetchSource string

const (
	FetchLive   FetchSource = "live"
	FetchCache  FetchSource = "cache"
	FetchSample FetchSource = "sample"
)

// DayEvents is the API payload for one calendar date
type DayEvents struct {
	Date   string
	Month  int
	Day    int
	Events []APIEvent
	Source FetchSource
}

// LocalEvent represents a user-submitted event held by the moderation store
type LocalEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Month       int       `json:"month"`
	Day         int       `json:"day"`
	Year        int       `json:"year"`
	Category    string    `json:"category"`
	Approved    bool      `json:"approved"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// CombinedEvent is the canonical, source-agnostic event shown on the timeline.
// It is derived per request and never persisted.
type CombinedEvent struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Month       int      `json:"month"`
	Day         int      `json:"day"`
	Year        int      `json:"year"`
	YearDisplay string   `json:"yearDisplay"`
	Category    []string `json:"category"`
	Source      Source   `json:"source"`
	HTML        string   `json:"html,omitempty"`
	Links       []Link   `json:"links,omitempty"`
}

// HasCategory reports whether the event carries the given category tag
func (e CombinedEvent) HasCategory(category string) bool {
	for _, c := range e.Category {
		if c == category {
			return true
		}
	}
	return false
}

// RawEvent is either an APIRecord or a LocalRecord
type RawEvent interface {
	rawEvent()
}

// APIRecord wraps an API event together with the date it was queried for
type APIRecord struct {
	Event APIEvent
	Month int
	Day   int
}

// LocalRecord wraps an approved local event
type LocalRecord struct {
	Event LocalEvent
}

func (APIRecord) rawEvent()   {}
func (LocalRecord) rawEvent() {}

// YearBounds is an inclusive [MinYear, MaxYear] range
type YearBounds struct {
	MinYear int `json:"minYear"`
	MaxYear int `json:"maxYear"`
}

// Contains reports whether year falls inside the bounds
func (b YearBounds) Contains(year int) bool {
	return year >= b.MinYear && year <= b.MaxYear
}
