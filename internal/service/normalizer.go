package service

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/jjenkins/onthisday/internal/model"
)

// ErrMalformedRecord marks a raw record that cannot be normalized
var ErrMalformedRecord = errors.New("malformed event record")

// IDScheme selects how API event ids are derived
type IDScheme string

const (
	// IDSchemePrefix uses the year and the first 20 characters of the text
	IDSchemePrefix IDScheme = "prefix"
	// IDSchemeHash uses the year and a digest of the full text
	IDSchemeHash IDScheme = "hash"
)

const apiIDPrefixLength = 20

var whitespace = regexp.MustCompile(`\s`)

// Normalizer converts raw API and local records into CombinedEvents
type Normalizer struct {
	categorizer *Categorizer
	parser      *Parser
	idScheme    IDScheme
}

// NewNormalizer creates a Normalizer. A nil categorizer uses DefaultCategorizer.
func NewNormalizer(categorizer *Categorizer, idScheme IDScheme) *Normalizer {
	if categorizer == nil {
		categorizer = DefaultCategorizer
	}
	if idScheme == "" {
		idScheme = IDSchemePrefix
	}
	return &Normalizer{
		categorizer: categorizer,
		parser:      NewParser(),
		idScheme:    idScheme,
	}
}

// Categorizer returns the categorizer used for tagging
func (n *Normalizer) Categorizer() *Categorizer {
	return n.categorizer
}

// Normalize dispatches on the raw record variant
func (n *Normalizer) Normalize(raw model.RawEvent) (model.CombinedEvent, error) {
	switch r := raw.(type) {
	case model.APIRecord:
		return n.NormalizeAPIEvent(r.Event, r.Month, r.Day)
	case model.LocalRecord:
		return n.NormalizeLocalEvent(r.Event)
	default:
		return model.CombinedEvent{}, fmt.Errorf("%w: unsupported record type %T", ErrMalformedRecord, raw)
	}
}

// NormalizeAPIEvent converts an API event queried for month/day
func (n *Normalizer) NormalizeAPIEvent(raw model.APIEvent, month, day int) (model.CombinedEvent, error) {
	// id and description keep the text as received; trimming only decides emptiness
	text := raw.Text
	if strings.TrimSpace(text) == "" {
		text = ""
		if raw.HTML != "" {
			text = n.parser.TextFromHTML(raw.HTML)
		}
	}
	if strings.TrimSpace(text) == "" {
		return model.CombinedEvent{}, fmt.Errorf("%w: api event for year %q has no text", ErrMalformedRecord, raw.Year)
	}

	title := ExtractTitle(text)

	return model.CombinedEvent{
		ID:          n.apiEventID(raw.Year, text),
		Title:       strings.TrimSpace(title),
		Description: text,
		Month:       month,
		Day:         day,
		Year:        ParseYear(raw.Year),
		YearDisplay: raw.Year,
		Category:    n.categorizer.Categorize(title, text),
		Source:      model.SourceAPI,
		HTML:        raw.HTML,
		Links:       raw.Links,
	}, nil
}

// NormalizeLocalEvent converts an approved local event. The record's own
// category is kept in front of the inferred ones.
func (n *Normalizer) NormalizeLocalEvent(raw model.LocalEvent) (model.CombinedEvent, error) {
	if strings.TrimSpace(raw.Title) == "" || strings.TrimSpace(raw.Description) == "" {
		return model.CombinedEvent{}, fmt.Errorf("%w: local event %s is missing title or description", ErrMalformedRecord, raw.ID)
	}

	var categories []string
	if raw.Category != "" && raw.Category != model.GeneralCategory {
		categories = append(categories, raw.Category)
	}
	categories = appendUnique(categories, n.categorizer.Categorize(raw.Title, raw.Description)...)

	return model.CombinedEvent{
		ID:          raw.ID,
		Title:       raw.Title,
		Description: raw.Description,
		Month:       raw.Month,
		Day:         raw.Day,
		Year:        raw.Year,
		YearDisplay: strconv.Itoa(raw.Year),
		Category:    categories,
		Source:      model.SourceLocal,
	}, nil
}

// NormalizeBatch normalizes every record it can. Malformed records are
// logged and skipped; their errors are joined into the returned error.
func (n *Normalizer) NormalizeBatch(records []model.RawEvent, logger *slog.Logger) ([]model.CombinedEvent, error) {
	events := make([]model.CombinedEvent, 0, len(records))
	var errs []error

	for _, raw := range records {
		event, err := n.Normalize(raw)
		if err != nil {
			if logger != nil {
				logger.Warn("skipping event record", "error", err)
			}
			errs = append(errs, err)
			continue
		}
		events = append(events, event)
	}

	return events, errors.Join(errs...)
}

func (n *Normalizer) apiEventID(yearText, text string) string {
	if n.idScheme == IDSchemeHash {
		return fmt.Sprintf("api-%s-%s", yearText, n.parser.Checksum(text)[:12])
	}
	prefix := truncateRunes(text, apiIDPrefixLength)
	return fmt.Sprintf("api-%s-%s", yearText, whitespace.ReplaceAllString(prefix, "-"))
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range dst {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
