package templates

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/onthisday/internal/model"
)

func render(t *testing.T, p TimelinePage) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Timeline(p).Render(context.Background(), &buf))
	return buf.String()
}

func TestTimelineRendersEvents(t *testing.T) {
	out := render(t, TimelinePage{
		Month: 7, Day: 20,
		IncludeAPI: true,
		Categories: []string{"Science", model.GeneralCategory},
		Category:   "Science",
		Bounds:     model.YearBounds{MinYear: 1900, MaxYear: 2026},
		APIStatus:  "ok",
		Events: []model.CombinedEvent{{
			ID: "api-1969-Apollo", Title: "Apollo 11 lands", Description: "Humans land on the Moon.",
			YearDisplay: "1969", Category: []string{"Science"}, Source: model.SourceAPI,
			Links: []model.Link{{Title: "Apollo 11", Link: "https://wikipedia.org/wiki/Apollo_11"}},
		}},
	})

	assert.Contains(t, out, "<h1>On This Day: July 20</h1>")
	assert.Contains(t, out, `<option value="Science" selected>`)
	assert.Contains(t, out, `<option value="7" selected>July</option>`)
	assert.Contains(t, out, `data-api-status="ok"`)
	assert.Contains(t, out, `class="event api"`)
	assert.Contains(t, out, `href="https://wikipedia.org/wiki/Apollo_11"`)
	assert.Contains(t, out, "1 events between 1900 and 2026")
	assert.NotContains(t, out, `class="empty"`)
}

func TestTimelineEscapes(t *testing.T) {
	out := render(t, TimelinePage{
		Keywords: `"><script>`,
		Warnings: []string{"<b>api down</b>"},
		Events: []model.CombinedEvent{{
			ID: "x", Title: "<i>title</i>", Source: model.SourceLocal,
			Links: []model.Link{{Title: "bad", Link: "javascript:alert(1)"}},
		}},
	})

	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<i>title</i>")
	assert.Contains(t, out, "&lt;b&gt;api down&lt;/b&gt;")
	assert.NotContains(t, out, "javascript:")
}

func TestSearchFormCheckboxes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SearchForm(TimelinePage{IncludeLocal: true}).Render(context.Background(), &buf))
	out := buf.String()

	assert.Contains(t, out, `<input type="checkbox" value="true" name="local" checked>`)
	assert.Contains(t, out, `<input type="checkbox" value="true" name="api">`)
	assert.Contains(t, out, `<input type="hidden" value="false" name="api">`)
	assert.NotContains(t, out, `name="year" min="0" max="0" value=`)
}

func TestEventListEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EventList(TimelinePage{}).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "No events match these filters.")
}

func TestTimelineHeadingWithoutDate(t *testing.T) {
	out := render(t, TimelinePage{Month: 0, Day: 20})
	assert.Contains(t, out, "<h1>On This Day</h1>")
	assert.Contains(t, out, "<!doctype html>")
}
