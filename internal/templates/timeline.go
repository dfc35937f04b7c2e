package templates

import (
	"fmt"

	"github.com/jjenkins/onthisday/internal/model"
)

// TimelinePage holds everything the timeline view renders
type TimelinePage struct {
	Month        int
	Day          int
	Year         string
	Category     string
	Keywords     string
	IncludeAPI   bool
	IncludeLocal bool
	Categories   []string
	Events       []model.CombinedEvent
	Bounds       model.YearBounds
	APIStatus    string
	Warnings     []string
}

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

func heading(p TimelinePage) string {
	if p.Month >= 1 && p.Month <= 12 && p.Day > 0 {
		return fmt.Sprintf("On This Day: %s %d", monthNames[p.Month-1], p.Day)
	}
	return "On This Day"
}

func boundsSummary(p TimelinePage) string {
	return fmt.Sprintf("%d events between %d and %d", len(p.Events), p.Bounds.MinYear, p.Bounds.MaxYear)
}
