package service

import "github.com/jjenkins/onthisday/internal/model"

// defaultBoundsSpan is how far back the range reaches when a date has no events
const defaultBoundsSpan = 100

// CalculateBounds derives the year range for the range control from all
// events known for a date. The upper bound is always currentYear.
func CalculateBounds(events []model.CombinedEvent, currentYear int) model.YearBounds {
	if len(events) == 0 {
		return model.YearBounds{MinYear: currentYear - defaultBoundsSpan, MaxYear: currentYear}
	}

	minYear := events[0].Year
	for _, e := range events[1:] {
		if e.Year < minYear {
			minYear = e.Year
		}
	}

	return model.YearBounds{MinYear: minYear, MaxYear: currentYear}
}

// ClampYear moves year into the bounds
func ClampYear(year int, b model.YearBounds) int {
	if year < b.MinYear {
		return b.MinYear
	}
	if year > b.MaxYear {
		return b.MaxYear
	}
	return year
}

// MidYear is where the range control rests when no year is selected
func MidYear(b model.YearBounds) int {
	sum := b.MinYear + b.MaxYear
	// floor division for negative ranges
	if sum < 0 && sum%2 != 0 {
		return sum/2 - 1
	}
	return sum / 2
}
