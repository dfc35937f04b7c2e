package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minTitleLength      = 10
	maxTitleLength      = 200
	fallbackTitleLength = 150
)

// abbreviations end with a period but do not end a sentence
var abbreviations = []string{
	"U.S.", "U.K.", "Dr.", "Mr.", "Mrs.", "Ms.", "Prof.", "Sr.", "Jr.",
	"Inc.", "Ltd.", "Corp.", "vs.", "etc.", "e.g.", "i.e.", "a.m.", "p.m.",
	"A.D.", "B.C.",
}

var sentenceEnd = regexp.MustCompile(`\.\s+[A-Z]`)

// ExtractTitle derives a headline from a long description: the first real
// sentence when one of reasonable length exists, otherwise a truncated prefix.
func ExtractTitle(text string) string {
	offset := 0
	for attempt := 0; attempt < 2; attempt++ {
		loc := sentenceEnd.FindStringIndex(text[offset:])
		if loc == nil {
			break
		}

		periodEnd := offset + loc[0] + 1
		candidate := strings.TrimSpace(text[:periodEnd])
		if !endsWithAbbreviation(candidate) && validTitleLength(candidate) {
			return candidate
		}

		// resume just after the rejected period
		offset = periodEnd
	}

	if idx := strings.Index(text, ". "); idx > 0 && idx <= maxTitleLength {
		candidate := strings.TrimSpace(text[:idx+1])
		if !isAbbreviation(candidate) && utf8.RuneCountInString(candidate) > minTitleLength {
			return candidate
		}
	}

	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) <= fallbackTitleLength {
		return trimmed
	}
	return strings.TrimSpace(truncateRunes(trimmed, fallbackTitleLength)) + "..."
}

// endsWithAbbreviation checks the text before the final period of candidate
func endsWithAbbreviation(candidate string) bool {
	before := strings.TrimSpace(strings.TrimSuffix(candidate, "."))
	for _, abbr := range abbreviations {
		bare := strings.TrimSuffix(abbr, ".")
		if before == bare || strings.HasSuffix(before, " "+bare) {
			return true
		}
	}
	return false
}

// isAbbreviation checks whether candidate is, or ends with, a whole abbreviation
func isAbbreviation(candidate string) bool {
	for _, abbr := range abbreviations {
		if candidate == abbr || strings.HasSuffix(candidate, " "+abbr) {
			return true
		}
	}
	return false
}

func validTitleLength(s string) bool {
	n := utf8.RuneCountInString(s)
	return n > minTitleLength && n <= maxTitleLength
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
