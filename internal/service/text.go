package service

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var yearPattern = regexp.MustCompile(`-?\d+`)

// ParseYear extracts a signed year from free text such as "1969" or "42 BC".
// Text without digits yields 0, which is also a valid-looking year. Digit
// runs beyond the int range clamp to the largest magnitude.
func ParseYear(text string) int {
	token := yearPattern.FindString(text)
	if token == "" {
		return 0
	}

	// Atoi returns the clamped value alongside ErrRange
	year, err := strconv.Atoi(token)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}

	if strings.Contains(strings.ToLower(text), "bc") && year > 0 {
		return -year
	}
	return year
}

// Normalize lowercases text, turns punctuation into spaces and collapses
// whitespace so substring and word matching ignore punctuation.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	for _, r := range strings.ToLower(text) {
		if isWordRune(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}

	return b.String()
}

// isWordRune keeps any Unicode letter or digit, not only ASCII word characters
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
