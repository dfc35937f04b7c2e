package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseYear(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"1969", 1969},
		{"42 BC", -42},
		{"44 bc", -44},
		{"300 BCE", -300},
		{"-500", -500},
		{"c. 1500", 1500},
		{"abc", 0},
		{"", 0},
		{"0", 0},
		{"99999999999999999999", math.MaxInt},
		{"99999999999999999999 BC", -math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseYear(tt.text))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"punctuation", "Hello, World!", "hello world"},
		{"whitespace", "  multiple   spaces\tand\nlines  ", "multiple spaces and lines"},
		{"abbreviation", "U.S.A.", "u s a"},
		{"underscore kept", "snake_case", "snake_case"},
		{"unicode letters", "Straße, Café!", "straße café"},
		{"only punctuation", "!!! ... ???", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.text))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	once := Normalize("The Berlin Wall -- fell; crowds (cheered)!")
	assert.Equal(t, once, Normalize(once))
}
