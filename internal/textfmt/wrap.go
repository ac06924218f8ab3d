// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textfmt formats long free-text values for human-readable dumps.
package textfmt

import (
	"strings"
	"unicode/utf8"
)

// DefaultWidth is the wrap column used for API text fields.
const DefaultWidth = 80

// Wrap breaks text into lines of at most width runes at word boundaries.
// Runs of whitespace, including existing line breaks, collapse to one
// space first. A word longer than width occupies a line of its own. A
// width of zero or less returns the collapsed text on one line.
func Wrap(text string, width int) string {
	words := strings.Fields(text)
	if width <= 0 {
		return strings.Join(words, " ")
	}

	var b strings.Builder
	lineLen := 0
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		switch {
		case lineLen == 0:
		case lineLen+1+n <= width:
			b.WriteByte(' ')
			lineLen++
		default:
			b.WriteByte('\n')
			lineLen = 0
		}
		b.WriteString(w)
		lineLen += n
	}
	return b.String()
}

// WrapValue wraps v when it is a string and returns it unchanged
// otherwise. It is meant for values decoded from JSON.
func WrapValue(v any, width int) any {
	if s, ok := v.(string); ok {
		return Wrap(s, width)
	}
	return v
}
