// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package section

import (
	"regexp"
	"strings"
)

// SliceStatus tells why a section slice has the content it has.
type SliceStatus int

const (
	// SliceFound means both boundaries were found. Text may still be empty
	// when nothing but whitespace sits between the headers.
	SliceFound SliceStatus = iota
	// SliceStartMissing means the start pattern did not match.
	SliceStartMissing
	// SliceNoEnd means no end match lies after the start boundary.
	SliceNoEnd
)

func (s SliceStatus) String() string {
	switch s {
	case SliceFound:
		return "found"
	case SliceStartMissing:
		return "start missing"
	case SliceNoEnd:
		return "no end after start"
	}
	return "unknown"
}

// Slice is the content between a field's header and the header that
// terminates it.
type Slice struct {
	Text   string
	Status SliceStatus
	// Start is the byte offset where content begins, -1 if the start
	// pattern did not match.
	Start int
	// Ends lists the offsets of every end match, for diagnostics.
	Ends []int
}

// sliceSection returns the trimmed text between the end of the last start
// match and the first end match that begins strictly after it.
func sliceSection(text string, start, end *regexp.Regexp) Slice {
	starts := start.FindAllStringIndex(text, -1)
	if len(starts) == 0 {
		return Slice{Status: SliceStartMissing, Start: -1}
	}
	from := starts[len(starts)-1][1]

	ends := end.FindAllStringIndex(text, -1)
	s := Slice{Status: SliceNoEnd, Start: from, Ends: make([]int, len(ends))}
	for i, e := range ends {
		s.Ends[i] = e[0]
	}
	for _, e := range ends {
		if e[0] > from {
			s.Text = strings.TrimSpace(text[from:e[0]])
			s.Status = SliceFound
			break
		}
	}
	return s
}

// SliceField cuts the content of a text field out of text. When last is
// true the field is the final located header on the page and is terminated
// by the budget header instead of its canonical successor.
func SliceField(text string, f Field, last bool) Slice {
	if f < FocusArea || f > OtherPartners {
		return Slice{Status: SliceStartMissing, Start: -1}
	}
	p := textPatterns[f]
	end := p.end
	if last {
		end = budgetEnd
	}
	return sliceSection(text, p.start, end)
}
