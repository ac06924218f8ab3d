// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package section

import "sort"

// Position is the offset of a field header within a page.
type Position struct {
	Offset int
	Field  Field
}

// Locate finds the last occurrence of each text field's header and returns
// the found fields ordered by offset. Pages often repeat a header as a
// running title before the field itself, so the last match is the one that
// introduces the content. Fields whose header never occurs are left out.
// When two fields share an offset the one earlier in canonical order is kept.
func Locate(text string) []Position {
	var found []Position
	for f := FocusArea; f <= OtherPartners; f++ {
		locs := textPatterns[f].header.FindAllStringIndex(text, -1)
		if len(locs) == 0 {
			continue
		}
		found = append(found, Position{Offset: locs[len(locs)-1][0], Field: f})
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Offset < found[j].Offset
	})

	out := found[:0]
	for i, p := range found {
		if i > 0 && p.Offset == out[len(out)-1].Offset {
			continue
		}
		out = append(out, p)
	}
	return out
}
