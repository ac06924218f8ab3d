// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/grantdata/pkg/types"
)

// gapFactor is the horizontal distance, as a fraction of the font size,
// above which two adjacent glyph runs are separated by a space.
const gapFactor = 0.15

// NativeReader extracts page text with a pure-Go PDF parser. It needs no
// external tools but loses column layout on complex pages.
type NativeReader struct{}

// Name implements Reader.
func (n *NativeReader) Name() string { return string(types.BackendNative) }

// Pages implements Reader. Malformed documents that make the parser panic
// are reported as errors.
func (n *NativeReader) Pages(ctx context.Context, path string) (pages []types.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("parsing PDF %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	total := r.NumPage()
	pages = make([]types.Page, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := types.Page{Number: i}
		p := r.Page(i)
		if !p.V.IsNull() {
			rows, err := p.GetTextByRow()
			if err != nil {
				return nil, fmt.Errorf("reading page %d of %s: %w", i, path, err)
			}
			page.Text = joinRows(rows)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// joinRows renders rows top to bottom, one line per row.
func joinRows(rows pdf.Rows) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		lines = append(lines, joinTexts(row.Content))
	}
	return strings.Join(lines, "\n")
}

// joinTexts concatenates the glyph runs of one row. The parser emits runs
// without the spaces between words, so a space is inserted wherever the
// gap to the previous run is wider than gapFactor of the font size.
func joinTexts(texts pdf.TextHorizontal) string {
	var b strings.Builder
	for i, t := range texts {
		if i > 0 {
			prev := texts[i-1]
			gap := t.X - (prev.X + prev.W)
			size := t.FontSize
			if size <= 0 {
				size = prev.FontSize
			}
			if gap > size*gapFactor && !strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(t.S, " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
	}
	return b.String()
}
