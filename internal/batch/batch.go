// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch runs the section extractor over the pages of a report and
// collects the records into a table with a uniform column set.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/grantdata/internal/section"
	"github.com/pdiddy/grantdata/pkg/types"
)

// ErrNoProjects is returned by Collect when no page yields any data.
var ErrNoProjects = errors.New("no project data found")

// Entry is one extracted record and the page it came from.
type Entry struct {
	Source string
	Page   int
	Record section.Record
}

// Batch is the ordered set of records extracted from one source file.
type Batch struct {
	Source  string
	Entries []Entry
}

// Summary holds the page counts of a Collect run.
type Summary struct {
	Extracted int
	Skipped   int // not a project summary page
	Empty     int // eligible, but nothing could be extracted
}

// Total returns the number of pages processed.
func (s Summary) Total() int {
	return s.Extracted + s.Skipped + s.Empty
}

// Options tunes Collect.
type Options struct {
	// Workers is the number of pages extracted concurrently (default 1).
	Workers int
	// Logger receives diagnostics. Nil means slog.Default.
	Logger *slog.Logger
}

// Collect extracts a record from every eligible page, in page order.
// Records with no data at all are dropped. Per-page status lines are
// written to w. When nothing survives, the returned error is ErrNoProjects.
func Collect(ctx context.Context, source string, pages []types.Page, opts Options, w io.Writer) (*Batch, Summary, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	ex := &section.Extractor{Logger: log}
	records := make([]*section.Record, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range pages {
		if !section.Eligible(p.Text) {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := ex.Extract(p.Text)
			records[i] = &r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, fmt.Errorf("extracting %s: %w", source, err)
	}

	b := &Batch{Source: source}
	var summary Summary
	for i, p := range pages {
		r := records[i]
		switch {
		case r == nil:
			fmt.Fprintf(w, "skipped:   page %d (no project summary)\n", p.Number)
			summary.Skipped++
		case r.Empty():
			fmt.Fprintf(w, "empty:     page %d\n", p.Number)
			log.Warn("no data could be extracted", "source", source, "page", p.Number)
			summary.Empty++
		default:
			if missing := r.EmptyFields(); len(missing) > 0 {
				log.Warn("empty sections", "source", source, "page", p.Number, "fields", fieldKeys(missing))
			}
			fmt.Fprintf(w, "extracted: page %d: %s (%d partners)\n",
				p.Number, truncate(firstLine(r.Get(section.Title)), 100), len(r.Partners))
			b.Entries = append(b.Entries, Entry{Source: source, Page: p.Number, Record: *r})
			summary.Extracted++
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d extracted, %d skipped, %d empty (total: %d)\n",
		summary.Extracted, summary.Skipped, summary.Empty, summary.Total())

	if len(b.Entries) == 0 {
		return b, summary, ErrNoProjects
	}
	return b, summary, nil
}

// Merge appends the entries of other batches to b, keeping their order.
func (b *Batch) Merge(others ...*Batch) {
	for _, o := range others {
		if o != nil {
			b.Entries = append(b.Entries, o.Entries...)
		}
	}
}

func fieldKeys(fields []section.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Key()
	}
	return out
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
