// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vinnova

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pdiddy/grantdata/internal/textfmt"
)

// Kind names a dataset. It is part of every dump file name.
type Kind string

const (
	KindMetadata   Kind = "metadata"
	KindCalls      Kind = "calls"
	KindActivities Kind = "financed_activities"
)

// TextFields are the free-text fields that are word-wrapped in dumps.
var TextFields = []string{"titel", "titelEng", "beskrivning", "beskrivningEng"}

// CallFields is the field selection for calls for proposals.
var CallFields = []string{"titel", "titelEng", "beskrivning", "beskrivningEng", "oppningsdatum", "stangningsdatum"}

// ActivityFields is the field selection for financed activities.
var ActivityFields = []string{"titel", "titelEng", "beskrivning", "beskrivningEng", "beslut"}

// Column is one column of a summary table.
type Column struct {
	Field  string
	Header string
}

// CallSummary lists the columns printed for calls.
var CallSummary = []Column{
	{"diarienummer", "Case Number"},
	{"titel", "Title"},
	{"titelEng", "Title (English)"},
	{"oppningsdatum", "Opening Date"},
	{"stangningsdatum", "Closing Date"},
}

// ActivitySummary lists the columns printed for financed activities.
var ActivitySummary = []Column{
	{"diarienummer", "Case Number"},
	{"titel", "Title"},
	{"titelEng", "Title (English)"},
	{"beviljatBelopp", "Granted Amount (SEK)"},
	{"beslut", "Decision"},
}

// summaryWidth truncates summary cells.
const summaryWidth = 50

// Fields returns the field selection for kind.
func Fields(kind Kind) []string {
	switch kind {
	case KindCalls:
		return CallFields
	case KindActivities:
		return ActivityFields
	}
	return nil
}

// Summary returns the summary columns for kind.
func Summary(kind Kind) []Column {
	switch kind {
	case KindCalls:
		return CallSummary
	case KindActivities:
		return ActivitySummary
	}
	return nil
}

// SelectFields projects items onto fields, in that order. Missing fields
// become null. String values of TextFields are wrapped at width.
func SelectFields(items []Item, fields []string, width int) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		var sel Item
		for _, f := range fields {
			raw, ok := it.Raw(f)
			if !ok {
				raw = json.RawMessage("null")
			}
			sel.Set(f, raw)
		}
		out[i] = WrapText(sel, width)
	}
	return out
}

// WrapText returns a copy of it with the string values of TextFields
// word-wrapped at width. Other fields are untouched.
func WrapText(it Item, width int) Item {
	out := Item{fields: slices.Clone(it.fields)}
	for _, f := range TextFields {
		raw, ok := out.Raw(f)
		if !ok {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		s, ok := textfmt.WrapValue(v, width).(string)
		if !ok {
			continue
		}
		wrapped, err := marshalString(s)
		if err != nil {
			continue
		}
		out.Set(f, wrapped)
	}
	return out
}

// WriteSummary prints one aligned row per item.
func WriteSummary(w io.Writer, items []Item, cols []Column) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, it := range items {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = cell(it.String(c.Field))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > summaryWidth {
		return string(r[:summaryWidth-3]) + "..."
	}
	return s
}

// FileName returns the dump file name for kind at time now. Selected
// dumps carry a _selected_fields infix.
func FileName(kind Kind, selected bool, now time.Time) string {
	infix := ""
	if selected {
		infix = "_selected_fields"
	}
	return fmt.Sprintf("vinnova_%s%s_%s.json", kind, infix, now.Format("20060102_150405"))
}

// WriteDump writes v as indented JSON to dir/name and returns the path.
// Non-ASCII text is written unescaped.
func WriteDump(dir, name string, v any) (string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, f.Close()
}
