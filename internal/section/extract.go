// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package section

import (
	"log/slog"
	"strings"
)

// Record is the result of extracting one project summary page. Fields
// that were not found hold the empty string.
type Record struct {
	Values   [numFields]string
	Partners []string
}

// Get returns the value of field f.
func (r Record) Get(f Field) string {
	if f < 0 || f >= numFields {
		return ""
	}
	return r.Values[f]
}

// Empty reports whether every field, partners included, is blank.
func (r Record) Empty() bool {
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	for _, p := range r.Partners {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}

// EmptyFields lists the base fields with no value, in canonical order.
func (r Record) EmptyFields() []Field {
	var out []Field
	for f, v := range r.Values {
		if strings.TrimSpace(v) == "" {
			out = append(out, Field(f))
		}
	}
	return out
}

// Extractor extracts records from page text. The zero value is ready to
// use and logs to slog.Default.
type Extractor struct {
	Logger *slog.Logger
}

// Extract runs the full extraction on one page of text. It never fails:
// anything it cannot recognize is left empty.
func (e *Extractor) Extract(text string) Record {
	log := e.logger()

	var r Record
	located := Locate(text)
	for i, pos := range located {
		s := SliceField(text, pos.Field, i == len(located)-1)
		if s.Status != SliceFound {
			log.Debug("section not sliced",
				"field", pos.Field.Key(), "status", s.Status.String(),
				"start", s.Start, "ends", s.Ends)
		}
		if s.Text == "" {
			continue
		}

		v := Normalize(s.Text)
		if fieldSpecs[pos.Field].ordinals {
			v = Ordinals(v)
		}
		r.Values[pos.Field] = v
	}

	for _, f := range Fields() {
		if f.Kind() == KindAmount {
			r.Values[f] = Amount(text, f)
		}
	}
	r.Partners = Partners(r.Values[OtherPartners])
	return r
}

func (e *Extractor) logger() *slog.Logger {
	if e == nil || e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// Extract runs a default Extractor over text.
func Extract(text string) Record {
	var e Extractor
	return e.Extract(text)
}

// Amount captures the number and optional SEK/MSEK unit that follow the
// label of an amount field. The first match wins. Amount returns "" for
// text fields or when the label is absent.
func Amount(text string, f Field) string {
	if f < 0 || f >= numFields || f.Kind() != KindAmount {
		return ""
	}
	m := amountRes[f].FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
