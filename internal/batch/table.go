// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/grantdata/internal/section"
)

// MaxPartners returns the largest partner count of any record.
func (b *Batch) MaxPartners() int {
	n := 0
	for _, e := range b.Entries {
		if len(e.Record.Partners) > n {
			n = len(e.Record.Partners)
		}
	}
	return n
}

// Columns returns the base field names in canonical order followed by
// partner columns 1..MaxPartners.
func (b *Batch) Columns(lang section.Language) []string {
	fields := section.Fields()
	np := b.MaxPartners()
	cols := make([]string, 0, len(fields)+np)
	for _, f := range fields {
		cols = append(cols, f.Name(lang))
	}
	for i := 1; i <= np; i++ {
		cols = append(cols, section.PartnerColumn(lang, i))
	}
	return cols
}

// Rows returns one row per record aligned with Columns. Partner cells a
// record does not have are empty strings.
func (b *Batch) Rows() [][]string {
	fields := section.Fields()
	np := b.MaxPartners()
	rows := make([][]string, len(b.Entries))
	for i, e := range b.Entries {
		row := make([]string, len(fields)+np)
		for j, f := range fields {
			row[j] = e.Record.Get(f)
		}
		copy(row[len(fields):], e.Record.Partners)
		rows[i] = row
	}
	return rows
}

// Filled returns, for each column of Columns, the number of rows whose
// value is not blank.
func (b *Batch) Filled() []int {
	rows := b.Rows()
	n := len(section.Fields()) + b.MaxPartners()
	counts := make([]int, n)
	for _, r := range rows {
		for i, v := range r {
			if strings.TrimSpace(v) != "" {
				counts[i]++
			}
		}
	}
	return counts
}

// Object is a row with its column names. It marshals to a JSON object or
// YAML mapping with keys in column order.
type Object struct {
	Keys   []string
	Values []string
}

// Objects returns the batch as ordered objects, one per record.
func (b *Batch) Objects(lang section.Language) []Object {
	cols := b.Columns(lang)
	rows := b.Rows()
	out := make([]Object, len(rows))
	for i, r := range rows {
		out[i] = Object{Keys: cols, Values: r}
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, o.value(i)); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML implements yaml.Marshaler.
func (o Object) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for i, k := range o.Keys {
		v := o.value(i)
		val := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
		if strings.Contains(v, "\n") {
			val.Style = yaml.LiteralStyle
		}
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			val,
		)
	}
	return n, nil
}

func (o Object) value(i int) string {
	if i < len(o.Values) {
		return o.Values[i]
	}
	return ""
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// WriteJSON writes the batch as an indented JSON array of objects.
func (b *Batch) WriteJSON(w io.Writer, lang section.Language) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b.Objects(lang)); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// WriteYAML writes the batch as a YAML sequence of mappings.
func (b *Batch) WriteYAML(w io.Writer, lang section.Language) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(b.Objects(lang)); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}
