// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sheet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TimestampLayout formats the timestamp embedded in generated file names.
const TimestampLayout = "20060102_150405"

// Record is a row with ordered keys. Values are nil, bool, int64,
// float64 or string.
type Record struct {
	Keys   []string
	Values []any
}

// Get returns the value under key, or nil.
func (r Record) Get(key string) any {
	for i, k := range r.Keys {
		if k == key && i < len(r.Values) {
			return r.Values[i]
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler, keeping key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeCompact(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		var v any
		if i < len(r.Values) {
			v = r.Values[i]
		}
		if err := encodeCompact(&buf, v); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeCompact(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

// workbookJSON marshals sheets as one object keyed by sheet name.
type workbookJSON []Sheet

func (w workbookJSON) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range w {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeCompact(&buf, s.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		records := s.Records
		if records == nil {
			records = []Record{}
		}
		if err := encodeCompact(&buf, records); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteJSON writes v indented by two spaces without escaping HTML or
// non-ASCII characters.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ExcelToJSON converts every sheet of the workbook at in to a JSON object
// mapping sheet names to arrays of records. An empty out writes next to
// the input with a .json extension. It returns the path written.
func ExcelToJSON(in, out string) (string, error) {
	sheets, err := ReadWorkbook(in)
	if err != nil {
		return "", err
	}
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".json"
	}

	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", out, err)
	}
	if err := WriteJSON(f, workbookJSON(sheets)); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", out, err)
	}
	return out, f.Close()
}

// ReadRecords decodes a JSON array of objects, keeping each object's key
// order.
func ReadRecords(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}
	var records []Record
	for dec.More() {
		rec, err := readObject(dec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return records, nil
}

func readObject(dec *json.Decoder) (Record, error) {
	var rec Record
	if err := expectDelim(dec, '{'); err != nil {
		return rec, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return rec, err
		}
		key, ok := tok.(string)
		if !ok {
			return rec, fmt.Errorf("unexpected object key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return rec, fmt.Errorf("value of %q: %w", key, err)
		}
		v, err := scalar(raw)
		if err != nil {
			return rec, fmt.Errorf("value of %q: %w", key, err)
		}
		rec.Keys = append(rec.Keys, key)
		rec.Values = append(rec.Values, v)
	}
	return rec, expectDelim(dec, '}')
}

// scalar decodes raw into a cell value. Objects and arrays stay as their
// compact JSON text.
func scalar(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return nil, err
		}
		return buf.String(), nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return v, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("unexpected end of JSON, want %q", want)
		}
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("unexpected JSON token %v, want %q", tok, want)
	}
	return nil
}

// Columns returns the union of record keys in first-seen order.
func Columns(records []Record) []string {
	var cols []string
	seen := make(map[string]bool)
	for _, r := range records {
		for _, k := range r.Keys {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return cols
}

// JSONToExcel converts a JSON array of objects at in into a formatted
// single-sheet workbook. The columns are the union of keys in first-seen
// order and nested values are written as JSON text. An empty out writes
// <base>_excel_<timestamp>.xlsx next to the input. It returns the path
// written and the number of records.
func JSONToExcel(in, out, sheetName string) (string, int, error) {
	f, err := os.Open(in)
	if err != nil {
		return "", 0, fmt.Errorf("opening %s: %w", in, err)
	}
	records, err := ReadRecords(f)
	f.Close()
	if err != nil {
		return "", 0, fmt.Errorf("decoding %s: %w", in, err)
	}

	if out == "" {
		base := strings.TrimSuffix(in, filepath.Ext(in))
		out = fmt.Sprintf("%s_excel_%s.xlsx", base, time.Now().Format(TimestampLayout))
	}

	cols := Columns(records)
	rows := make([][]any, len(records))
	for i, r := range records {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = r.Get(c)
		}
		rows[i] = row
	}

	if err := WriteTable(out, sheetName, cols, rows); err != nil {
		return "", 0, err
	}
	return out, len(records), nil
}
