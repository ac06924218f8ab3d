// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vinnova

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Item is one JSON object returned by the API. Fields keep the order the
// server sent them in, so dumps read like the raw response.
type Item struct {
	fields []field
}

type field struct {
	key   string
	value json.RawMessage
}

// Keys returns the field names in order.
func (it Item) Keys() []string {
	keys := make([]string, len(it.fields))
	for i, f := range it.fields {
		keys[i] = f.key
	}
	return keys
}

// Raw returns the undecoded value of key.
func (it Item) Raw(key string) (json.RawMessage, bool) {
	for _, f := range it.fields {
		if f.key == key {
			return f.value, true
		}
	}
	return nil, false
}

// String returns the value of key as text: strings unquoted, null and
// missing fields empty, anything else as its JSON text.
func (it Item) String(key string) string {
	raw, ok := it.Raw(key)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Set replaces the value of key, appending the field when it is new.
func (it *Item) Set(key string, value json.RawMessage) {
	for i, f := range it.fields {
		if f.key == key {
			it.fields[i].value = value
			return
		}
	}
	it.fields = append(it.fields, field{key: key, value: value})
}

// UnmarshalJSON implements json.Unmarshaler.
func (it *Item) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	it.fields = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decoding %q: %w", key, err)
		}
		it.fields = append(it.fields, field{key: key, value: raw})
	}
	_, err = dec.Token()
	return err
}

// MarshalJSON implements json.Marshaler.
func (it Item) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range it.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalString(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		if len(f.value) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(f.value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalString(s string) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
