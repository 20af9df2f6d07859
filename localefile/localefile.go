// Package localefile implements reading and writing of flat JSON locale files.
//
// The expected file format is a single JSON object mapping translation-unit
// keys to display strings:
//
//	{
//		"GREETING": "{$ICU}Hello",
//		"home.title": "Welcome"
//	}
//
// Files are written with tab indentation and without HTML escaping so that
// they diff cleanly. Key order is preserved across a read/write cycle.
package localefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/natefinch/atomic"
)

// DefaultIndent is the indentation used for written locale files.
const DefaultIndent = "\t"

// Ext is the file extension of locale files.
const Ext = ".json"

// Map is an ordered key -> string mapping. The zero value is not usable;
// create maps with New.
type Map struct {
	keys   []string
	values map[string]string
}

// New returns an empty Map.
func New() *Map {
	return &Map{values: make(map[string]string)}
}

// Set stores value under key. New keys are appended to the key order,
// existing keys keep their position.
func (m *Map) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *Map) Len() int { return len(m.keys) }

// Values returns a plain map copy, convenient for comparisons and reports.
func (m *Map) Values() map[string]string {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// SortedKeys returns the keys in lexical order.
func (m *Map) SortedKeys() []string {
	keys := m.Keys()
	sort.Strings(keys)
	return keys
}

// Equal reports whether both maps hold the same keys with the same values.
// Key order is not significant.
func (m *Map) Equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}
	for k, v := range m.values {
		ov, ok := o.values[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a JSON locale file.
func ParseFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// Parse parses locale JSON data, preserving key order via json.Decoder.
// Every value must be a string. A repeated key keeps its first position and
// its last value.
func Parse(data []byte) (*Map, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	t, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected {, got %v", t)
	}

	m := New()
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %T", kt)
		}

		vt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		value, ok := vt.(string)
		if !ok {
			return nil, fmt.Errorf("expected string value for key %q, got %T", key, vt)
		}
		m.Set(key, value)
	}

	// Closing brace, then nothing but whitespace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level object")
	}

	return m, nil
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Marshal produces the JSON object in key order. Each entry sits on its own
// line prefixed by indent; an empty map is written as {}. There is no
// trailing newline.
func (m *Map) Marshal(indent string) ([]byte, error) {
	if m.Len() == 0 {
		return []byte("{}"), nil
	}

	var b bytes.Buffer
	b.WriteString("{\n")
	for i, k := range m.keys {
		key, err := jsonString(k)
		if err != nil {
			return nil, err
		}
		value, err := jsonString(m.values[k])
		if err != nil {
			return nil, err
		}
		b.WriteString(indent)
		b.Write(key)
		b.WriteString(": ")
		b.Write(value)
		if i < len(m.keys)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteByte('}')

	return b.Bytes(), nil
}

// WriteFile marshals the map and atomically replaces path with the result.
func (m *Map) WriteFile(path, indent string) error {
	data, err := m.Marshal(indent)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// CopyFile copies src to dst byte for byte, replacing dst atomically.
func CopyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	return writeAtomic(dst, data)
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// jsonString encodes s as a JSON string without escaping <, > and &, and
// with U+2028 and U+2029 written raw, as JavaScript's JSON.stringify does.
func jsonString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return unescapeLineSeparators(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// unescapeLineSeparators replaces the \u2028 and \u2029 escapes emitted by
// encoding/json with the raw characters. Escaped backslashes are skipped
// pairwise so literal text such as `\\u2028` is left alone.
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 == len(b) {
			out = append(out, b[i])
			continue
		}
		if b[i+1] == 'u' && i+6 <= len(b) {
			switch string(b[i+2 : i+6]) {
			case "2028":
				out = append(out, "\u2028"...)
				i += 5
				continue
			case "2029":
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}

// Path returns the locale file path for locale inside dir.
func Path(dir, locale string) string {
	return filepath.Join(dir, locale+Ext)
}
