package parser

import (
	"path/filepath"
	"strings"
)

// Record is one parsed data row. All records produced by a single Parse call
// share the same header, so their field sets are identical.
type Record struct {
	h      *header
	values []string
}

type header struct {
	names []string
	index map[string]int
}

func newHeader(line string, delim rune) *header {
	parts := strings.Split(line, string(delim))
	h := &header{names: make([]string, len(parts)), index: make(map[string]int, len(parts))}
	for i, p := range parts {
		name := strings.TrimSpace(p)
		h.names[i] = name
		// later columns win on duplicate names
		h.index[name] = i
	}
	return h
}

// Get returns the value for field and whether the field exists in the header.
func (r Record) Get(field string) (string, bool) {
	if r.h == nil {
		return "", false
	}
	i, ok := r.h.index[field]
	if !ok {
		return "", false
	}
	return r.values[i], true
}

// Fields returns the header names in column order.
func (r Record) Fields() []string {
	if r.h == nil {
		return nil
	}
	out := make([]string, len(r.h.names))
	copy(out, r.h.names)
	return out
}

// Map returns the record as a plain field -> value map.
func (r Record) Map() map[string]string {
	if r.h == nil {
		return map[string]string{}
	}
	m := make(map[string]string, len(r.h.index))
	for name, i := range r.h.index {
		m[name] = r.values[i]
	}
	return m
}

// Parse splits comma-delimited text into records keyed by the header line.
func Parse(content string) []Record {
	return ParseDelimited(content, ',')
}

// ParseDelimited parses content using delim as the field separator.
//
// The first line is the header. Each later non-empty line becomes a record.
// A whitespace-only line yields a record whose fields are all empty. Short
// rows are padded with empty strings and extra values are dropped.
// Quoted fields are not supported; a delimiter inside a value splits it.
func ParseDelimited(content string, delim rune) []Record {
	text := strings.TrimSpace(content)
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	h := newHeader(strings.TrimSuffix(lines[0], "\r"), delim)

	var out []Record
	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		parts := strings.Split(line, string(delim))
		values := make([]string, len(h.names))
		for i := range values {
			if i < len(parts) {
				values[i] = strings.TrimSpace(parts[i])
			}
		}
		out = append(out, Record{h: h, values: values})
	}
	return out
}

// DelimiterFor picks the field separator for a source path.
func DelimiterFor(path string) rune {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	return ','
}
