package report

import (
	"bytes"
	"strings"
)

// Record is an ordered field map for one CSV row. Keys keep their first
// insertion order; setting an existing key replaces its value in place.
type Record struct {
	keys   []string
	values map[string]string
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// Set stores a field value. The first Set of a key fixes its column position.
func (r *Record) Set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the field value, or the empty string for an absent key.
func (r *Record) Get(key string) string {
	return r.values[key]
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	return r.keys
}

// BuildCSV renders rows as UTF-8 CSV with no schema knowledge. The header is
// the union of row keys in first-seen order; every cell is double-quoted
// with internal quotes doubled; a key missing from a row renders as an empty
// quoted cell. The same builder serves day-level visit exports and
// month-level USDA exports.
func BuildCSV(rows []*Record) []byte {
	seen := make(map[string]bool)
	var header []string
	for _, row := range rows {
		for _, k := range row.Keys() {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
	}

	var buf bytes.Buffer
	writeCSVLine(&buf, header, func(k string) string { return k })
	for _, row := range rows {
		buf.WriteByte('\n')
		writeCSVLine(&buf, header, row.Get)
	}
	return buf.Bytes()
}

func writeCSVLine(buf *bytes.Buffer, header []string, value func(string) string) {
	for i, k := range header {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(value(k), `"`, `""`))
		buf.WriteByte('"')
	}
}
