// Package table implements the client-side write and scan pipeline for a
// column-family table store: row-key composition, batched writes driven by a
// declarative family mapping, and paginated range scans over lexicographically
// ordered row keys.
package table

import (
	"fmt"
	"sort"
)

// Field is a single named value of a Record.
type Field struct {
	Name  string
	Value any
}

// Record is an ordered list of fields describing one logical item to be
// written. Order matters: it decides the fan-out order when a mapping entry
// claims "all remaining fields".
type Record []Field

// Get returns the value for name, if present.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// clone returns a copy that can be consumed without touching the caller's
// record.
func (r Record) clone() Record {
	out := make(Record, len(r))
	copy(out, r)
	return out
}

// take removes the first field named name and returns its value.
func (r *Record) take(name string) (any, bool) {
	for i, f := range *r {
		if f.Name == name {
			*r = append((*r)[:i], (*r)[i+1:]...)
			return f.Value, true
		}
	}
	return nil, false
}

// RecordFromMap builds a Record from a plain map. Field order is the sorted
// key order, so records built this way are deterministic.
func RecordFromMap(m map[string]any) Record {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)

	rec := make(Record, 0, len(m))
	for _, name := range names {
		rec = append(rec, Field{Name: name, Value: m[name]})
	}
	return rec
}

// Cell is one column value of a scanned row. Timestamp is only populated when
// the scan requested it.
type Cell struct {
	Value     []byte
	Timestamp int64
}

// Row is one scanned row: its key and the cells keyed by the composite
// "family:qualifier" column id.
type Row struct {
	Key     string
	Columns map[string]Cell
}

// stringify renders a field value the way it is stored on the wire. The store
// model is string-typed: original types are not preserved.
func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
