package memstore

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/beedata/beekit/table"
)

// Scan returns the rows of [RowStart, RowStop) in key order. Column selection
// accepts family names and "family:qualifier" ids; Timestamp restricts cells
// to versions strictly older than it; Reverse flips the traversal order of
// the selected range. Store-side filter expressions are not implemented by
// the memory backend.
func (t *tbl) Scan(opts table.ScanOptions) ([]table.Row, error) {
	if opts.Filter != "" {
		return nil, errors.New("filter expressions are not supported by the memory store")
	}

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	td, ok := t.store.tables[t.name]
	if !ok {
		return nil, fmt.Errorf("table not found: %s", t.name)
	}

	keys := make([]string, 0, len(td.rows))
	for key := range td.rows {
		if opts.RowStart != "" && key < opts.RowStart {
			continue
		}
		if opts.RowStop != "" && key >= opts.RowStop {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if opts.Reverse {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}

	rows := make([]table.Row, 0, len(keys))
	for _, key := range keys {
		if opts.Limit > 0 && len(rows) == opts.Limit {
			break
		}

		columns := make(map[string]table.Cell)
		for col, versions := range td.rows[key] {
			if !columnSelected(col, opts.Columns) {
				continue
			}
			v, ok := latestVersion(versions, opts.Timestamp)
			if !ok {
				continue
			}
			cell := table.Cell{Value: append([]byte(nil), v.value...)}
			if opts.IncludeTimestamp {
				cell.Timestamp = v.ts
			}
			columns[col] = cell
		}
		if len(columns) == 0 {
			continue
		}
		rows = append(rows, table.Row{Key: key, Columns: columns})
	}
	return rows, nil
}

// columnSelected reports whether col survives the selection list. An empty
// list selects everything.
func columnSelected(col string, selection []string) bool {
	if len(selection) == 0 {
		return true
	}
	for _, sel := range selection {
		if col == sel || strings.HasPrefix(col, sel+":") {
			return true
		}
	}
	return false
}

// latestVersion picks the newest version, or the newest version strictly
// older than cutoff when cutoff is non-zero.
func latestVersion(versions []version, cutoff int64) (version, bool) {
	for i := len(versions) - 1; i >= 0; i-- {
		if cutoff > 0 && versions[i].ts >= cutoff {
			continue
		}
		return versions[i], true
	}
	return version{}, false
}
