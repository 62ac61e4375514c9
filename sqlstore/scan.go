package sqlstore

import (
	"errors"
	"strings"

	"github.com/beedata/beekit/table"
)

// Scan returns the rows of [RowStart, RowStop) ordered by key. Column
// selection and the limit are applied per row; the Timestamp option
// restricts cells to versions strictly older than it. Store-side filter
// expressions are not implemented by the sqlite backend.
func (t *tbl) Scan(opts table.ScanOptions) ([]table.Row, error) {
	if opts.Filter != "" {
		return nil, errors.New("filter expressions are not supported by the sqlite store")
	}
	if err := t.exists(); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(`SELECT row_key, col, value, ts FROM cells WHERE table_name = ?`)
	args := []any{t.name}

	if opts.RowStart != "" {
		sb.WriteString(` AND row_key >= ?`)
		args = append(args, opts.RowStart)
	}
	if opts.RowStop != "" {
		sb.WriteString(` AND row_key < ?`)
		args = append(args, opts.RowStop)
	}
	if opts.Timestamp > 0 {
		sb.WriteString(` AND ts < ?`)
		args = append(args, opts.Timestamp)
	}
	if opts.Reverse {
		sb.WriteString(` ORDER BY row_key DESC, col ASC`)
	} else {
		sb.WriteString(` ORDER BY row_key ASC, col ASC`)
	}

	rows, err := t.db.Query(sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []table.Row
	var current *table.Row
	for rows.Next() {
		var (
			rowKey, col string
			value       []byte
			ts          int64
		)
		if err = rows.Scan(&rowKey, &col, &value, &ts); err != nil {
			return nil, err
		}
		if !columnSelected(col, opts.Columns) {
			continue
		}

		if current == nil || current.Key != rowKey {
			if opts.Limit > 0 && len(out) == opts.Limit {
				break
			}
			out = append(out, table.Row{Key: rowKey, Columns: make(map[string]table.Cell)})
			current = &out[len(out)-1]
		}

		cell := table.Cell{Value: value}
		if opts.IncludeTimestamp {
			cell.Timestamp = ts
		}
		current.Columns[col] = cell
	}
	return out, rows.Err()
}

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
