// Package memstore is an in-memory implementation of the table store client
// boundary. It keeps the data in the rowKey → column → versioned-values shape
// a column-family store exposes, with lexicographically sorted scans. It
// backs the core tests and the CLI's ad-hoc memory mode.
package memstore

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/beedata/beekit/table"
)

// Store holds the tables. It is safe for concurrent use; every session handed
// out by Connect shares the same data.
type Store struct {
	mu       sync.RWMutex
	tables   map[string]*tableData
	connects atomic.Int64
}

type tableData struct {
	families map[string]struct{}
	// rows maps rowKey → "family:qualifier" → versions in write order.
	rows map[string]map[string][]version
}

type version struct {
	value []byte
	ts    int64
}

func New() *Store {
	return &Store{
		tables: make(map[string]*tableData),
	}
}

// Connect implements table.Connector. Sessions are cheap: they share the
// store's maps and Close is a no-op.
func (s *Store) Connect() (table.Conn, error) {
	s.connects.Add(1)
	return &conn{store: s}, nil
}

// Connects reports how many sessions have been handed out. Scan tests use it
// to pin the one-session-per-round behavior.
func (s *Store) Connects() int64 {
	return s.connects.Load()
}

type conn struct {
	store *Store
}

func (c *conn) EnsureTable(name string, families []string) (table.CreateStatus, error) {
	if name == "" {
		return 0, errors.New("table name is empty")
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if _, exists := c.store.tables[name]; exists {
		return table.TableExists, nil
	}

	td := &tableData{
		families: make(map[string]struct{}, len(families)),
		rows:     make(map[string]map[string][]version),
	}
	for _, f := range families {
		td.families[f] = struct{}{}
	}
	c.store.tables[name] = td
	return table.TableCreated, nil
}

func (c *conn) Table(name string) table.Table {
	return &tbl{store: c.store, name: name}
}

func (c *conn) Tables() ([]string, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	names := make([]string, 0, len(c.store.tables))
	for name := range c.store.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (c *conn) Close() error {
	return nil
}

type tbl struct {
	store *Store
	name  string
}

func (t *tbl) Batch() table.Batch {
	return &batch{store: t.store, table: t.name}
}

type stagedPut struct {
	rowKey  string
	columns map[string]string
}

type batch struct {
	store   *Store
	table   string
	pending []stagedPut
}

func (b *batch) Put(rowKey string, columns map[string]string) error {
	if rowKey == "" {
		return errors.New("row key is empty")
	}
	staged := make(map[string]string, len(columns))
	for k, v := range columns {
		staged[k] = v
	}
	b.pending = append(b.pending, stagedPut{rowKey: rowKey, columns: staged})
	return nil
}

func (b *batch) Send() error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	td, ok := b.store.tables[b.table]
	if !ok {
		return fmt.Errorf("table not found: %s", b.table)
	}

	now := time.Now().UnixNano()
	for _, p := range b.pending {
		for col, val := range p.columns {
			family := columnFamily(col)
			if len(td.families) > 0 {
				if _, allowed := td.families[family]; !allowed {
					return fmt.Errorf("column family not allowed: %s", family)
				}
			}
			row, exists := td.rows[p.rowKey]
			if !exists {
				row = make(map[string][]version)
				td.rows[p.rowKey] = row
			}
			row[col] = append(row[col], version{value: []byte(val), ts: now})
		}
	}
	b.pending = b.pending[:0]
	return nil
}

func columnFamily(col string) string {
	for i := 0; i < len(col); i++ {
		if col[i] == ':' {
			return col[:i]
		}
	}
	return col
}
