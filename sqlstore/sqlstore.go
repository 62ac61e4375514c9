// Package sqlstore is a SQLite-backed implementation of the table store
// client boundary: a persistent local backend with the same row/column-family
// model the remote store exposes. Each cell keeps its latest version only.
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/beedata/beekit/table"

	_ "modernc.org/sqlite"
)

type Config struct {
	// Path is the SQLite database file.
	Path string
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Path == "" {
		errGrp = append(errGrp, errors.New("database path is required"))
	}
	return errors.Join(errGrp...)
}

// Connector opens one database handle per session, matching the
// fresh-session-per-round contract of the scan cursor.
type Connector struct {
	path string
}

func New(cfg *Config) (*Connector, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Connector{path: cfg.Path}, nil
}

// Connect implements table.Connector.
func (c *Connector) Connect() (table.Conn, error) {
	db, err := sql.Open("sqlite", c.path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &conn{db: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS tables (
		name TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS families (
		table_name TEXT NOT NULL,
		family TEXT NOT NULL,
		PRIMARY KEY (table_name, family)
	);

	CREATE TABLE IF NOT EXISTS cells (
		table_name TEXT NOT NULL,
		row_key TEXT NOT NULL,
		col TEXT NOT NULL,
		value BLOB NOT NULL,
		ts INTEGER NOT NULL,
		PRIMARY KEY (table_name, row_key, col)
	);

	CREATE INDEX IF NOT EXISTS idx_cells_scan ON cells(table_name, row_key);
	`
	_, err := db.Exec(schema)
	return err
}

type conn struct {
	db *sql.DB
}

func (c *conn) EnsureTable(name string, families []string) (table.CreateStatus, error) {
	if name == "" {
		return 0, errors.New("table name is empty")
	}

	res, err := c.db.Exec(`INSERT INTO tables(name) VALUES(?) ON CONFLICT(name) DO NOTHING`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to create table record: %w", err)
	}

	for _, family := range families {
		if _, err = c.db.Exec(
			`INSERT INTO families(table_name, family) VALUES(?, ?) ON CONFLICT(table_name, family) DO NOTHING`,
			name, family,
		); err != nil {
			return 0, fmt.Errorf("failed to register family %s: %w", family, err)
		}
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if inserted == 0 {
		return table.TableExists, nil
	}
	return table.TableCreated, nil
}

func (c *conn) Table(name string) table.Table {
	return &tbl{db: c.db, name: name}
}

func (c *conn) Tables() ([]string, error) {
	rows, err := c.db.Query(`SELECT name FROM tables ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (c *conn) Close() error {
	return c.db.Close()
}

type tbl struct {
	db   *sql.DB
	name string
}

func (t *tbl) exists() error {
	var one int
	err := t.db.QueryRow(`SELECT 1 FROM tables WHERE name = ?`, t.name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("table not found: %s", t.name)
	}
	return err
}

func (t *tbl) Batch() table.Batch {
	return &batch{tbl: t}
}

type stagedPut struct {
	rowKey  string
	columns map[string]string
}

type batch struct {
	tbl     *tbl
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

// Send flushes the staged puts in one transaction: the whole batch lands or
// none of it does.
func (b *batch) Send() error {
	if err := b.tbl.exists(); err != nil {
		return err
	}

	allowed, err := b.tbl.allowedFamilies()
	if err != nil {
		return err
	}

	tx, err := b.tbl.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}

	now := time.Now().UnixNano()
	for _, p := range b.pending {
		for col, val := range p.columns {
			if len(allowed) > 0 {
				if _, ok := allowed[columnFamily(col)]; !ok {
					_ = tx.Rollback()
					return fmt.Errorf("column family not allowed: %s", columnFamily(col))
				}
			}
			if _, err = tx.Exec(
				`INSERT INTO cells(table_name, row_key, col, value, ts) VALUES(?, ?, ?, ?, ?)
				 ON CONFLICT(table_name, row_key, col) DO UPDATE SET value = excluded.value, ts = excluded.ts`,
				b.tbl.name, p.rowKey, col, []byte(val), now,
			); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("failed to put row %s: %w", p.rowKey, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	b.pending = b.pending[:0]
	return nil
}

func (t *tbl) allowedFamilies() (map[string]struct{}, error) {
	rows, err := t.db.Query(`SELECT family FROM families WHERE table_name = ?`, t.name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	allowed := make(map[string]struct{})
	for rows.Next() {
		var family string
		if err = rows.Scan(&family); err != nil {
			return nil, err
		}
		allowed[family] = struct{}{}
	}
	return allowed, rows.Err()
}

func columnFamily(col string) string {
	for i := 0; i < len(col); i++ {
		if col[i] == ':' {
			return col[:i]
		}
	}
	return col
}
