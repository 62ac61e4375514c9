package sqlstore

import (
	"path/filepath"
	"testing"

	"github.com/beedata/beekit/table"
	"github.com/stretchr/testify/require"
)

func newConnector(t *testing.T) *Connector {
	t.Helper()
	c, err := New(&Config{Path: filepath.Join(t.TempDir(), "store.db")})
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("empty config", func(t *testing.T) {
		got, err := New(&Config{})
		require.Error(t, err)
		require.Nil(t, got)
	})

	t.Run("valid config", func(t *testing.T) {
		got, err := New(&Config{Path: filepath.Join(t.TempDir(), "store.db")})
		require.NoError(t, err)
		require.NotNil(t, got)
	})
}

func TestConnector_EnsureTable(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	connector := newConnector(t)
	conn, err := connector.Connect()
	req.NoError(err)
	defer func() { req.NoError(conn.Close()) }()

	status, err := conn.EnsureTable("readings", []string{"info", "data"})
	req.NoError(err)
	req.Equal(table.TableCreated, status)

	// Acquisition is idempotent across sessions.
	conn2, err := connector.Connect()
	req.NoError(err)
	defer func() { req.NoError(conn2.Close()) }()

	status, err = conn2.EnsureTable("readings", []string{"info", "data"})
	req.NoError(err)
	req.Equal(table.TableExists, status)

	names, err := conn2.Tables()
	req.NoError(err)
	req.Equal([]string{"readings"}, names)
}

func TestBatch_PutScan(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	connector := newConnector(t)
	conn, err := connector.Connect()
	req.NoError(err)
	defer func() { req.NoError(conn.Close()) }()

	_, err = conn.EnsureTable("t", []string{"cf"})
	req.NoError(err)

	batch := conn.Table("t").Batch()
	req.NoError(batch.Put("b", map[string]string{"cf:v": "2"}))
	req.NoError(batch.Put("a", map[string]string{"cf:v": "1"}))
	req.NoError(batch.Put("c", map[string]string{"cf:v": "3"}))
	req.NoError(batch.Send())

	rows, err := conn.Table("t").Scan(table.ScanOptions{})
	req.NoError(err)
	req.Len(rows, 3)
	req.Equal("a", rows[0].Key)
	req.Equal("b", rows[1].Key)
	req.Equal("c", rows[2].Key)
	req.Equal([]byte("1"), rows[0].Columns["cf:v"].Value)

	rows, err = conn.Table("t").Scan(table.ScanOptions{RowStart: "b", Limit: 1})
	req.NoError(err)
	req.Len(rows, 1)
	req.Equal("b", rows[0].Key)

	rows, err = conn.Table("t").Scan(table.ScanOptions{Reverse: true})
	req.NoError(err)
	req.Equal("c", rows[0].Key)

	// Rewriting a cell keeps the latest value.
	batch = conn.Table("t").Batch()
	req.NoError(batch.Put("a", map[string]string{"cf:v": "updated"}))
	req.NoError(batch.Send())

	rows, err = conn.Table("t").Scan(table.ScanOptions{RowStop: "b"})
	req.NoError(err)
	req.Len(rows, 1)
	req.Equal([]byte("updated"), rows[0].Columns["cf:v"].Value)

	// Unknown family is rejected and nothing from the batch lands.
	batch = conn.Table("t").Batch()
	req.NoError(batch.Put("z", map[string]string{"nope:v": "x"}))
	req.Error(batch.Send())

	rows, err = conn.Table("t").Scan(table.ScanOptions{RowStart: "z"})
	req.NoError(err)
	req.Empty(rows)
}

func TestScan_Failures(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	connector := newConnector(t)
	conn, err := connector.Connect()
	req.NoError(err)
	defer func() { req.NoError(conn.Close()) }()

	_, err = conn.Table("missing").Scan(table.ScanOptions{})
	req.Error(err)

	_, err = conn.EnsureTable("t", []string{"cf"})
	req.NoError(err)

	_, err = conn.Table("t").Scan(table.ScanOptions{Filter: "x"})
	req.Error(err)
}

func TestPipelineOverSqlite(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	connector := newConnector(t)

	w, err := table.NewWriter(&table.WriterConfig{
		Connector: connector,
		Table:     "readings",
		Mapping: table.Mapping{
			{Family: "cf", Select: table.AllFields()},
		},
		RowFields: []string{"id"},
		BatchSize: 2,
	})
	req.NoError(err)

	records := []table.Record{
		{{Name: "id", Value: "r1"}, {Name: "v", Value: 1}},
		{{Name: "id", Value: "r2"}, {Name: "v", Value: 2}},
		{{Name: "id", Value: "r3"}, {Name: "v", Value: 3}},
	}
	req.NoError(w.Save(records))

	sc, err := table.NewScanner(&table.ScannerConfig{
		Connector: connector,
		Table:     "readings",
		RowPrefix: "r",
		BatchSize: 2,
	})
	req.NoError(err)

	var keys []string
	for sc.Next() {
		for _, row := range sc.Batch() {
			keys = append(keys, row.Key)
		}
	}
	req.NoError(sc.Err())
	req.Equal([]string{"r1", "r2", "r3"}, keys)
}
