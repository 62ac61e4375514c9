package table

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func mkRows(keys ...string) []Row {
	rows := make([]Row, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, Row{
			Key:     key,
			Columns: map[string]Cell{"cf:v": {Value: []byte("x")}},
		})
	}
	return rows
}

// expectRound wires one scan round: a fresh session, one scan, one close.
func expectRound(ctrl *gomock.Controller, connector *MockConnector, table string, opts ScanOptions, rows []Row, scanErr error) {
	mockTable := NewMockTable(ctrl)
	mockTable.EXPECT().Scan(opts).Return(rows, scanErr)

	mockConn := NewMockConn(ctrl)
	mockConn.EXPECT().Table(table).Return(mockTable)
	mockConn.EXPECT().Close().Return(nil)

	connector.EXPECT().Connect().Return(mockConn, nil)
}

func TestNewScanner(t *testing.T) {
	t.Parallel()

	t.Run("empty config", func(t *testing.T) {
		got, err := NewScanner(&ScannerConfig{})
		require.Error(t, err)
		require.Nil(t, got)
	})

	t.Run("negative limit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		got, err := NewScanner(&ScannerConfig{
			Connector: NewMockConnector(ctrl),
			Table:     "t",
			Limit:     -1,
		})
		require.Error(t, err)
		require.Nil(t, got)
	})

	t.Run("prefix derives the range", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		got, err := NewScanner(&ScannerConfig{
			Connector: NewMockConnector(ctrl),
			Table:     "t",
			RowPrefix: "user:9",
			RowStart:  "ignored",
			RowStop:   "ignored",
		})
		require.NoError(t, err)
		require.Equal(t, "user:9", got.rowStart)
		require.Equal(t, "user::", got.rowStop)
	})

	t.Run("first round limit reconciles with the cap", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		got, err := NewScanner(&ScannerConfig{
			Connector: NewMockConnector(ctrl),
			Table:     "t",
			BatchSize: 100,
			Limit:     40,
		})
		require.NoError(t, err)
		require.Equal(t, 40, got.currentLimit)
	})
}

func TestScanner_Advancement(t *testing.T) {
	t.Parallel()
	req := require.New(t)
	ctrl := gomock.NewController(t)

	connector := NewMockConnector(ctrl)

	round := ScanOptions{BatchSize: 2, Limit: 2}
	expectRound(ctrl, connector, "t", round, mkRows("k1", "k2"), nil)

	// Second round starts past the last key seen: "k2" incremented is "k3".
	round2 := round
	round2.RowStart = "k3"
	expectRound(ctrl, connector, "t", round2, mkRows("k3"), nil)

	sc, err := NewScanner(&ScannerConfig{
		Connector: connector,
		Table:     "t",
		BatchSize: 2,
	})
	req.NoError(err)

	req.True(sc.Next())
	req.Equal(mkRows("k1", "k2"), sc.Batch())

	// A single-row round is yielded, then the scan terminates even if more
	// rows would exist past it.
	req.True(sc.Next())
	req.Equal(mkRows("k3"), sc.Batch())

	req.False(sc.Next())
	req.NoError(sc.Err())
}

func TestScanner_LimitReconciliation(t *testing.T) {
	t.Parallel()
	req := require.New(t)
	ctrl := gomock.NewController(t)

	keys := func(from, n int) []string {
		out := make([]string, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, fmt.Sprintf("k%04d", from+i))
		}
		return out
	}

	connector := NewMockConnector(ctrl)

	round1 := ScanOptions{BatchSize: 100, Limit: 100}
	expectRound(ctrl, connector, "t", round1, mkRows(keys(0, 100)...), nil)

	// 100 of 150 consumed: the next round asks for the remaining 50,
	// starting past "k0099".
	round2 := ScanOptions{BatchSize: 100, Limit: 50, RowStart: "k009:"}
	expectRound(ctrl, connector, "t", round2, mkRows(keys(100, 50)...), nil)

	sc, err := NewScanner(&ScannerConfig{
		Connector: connector,
		Table:     "t",
		BatchSize: 100,
		Limit:     150,
	})
	req.NoError(err)

	total := 0
	for sc.Next() {
		total += len(sc.Batch())
	}
	req.NoError(sc.Err())
	req.Equal(150, total, "rows yielded never exceed the limit")
}

func TestScanner_Terminations(t *testing.T) {
	t.Parallel()

	t.Run("empty first round is exhaustion, not an error", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)

		connector := NewMockConnector(ctrl)
		expectRound(ctrl, connector, "t", ScanOptions{BatchSize: 10, Limit: 10}, nil, nil)

		sc, err := NewScanner(&ScannerConfig{Connector: connector, Table: "t", BatchSize: 10})
		req.NoError(err)
		req.False(sc.Next())
		req.NoError(sc.Err())
	})

	t.Run("scan failure surfaces and ends the sequence", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)

		connector := NewMockConnector(ctrl)
		expectRound(ctrl, connector, "t", ScanOptions{BatchSize: 10, Limit: 10}, nil, errors.New("region offline"))

		sc, err := NewScanner(&ScannerConfig{Connector: connector, Table: "t", BatchSize: 10})
		req.NoError(err)
		req.False(sc.Next())
		req.True(errors.Is(sc.Err(), ErrScanFailed))

		// The cursor stays dead.
		req.False(sc.Next())
	})

	t.Run("connect failure surfaces", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)

		connector := NewMockConnector(ctrl)
		connector.EXPECT().Connect().Return(nil, errors.New("store unreachable"))

		sc, err := NewScanner(&ScannerConfig{Connector: connector, Table: "t", BatchSize: 10})
		req.NoError(err)
		req.False(sc.Next())
		req.True(errors.Is(sc.Err(), ErrScanFailed))
	})

	t.Run("limit reached exactly on a full round", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)

		connector := NewMockConnector(ctrl)
		expectRound(ctrl, connector, "t", ScanOptions{BatchSize: 2, Limit: 2}, mkRows("a", "b"), nil)

		sc, err := NewScanner(&ScannerConfig{Connector: connector, Table: "t", BatchSize: 2, Limit: 2})
		req.NoError(err)

		req.True(sc.Next())
		req.Len(sc.Batch(), 2)
		req.False(sc.Next(), "limit reached: no further round is issued")
		req.NoError(sc.Err())
	})
}

func TestScanner_OptionPassthrough(t *testing.T) {
	t.Parallel()
	req := require.New(t)
	ctrl := gomock.NewController(t)

	connector := NewMockConnector(ctrl)
	expected := ScanOptions{
		RowStart:         "a",
		RowStop:          "z",
		Columns:          []string{"cf:v", "meta"},
		Filter:           "SingleColumnValueFilter('cf','v',=,'binary:x')",
		Timestamp:        12345,
		IncludeTimestamp: true,
		BatchSize:        7,
		ScanBatching:     3,
		Limit:            7,
		SortedColumns:    true,
		Reverse:          true,
	}
	expectRound(ctrl, connector, "t", expected, nil, nil)

	sc, err := NewScanner(&ScannerConfig{
		Connector:        connector,
		Table:            "t",
		RowStart:         "a",
		RowStop:          "z",
		Columns:          []string{"cf:v", "meta"},
		Filter:           "SingleColumnValueFilter('cf','v',=,'binary:x')",
		Timestamp:        12345,
		IncludeTimestamp: true,
		BatchSize:        7,
		ScanBatching:     3,
		SortedColumns:    true,
		Reverse:          true,
	})
	req.NoError(err)
	req.False(sc.Next())
	req.NoError(sc.Err())
}
