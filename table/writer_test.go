package table

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testRecords(n int) []Record {
	recs := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		recs = append(recs, Record{
			{Name: "id", Value: fmt.Sprintf("id-%02d", i)},
			{Name: "value", Value: i},
		})
	}
	return recs
}

func TestNewWriter(t *testing.T) {
	t.Parallel()

	t.Run("empty config", func(t *testing.T) {
		got, err := NewWriter(&WriterConfig{})
		require.Error(t, err)
		require.Nil(t, got)
	})

	t.Run("valid config applies defaults", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		got, err := NewWriter(&WriterConfig{
			Connector: NewMockConnector(ctrl),
			Table:     "readings",
			Mapping:   Mapping{{Family: "cf", Select: AllFields()}},
		})
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, defaultBatchSize, got.batchSize)
	})
}

func TestWriter_Save_FlushCadence(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		records   int
		batchSize int
		wantSends int
	}{
		"remainder flush":     {records: 5, batchSize: 2, wantSends: 3},
		"exact multiple":      {records: 4, batchSize: 2, wantSends: 2},
		"single short batch":  {records: 1, batchSize: 100, wantSends: 1},
		"zero records no ops": {records: 0, batchSize: 2, wantSends: 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)

			mockBatch := NewMockBatch(ctrl)
			mockBatch.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil).Times(tc.records)
			mockBatch.EXPECT().Send().Return(nil).Times(tc.wantSends)

			mockTable := NewMockTable(ctrl)
			mockTable.EXPECT().Batch().Return(mockBatch)

			mockConn := NewMockConn(ctrl)
			mockConn.EXPECT().EnsureTable("readings", []string{"cf"}).Return(TableCreated, nil)
			mockConn.EXPECT().Table("readings").Return(mockTable)
			mockConn.EXPECT().Close().Return(nil)

			mockConnector := NewMockConnector(ctrl)
			mockConnector.EXPECT().Connect().Return(mockConn, nil)

			w, err := NewWriter(&WriterConfig{
				Connector: mockConnector,
				Table:     "readings",
				Mapping:   Mapping{{Family: "cf", Select: AllFields()}},
				BatchSize: tc.batchSize,
			})
			req.NoError(err)
			req.NoError(w.Save(testRecords(tc.records)))
		})
	}
}

func TestWriter_Save_ColumnFanOut(t *testing.T) {
	t.Parallel()
	req := require.New(t)
	ctrl := gomock.NewController(t)

	var gotKey string
	var gotColumns map[string]string

	mockBatch := NewMockBatch(ctrl)
	mockBatch.EXPECT().
		Put(gomock.Any(), gomock.Any()).
		DoAndReturn(func(rowKey string, columns map[string]string) error {
			gotKey = rowKey
			gotColumns = columns
			return nil
		})
	mockBatch.EXPECT().Send().Return(nil)

	mockTable := NewMockTable(ctrl)
	mockTable.EXPECT().Batch().Return(mockBatch)

	mockConn := NewMockConn(ctrl)
	mockConn.EXPECT().EnsureTable("readings", []string{"info", "data"}).Return(TableExists, nil)
	mockConn.EXPECT().Table("readings").Return(mockTable)
	mockConn.EXPECT().Close().Return(nil)

	mockConnector := NewMockConnector(ctrl)
	mockConnector.EXPECT().Connect().Return(mockConn, nil)

	w, err := NewWriter(&WriterConfig{
		Connector: mockConnector,
		Table:     "readings",
		Mapping: Mapping{
			{Family: "info", Select: Columns("sensor")},
			{Family: "data", Select: AllFields()},
		},
		RowFields: []string{"building", "device"},
	})
	req.NoError(err)

	record := Record{
		{Name: "building", Value: "b1"},
		{Name: "device", Value: 7},
		{Name: "sensor", Value: "temp"},
		{Name: "value", Value: 21.5},
	}
	req.NoError(w.Save([]Record{record}))

	req.Equal("b1~7", gotKey)
	req.Equal(map[string]string{
		"info:sensor": "temp",
		"data:value":  "21.5",
	}, gotColumns, "row-key fields must not reappear as column data")

	// The caller's record is untouched.
	req.Len(record, 4)
}

func TestWriter_Save_AutoKeys(t *testing.T) {
	t.Parallel()
	req := require.New(t)
	ctrl := gomock.NewController(t)

	var keys []string

	mockBatch := NewMockBatch(ctrl)
	mockBatch.EXPECT().
		Put(gomock.Any(), gomock.Any()).
		DoAndReturn(func(rowKey string, _ map[string]string) error {
			keys = append(keys, rowKey)
			return nil
		}).
		Times(3)
	mockBatch.EXPECT().Send().Return(nil)

	mockTable := NewMockTable(ctrl)
	mockTable.EXPECT().Batch().Return(mockBatch)

	mockConn := NewMockConn(ctrl)
	mockConn.EXPECT().EnsureTable(gomock.Any(), gomock.Any()).Return(TableCreated, nil)
	mockConn.EXPECT().Table(gomock.Any()).Return(mockTable)
	mockConn.EXPECT().Close().Return(nil)

	mockConnector := NewMockConnector(ctrl)
	mockConnector.EXPECT().Connect().Return(mockConn, nil)

	w, err := NewWriter(&WriterConfig{
		Connector: mockConnector,
		Table:     "readings",
		Mapping:   Mapping{{Family: "cf", Select: AllFields()}},
	})
	req.NoError(err)
	req.NoError(w.Save(testRecords(3)))

	req.Len(keys, 3)
	runID := strings.SplitN(keys[0], "~", 2)[0]
	for i, key := range keys {
		req.Equal(fmt.Sprintf("%s~%d", runID, i), key)
	}
}

func TestWriter_Save_Failures(t *testing.T) {
	t.Parallel()

	mapping := Mapping{{Family: "cf", Select: AllFields()}}

	t.Run("invalid mapping fails before any store traffic", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)

		// No Connect expectation: the mapping is rejected up front, so no
		// partial batch can have been sent.
		mockConnector := NewMockConnector(ctrl)

		w, err := NewWriter(&WriterConfig{
			Connector: mockConnector,
			Table:     "readings",
			Mapping:   Mapping{{Family: "cf", Select: Selector{}}},
			BatchSize: 1,
		})
		req.NoError(err)

		err = w.Save(testRecords(3))
		req.True(errors.Is(err, ErrInvalidMapping))
	})

	t.Run("connect failure", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)

		mockConnector := NewMockConnector(ctrl)
		mockConnector.EXPECT().Connect().Return(nil, errors.New("store unreachable"))

		w, err := NewWriter(&WriterConfig{
			Connector: mockConnector,
			Table:     "readings",
			Mapping:   mapping,
		})
		req.NoError(err)

		err = w.Save(testRecords(1))
		req.True(errors.Is(err, ErrWriteFailed))
	})

	t.Run("table acquisition failure aborts the session", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)

		mockConn := NewMockConn(ctrl)
		mockConn.EXPECT().EnsureTable(gomock.Any(), gomock.Any()).Return(CreateStatus(0), errors.New("quota exceeded"))
		mockConn.EXPECT().Close().Return(nil)

		mockConnector := NewMockConnector(ctrl)
		mockConnector.EXPECT().Connect().Return(mockConn, nil)

		w, err := NewWriter(&WriterConfig{
			Connector: mockConnector,
			Table:     "readings",
			Mapping:   mapping,
		})
		req.NoError(err)

		err = w.Save(testRecords(1))
		req.True(errors.Is(err, ErrTableAcquire))
	})

	t.Run("flush failure is fatal", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)

		mockBatch := NewMockBatch(ctrl)
		mockBatch.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil).Times(2)
		mockBatch.EXPECT().Send().Return(errors.New("rpc failed"))

		mockTable := NewMockTable(ctrl)
		mockTable.EXPECT().Batch().Return(mockBatch)

		mockConn := NewMockConn(ctrl)
		mockConn.EXPECT().EnsureTable(gomock.Any(), gomock.Any()).Return(TableExists, nil)
		mockConn.EXPECT().Table(gomock.Any()).Return(mockTable)
		mockConn.EXPECT().Close().Return(nil)

		mockConnector := NewMockConnector(ctrl)
		mockConnector.EXPECT().Connect().Return(mockConn, nil)

		w, err := NewWriter(&WriterConfig{
			Connector: mockConnector,
			Table:     "readings",
			Mapping:   mapping,
			BatchSize: 2,
		})
		req.NoError(err)

		err = w.Save(testRecords(5))
		req.True(errors.Is(err, ErrWriteFailed))
	})
}
