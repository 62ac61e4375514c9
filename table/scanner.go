package table

import (
	"errors"

	"github.com/rs/zerolog/log"
)

const defaultScanBatchSize = 100000

// Scanner pulls row batches out of a key range one round at a time. Each call
// to Next dials a fresh store session, scans one bounded round and releases
// the session before returning, so no connection is held open between
// batches and abandoning the scan leaves nothing to clean up.
//
// The scan ends on an empty round, on a round that returned a single row, or
// when the configured limit is reached. The single-row rule is a terminal
// heuristic: advancing past a lone row cannot be done without risking
// re-returning it, so a range whose remainder is exactly one row past a full
// batch is truncated by one row.
type Scanner struct {
	connector Connector
	table     string
	opts      ScanOptions

	batchSize    int
	limit        int
	rowStart     string
	rowStop      string
	currentLimit int
	returned     int

	batch []Row
	err   error
	done  bool
}

type ScannerConfig struct {
	// Connector hands out one store session per scan round.
	Connector Connector
	// Table is the table to scan.
	Table string

	// RowStart and RowStop bound the scanned range [RowStart, RowStop).
	RowStart string
	RowStop  string
	// RowPrefix, when set, overrides RowStart/RowStop with the tight range
	// covering exactly the keys beginning with the prefix.
	RowPrefix string

	// Columns, Filter, Timestamp, IncludeTimestamp, ScanBatching,
	// SortedColumns and Reverse are passed through to the store unmodified.
	Columns          []string
	Filter           string
	Timestamp        int64
	IncludeTimestamp bool
	ScanBatching     int
	SortedColumns    bool
	Reverse          bool

	// BatchSize is the number of rows requested per round. Defaults to 100000.
	BatchSize int
	// Limit caps the total rows returned across all rounds. Zero means no cap.
	Limit int
}

func (c *ScannerConfig) validate() error {
	var errGrp []error
	if c.Connector == nil {
		errGrp = append(errGrp, errors.New("connector is required"))
	}
	if c.Table == "" {
		errGrp = append(errGrp, errors.New("table name is required"))
	}
	if c.BatchSize < 0 {
		errGrp = append(errGrp, errors.New("batch size cannot be negative"))
	}
	if c.Limit < 0 {
		errGrp = append(errGrp, errors.New("limit cannot be negative"))
	}
	return errors.Join(errGrp...)
}

// NewScanner creates a scan cursor over one key range.
func NewScanner(cfg *ScannerConfig) (*Scanner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = defaultScanBatchSize
	}

	rowStart, rowStop := cfg.RowStart, cfg.RowStop
	if cfg.RowPrefix != "" {
		rowStart, rowStop = PrefixRange(cfg.RowPrefix)
	}

	currentLimit := batchSize
	if cfg.Limit > 0 && cfg.Limit < batchSize {
		currentLimit = cfg.Limit
	}

	return &Scanner{
		connector: cfg.Connector,
		table:     cfg.Table,
		opts: ScanOptions{
			Columns:          cfg.Columns,
			Filter:           cfg.Filter,
			Timestamp:        cfg.Timestamp,
			IncludeTimestamp: cfg.IncludeTimestamp,
			BatchSize:        batchSize,
			ScanBatching:     cfg.ScanBatching,
			SortedColumns:    cfg.SortedColumns,
			Reverse:          cfg.Reverse,
		},
		batchSize:    batchSize,
		limit:        cfg.Limit,
		rowStart:     rowStart,
		rowStop:      rowStop,
		currentLimit: currentLimit,
	}, nil
}

// Next runs one scan round. It reports whether a batch is available via
// Batch; once it returns false the scan is over and Err holds any failure.
func (s *Scanner) Next() bool {
	if s.done || s.err != nil {
		return false
	}

	rows, err := s.scanRound()
	if err != nil {
		s.err = newError(ErrScanFailed, "table %s: %v", s.table, err)
		s.done = true
		return false
	}

	if len(rows) == 0 {
		// Exhausted.
		s.done = true
		return false
	}

	s.batch = rows
	if len(rows) == 1 {
		// Single-row terminal round.
		s.done = true
		return true
	}

	s.returned += len(rows)
	if s.limit > 0 {
		if s.returned >= s.limit {
			s.done = true
			return true
		}
		s.currentLimit = min(s.batchSize, s.limit-s.returned)
	}

	// Advance the lower bound just past the last key seen.
	s.rowStart = IncrementKey(rows[len(rows)-1].Key)

	log.Debug().
		Str("table", s.table).
		Str("next_start", s.rowStart).
		Int("returned", s.returned).
		Msg("scan round complete")
	return true
}

// scanRound dials a fresh session, runs one bounded scan and releases the
// session.
func (s *Scanner) scanRound() ([]Row, error) {
	conn, err := s.connector.Connect()
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Debug().Err(cerr).Msg("closing scan session")
		}
	}()

	opts := s.opts
	opts.RowStart = s.rowStart
	opts.RowStop = s.rowStop
	opts.Limit = s.currentLimit
	return conn.Table(s.table).Scan(opts)
}

// Batch returns the rows of the most recent round. Valid until the next call
// to Next.
func (s *Scanner) Batch() []Row {
	return s.batch
}

// Err returns the failure that ended the scan, if any. All regular
// terminations (exhaustion, single-row round, limit reached) leave it nil.
func (s *Scanner) Err() error {
	return s.err
}
