package table

//go:generate mockgen -destination=client_mock.go -package=table -source=client.go

// CreateStatus is the outcome of table acquisition.
type CreateStatus int

const (
	// TableCreated means the table did not exist and was created.
	TableCreated CreateStatus = iota
	// TableExists means the table was already present. This is a success.
	TableExists
)

// ScanOptions are passed through to the store's scan primitive unmodified.
// The zero value scans a whole table.
type ScanOptions struct {
	// RowStart is the inclusive lower bound of the key range.
	RowStart string
	// RowStop is the exclusive upper bound of the key range. Empty means
	// unbounded.
	RowStop string
	// Columns restricts the returned cells. An entry is either a family name
	// or a "family:qualifier" composite id.
	Columns []string
	// Filter is a store-side filter expression, passed through opaquely.
	Filter string
	// Timestamp, when non-zero, restricts cells to versions older than it.
	Timestamp int64
	// IncludeTimestamp populates Cell.Timestamp on returned cells.
	IncludeTimestamp bool
	// BatchSize is a per-round row-count hint for the store.
	BatchSize int
	// ScanBatching is a per-RPC chunking hint for the store.
	ScanBatching int
	// Limit caps the number of rows this scan call returns. Zero means no cap.
	Limit int
	// SortedColumns asks the store to return cells in sorted column order.
	SortedColumns bool
	// Reverse scans the key range backwards.
	Reverse bool
}

// Connector hands out fresh store sessions. The scan cursor dials a new
// session for every round, so implementations must be cheap to connect.
type Connector interface {
	Connect() (Conn, error)
}

// Conn is a single session against the store.
type Conn interface {
	// EnsureTable creates the table with the given column families if it does
	// not exist. A pre-existing table reports TableExists and no error.
	EnsureTable(name string, families []string) (CreateStatus, error)
	// Table returns a handle for an existing table.
	Table(name string) Table
	// Tables lists all table names known to the store.
	Tables() ([]string, error)
	Close() error
}

// Table is a handle to one store table.
type Table interface {
	// Scan returns the rows of the requested range in ascending key order
	// (descending when opts.Reverse is set).
	Scan(opts ScanOptions) ([]Row, error)
	// Batch starts a client-side write batch against this table.
	Batch() Batch
}

// Batch accumulates puts client-side until Send flushes them to the store.
type Batch interface {
	Put(rowKey string, columns map[string]string) error
	Send() error
}
