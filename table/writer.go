package table

import (
	"errors"

	"github.com/rs/zerolog/log"
)

const defaultBatchSize = 1000

// Writer groups records into fixed-size batches and fans each record's fields
// out into column families according to its mapping. A Writer owns one write
// session: its key composer, its batch state and its store connection are not
// shared with any other writer.
type Writer struct {
	connector Connector
	table     string
	mapping   Mapping
	rowFields []string
	batchSize int
}

type WriterConfig struct {
	// Connector hands out the store session for the write.
	Connector Connector
	// Table is the target table name.
	Table string
	// Mapping routes record fields into column families.
	Mapping Mapping
	// RowFields, when set, selects explicit row-key composition from these
	// fields. Empty selects auto mode.
	RowFields []string
	// BatchSize is the number of records per flush. Defaults to 1000.
	BatchSize int
}

func (c *WriterConfig) validate() error {
	var errGrp []error
	if c.Connector == nil {
		errGrp = append(errGrp, errors.New("connector is required"))
	}
	if c.Table == "" {
		errGrp = append(errGrp, errors.New("table name is required"))
	}
	if len(c.Mapping) == 0 {
		errGrp = append(errGrp, errors.New("mapping is required"))
	}
	if c.BatchSize < 0 {
		errGrp = append(errGrp, errors.New("batch size cannot be negative"))
	}
	return errors.Join(errGrp...)
}

// NewWriter creates a writer for one table.
func NewWriter(cfg *WriterConfig) (*Writer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = defaultBatchSize
	}
	return &Writer{
		connector: cfg.Connector,
		table:     cfg.Table,
		mapping:   cfg.Mapping,
		rowFields: cfg.RowFields,
		batchSize: batchSize,
	}, nil
}

// Save writes all records in batches and returns after the final batch is
// flushed. The mapping shape is validated before the first record is touched,
// so an invalid mapping never sends a partial batch. A flush failure is fatal
// for the session: batches already flushed stay written and are not rolled
// back.
func (w *Writer) Save(records []Record) error {
	if err := w.mapping.validate(); err != nil {
		return err
	}

	conn, err := w.connector.Connect()
	if err != nil {
		return newError(ErrWriteFailed, "connect: %v", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Debug().Err(cerr).Msg("closing write session")
		}
	}()

	status, err := conn.EnsureTable(w.table, w.mapping.Families())
	if err != nil {
		return newError(ErrTableAcquire, "table %s: %v", w.table, err)
	}
	if status == TableCreated {
		log.Debug().Str("table", w.table).Msg("created table")
	}

	batch := conn.Table(w.table).Batch()
	keys := NewKeyComposer(w.rowFields)

	pending := 0
	for _, rec := range records {
		work := rec.clone()
		rowKey := keys.Compose(&work)

		columns, err := w.mapping.apply(&work)
		if err != nil {
			return err
		}

		if err = batch.Put(rowKey, columns); err != nil {
			return newError(ErrWriteFailed, "put row %s: %v", rowKey, err)
		}
		pending++

		if pending == w.batchSize {
			if err = batch.Send(); err != nil {
				return newError(ErrWriteFailed, "flush batch: %v", err)
			}
			pending = 0
		}
	}

	if pending > 0 {
		if err = batch.Send(); err != nil {
			return newError(ErrWriteFailed, "flush final batch: %v", err)
		}
	}

	log.Debug().Str("table", w.table).Int("records", len(records)).Msg("write session complete")
	return nil
}
