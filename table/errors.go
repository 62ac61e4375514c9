package table

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMapping is returned when a mapping entry's selector is neither
	// the all-remaining sentinel nor an explicit field list.
	ErrInvalidMapping = errors.New("column mapping must select explicit fields or all remaining fields")
	// ErrTableAcquire is returned when the table could not be created or opened.
	ErrTableAcquire = errors.New("failed to acquire table")
	// ErrWriteFailed is returned when a batch submission fails. The write
	// session is over; batches flushed before the failure stay written.
	ErrWriteFailed = errors.New("batch write failed")
	// ErrScanFailed is returned when a scan round fails.
	ErrScanFailed = errors.New("scan round failed")
)

// Error wraps a sentinel error with additional context
type Error struct {
	err     error  // The underlying sentinel error
	context string // Additional error context
}

// Error satisfies the error interface
func (e *Error) Error() string {
	if e.context == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("%s: %s", e.err.Error(), e.context)
}

// Unwrap implements the errors.Unwrap interface for compatibility with errors.Is/As
func (e *Error) Unwrap() error {
	return e.err
}

// newError creates a new table error with context
func newError(err error, format string, args ...interface{}) *Error {
	return &Error{
		err:     err,
		context: fmt.Sprintf(format, args...),
	}
}
