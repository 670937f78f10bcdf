package chsink

import (
	"errors"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouse server error codes inspected by this package. Every other code
// is treated as an opaque connectivity failure.
const (
	codeNoSuchColumn    = 16 // NO_SUCH_COLUMN_IN_TABLE
	codeUnknownDatabase = 81 // UNKNOWN_DATABASE
)

// errDuplicateColumnName is returned when loaded tabular data contains
// duplicate column names.
var errDuplicateColumnName = errors.New("chsink: duplicate column name")

var (
	// ErrUnknownDatabase indicates the target database does not exist on the
	// server. Insert recovers from it once by creating the database.
	ErrUnknownDatabase = errors.New("chsink: unknown database")

	// ErrMissingColumn indicates the destination table lacks a column present
	// in the dataset. Insert recovers from it once by adding the missing
	// columns.
	ErrMissingColumn = errors.New("chsink: no such column in table")

	// ErrRetryExhausted indicates a recoverable condition recurred after its
	// single recovery attempt was already spent.
	ErrRetryExhausted = errors.New("chsink: retry exhausted")

	// ErrEmptyDataset indicates a dataset with no columns
	ErrEmptyDataset = errors.New("chsink: dataset has no columns")

	// ErrColumnLengthMismatch indicates dataset columns of unequal length
	ErrColumnLengthMismatch = errors.New("chsink: dataset columns have different lengths")

	// ErrColumnNotFound indicates a named column is absent from the dataset
	ErrColumnNotFound = errors.New("chsink: column not found in dataset")

	// ErrRangeComputation indicates the partition column's min/max range
	// could not be computed for the cleanup statement.
	ErrRangeComputation = errors.New("chsink: cannot compute partition range")

	// ErrNonUniqueCleanupKey indicates a cleanup key column whose values vary
	// within the batch; scoping a delete by it would be unsafe.
	ErrNonUniqueCleanupKey = errors.New("chsink: cleanup key column is not unique")

	// ErrAmbiguousCleanupScope indicates that cleanup key columns were
	// requested but none produced a usable constraint.
	ErrAmbiguousCleanupScope = errors.New("chsink: ambiguous cleanup scope")
)

// classify maps a ClickHouse server exception to one of the package's error
// kinds at the client boundary. Errors without a recognized code pass through
// unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ex *clickhouse.Exception
	if !errors.As(err, &ex) {
		return err
	}
	switch ex.Code {
	case codeUnknownDatabase:
		return errors.Join(ErrUnknownDatabase, err)
	case codeNoSuchColumn:
		return errors.Join(ErrMissingColumn, err)
	default:
		return err
	}
}
