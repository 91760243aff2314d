package dataset

import (
	"errors"
	"fmt"
)

var errEmptyTable = errors.New("table has no header row")

// ErrDatasetNotFound is returned when the selected table does not exist in the source.
type ErrDatasetNotFound struct {
	error
	Name string
}

func NewErrDatasetNotFound(name string) *ErrDatasetNotFound {
	return &ErrDatasetNotFound{error: fmt.Errorf("dataset %q not found", name), Name: name}
}

// ErrDataSource wraps any I/O or parse failure while reading a table.
type ErrDataSource struct {
	error
	Name string
}

func NewErrDataSource(name string, cause error) *ErrDataSource {
	return &ErrDataSource{error: fmt.Errorf("failed to read dataset %q: %w", name, cause), Name: name}
}

func (e *ErrDataSource) Unwrap() error {
	return errors.Unwrap(e.error)
}

// RecordError reports a data record whose cell count differs from the header.
type RecordError struct {
	Line int
	Want int
	Got  int
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record on line %d: expected %d fields, got %d", e.Line, e.Want, e.Got)
}
