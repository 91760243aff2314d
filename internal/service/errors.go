package service

import (
	"errors"
	"fmt"

	"github.com/envtest/energy-planner/internal/catalog"
	"github.com/envtest/energy-planner/internal/dataset"
	"github.com/envtest/energy-planner/internal/estimation"
)

// ErrorKind classifies lookup failures.
type ErrorKind string

const (
	KindUnknown                 ErrorKind = "Unknown"
	KindInvalidInput            ErrorKind = "InvalidInput"
	KindInvalidMethod           ErrorKind = "InvalidMethod"
	KindInvalidMethodMapping    ErrorKind = "InvalidMethodMapping"
	KindDatasetNotFound         ErrorKind = "DatasetNotFound"
	KindDataSourceError         ErrorKind = "DataSourceError"
	KindNoMatchFound            ErrorKind = "NoMatchFound"
	KindPowerColumnNotSpecified ErrorKind = "PowerColumnNotSpecified"
	KindPowerColumnNotFound     ErrorKind = "PowerColumnNotFound"
	KindInvalidPowerValue       ErrorKind = "InvalidPowerValue"
)

type ErrInvalidInput struct {
	error
	Field string
}

func NewErrInvalidInput(field string, format string, args ...any) *ErrInvalidInput {
	return &ErrInvalidInput{error: fmt.Errorf("invalid input: %s: %s", field, fmt.Sprintf(format, args...)), Field: field}
}

// ErrLookup decorates a failed lookup with what had been resolved when it failed.
// Header and Criteria are empty when the failure happened before the table was read.
type ErrLookup struct {
	error
	Dataset  string
	Header   []string
	Criteria estimation.Criteria
}

func (e *ErrLookup) Unwrap() error {
	return e.error
}

func newErrLookup(cause error, dataset string, table *dataset.Table, criteria estimation.Criteria) *ErrLookup {
	e := &ErrLookup{error: cause, Dataset: dataset, Criteria: criteria}
	if table != nil {
		e.Header = table.Header
	}
	return e
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) ErrorKind {
	var (
		invalidInput   *ErrInvalidInput
		invalidMethod  *catalog.ErrInvalidMethod
		invalidMapping *catalog.ErrInvalidMethodMapping
		notFound       *dataset.ErrDatasetNotFound
		dataSource     *dataset.ErrDataSource
		noMatch        *estimation.ErrNoMatchFound
		notSpecified   *estimation.ErrPowerColumnNotSpecified
		columnNotFound *estimation.ErrPowerColumnNotFound
		invalidPower   *estimation.ErrInvalidPowerValue
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &invalidInput):
		return KindInvalidInput
	case errors.As(err, &invalidMethod):
		return KindInvalidMethod
	case errors.As(err, &invalidMapping):
		return KindInvalidMethodMapping
	case errors.As(err, &notFound):
		return KindDatasetNotFound
	case errors.As(err, &dataSource):
		return KindDataSourceError
	case errors.As(err, &noMatch):
		return KindNoMatchFound
	case errors.As(err, &notSpecified):
		return KindPowerColumnNotSpecified
	case errors.As(err, &columnNotFound):
		return KindPowerColumnNotFound
	case errors.As(err, &invalidPower):
		return KindInvalidPowerValue
	default:
		return KindUnknown
	}
}
