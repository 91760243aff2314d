package estimation

import (
	"fmt"
)

// ErrNoMatchFound is returned when no row satisfies the criteria. It carries the
// criteria and the table identity for diagnostics.
type ErrNoMatchFound struct {
	error
	Dataset  string
	Criteria Criteria
}

func NewErrNoMatchFound(dataset string, criteria Criteria) *ErrNoMatchFound {
	return &ErrNoMatchFound{
		error:    fmt.Errorf("no matching row found in %s for %d criteria", dataset, len(criteria)),
		Dataset:  dataset,
		Criteria: criteria,
	}
}

type ErrPowerColumnNotFound struct {
	error
	Column string
}

func NewErrPowerColumnNotFound(column string) *ErrPowerColumnNotFound {
	if column == "" {
		return &ErrPowerColumnNotFound{error: fmt.Errorf("power column not found")}
	}
	return &ErrPowerColumnNotFound{error: fmt.Errorf("power column %q not found in table header", column), Column: column}
}

type ErrPowerColumnNotSpecified struct {
	error
}

func NewErrPowerColumnNotSpecified() *ErrPowerColumnNotSpecified {
	return &ErrPowerColumnNotSpecified{fmt.Errorf("power column not specified in input")}
}

// ErrInvalidPowerValue is a data integrity fault: the matched power cell is not a number.
type ErrInvalidPowerValue struct {
	error
	Column string
	Value  string
}

func NewErrInvalidPowerValue(column, value string) *ErrInvalidPowerValue {
	return &ErrInvalidPowerValue{
		error:  fmt.Errorf("invalid data in power column %q: %q is not a number", column, value),
		Column: column,
		Value:  value,
	}
}
