package estimation

import (
	"math"
	"strconv"
	"strings"

	"github.com/envtest/energy-planner/internal/dataset"
)

const powerToken = "power"

// PowerColumnPolicy selects the column holding the power draw.
type PowerColumnPolicy interface {
	Name() string
	Select(header []string, fields []Field) (string, error)
}

var (
	_ PowerColumnPolicy = HeaderFirstMatch{}
	_ PowerColumnPolicy = FieldLastMatch{}
)

// HeaderFirstMatch scans the header left to right and takes the first column whose
// name contains "power", ignoring case. Client fields are not consulted.
type HeaderFirstMatch struct{}

func (HeaderFirstMatch) Name() string { return "header-first-match" }

func (HeaderFirstMatch) Select(header []string, _ []Field) (string, error) {
	for _, h := range header {
		if containsPower(h) {
			return h, nil
		}
	}
	return "", NewErrPowerColumnNotFound("")
}

// FieldLastMatch scans the client fields from the last declared to the first and
// takes the value of the first one containing "power", ignoring case. That value
// must name a header column.
type FieldLastMatch struct{}

func (FieldLastMatch) Name() string { return "field-last-match" }

func (FieldLastMatch) Select(header []string, fields []Field) (string, error) {
	for i := len(fields) - 1; i >= 0; i-- {
		if !containsPower(fields[i].Value) {
			continue
		}
		column := strings.TrimSpace(fields[i].Value)
		for _, h := range header {
			if h == column {
				return column, nil
			}
		}
		return "", NewErrPowerColumnNotFound(column)
	}
	return "", NewErrPowerColumnNotSpecified()
}

func containsPower(s string) bool {
	return strings.Contains(strings.ToLower(s), powerToken)
}

// ParsePower parses the trimmed power cell of row as a finite float.
func ParsePower(row dataset.Row, column string) (float64, error) {
	cell, _ := row.Cell(column)
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, NewErrInvalidPowerValue(column, cell)
	}
	return v, nil
}
