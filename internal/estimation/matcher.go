package estimation

import (
	"context"
	"strings"

	"github.com/envtest/energy-planner/internal/dataset"
)

// MatchPolicy names the tie breaking rule applied when several rows satisfy the criteria.
type MatchPolicy string

// FirstMatch returns the first satisfying row in file order. Duplicate rows in the
// source data are not an error; later duplicates are never looked at.
const FirstMatch MatchPolicy = "first-match"

const matchCtxCheckInterval = 256

// Restrict drops every criterion whose column is not part of the table header.
func (c Criteria) Restrict(table *dataset.Table) Criteria {
	kept := make(Criteria, 0, len(c))
	for _, cr := range c {
		if table.HasColumn(cr.Column) {
			kept = append(kept, cr)
		}
	}
	return kept
}

// Matches reports whether row satisfies every criterion. Columns absent from the row
// are ignored.
func (c Criteria) Matches(row dataset.Row) bool {
	for _, cr := range c {
		cell, ok := row.Cell(cr.Column)
		if !ok {
			continue
		}
		if cell != strings.TrimSpace(cr.Value) {
			return false
		}
	}
	return true
}

// Match scans table with the FirstMatch policy. It returns *ErrNoMatchFound when the
// rows are exhausted and the context error when ctx is done mid-scan.
func Match(ctx context.Context, table *dataset.Table, criteria Criteria) (dataset.Row, error) {
	criteria = criteria.Restrict(table)
	for i, row := range table.Rows {
		if i%matchCtxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, dataset.NewErrDataSource(table.Name, err)
			}
		}
		if criteria.Matches(row) {
			return row, nil
		}
	}
	return nil, NewErrNoMatchFound(table.Name, criteria)
}
