package dataset

import "strings"

// Row maps a trimmed column name to its raw cell value.
type Row map[string]string

// Table is one parsed reference table. Name is its identity within a Source.
type Table struct {
	Name   string
	Header []string
	Rows   []Row
}

// HasColumn reports whether column is part of the header.
func (t *Table) HasColumn(column string) bool {
	for _, h := range t.Header {
		if h == column {
			return true
		}
	}
	return false
}

// Cell returns the trimmed cell of column in row and whether the column exists.
func (r Row) Cell(column string) (string, bool) {
	v, ok := r[column]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// newTable builds a Table from a header record and data records. Header names are
// trimmed; a data record must carry exactly one cell per header column.
func newTable(name string, records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, NewErrDataSource(name, errEmptyTable)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	rows := make([]Row, 0, len(records)-1)
	for n, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		if len(rec) != len(header) {
			return nil, NewErrDataSource(name, &RecordError{Line: n + 2, Want: len(header), Got: len(rec)})
		}
		row := make(Row, len(header))
		for i, col := range header {
			row[col] = rec[i]
		}
		rows = append(rows, row)
	}

	return &Table{Name: name, Header: header, Rows: rows}, nil
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
