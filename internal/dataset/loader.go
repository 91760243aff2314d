package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"

	// ctxCheckInterval is the number of records parsed between context checks.
	ctxCheckInterval = 512
)

// FormatOf picks the table format from the name's extension. Anything that is not
// .tsv or .xlsx is read as comma separated text.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tsv", ".tab":
		return FormatTSV
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

// TableLoader returns a parsed table by name.
type TableLoader interface {
	Load(ctx context.Context, name string) (*Table, error)
}

// Loader reads a whole table from a Source into memory.
type Loader struct {
	source Source
}

func NewLoader(source Source) *Loader {
	return &Loader{source: source}
}

func (l *Loader) Load(ctx context.Context, name string) (*Table, error) {
	rc, err := l.source.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			zap.S().Named("dataset").Warnw("failed to close dataset", "dataset", name, "error", cerr)
		}
	}()

	var records [][]string
	switch FormatOf(name) {
	case FormatXLSX:
		records, err = readXLSX(rc)
	case FormatTSV:
		records, err = readDelimited(ctx, rc, '\t')
	default:
		records, err = readDelimited(ctx, rc, ',')
	}
	if err != nil {
		return nil, NewErrDataSource(name, err)
	}

	zap.S().Named("dataset").Debugw("dataset loaded", "dataset", name, "source", l.source.Type(), "records", len(records))

	return newTable(name, records)
}

func readDelimited(ctx context.Context, r io.Reader, comma rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		if len(records)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

// readXLSX returns the rows of the first sheet. Trailing empty cells are dropped by
// excelize, so data rows are padded back to the header width.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errEmptyTable
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}

	width := len(rows[0])
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) < width && !isBlank(rows[i]) {
			rows[i] = append(rows[i], make([]string, width-len(rows[i]))...)
		}
	}
	return rows, nil
}
