package mappers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/envtest/energy-planner/internal/service"
)

// FieldsLookupForm is the part of a generic lookup body checked before the service runs.
type FieldsLookupForm struct {
	CsvFile string `validate:"required,dataset_file"`
}

// BodyFromJSON decodes a JSON object keeping the declaration order of its top level
// keys. Numbers are kept as json.Number so their literal text survives.
func BodyFromJSON(r io.Reader) (*service.Body, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("body must be a JSON object")
	}

	body := service.NewBody()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("failed to read value of %q: %w", key, err)
		}
		body.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after JSON object")
	}
	return body, nil
}

// FieldsLookupFormFromBody returns the form and whether csv_file carried a string.
func FieldsLookupFormFromBody(body *service.Body) (FieldsLookupForm, bool) {
	raw, _ := body.Get("csv_file")
	name, ok := raw.(string)
	return FieldsLookupForm{CsvFile: name}, ok
}
