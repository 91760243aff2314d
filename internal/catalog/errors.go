package catalog

import "fmt"

// ErrInvalidMethod is returned when a method label resolves to no dataset.
type ErrInvalidMethod struct {
	error
	Method string
}

func NewErrInvalidMethod(method string) *ErrInvalidMethod {
	if method == "" {
		return &ErrInvalidMethod{error: fmt.Errorf("invalid method: method is required")}
	}
	return &ErrInvalidMethod{error: fmt.Errorf("invalid method: %q", method), Method: method}
}

// ErrInvalidMethodMapping is returned when a method has a dataset but no in-table method value.
type ErrInvalidMethodMapping struct {
	error
	Label string
}

func NewErrInvalidMethodMapping(label string) *ErrInvalidMethodMapping {
	return &ErrInvalidMethodMapping{error: fmt.Errorf("no table method value for: %s", label), Label: label}
}
