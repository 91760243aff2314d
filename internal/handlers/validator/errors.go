package validator

import (
	"fmt"
)

type ErrInvalidField struct {
	error
	Field string
	Tag   string
}

func NewErrInvalidField(field, tag string, value any) *ErrInvalidField {
	return &ErrInvalidField{
		error: fmt.Errorf("field %s failed on the %q rule with value %v", field, tag, value),
		Field: field,
		Tag:   tag,
	}
}
