package validator

import (
	"github.com/envtest/energy-planner/internal/dataset"
	"github.com/go-playground/validator/v10"
)

// datasetFileValidator accepts names that stay inside the dataset source root.
func datasetFileValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return dataset.IsLocalName(val)
}
