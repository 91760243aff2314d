package service

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	durationKey      = "duration"
	durationHoursKey = "durationHours"

	defaultStrictDuration = 1.0
)

// DurationPolicy extracts the test duration in hours from a request body.
type DurationPolicy interface {
	Name() string
	Duration(body *Body) (float64, error)
}

var (
	_ DurationPolicy = StrictDuration{}
	_ DurationPolicy = PermissiveDuration{}
)

// StrictDuration reads "duration" and defaults to one hour when the key is absent.
// A present value must be a finite, non negative number or numeric string. Anything
// else is invalid input.
type StrictDuration struct{}

func (StrictDuration) Name() string { return "strict" }

func (StrictDuration) Duration(body *Body) (float64, error) {
	v, found := body.Get(durationKey)
	if !found {
		return defaultStrictDuration, nil
	}
	d, ok := toFloat(v)
	if !ok {
		return 0, NewErrInvalidInput(durationKey, "%v is not a number", v)
	}
	if d < 0 {
		return 0, NewErrInvalidInput(durationKey, "%v must not be negative", v)
	}
	return d, nil
}

// PermissiveDuration reads "durationHours", falling back to "duration" when the former
// is absent or zero-ish. Anything that does not parse to a finite number yields zero
// hours.
type PermissiveDuration struct{}

func (PermissiveDuration) Name() string { return "permissive" }

func (PermissiveDuration) Duration(body *Body) (float64, error) {
	v, _ := body.Get(durationHoursKey)
	if !truthy(v) {
		v, _ = body.Get(durationKey)
	}
	if !truthy(v) {
		return 0, nil
	}
	d, ok := toFloat(v)
	if !ok {
		return 0, nil
	}
	return d, nil
}

// toFloat converts a decoded JSON value to a finite float.
func toFloat(v any) (float64, bool) {
	f, ok := asFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// truthy treats null, false, zero, "" and empty containers as unset.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
