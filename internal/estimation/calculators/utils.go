package calculators

import (
	"fmt"
	"math"

	"github.com/envtest/energy-planner/internal/estimation"
)

// Param keys shared by every calculator.
const (
	// ParamPowerKW is the power draw read from the matched row.
	ParamPowerKW = "power_kw"
	// ParamDurationHours is the client supplied test duration.
	ParamDurationHours = "duration_hours"
	// ParamEquipmentHourly is the operational rate of the equipment used. Optional.
	ParamEquipmentHourly = "equipment_hourly"
)

func getFloat(p estimation.Param) (float64, error) {
	var f float64
	switch v := p.Value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0.0, fmt.Errorf("param %s is not a number (type: %T)", p.Key, p.Value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0.0, fmt.Errorf("param %s is not a finite number", p.Key)
	}
	return f, nil
}

func requireFloat(params map[string]estimation.Param, key string) (float64, error) {
	p, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	return getFloat(p)
}

// optionalFloat returns zero when key is absent.
func optionalFloat(params map[string]estimation.Param, key string) (float64, error) {
	p, ok := params[key]
	if !ok {
		return 0, nil
	}
	return getFloat(p)
}

// energyKWh is the shared energy derivation: power (kW) times duration (h).
func energyKWh(params map[string]estimation.Param) (power, duration, energy float64, err error) {
	if power, err = requireFloat(params, ParamPowerKW); err != nil {
		return
	}
	if duration, err = requireFloat(params, ParamDurationHours); err != nil {
		return
	}
	energy = power * duration
	return
}
