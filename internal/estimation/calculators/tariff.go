package calculators

import (
	"fmt"
	"strings"

	"github.com/envtest/energy-planner/internal/estimation"
)

const (
	FixedCostsName     = "fixed_costs"
	AdditionalCostName = "additional_cost"
	TotalCostName      = "total_cost"

	// DefaultRHCost is the per test relative humidity setup cost.
	DefaultRHCost = 210.0
	// DefaultTransportCost is the per test transport and packaging cost.
	DefaultTransportCost = 150.0
	// DefaultAgeFactor applies no surcharge.
	DefaultAgeFactor = 1.0
)

// DefaultEquipmentHourlyRates returns the operational cost per hour of each known
// equipment type, keyed by lower case name.
func DefaultEquipmentHourlyRates() map[string]float64 {
	return map[string]float64{
		"thermal_chamber":            5,
		"thermal_shock_chamber":      7.5,
		"vibrating_pot":              100,
		"combined_vibration_thermal": 105,
	}
}

// Tariff is the per test cost model. The age factor multiplies the variable costs
// (energy and equipment operation); 1.05 adds 5%.
type Tariff struct {
	CostPerKWh float64
	RH         float64
	Transport  float64
	AgeFactor  float64
	Currency   string
}

func DefaultTariff() Tariff {
	return Tariff{
		CostPerKWh: DefaultCostPerKWh,
		RH:         DefaultRHCost,
		Transport:  DefaultTransportCost,
		AgeFactor:  DefaultAgeFactor,
		Currency:   DefaultCurrency,
	}
}

func (t Tariff) currency() string {
	if t.Currency == "" {
		return DefaultCurrency
	}
	return t.Currency
}

type costBreakdown struct {
	energy     float64
	equipment  float64
	fixed      float64
	additional float64
	total      float64
}

func (t Tariff) breakdown(params map[string]estimation.Param) (costBreakdown, error) {
	_, duration, energy, err := energyKWh(params)
	if err != nil {
		return costBreakdown{}, err
	}
	hourly, err := optionalFloat(params, ParamEquipmentHourly)
	if err != nil {
		return costBreakdown{}, err
	}

	var b costBreakdown
	b.energy = energy * t.CostPerKWh
	b.equipment = hourly * duration
	b.fixed = t.RH + t.Transport + b.equipment
	b.additional = (b.energy + b.equipment) * (t.AgeFactor - 1)
	b.total = b.energy + b.fixed + b.additional
	return b, nil
}

var (
	_ estimation.Calculator = (*FixedCosts)(nil)
	_ estimation.Calculator = (*AdditionalCost)(nil)
	_ estimation.Calculator = (*TotalCost)(nil)
)

// FixedCosts derives rh + transport + equipment_hourly * duration_hours.
type FixedCosts struct {
	tariff Tariff
}

func NewFixedCosts(t Tariff) *FixedCosts {
	return &FixedCosts{tariff: t}
}

func (c *FixedCosts) Name() string { return FixedCostsName }

func (c *FixedCosts) Keys() []string {
	return []string{ParamPowerKW, ParamDurationHours, ParamEquipmentHourly}
}

func (c *FixedCosts) Calculate(params map[string]estimation.Param) (estimation.Estimation, error) {
	b, err := c.tariff.breakdown(params)
	if err != nil {
		return estimation.Estimation{}, err
	}
	return estimation.Estimation{
		Value:  b.fixed,
		Unit:   c.tariff.currency(),
		Reason: fmt.Sprintf("rh %g + transport %g + equipment %g", c.tariff.RH, c.tariff.Transport, b.equipment),
	}, nil
}

// AdditionalCost is the surcharge the age factor puts on the variable costs.
type AdditionalCost struct {
	tariff Tariff
}

func NewAdditionalCost(t Tariff) *AdditionalCost {
	return &AdditionalCost{tariff: t}
}

func (c *AdditionalCost) Name() string { return AdditionalCostName }

func (c *AdditionalCost) Keys() []string {
	return []string{ParamPowerKW, ParamDurationHours, ParamEquipmentHourly}
}

func (c *AdditionalCost) Calculate(params map[string]estimation.Param) (estimation.Estimation, error) {
	b, err := c.tariff.breakdown(params)
	if err != nil {
		return estimation.Estimation{}, err
	}
	return estimation.Estimation{
		Value:  b.additional,
		Unit:   c.tariff.currency(),
		Reason: fmt.Sprintf("(energy %g + equipment %g) * (%g - 1)", b.energy, b.equipment, c.tariff.AgeFactor),
	}, nil
}

// TotalCost derives energy cost + fixed costs + additional cost.
type TotalCost struct {
	tariff Tariff
}

func NewTotalCost(t Tariff) *TotalCost {
	return &TotalCost{tariff: t}
}

func (c *TotalCost) Name() string { return TotalCostName }

func (c *TotalCost) Keys() []string {
	return []string{ParamPowerKW, ParamDurationHours, ParamEquipmentHourly}
}

func (c *TotalCost) Calculate(params map[string]estimation.Param) (estimation.Estimation, error) {
	b, err := c.tariff.breakdown(params)
	if err != nil {
		return estimation.Estimation{}, err
	}
	return estimation.Estimation{
		Value:  b.total,
		Unit:   c.tariff.currency(),
		Reason: fmt.Sprintf("energy %g + fixed %g + additional %g", b.energy, b.fixed, b.additional),
	}, nil
}

// EquipmentRate returns the hourly rate of equipment, ignoring case and surrounding
// blanks. Unknown or empty equipment costs nothing.
func EquipmentRate(rates map[string]float64, equipment string) float64 {
	return rates[strings.ToLower(strings.TrimSpace(equipment))]
}
