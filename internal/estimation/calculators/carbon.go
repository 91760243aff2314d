package calculators

import (
	"fmt"

	"github.com/envtest/energy-planner/internal/estimation"
)

const (
	CarbonFootprintName = "carbon_footprint"

	// DefaultEmissionFactor is the grid emission factor in kg CO2 per kWh.
	DefaultEmissionFactor = 0.58
)

var _ estimation.Calculator = (*CarbonFootprint)(nil)

// CarbonFootprint derives kg CO2 = power_kw * duration_hours * emission factor.
type CarbonFootprint struct {
	emissionFactor float64
}

type CarbonFootprintOption func(*CarbonFootprint)

// WithEmissionFactor overrides the grid emission factor. Negative factors are ignored.
func WithEmissionFactor(factor float64) CarbonFootprintOption {
	return func(c *CarbonFootprint) {
		if factor >= 0 {
			c.emissionFactor = factor
		}
	}
}

func NewCarbonFootprint(opts ...CarbonFootprintOption) *CarbonFootprint {
	res := CarbonFootprint{emissionFactor: DefaultEmissionFactor}
	for _, opt := range opts {
		opt(&res)
	}
	return &res
}

func (c *CarbonFootprint) Name() string { return CarbonFootprintName }

func (c *CarbonFootprint) Keys() []string {
	return []string{ParamPowerKW, ParamDurationHours}
}

func (c *CarbonFootprint) Calculate(params map[string]estimation.Param) (estimation.Estimation, error) {
	_, _, energy, err := energyKWh(params)
	if err != nil {
		return estimation.Estimation{}, err
	}
	return estimation.Estimation{
		Value:  energy * c.emissionFactor,
		Unit:   "kgCO2",
		Reason: fmt.Sprintf("%g kWh @ %g kgCO2/kWh", energy, c.emissionFactor),
	}, nil
}
