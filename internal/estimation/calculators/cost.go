package calculators

import (
	"fmt"

	"github.com/envtest/energy-planner/internal/estimation"
)

const (
	EnergyCostName = "energy_cost"

	// DefaultCostPerKWh is the electricity rate in EUR per kWh.
	DefaultCostPerKWh = 0.135
	DefaultCurrency   = "EUR"
)

var _ estimation.Calculator = (*EnergyCost)(nil)

// EnergyCost derives cost = power_kw * duration_hours * rate.
type EnergyCost struct {
	costPerKWh float64
	currency   string
}

type EnergyCostOption func(*EnergyCost)

// WithCostPerKWh overrides the electricity rate. Negative rates are ignored.
func WithCostPerKWh(rate float64) EnergyCostOption {
	return func(c *EnergyCost) {
		if rate >= 0 {
			c.costPerKWh = rate
		}
	}
}

func WithCurrency(currency string) EnergyCostOption {
	return func(c *EnergyCost) {
		if currency != "" {
			c.currency = currency
		}
	}
}

func NewEnergyCost(opts ...EnergyCostOption) *EnergyCost {
	res := EnergyCost{
		costPerKWh: DefaultCostPerKWh,
		currency:   DefaultCurrency,
	}
	for _, opt := range opts {
		opt(&res)
	}
	return &res
}

func (c *EnergyCost) Name() string { return EnergyCostName }

func (c *EnergyCost) Keys() []string {
	return []string{ParamPowerKW, ParamDurationHours}
}

func (c *EnergyCost) Calculate(params map[string]estimation.Param) (estimation.Estimation, error) {
	_, _, energy, err := energyKWh(params)
	if err != nil {
		return estimation.Estimation{}, err
	}
	return estimation.Estimation{
		Value:  energy * c.costPerKWh,
		Unit:   c.currency,
		Reason: fmt.Sprintf("%g kWh @ %g %s/kWh", energy, c.costPerKWh, c.currency),
	}, nil
}
