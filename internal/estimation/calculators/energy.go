package calculators

import (
	"fmt"

	"github.com/envtest/energy-planner/internal/estimation"
)

const EnergyConsumptionName = "energy_consumption"

var _ estimation.Calculator = (*EnergyConsumption)(nil)

// EnergyConsumption derives energy_kwh = power_kw * duration_hours.
type EnergyConsumption struct{}

func NewEnergyConsumption() *EnergyConsumption {
	return &EnergyConsumption{}
}

func (c *EnergyConsumption) Name() string { return EnergyConsumptionName }

func (c *EnergyConsumption) Keys() []string {
	return []string{ParamPowerKW, ParamDurationHours}
}

func (c *EnergyConsumption) Calculate(params map[string]estimation.Param) (estimation.Estimation, error) {
	power, duration, energy, err := energyKWh(params)
	if err != nil {
		return estimation.Estimation{}, err
	}
	return estimation.Estimation{
		Value:  energy,
		Unit:   "kWh",
		Reason: fmt.Sprintf("%g kW * %g h", power, duration),
	}, nil
}
