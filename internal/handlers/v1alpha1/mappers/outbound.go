package mappers

import (
	"errors"

	"github.com/envtest/energy-planner/internal/service"
)

type EnergyResponse struct {
	EnergyConsumptionKWh float64 `json:"energy_consumption_kwh"`
	EnergyCostEUR        float64 `json:"energy_cost_eur"`
}

type TestEnergyResponse struct {
	PowerKW              float64 `json:"power_kw"`
	EnergyConsumptionKWh float64 `json:"energy_consumption_kwh"`
	EnergyCostEUR        float64 `json:"energy_cost_eur"`
	FixedCostsEUR        float64 `json:"fixed_costs_eur"`
	AdditionalCostEUR    float64 `json:"additional_cost_eur"`
	TotalCostEUR         float64 `json:"total_cost_eur"`
	CarbonFootprintKgCO2 float64 `json:"carbon_footprint_kg_co2"`
}

type ErrorResponse struct {
	Error          string            `json:"error"`
	Kind           string            `json:"kind"`
	RequestID      string            `json:"request_id,omitempty"`
	SearchCriteria map[string]string `json:"search_criteria,omitempty"`
	CsvFile        string            `json:"csv_file,omitempty"`
	Headers        []string          `json:"headers,omitempty"`
	ReceivedData   map[string]any    `json:"received_data,omitempty"`
}

func EnergyResponseFromResult(res *service.Result) EnergyResponse {
	return EnergyResponse{
		EnergyConsumptionKWh: res.EnergyKWh,
		EnergyCostEUR:        res.EnergyCost,
	}
}

func TestEnergyResponseFromResult(res *service.Result) TestEnergyResponse {
	return TestEnergyResponse{
		PowerKW:              res.PowerKW,
		EnergyConsumptionKWh: res.EnergyKWh,
		EnergyCostEUR:        res.EnergyCost,
		FixedCostsEUR:        res.FixedCosts,
		AdditionalCostEUR:    res.AdditionalCost,
		TotalCostEUR:         res.TotalCost,
		CarbonFootprintKgCO2: res.CarbonKgCO2,
	}
}

func ErrorResponseFromError(err error, requestID string) ErrorResponse {
	return ErrorResponse{
		Error:     err.Error(),
		Kind:      string(service.KindOf(err)),
		RequestID: requestID,
	}
}

// DiagnosticErrorResponseFromError adds what the lookup had resolved and the request body.
func DiagnosticErrorResponseFromError(err error, requestID string, body *service.Body) ErrorResponse {
	resp := ErrorResponseFromError(err, requestID)
	if body != nil {
		resp.ReceivedData = body.Map()
	}
	var lookupErr *service.ErrLookup
	if errors.As(err, &lookupErr) {
		resp.CsvFile = lookupErr.Dataset
		resp.Headers = lookupErr.Header
		if lookupErr.Criteria != nil {
			resp.SearchCriteria = lookupErr.Criteria.Map()
		}
	}
	return resp
}
