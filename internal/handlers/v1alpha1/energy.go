package v1alpha1

import (
	"net/http"

	"github.com/envtest/energy-planner/internal/handlers/v1alpha1/mappers"
	"github.com/envtest/energy-planner/internal/service"
	"github.com/envtest/energy-planner/pkg/requestid"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

// (POST /api/calculate-energy/)
func (h *ServiceHandler) CalculateEnergy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := requestid.FromContext(ctx)
	logger := zap.S().Named("energy_handler").With("request_id", reqID, "operation", "calculate_energy")

	body, err := mappers.BodyFromJSON(r.Body)
	if err != nil {
		err = service.NewErrInvalidInput("body", "%s", err)
		logger.Infow("failed to decode request", "error", err)
		writeError(w, r, service.SurfaceFields, mappers.ErrorResponseFromError(err, reqID))
		return
	}

	if form, ok := mappers.FieldsLookupFormFromBody(body); ok {
		if err := h.validator.Struct(form); err != nil {
			err = service.NewErrInvalidInput("csv_file", "%s", err)
			logger.Infow("invalid dataset file", "error", err)
			writeError(w, r, service.SurfaceFields, mappers.ErrorResponseFromError(err, reqID))
			return
		}
	}

	res, err := h.energySrv.LookupByFields(ctx, body)
	if err != nil {
		writeError(w, r, service.SurfaceFields, mappers.ErrorResponseFromError(err, reqID))
		return
	}

	logger.Debugw("energy calculated", "dataset", res.Dataset, "power_column", res.PowerColumn, "energy_kwh", res.EnergyKWh)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, mappers.EnergyResponseFromResult(res))
}

// (POST /api/calculate-test-energy/)
func (h *ServiceHandler) CalculateTestEnergy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := requestid.FromContext(ctx)
	logger := zap.S().Named("energy_handler").With("request_id", reqID, "operation", "calculate_test_energy")

	body, err := mappers.BodyFromJSON(r.Body)
	if err != nil {
		err = service.NewErrInvalidInput("body", "%s", err)
		logger.Infow("failed to decode request", "error", err)
		writeError(w, r, service.SurfaceMethod, mappers.DiagnosticErrorResponseFromError(err, reqID, nil))
		return
	}

	res, err := h.energySrv.LookupByMethod(ctx, body)
	if err != nil {
		writeError(w, r, service.SurfaceMethod, mappers.DiagnosticErrorResponseFromError(err, reqID, body))
		return
	}

	logger.Debugw("test energy calculated",
		"dataset", res.Dataset,
		"criteria", res.Criteria.Map(),
		"power_kw", res.PowerKW,
		"energy_kwh", res.EnergyKWh,
	)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, mappers.TestEnergyResponseFromResult(res))
}
