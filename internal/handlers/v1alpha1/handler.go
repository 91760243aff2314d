package v1alpha1

import (
	"net/http"

	"github.com/envtest/energy-planner/internal/handlers/v1alpha1/mappers"
	"github.com/envtest/energy-planner/internal/handlers/validator"
	"github.com/envtest/energy-planner/internal/service"
	"github.com/envtest/energy-planner/pkg/requestid"
	"github.com/go-chi/render"
)

type ServiceHandler struct {
	energySrv *service.EnergyService
	validator *validator.Validator
}

func NewServiceHandler(energySrv *service.EnergyService) *ServiceHandler {
	v := validator.NewValidator()
	v.Register(validator.NewDatasetValidationRules()...)
	return &ServiceHandler{
		energySrv: energySrv,
		validator: v,
	}
}

// StatusFor maps an error kind to the HTTP status reported to the client. Caller
// faults are 4xx, data and service faults are 5xx. The method surface reports
// unclassified failures as 400 alongside the received data.
func StatusFor(surface service.Surface, kind service.ErrorKind) int {
	switch kind {
	case service.KindInvalidInput,
		service.KindInvalidMethod,
		service.KindInvalidMethodMapping,
		service.KindPowerColumnNotSpecified,
		service.KindPowerColumnNotFound:
		return http.StatusBadRequest
	case service.KindDatasetNotFound, service.KindNoMatchFound:
		return http.StatusNotFound
	case service.KindUnknown:
		if surface == service.SurfaceMethod {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// (GET /health)
func (h *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"status": "healthy"})
}

// MethodNotAllowed answers every non POST request on the lookup routes.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusMethodNotAllowed)
	render.JSON(w, r, mappers.ErrorResponse{
		Error:     "Only POST allowed",
		Kind:      "MethodNotAllowed",
		RequestID: requestid.FromRequest(r),
	})
}

func writeError(w http.ResponseWriter, r *http.Request, surface service.Surface, resp mappers.ErrorResponse) {
	render.Status(r, StatusFor(surface, service.ErrorKind(resp.Kind)))
	render.JSON(w, r, resp)
}
