package handlers

import (
	"net/http"

	"github.com/alexmabud/flowdash-backend/internal/api/response"
	"github.com/alexmabud/flowdash-backend/internal/service"
)

// MaintenanceHandler handles HTTP requests for data-repair operations.
type MaintenanceHandler struct {
	maintenanceService *service.MaintenanceService
}

// NewMaintenanceHandler creates a new MaintenanceHandler with the provided service dependency.
func NewMaintenanceHandler(maintenanceService *service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{
		maintenanceService: maintenanceService,
	}
}

// RecomputeStatusesResponse reports how many installment rows changed status.
type RecomputeStatusesResponse struct {
	RowsFixed int `json:"rowsFixed"`
}

// RecomputeStatuses handles POST requests to re-derive every installment's
// status from its stored amounts.
//
// Endpoint: POST /api/maintenance/recompute-statuses
// Response: 200 OK with RecomputeStatusesResponse
// Error: 500 Internal Server Error if the sweep fails
func (h *MaintenanceHandler) RecomputeStatuses(w http.ResponseWriter, r *http.Request) {
	fixed, err := h.maintenanceService.RecomputeAllStatuses(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to recompute statuses", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, RecomputeStatusesResponse{RowsFixed: fixed})
}
