package handlers

import (
	"net/http"

	"github.com/alexmabud/flowdash-backend/internal/api/request"
	"github.com/alexmabud/flowdash-backend/internal/api/response"
	"github.com/alexmabud/flowdash-backend/internal/apperrors"
	"github.com/alexmabud/flowdash-backend/internal/service"
	"github.com/alexmabud/flowdash-backend/internal/validation"
)

// SettlementHandler handles HTTP requests for payment application.
type SettlementHandler struct {
	settlementService *service.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler with the provided service dependency.
func NewSettlementHandler(settlementService *service.SettlementService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
	}
}

// ApplyPayment handles POST requests to settle a payment against an
// obligation group. A replayed transaction uid returns 200 with
// alreadyProcessed instead of re-applying.
//
// Endpoint: POST /api/settlement/payment
// Response: 201 Created with SettlementResult (200 OK when replayed)
// Error: 400 Bad Request on validation failure
// Error: 404 Not Found if the group has no open installments
// Error: 409 Conflict on insufficient funds
func (h *SettlementHandler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	var req request.PaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidatePayment(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.settlementService.ApplyPayment(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToApplyPayment)
		return
	}

	status := http.StatusCreated
	if result.AlreadyProcessed {
		status = http.StatusOK
	}
	response.RespondJSON(w, status, result)
}
