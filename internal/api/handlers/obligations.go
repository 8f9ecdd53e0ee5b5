package handlers

import (
	"net/http"

	"github.com/alexmabud/flowdash-backend/internal/api/request"
	"github.com/alexmabud/flowdash-backend/internal/api/response"
	"github.com/alexmabud/flowdash-backend/internal/apperrors"
	"github.com/alexmabud/flowdash-backend/internal/service"
	"github.com/alexmabud/flowdash-backend/internal/validation"
)

// ObligationHandler handles HTTP requests for obligation programming and
// listing. It serves as the HTTP layer adapter, parsing requests and
// delegating business logic to the obligationService.
type ObligationHandler struct {
	obligationService *service.ObligationService
}

// NewObligationHandler creates a new ObligationHandler with the provided service dependency.
func NewObligationHandler(obligationService *service.ObligationService) *ObligationHandler {
	return &ObligationHandler{
		obligationService: obligationService,
	}
}

// ScheduleBoleto handles POST requests to program a boleto purchase as
// monthly installments.
//
// Endpoint: POST /api/obligation/boleto
// Response: 201 Created with ScheduleResult (200 OK when replayed)
// Error: 400 Bad Request on validation failure
// Error: 500 Internal Server Error if scheduling fails
func (h *ObligationHandler) ScheduleBoleto(w http.ResponseWriter, r *http.Request) {
	var req request.ScheduleBoletoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateScheduleBoleto(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.obligationService.ScheduleBoleto(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToScheduleObligation)
		return
	}

	status := http.StatusCreated
	if result.AlreadyProcessed {
		status = http.StatusOK
	}
	response.RespondJSON(w, status, result)
}

// ScheduleLoan handles POST requests to program a loan as monthly
// installments, settling any already-paid installments without cash effect.
//
// Endpoint: POST /api/obligation/loan
// Response: 201 Created with ScheduleResult (200 OK when replayed)
// Error: 400 Bad Request on validation failure
// Error: 500 Internal Server Error if scheduling fails
func (h *ObligationHandler) ScheduleLoan(w http.ResponseWriter, r *http.Request) {
	var req request.ScheduleLoanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateScheduleLoan(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.obligationService.ScheduleLoan(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToScheduleObligation)
		return
	}

	status := http.StatusCreated
	if result.AlreadyProcessed {
		status = http.StatusOK
	}
	response.RespondJSON(w, status, result)
}

// CardPurchase handles POST requests to split a credit-card purchase across
// monthly invoice competences.
//
// Endpoint: POST /api/obligation/card-purchase
// Response: 201 Created with ScheduleResult (200 OK when replayed)
// Error: 400 Bad Request on validation failure
// Error: 500 Internal Server Error if scheduling fails
func (h *ObligationHandler) CardPurchase(w http.ResponseWriter, r *http.Request) {
	var req request.CardPurchaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateCardPurchase(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.obligationService.AddCardPurchase(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToScheduleObligation)
		return
	}

	status := http.StatusCreated
	if result.AlreadyProcessed {
		status = http.StatusOK
	}
	response.RespondJSON(w, status, result)
}

// Adjustment handles POST requests to credit principal against an obligation
// without cash effect.
//
// Endpoint: POST /api/obligation/adjustment
// Response: 200 OK with AdjustmentResult
// Error: 400 Bad Request on validation failure
// Error: 404 Not Found if the obligation has no open installments
func (h *ObligationHandler) Adjustment(w http.ResponseWriter, r *http.Request) {
	var req request.AdjustmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateAdjustment(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.obligationService.RegisterAdjustment(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToScheduleObligation)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// ListOpen handles GET requests to retrieve the unsettled installments in
// FIFO settlement order.
//
// Endpoint: GET /api/obligation/open?type=&creditor=&competence=
// Response: 200 OK with array of ObligationEvent
// Error: 500 Internal Server Error if retrieval fails
func (h *ObligationHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	obligations, err := h.obligationService.ListOpen(q.Get("type"), q.Get("creditor"), q.Get("competence"))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveObligations.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, obligations)
}
