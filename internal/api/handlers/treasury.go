package handlers

import (
	"net/http"
	"time"

	"github.com/alexmabud/flowdash-backend/internal/api/request"
	"github.com/alexmabud/flowdash-backend/internal/api/response"
	"github.com/alexmabud/flowdash-backend/internal/apperrors"
	"github.com/alexmabud/flowdash-backend/internal/repository"
	"github.com/alexmabud/flowdash-backend/internal/service"
	"github.com/alexmabud/flowdash-backend/internal/validation"
)

// TreasuryHandler handles HTTP requests for cash-position and transfer
// operations.
type TreasuryHandler struct {
	treasuryService *service.TreasuryService
}

// NewTreasuryHandler creates a new TreasuryHandler with the provided service dependency.
func NewTreasuryHandler(treasuryService *service.TreasuryService) *TreasuryHandler {
	return &TreasuryHandler{
		treasuryService: treasuryService,
	}
}

// SecondaryTransfer handles POST requests to move cash from the main till to
// the secondary till.
//
// Endpoint: POST /api/treasury/secondary-transfer
// Response: 201 Created with TransferResult
// Error: 400 Bad Request on validation failure
// Error: 409 Conflict on insufficient funds
func (h *TreasuryHandler) SecondaryTransfer(w http.ResponseWriter, r *http.Request) {
	var req request.SecondaryTransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateSecondaryTransfer(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.treasuryService.TransferTillToSecondary(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToTransfer)
		return
	}

	response.RespondJSON(w, http.StatusCreated, result)
}

// Deposit handles POST requests to move cash from the secondary till into a
// bank account.
//
// Endpoint: POST /api/treasury/deposit
// Response: 201 Created with TransferResult
// Error: 400 Bad Request on validation failure
// Error: 409 Conflict on insufficient funds
func (h *TreasuryHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req request.DepositRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateDeposit(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.treasuryService.DepositSecondaryToBank(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToTransfer)
		return
	}

	response.RespondJSON(w, http.StatusCreated, result)
}

// BankTransfer handles POST requests to move money between two bank accounts.
//
// Endpoint: POST /api/treasury/bank-transfer
// Response: 201 Created with TransferResult
// Error: 400 Bad Request on validation failure or same-account transfer
// Error: 409 Conflict on insufficient funds
func (h *TreasuryHandler) BankTransfer(w http.ResponseWriter, r *http.Request) {
	var req request.BankTransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateBankTransfer(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.treasuryService.TransferBankToBank(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToTransfer)
		return
	}

	response.RespondJSON(w, http.StatusCreated, result)
}

// BankBalances handles GET requests to retrieve every bank account's balance
// as of a date. Defaults to today when no date is given.
//
// Endpoint: GET /api/treasury/bank-balances?date=YYYY-MM-DD
// Response: 200 OK with array of BankBalance
// Error: 400 Bad Request on a malformed date
// Error: 500 Internal Server Error if retrieval fails
func (h *TreasuryHandler) BankBalances(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := repository.ParseTime(raw)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDate.Error(), err.Error())
			return
		}
		date = parsed
	}

	balances, err := h.treasuryService.GetBankBalances(date)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveSnapshot.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, balances)
}

// Snapshot handles GET requests to retrieve the cash position for a date,
// rolling the previous day forward when the date has no row yet. Defaults to
// today when no date is given.
//
// Endpoint: GET /api/treasury/snapshot?date=YYYY-MM-DD
// Response: 200 OK with CashPositionSnapshot
// Error: 400 Bad Request on a malformed date
// Error: 500 Internal Server Error if retrieval fails
func (h *TreasuryHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := repository.ParseTime(raw)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDate.Error(), err.Error())
			return
		}
		date = parsed
	}

	snapshot, err := h.treasuryService.EnsureSnapshot(r.Context(), date)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveSnapshot.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, snapshot)
}
