package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/alexmabud/flowdash-backend/internal/api/response"
	"github.com/alexmabud/flowdash-backend/internal/apperrors"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Failed to encode JSON: %v", err)
		}
	}
}

// respondServiceError maps sentinel errors to HTTP statuses: invalid input
// to 400, missing entities to 404, insufficient funds to 409, anything else
// to 500 under the given fallback message.
func respondServiceError(w http.ResponseWriter, err error, fallback error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrInvalidDate),
		errors.Is(err, apperrors.ErrInvalidInstallments),
		errors.Is(err, apperrors.ErrEmptyCreditor),
		errors.Is(err, apperrors.ErrEmptyUser),
		errors.Is(err, apperrors.ErrSameAccount),
		errors.Is(err, apperrors.ErrUnknownAccount):
		response.RespondError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, apperrors.ErrObligationNotFound),
		errors.Is(err, apperrors.ErrChargeNotFound),
		errors.Is(err, apperrors.ErrMovementNotFound),
		errors.Is(err, apperrors.ErrSnapshotNotFound),
		errors.Is(err, apperrors.ErrInvalidObligationReference):
		response.RespondError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		response.RespondError(w, http.StatusConflict, err.Error(), "")
	default:
		response.RespondError(w, http.StatusInternalServerError, fallback.Error(), err.Error())
	}
}

// decodeJSON parses the request body into dst, responding 400 on malformed
// JSON. Returns false when the response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}
