package handlers

import (
	"net/http"
	"time"

	"github.com/alexmabud/flowdash-backend/internal/api/response"
	"github.com/alexmabud/flowdash-backend/internal/apperrors"
	"github.com/alexmabud/flowdash-backend/internal/repository"
	"github.com/alexmabud/flowdash-backend/internal/service"
)

// MovementHandler handles HTTP requests for the movement log.
type MovementHandler struct {
	movementService *service.MovementService
}

// NewMovementHandler creates a new MovementHandler with the provided service dependency.
func NewMovementHandler(movementService *service.MovementService) *MovementHandler {
	return &MovementHandler{
		movementService: movementService,
	}
}

// List handles GET requests to retrieve movement rows. With only date given,
// returns that single day; startDate/endDate select a range; account narrows
// to one account. Defaults to today.
//
// Endpoint: GET /api/movement?date=YYYY-MM-DD&account=
// Response: 200 OK with array of MovementLogEntry
// Error: 400 Bad Request on a malformed date
// Error: 500 Internal Server Error if retrieval fails
func (h *MovementHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	parse := func(key string, fallback time.Time) (time.Time, bool) {
		raw := q.Get(key)
		if raw == "" {
			return fallback, true
		}
		parsed, err := repository.ParseTime(raw)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDate.Error(), err.Error())
			return time.Time{}, false
		}
		return parsed, true
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	date, ok := parse("date", today)
	if !ok {
		return
	}
	startDate, ok := parse("startDate", date)
	if !ok {
		return
	}
	endDate, ok := parse("endDate", date)
	if !ok {
		return
	}

	movements, err := h.movementService.ListMovements(startDate, endDate, q.Get("account"))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveMovements.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, movements)
}
