package service

import (
	"time"

	"github.com/alexmabud/flowdash-backend/internal/model"
	"github.com/alexmabud/flowdash-backend/internal/repository"
)

// MovementService handles movement-log read operations.
type MovementService struct {
	movementRepo *repository.MovementRepository
}

// NewMovementService creates a new MovementService with the provided repository dependency.
func NewMovementService(movementRepo *repository.MovementRepository) *MovementService {
	return &MovementService{
		movementRepo: movementRepo,
	}
}

// ListMovements retrieves movement rows within the inclusive date range,
// optionally narrowed to one account.
func (s *MovementService) ListMovements(startDate, endDate time.Time, account string) ([]model.MovementLogEntry, error) {
	return s.movementRepo.List(startDate, endDate, account)
}
