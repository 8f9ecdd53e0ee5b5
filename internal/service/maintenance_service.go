package service

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/alexmabud/flowdash-backend/internal/repository"
)

// maintenanceParallelism bounds the concurrent status recomputations. SQLite
// serializes writers anyway; the bound keeps the sweep from piling up on the
// busy-timeout under a large backlog.
const maintenanceParallelism = 4

// MaintenanceService repairs derived data: it re-derives every obligation's
// installment statuses from the stored amounts and accumulators, fixing rows
// left inconsistent by manual database edits.
type MaintenanceService struct {
	obligationRepo *repository.ObligationRepository
}

// NewMaintenanceService creates a new MaintenanceService with the provided repository dependency.
func NewMaintenanceService(obligationRepo *repository.ObligationRepository) *MaintenanceService {
	return &MaintenanceService{
		obligationRepo: obligationRepo,
	}
}

// RecomputeAllStatuses sweeps every obligation and re-derives its CHARGE
// statuses, returning how many rows changed.
func (s *MaintenanceService) RecomputeAllStatuses(ctx context.Context) (int, error) {
	ids, err := s.obligationRepo.ListObligationIDs()
	if err != nil {
		return 0, err
	}

	var fixed atomic.Int64

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maintenanceParallelism)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			n, err := s.obligationRepo.RecomputeObligationStatuses(id)
			if err != nil {
				return err
			}
			fixed.Add(int64(n))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return int(fixed.Load()), nil
}
