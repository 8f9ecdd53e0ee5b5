package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexmabud/flowdash-backend/internal/repository"
	"github.com/alexmabud/flowdash-backend/internal/service"
)

func NewTestObligationService(t *testing.T, db *sql.DB) *service.ObligationService {
	t.Helper()

	obligationRepo := repository.NewObligationRepository(db)
	movementRepo := repository.NewMovementRepository(db)

	return service.NewObligationService(
		db,
		obligationRepo,
		movementRepo,
	)
}

func NewTestSettlementService(t *testing.T, db *sql.DB) *service.SettlementService {
	t.Helper()

	obligationRepo := repository.NewObligationRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	bankBalanceRepo := repository.NewBankBalanceRepository(db)

	return service.NewSettlementService(
		db,
		obligationRepo,
		movementRepo,
		snapshotRepo,
		bankBalanceRepo,
	)
}

func NewTestTreasuryService(t *testing.T, db *sql.DB) *service.TreasuryService {
	t.Helper()

	snapshotRepo := repository.NewSnapshotRepository(db)
	bankBalanceRepo := repository.NewBankBalanceRepository(db)
	movementRepo := repository.NewMovementRepository(db)

	return service.NewTreasuryService(
		db,
		snapshotRepo,
		bankBalanceRepo,
		movementRepo,
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

func NewTestMovementService(t *testing.T, db *sql.DB) *service.MovementService {
	t.Helper()

	return service.NewMovementService(repository.NewMovementRepository(db))
}

func NewTestMaintenanceService(t *testing.T, db *sql.DB) *service.MaintenanceService {
	t.Helper()

	return service.NewMaintenanceService(repository.NewObligationRepository(db))
}
