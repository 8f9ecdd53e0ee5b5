package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/alexmabud/flowdash-backend/internal/api/request"
	"github.com/alexmabud/flowdash-backend/internal/apperrors"
	"github.com/alexmabud/flowdash-backend/internal/model"
	"github.com/alexmabud/flowdash-backend/internal/repository"
	"github.com/alexmabud/flowdash-backend/internal/testutil"
)

func TestEnsureSnapshot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestTreasuryService(t, db)

	t.Run("starts from zeros with no history", func(t *testing.T) {
		snap, err := svc.EnsureSnapshot(context.Background(), mustDate(t, "2026-01-01"))
		if err != nil {
			t.Fatalf("EnsureSnapshot failed: %v", err)
		}
		if !snap.TillBalance.IsZero() || !snap.TillTotal.IsZero() || !snap.SecondaryTillTotal.IsZero() {
			t.Errorf("Expected all-zero first snapshot, got %+v", snap)
		}
	})

	t.Run("rolls the previous day forward", func(t *testing.T) {
		testutil.NewSnapshot("2026-01-10").WithTill(100, 50).WithSecondary(20, 30).Build(t, db)

		snap, err := svc.EnsureSnapshot(context.Background(), mustDate(t, "2026-01-11"))
		if err != nil {
			t.Fatalf("EnsureSnapshot failed: %v", err)
		}

		if !snap.TillBalance.Equal(decimal.NewFromInt(100)) {
			t.Errorf("Expected till 100 carried, got %s", snap.TillBalance)
		}
		if !snap.TillSalesBalance.Equal(decimal.NewFromInt(50)) {
			t.Errorf("Expected sales 50 carried, got %s", snap.TillSalesBalance)
		}
		if !snap.SecondaryTillToday.IsZero() {
			t.Errorf("Expected daily counter reset, got %s", snap.SecondaryTillToday)
		}
		if !snap.SecondaryTillBalance.Equal(decimal.NewFromInt(50)) {
			t.Errorf("Expected secondary balance seeded with previous total 50, got %s", snap.SecondaryTillBalance)
		}
		if !snap.SecondaryTillTotal.Equal(decimal.NewFromInt(50)) {
			t.Errorf("Expected secondary total preserved at 50, got %s", snap.SecondaryTillTotal)
		}
	})

	t.Run("is idempotent for an existing date", func(t *testing.T) {
		again, err := svc.EnsureSnapshot(context.Background(), mustDate(t, "2026-01-11"))
		if err != nil {
			t.Fatalf("EnsureSnapshot failed: %v", err)
		}
		if !again.SecondaryTillBalance.Equal(decimal.NewFromInt(50)) {
			t.Errorf("Expected unchanged snapshot, got secondary balance %s", again.SecondaryTillBalance)
		}
	})
}

func TestTransferTillToSecondary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestTreasuryService(t, db)

	testutil.NewSnapshot("2026-01-10").WithTill(100, 50).Build(t, db)

	t.Run("drains till before sales", func(t *testing.T) {
		result, err := svc.TransferTillToSecondary(context.Background(), request.SecondaryTransferRequest{
			Date:   "2026-01-10",
			Amount: 120,
			User:   "tester",
		})
		if err != nil {
			t.Fatalf("TransferTillToSecondary failed: %v", err)
		}

		if !result.FromTill.Equal(decimal.NewFromInt(100)) {
			t.Errorf("Expected 100 from till, got %s", result.FromTill)
		}
		if !result.FromSales.Equal(decimal.NewFromInt(20)) {
			t.Errorf("Expected 20 from sales, got %s", result.FromSales)
		}
		if !result.Snapshot.SecondaryTillToday.Equal(decimal.NewFromInt(120)) {
			t.Errorf("Expected daily counter 120, got %s", result.Snapshot.SecondaryTillToday)
		}
		if !result.Snapshot.TillTotal.Equal(decimal.NewFromInt(30)) {
			t.Errorf("Expected till total 30, got %s", result.Snapshot.TillTotal)
		}
	})

	t.Run("rejects amounts above the till total", func(t *testing.T) {
		_, err := svc.TransferTillToSecondary(context.Background(), request.SecondaryTransferRequest{
			Date:   "2026-01-10",
			Amount: 500,
			User:   "tester",
		})
		if err != apperrors.ErrInsufficientFunds {
			t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
		}
	})

	t.Run("replaying a transfer that drained the till is a no-op", func(t *testing.T) {
		// 120 already left a 150 till; an identical resubmission must not
		// hit the funds check again.
		result, err := svc.TransferTillToSecondary(context.Background(), request.SecondaryTransferRequest{
			Date:   "2026-01-10",
			Amount: 120,
			User:   "tester",
		})
		if err != nil {
			t.Fatalf("Expected an idempotent no-op, got %v", err)
		}
		if result.MovementID == 0 {
			t.Error("Expected the original movement id")
		}

		snap, err := svc.EnsureSnapshot(context.Background(), mustDate(t, "2026-01-10"))
		if err != nil {
			t.Fatalf("EnsureSnapshot failed: %v", err)
		}
		if !snap.SecondaryTillToday.Equal(decimal.NewFromInt(120)) {
			t.Errorf("Expected daily counter still 120, got %s", snap.SecondaryTillToday)
		}
		if !snap.TillTotal.Equal(decimal.NewFromInt(30)) {
			t.Errorf("Expected till total still 30, got %s", snap.TillTotal)
		}
	})
}

func TestDepositSecondaryToBank(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestTreasuryService(t, db)

	testutil.NewSnapshot("2026-01-10").WithSecondary(40, 60).Build(t, db)

	result, err := svc.DepositSecondaryToBank(context.Background(), request.DepositRequest{
		Date:        "2026-01-10",
		Amount:      80,
		BankAccount: "Banco Inter",
		User:        "tester",
	})
	if err != nil {
		t.Fatalf("DepositSecondaryToBank failed: %v", err)
	}

	t.Run("drains the daily counter before the balance", func(t *testing.T) {
		if !result.FromToday.Equal(decimal.NewFromInt(60)) {
			t.Errorf("Expected 60 from today, got %s", result.FromToday)
		}
		if !result.FromBalance.Equal(decimal.NewFromInt(20)) {
			t.Errorf("Expected 20 from balance, got %s", result.FromBalance)
		}
		if !result.Snapshot.SecondaryTillTotal.Equal(decimal.NewFromInt(20)) {
			t.Errorf("Expected secondary total 20, got %s", result.Snapshot.SecondaryTillTotal)
		}
	})

	t.Run("credits the bank account", func(t *testing.T) {
		balance, found, err := repository.NewBankBalanceRepository(db).GetBalance(mustDate(t, "2026-01-10"), "Banco Inter")
		if err != nil {
			t.Fatalf("GetBalance failed: %v", err)
		}
		if !found {
			t.Fatal("Expected a bank balance row")
		}
		if !balance.Equal(decimal.NewFromInt(80)) {
			t.Errorf("Expected bank balance 80, got %s", balance)
		}
	})

	t.Run("movement lands on the bank account", func(t *testing.T) {
		movement, err := repository.NewMovementRepository(db).GetByID(result.MovementID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if movement.Account != "Banco Inter" {
			t.Errorf("Expected account Banco Inter, got %s", movement.Account)
		}
		if movement.Direction != model.DirectionIn {
			t.Errorf("Expected IN movement, got %s", movement.Direction)
		}
	})

	t.Run("replaying the deposit is a no-op", func(t *testing.T) {
		// The first deposit left only 20 in the secondary till; the replay
		// must resolve before the funds check instead of failing on it.
		replay, err := svc.DepositSecondaryToBank(context.Background(), request.DepositRequest{
			Date:        "2026-01-10",
			Amount:      80,
			BankAccount: "Banco Inter",
			User:        "tester",
		})
		if err != nil {
			t.Fatalf("Expected an idempotent no-op, got %v", err)
		}
		if replay.MovementID != result.MovementID {
			t.Errorf("Expected movement id %d, got %d", result.MovementID, replay.MovementID)
		}

		balance, _, err := repository.NewBankBalanceRepository(db).GetBalance(mustDate(t, "2026-01-10"), "Banco Inter")
		if err != nil {
			t.Fatalf("GetBalance failed: %v", err)
		}
		if !balance.Equal(decimal.NewFromInt(80)) {
			t.Errorf("Expected bank balance still 80, got %s", balance)
		}
	})
}

func TestTransferBankToBank(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestTreasuryService(t, db)

	testutil.SeedBankBalance(t, db, "2026-01-09", "Banco A", 100)

	t.Run("rejects same-account transfers", func(t *testing.T) {
		_, err := svc.TransferBankToBank(context.Background(), request.BankTransferRequest{
			Date:        "2026-01-10",
			Amount:      10,
			FromAccount: "Banco A",
			ToAccount:   "banco a",
			User:        "tester",
		})
		if err != apperrors.ErrSameAccount {
			t.Fatalf("Expected ErrSameAccount, got %v", err)
		}
	})

	t.Run("moves money and links the movement pair", func(t *testing.T) {
		result, err := svc.TransferBankToBank(context.Background(), request.BankTransferRequest{
			Date:        "2026-01-10",
			Amount:      30,
			FromAccount: "Banco A",
			ToAccount:   "Banco B",
			User:        "tester",
		})
		if err != nil {
			t.Fatalf("TransferBankToBank failed: %v", err)
		}
		if !result.BalanceChecked {
			t.Error("Expected the source balance to have been checked")
		}

		movements := repository.NewMovementRepository(db)
		out, err := movements.GetByID(result.MovementID)
		if err != nil {
			t.Fatalf("GetByID out failed: %v", err)
		}
		in, err := movements.GetByID(result.PairMovementID)
		if err != nil {
			t.Fatalf("GetByID in failed: %v", err)
		}
		if in.ReferenceID != out.ID {
			t.Errorf("Expected the IN row to reference the OUT row %d, got %d", out.ID, in.ReferenceID)
		}

		banks := repository.NewBankBalanceRepository(db)
		fromBalance, _, err := banks.GetBalance(mustDate(t, "2026-01-10"), "Banco A")
		if err != nil {
			t.Fatalf("GetBalance failed: %v", err)
		}
		toBalance, _, err := banks.GetBalance(mustDate(t, "2026-01-10"), "Banco B")
		if err != nil {
			t.Fatalf("GetBalance failed: %v", err)
		}
		if !fromBalance.Equal(decimal.NewFromInt(70)) {
			t.Errorf("Expected source balance 70, got %s", fromBalance)
		}
		if !toBalance.Equal(decimal.NewFromInt(30)) {
			t.Errorf("Expected destination balance 30, got %s", toBalance)
		}
	})

	t.Run("rejects transfers above a known balance", func(t *testing.T) {
		_, err := svc.TransferBankToBank(context.Background(), request.BankTransferRequest{
			Date:        "2026-01-10",
			Amount:      500,
			FromAccount: "Banco A",
			ToAccount:   "Banco B",
			User:        "tester",
		})
		if err != apperrors.ErrInsufficientFunds {
			t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
		}
	})

	t.Run("trusts an account with no balance history", func(t *testing.T) {
		result, err := svc.TransferBankToBank(context.Background(), request.BankTransferRequest{
			Date:        "2026-01-10",
			Amount:      50,
			FromAccount: "Banco C",
			ToAccount:   "Banco D",
			User:        "tester",
		})
		if err != nil {
			t.Fatalf("TransferBankToBank failed: %v", err)
		}
		if result.BalanceChecked {
			t.Error("Expected no balance check for an unknown account")
		}
	})
}

func TestMaintenanceRecomputeStatuses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestMaintenanceService(t, db)

	charge := testutil.NewCharge().WithCreditor("ACME").WithDueDate("2026-02-10").Build(t, db)
	testutil.NewCharge().WithCreditor("Other").WithDueDate("2026-03-10").Build(t, db)

	// Corrupt a derived status the way a manual edit would.
	if _, err := db.Exec("UPDATE obligation_event SET status = 'SETTLED' WHERE id = ?", charge.ID); err != nil {
		t.Fatalf("Failed to corrupt status: %v", err)
	}

	fixed, err := svc.RecomputeAllStatuses(context.Background())
	if err != nil {
		t.Fatalf("RecomputeAllStatuses failed: %v", err)
	}
	if fixed != 1 {
		t.Errorf("Expected 1 row fixed, got %d", fixed)
	}

	got, err := repository.NewObligationRepository(db).GetChargeByID(charge.ID)
	if err != nil {
		t.Fatalf("GetChargeByID failed: %v", err)
	}
	if got.Status != model.StatusOpen {
		t.Errorf("Expected OPEN after repair, got %s", got.Status)
	}
}
