package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/alexmabud/flowdash-backend/internal/api/request"
	"github.com/alexmabud/flowdash-backend/internal/model"
	"github.com/alexmabud/flowdash-backend/internal/repository"
	"github.com/alexmabud/flowdash-backend/internal/testutil"
)

func TestScheduleBoleto(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestObligationService(t, db)

	req := request.ScheduleBoletoRequest{
		PurchaseDate: "2026-01-15",
		TotalAmount:  100,
		Installments: 3,
		FirstDueDate: "2026-01-31",
		Creditor:     "ACME",
		Description:  "stock purchase",
		User:         "tester",
	}

	result, err := svc.ScheduleBoleto(context.Background(), req)
	if err != nil {
		t.Fatalf("ScheduleBoleto failed: %v", err)
	}

	t.Run("splits evenly with last installment absorbing rounding", func(t *testing.T) {
		want := []string{"33.33", "33.33", "33.34"}
		if len(result.InstallmentAmounts) != 3 {
			t.Fatalf("Expected 3 installments, got %d", len(result.InstallmentAmounts))
		}
		for i, amount := range result.InstallmentAmounts {
			if amount.StringFixed(2) != want[i] {
				t.Errorf("Installment %d: expected %s, got %s", i+1, want[i], amount.StringFixed(2))
			}
		}
	})

	t.Run("clamps due dates to end of month", func(t *testing.T) {
		repo := repository.NewObligationRepository(db)
		open, err := repo.ListOpenInstallments(model.ObligationGroupKey{ObligationID: result.ObligationID})
		if err != nil {
			t.Fatalf("ListOpenInstallments failed: %v", err)
		}
		if len(open) != 3 {
			t.Fatalf("Expected 3 open installments, got %d", len(open))
		}

		want := []string{"2026-01-31", "2026-02-28", "2026-03-31"}
		for i, charge := range open {
			if charge.DueDate == nil {
				t.Fatalf("Installment %d has no due date", i+1)
			}
			if got := charge.DueDate.Format("2006-01-02"); got != want[i] {
				t.Errorf("Installment %d: expected due %s, got %s", i+1, want[i], got)
			}
		}
	})

	t.Run("records one movement", func(t *testing.T) {
		if result.MovementID == 0 {
			t.Error("Expected a movement id")
		}
		movement, err := repository.NewMovementRepository(db).GetByID(result.MovementID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if movement.Direction != model.DirectionRecord {
			t.Errorf("Expected RECORD movement, got %s", movement.Direction)
		}
	})

	t.Run("replay is a no-op", func(t *testing.T) {
		replay, err := svc.ScheduleBoleto(context.Background(), req)
		if err != nil {
			t.Fatalf("Replayed ScheduleBoleto failed: %v", err)
		}
		if !replay.AlreadyProcessed {
			t.Error("Expected replay to report alreadyProcessed")
		}

		open, err := repository.NewObligationRepository(db).ListOpenInstallments(model.ObligationGroupKey{ObligationID: result.ObligationID})
		if err != nil {
			t.Fatalf("ListOpenInstallments failed: %v", err)
		}
		if len(open) != 3 {
			t.Errorf("Expected still 3 installments after replay, got %d", len(open))
		}
	})
}

func TestScheduleLoanWithPrepaidInstallments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestObligationService(t, db)

	result, err := svc.ScheduleLoan(context.Background(), request.ScheduleLoanRequest{
		StartDate:        "2026-01-10",
		TotalAmount:      400,
		Installments:     4,
		FirstDueDate:     "2026-02-10",
		InstallmentsPaid: 2,
		Creditor:         "Banco Azul",
		User:             "tester",
	})
	if err != nil {
		t.Fatalf("ScheduleLoan failed: %v", err)
	}

	open, err := repository.NewObligationRepository(db).ListOpenInstallments(model.ObligationGroupKey{ObligationID: result.ObligationID})
	if err != nil {
		t.Fatalf("ListOpenInstallments failed: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("Expected 2 installments still open, got %d", len(open))
	}

	status, err := repository.NewObligationRepository(db).GroupStatus(model.ObligationGroupKey{ObligationID: result.ObligationID})
	if err != nil {
		t.Fatalf("GroupStatus failed: %v", err)
	}
	if status != model.StatusPartial {
		t.Errorf("Expected group PARTIAL, got %s", status)
	}
}

func TestAddCardPurchase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestObligationService(t, db)

	t.Run("purchase after closing lands on next month", func(t *testing.T) {
		// Due day 10, closes 7 days before: day 5 is past the Jan 3 close.
		result, err := svc.AddCardPurchase(context.Background(), request.CardPurchaseRequest{
			PurchaseDate: "2026-01-05",
			TotalAmount:  90,
			Installments: 3,
			Card:         "Visa Gold",
			DueDay:       10,
			ClosingDays:  7,
			User:         "tester",
		})
		if err != nil {
			t.Fatalf("AddCardPurchase failed: %v", err)
		}

		open, err := repository.NewObligationRepository(db).ListOpenCharges(model.ObligationInvoice, "Visa Gold", "")
		if err != nil {
			t.Fatalf("ListOpenCharges failed: %v", err)
		}
		if len(open) != 3 {
			t.Fatalf("Expected 3 invoice charges, got %d", len(open))
		}

		want := []string{"2026-02", "2026-03", "2026-04"}
		for i, charge := range open {
			if charge.Competence != want[i] {
				t.Errorf("Charge %d: expected competence %s, got %s", i+1, want[i], charge.Competence)
			}
		}
		if result.MovementID == 0 {
			t.Error("Expected a movement id")
		}
	})

	t.Run("same competence aggregates into one invoice", func(t *testing.T) {
		_, err := svc.AddCardPurchase(context.Background(), request.CardPurchaseRequest{
			PurchaseDate: "2026-01-20",
			TotalAmount:  50,
			Installments: 1,
			Card:         "Visa Gold",
			DueDay:       10,
			ClosingDays:  7,
			User:         "tester",
		})
		if err != nil {
			t.Fatalf("Second AddCardPurchase failed: %v", err)
		}

		open, err := repository.NewObligationRepository(db).ListOpenCharges(model.ObligationInvoice, "Visa Gold", "2026-02")
		if err != nil {
			t.Fatalf("ListOpenCharges failed: %v", err)
		}
		if len(open) != 1 {
			t.Fatalf("Expected a single February invoice, got %d charges", len(open))
		}
		if !open[0].Amount.Equal(decimal.NewFromInt(80)) {
			t.Errorf("Expected aggregated invoice of 80, got %s", open[0].Amount)
		}
	})
}

func TestRegisterAdjustment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestObligationService(t, db)

	first := testutil.NewCharge().WithCreditor("ACME").WithDueDate("2026-02-10").WithInstallment(1, 2).Build(t, db)
	testutil.NewCharge().WithCreditor("ACME").WithObligationID(first.ObligationID).WithDueDate("2026-03-10").WithInstallment(2, 2).Build(t, db)

	result, err := svc.RegisterAdjustment(context.Background(), request.AdjustmentRequest{
		ObligationID: first.ObligationID,
		Amount:       500,
		Date:         "2026-01-20",
		Description:  "imported as partially paid",
		User:         "tester",
	})
	if err != nil {
		t.Fatalf("RegisterAdjustment failed: %v", err)
	}

	t.Run("clamps at the open remainder", func(t *testing.T) {
		if !result.AmountApplied.Equal(decimal.NewFromInt(200)) {
			t.Errorf("Expected 200 applied, got %s", result.AmountApplied)
		}
	})

	t.Run("settles the whole group without cash", func(t *testing.T) {
		if result.GroupStatus != model.StatusSettled {
			t.Errorf("Expected group SETTLED, got %s", result.GroupStatus)
		}

		got, err := repository.NewObligationRepository(db).GetChargeByID(first.ID)
		if err != nil {
			t.Fatalf("GetChargeByID failed: %v", err)
		}
		if !got.GrossPaid.IsZero() {
			t.Errorf("Expected zero gross_paid, got %s", got.GrossPaid)
		}
	})
}
