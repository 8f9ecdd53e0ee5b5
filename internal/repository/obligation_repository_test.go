package repository_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alexmabud/flowdash-backend/internal/apperrors"
	"github.com/alexmabud/flowdash-backend/internal/model"
	"github.com/alexmabud/flowdash-backend/internal/repository"
	"github.com/alexmabud/flowdash-backend/internal/testutil"
)

func TestCreateCharge(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewObligationRepository(db)

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		charge := model.ObligationEvent{
			ObligationType: model.ObligationBoleto,
			EventCategory:  model.EventCharge,
			EventDate:      time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
			Amount:         decimal.Zero,
			Creditor:       "ACME",
		}
		if _, _, err := repo.CreateCharge(&charge); err != apperrors.ErrInvalidAmount {
			t.Fatalf("Expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("a standalone charge heads its own obligation", func(t *testing.T) {
		charge := testutil.NewCharge().WithCreditor("ACME").Build(t, db)
		if charge.ObligationID != charge.ID {
			t.Errorf("Expected obligation id %d to equal row id %d", charge.ObligationID, charge.ID)
		}
		if charge.Status != model.StatusOpen {
			t.Errorf("Expected OPEN, got %s", charge.Status)
		}
	})

	t.Run("card purchases aggregate into one invoice per competence", func(t *testing.T) {
		first := testutil.NewCharge().
			WithType(model.ObligationInvoice).
			WithCreditor("Nubank").
			WithCompetence("2026-02").
			WithAmount(40).
			Build(t, db)

		second := model.ObligationEvent{
			ObligationType: model.ObligationInvoice,
			EventCategory:  model.EventCharge,
			EventDate:      time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			Competence:     "2026-02",
			Amount:         decimal.NewFromInt(25),
			Creditor:       "Nubank",
			Source:         "TEST",
			User:           "tester",
		}
		id, aggregated, err := repo.CreateCharge(&second)
		if err != nil {
			t.Fatalf("CreateCharge failed: %v", err)
		}
		if !aggregated {
			t.Error("Expected the second purchase to aggregate")
		}
		if id != first.ID {
			t.Errorf("Expected aggregation onto row %d, got %d", first.ID, id)
		}

		invoice, err := repo.GetChargeByID(first.ID)
		if err != nil {
			t.Fatalf("GetChargeByID failed: %v", err)
		}
		if !invoice.Amount.Equal(decimal.NewFromInt(65)) {
			t.Errorf("Expected invoice amount 65, got %s", invoice.Amount)
		}
	})

	t.Run("a different competence opens a new invoice", func(t *testing.T) {
		other := testutil.NewCharge().
			WithType(model.ObligationInvoice).
			WithCreditor("Nubank").
			WithCompetence("2026-03").
			WithAmount(10).
			Build(t, db)
		if !other.Amount.Equal(decimal.NewFromInt(10)) {
			t.Errorf("Expected a fresh invoice of 10, got %s", other.Amount)
		}
	})
}

func TestListOpenInstallments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewObligationRepository(db)

	head := testutil.NewCharge().WithCreditor("ACME").WithDueDate("2026-03-10").WithInstallment(2, 3).Build(t, db)
	testutil.NewCharge().WithObligationID(head.ID).WithCreditor("ACME").WithDueDate("2026-02-10").WithInstallment(1, 3).Build(t, db)
	undated := testutil.NewCharge().WithObligationID(head.ID).WithCreditor("ACME").WithInstallment(3, 3).Build(t, db)

	key := model.ObligationGroupKey{Type: model.ObligationBoleto, Creditor: "ACME"}

	t.Run("orders by due date with undated rows last", func(t *testing.T) {
		open, err := repo.ListOpenInstallments(key)
		if err != nil {
			t.Fatalf("ListOpenInstallments failed: %v", err)
		}
		if len(open) != 3 {
			t.Fatalf("Expected 3 open installments, got %d", len(open))
		}
		if open[0].DueDate == nil || open[0].DueDate.Month() != time.February {
			t.Error("Expected the February installment first")
		}
		if open[2].ID != undated.ID {
			t.Errorf("Expected the undated row last, got id %d", open[2].ID)
		}
	})

	t.Run("settled rows drop out", func(t *testing.T) {
		settled, err := repo.GetChargeByID(undated.ID)
		if err != nil {
			t.Fatalf("GetChargeByID failed: %v", err)
		}
		settled.PrincipalPaid = settled.Amount
		if err := repo.UpdateChargeSettlement(&settled); err != nil {
			t.Fatalf("UpdateChargeSettlement failed: %v", err)
		}

		open, err := repo.ListOpenInstallments(key)
		if err != nil {
			t.Fatalf("ListOpenInstallments failed: %v", err)
		}
		if len(open) != 2 {
			t.Fatalf("Expected 2 open installments, got %d", len(open))
		}
	})
}

func TestGroupStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewObligationRepository(db)

	head := testutil.NewCharge().WithCreditor("ACME").WithDueDate("2026-02-10").Build(t, db)
	second := testutil.NewCharge().WithObligationID(head.ID).WithCreditor("ACME").WithDueDate("2026-03-10").Build(t, db)

	key := model.ObligationGroupKey{ObligationID: head.ID}

	t.Run("all open", func(t *testing.T) {
		status, err := repo.GroupStatus(key)
		if err != nil {
			t.Fatalf("GroupStatus failed: %v", err)
		}
		if status != model.StatusOpen {
			t.Errorf("Expected OPEN, got %s", status)
		}
	})

	t.Run("partially settled", func(t *testing.T) {
		charge, err := repo.GetChargeByID(head.ID)
		if err != nil {
			t.Fatalf("GetChargeByID failed: %v", err)
		}
		charge.PrincipalPaid = charge.Amount
		if err := repo.UpdateChargeSettlement(&charge); err != nil {
			t.Fatalf("UpdateChargeSettlement failed: %v", err)
		}

		status, err := repo.GroupStatus(key)
		if err != nil {
			t.Fatalf("GroupStatus failed: %v", err)
		}
		if status != model.StatusPartial {
			t.Errorf("Expected PARTIAL, got %s", status)
		}
	})

	t.Run("fully settled", func(t *testing.T) {
		charge, err := repo.GetChargeByID(second.ID)
		if err != nil {
			t.Fatalf("GetChargeByID failed: %v", err)
		}
		charge.PrincipalPaid = charge.Amount
		if err := repo.UpdateChargeSettlement(&charge); err != nil {
			t.Fatalf("UpdateChargeSettlement failed: %v", err)
		}

		status, err := repo.GroupStatus(key)
		if err != nil {
			t.Fatalf("GroupStatus failed: %v", err)
		}
		if status != model.StatusSettled {
			t.Errorf("Expected SETTLED, got %s", status)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := repo.GroupStatus(model.ObligationGroupKey{ObligationID: 99999})
		if err != apperrors.ErrObligationNotFound {
			t.Fatalf("Expected ErrObligationNotFound, got %v", err)
		}
	})
}
