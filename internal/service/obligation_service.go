package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alexmabud/flowdash-backend/internal/api/request"
	"github.com/alexmabud/flowdash-backend/internal/apperrors"
	"github.com/alexmabud/flowdash-backend/internal/model"
	"github.com/alexmabud/flowdash-backend/internal/money"
	"github.com/alexmabud/flowdash-backend/internal/repository"
	"github.com/alexmabud/flowdash-backend/internal/uid"
)

// ObligationService programs debts into the event store: boletos and loans
// as monthly installment series, card purchases folded into invoice
// competences, and no-cash adjustments for debt imported mid-life.
type ObligationService struct {
	db             *sql.DB
	obligationRepo *repository.ObligationRepository
	movementRepo   *repository.MovementRepository
}

// NewObligationService creates a new ObligationService with the provided repository dependencies.
func NewObligationService(
	db *sql.DB,
	obligationRepo *repository.ObligationRepository,
	movementRepo *repository.MovementRepository,
) *ObligationService {
	return &ObligationService{
		db:             db,
		obligationRepo: obligationRepo,
		movementRepo:   movementRepo,
	}
}

// ScheduleBoleto programs a boleto purchase as N monthly installments from
// the first due date. The total is split evenly at 2 decimal places with the
// rounding difference absorbed by the last installment. One RECORD movement
// documents the programming; replaying the same request is a no-op.
func (s *ObligationService) ScheduleBoleto(ctx context.Context, req request.ScheduleBoletoRequest) (*model.ScheduleResult, error) {
	purchaseDate, err := repository.ParseTime(req.PurchaseDate)
	if err != nil {
		return nil, apperrors.ErrInvalidDate
	}
	firstDue, err := repository.ParseTime(req.FirstDueDate)
	if err != nil {
		return nil, apperrors.ErrInvalidDate
	}
	total := money.FromFloat(req.TotalAmount)
	if !money.IsPositive(total) {
		return nil, apperrors.ErrInvalidAmount
	}
	if req.Installments < 1 {
		return nil, apperrors.ErrInvalidInstallments
	}

	transactionUID := uid.BoletoSchedule(
		repository.FormatDate(purchaseDate), total, req.Installments,
		repository.FormatDate(firstDue), req.Creditor, req.Description, req.User,
	)

	return s.scheduleSeries(ctx, seriesSpec{
		obligationType: model.ObligationBoleto,
		eventDate:      purchaseDate,
		firstDue:       firstDue,
		total:          total,
		installments:   req.Installments,
		creditor:       req.Creditor,
		description:    req.Description,
		source:         "BOLETO_SCHEDULE",
		user:           req.User,
		transactionUID: transactionUID,
	})
}

// ScheduleLoan programs a loan like a boleto series, then settles the first
// InstallmentsPaid installments at creation through a no-cash adjustment, for
// loans imported after some installments were already paid.
func (s *ObligationService) ScheduleLoan(ctx context.Context, req request.ScheduleLoanRequest) (*model.ScheduleResult, error) {
	startDate, err := repository.ParseTime(req.StartDate)
	if err != nil {
		return nil, apperrors.ErrInvalidDate
	}
	firstDue, err := repository.ParseTime(req.FirstDueDate)
	if err != nil {
		return nil, apperrors.ErrInvalidDate
	}
	total := money.FromFloat(req.TotalAmount)
	if !money.IsPositive(total) {
		return nil, apperrors.ErrInvalidAmount
	}
	if req.Installments < 1 || req.InstallmentsPaid < 0 || req.InstallmentsPaid > req.Installments {
		return nil, apperrors.ErrInvalidInstallments
	}

	transactionUID := uid.LoanSchedule(
		repository.FormatDate(firstDue), total, req.Installments, req.Creditor, req.User,
	)

	result, err := s.scheduleSeries(ctx, seriesSpec{
		obligationType:   model.ObligationLoan,
		eventDate:        startDate,
		firstDue:         firstDue,
		total:            total,
		installments:     req.Installments,
		installmentsPaid: req.InstallmentsPaid,
		creditor:         req.Creditor,
		description:      req.Description,
		source:           "LOAN_SCHEDULE",
		user:             req.User,
		transactionUID:   transactionUID,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddCardPurchase splits a credit-card purchase across monthly invoice
// competences. A purchase after the card's closing day lands on the next
// month's invoice; each slice accumulates into that competence's single
// CHARGE row. One RECORD movement documents the purchase.
func (s *ObligationService) AddCardPurchase(ctx context.Context, req request.CardPurchaseRequest) (*model.ScheduleResult, error) {
	purchaseDate, err := repository.ParseTime(req.PurchaseDate)
	if err != nil {
		return nil, apperrors.ErrInvalidDate
	}
	total := money.FromFloat(req.TotalAmount)
	if !money.IsPositive(total) {
		return nil, apperrors.ErrInvalidAmount
	}
	if req.Installments < 1 {
		return nil, apperrors.ErrInvalidInstallments
	}
	if req.Card == "" {
		return nil, apperrors.ErrEmptyCreditor
	}
	if req.DueDay < 1 || req.DueDay > 31 {
		return nil, apperrors.ErrInvalidDate
	}

	transactionUID := uid.CardPurchase(
		repository.FormatDate(purchaseDate), total, req.Installments,
		req.Card, req.Description, req.User,
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	obligations := s.obligationRepo.WithTx(tx)
	movements := s.movementRepo.WithTx(tx)

	if existingID, found, err := movements.FindByUID(transactionUID); err != nil {
		return nil, err
	} else if found {
		return &model.ScheduleResult{
			MovementID:       existingID,
			TransactionUID:   transactionUID,
			AlreadyProcessed: true,
		}, nil
	}

	amounts := splitInstallments(total, req.Installments)
	firstCompetence := firstInvoiceMonth(purchaseDate, req.DueDay, req.ClosingDays)

	result := &model.ScheduleResult{
		TotalAmount:        total,
		InstallmentIDs:     make([]int64, 0, req.Installments),
		InstallmentAmounts: amounts,
		TransactionUID:     transactionUID,
	}

	for i, amount := range amounts {
		competenceMonth := firstCompetence.AddDate(0, i, 0)
		dueDate := clampDay(competenceMonth, req.DueDay)

		charge := &model.ObligationEvent{
			ObligationType:    model.ObligationInvoice,
			EventCategory:     model.EventCharge,
			EventDate:         purchaseDate,
			DueDate:           &dueDate,
			Competence:        competenceMonth.Format("2006-01"),
			InstallmentNumber: i + 1,
			InstallmentCount:  req.Installments,
			Amount:            amount,
			Creditor:          req.Card,
			Description:       req.Description,
			Source:            "CARD_PURCHASE",
			User:              req.User,
		}
		id, _, err := obligations.CreateCharge(charge)
		if err != nil {
			return nil, err
		}
		result.InstallmentIDs = append(result.InstallmentIDs, id)
		if i == 0 {
			result.ObligationID = charge.ObligationID
		}
	}

	movement := &model.MovementLogEntry{
		Date:           purchaseDate,
		Account:        req.Card,
		Direction:      model.DirectionRecord,
		Amount:         total,
		Source:         "CARD_PURCHASE",
		Note:           req.Description,
		ReferenceTable: "obligation_event",
		ReferenceID:    result.ObligationID,
		TransactionUID: transactionUID,
		User:           req.User,
	}
	if result.MovementID, _, err = movements.Post(movement); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit card purchase: %w", err)
	}
	return result, nil
}

// RegisterAdjustment credits principal against an obligation without cash,
// FIFO across its open installments, clamped at the open remainder.
func (s *ObligationService) RegisterAdjustment(ctx context.Context, req request.AdjustmentRequest) (*model.AdjustmentResult, error) {
	date, err := repository.ParseTime(req.Date)
	if err != nil {
		return nil, apperrors.ErrInvalidDate
	}
	amount := money.FromFloat(req.Amount)
	if !money.IsPositive(amount) {
		return nil, apperrors.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	obligations := s.obligationRepo.WithTx(tx)

	applied, err := obligations.RegisterAdjustment(req.ObligationID, amount, date, req.Description, req.User)
	if err != nil {
		return nil, err
	}

	groupStatus, err := obligations.GroupStatus(model.ObligationGroupKey{ObligationID: req.ObligationID})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit adjustment: %w", err)
	}

	return &model.AdjustmentResult{
		ObligationID:  req.ObligationID,
		AmountApplied: applied,
		GroupStatus:   groupStatus,
	}, nil
}

// ListOpen retrieves the unsettled CHARGE rows, optionally filtered, in FIFO
// settlement order.
func (s *ObligationService) ListOpen(obligationType, creditor, competence string) ([]model.ObligationEvent, error) {
	return s.obligationRepo.ListOpenCharges(model.ObligationType(obligationType), creditor, competence)
}

type seriesSpec struct {
	obligationType   model.ObligationType
	eventDate        time.Time
	firstDue         time.Time
	total            decimal.Decimal
	installments     int
	installmentsPaid int
	creditor         string
	description      string
	source           string
	user             string
	transactionUID   string
}

func (s *ObligationService) scheduleSeries(ctx context.Context, spec seriesSpec) (*model.ScheduleResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	obligations := s.obligationRepo.WithTx(tx)
	movements := s.movementRepo.WithTx(tx)

	if existingID, found, err := movements.FindByUID(spec.transactionUID); err != nil {
		return nil, err
	} else if found {
		return &model.ScheduleResult{
			MovementID:       existingID,
			TransactionUID:   spec.transactionUID,
			AlreadyProcessed: true,
		}, nil
	}

	amounts := splitInstallments(spec.total, spec.installments)
	result := &model.ScheduleResult{
		TotalAmount:        spec.total,
		InstallmentIDs:     make([]int64, 0, spec.installments),
		InstallmentAmounts: amounts,
		TransactionUID:     spec.transactionUID,
	}

	var headID int64
	for i, amount := range amounts {
		dueDate := addMonthsClamped(spec.firstDue, i)
		charge := &model.ObligationEvent{
			ObligationID:      headID,
			ObligationType:    spec.obligationType,
			EventCategory:     model.EventCharge,
			EventDate:         spec.eventDate,
			DueDate:           &dueDate,
			InstallmentNumber: i + 1,
			InstallmentCount:  spec.installments,
			Amount:            amount,
			Creditor:          spec.creditor,
			Description:       spec.description,
			Source:            spec.source,
			User:              spec.user,
		}
		id, _, err := obligations.CreateCharge(charge)
		if err != nil {
			return nil, err
		}
		if headID == 0 {
			headID = charge.ObligationID
		}
		result.InstallmentIDs = append(result.InstallmentIDs, id)
	}
	result.ObligationID = headID

	if spec.installmentsPaid > 0 {
		prepaid := decimal.Zero
		for i := 0; i < spec.installmentsPaid; i++ {
			prepaid = money.Round2(prepaid.Add(amounts[i]))
		}
		if _, err := obligations.RegisterAdjustment(headID, prepaid, spec.eventDate, "installments paid before import", spec.user); err != nil {
			return nil, err
		}
	}

	movement := &model.MovementLogEntry{
		Date:           spec.eventDate,
		Account:        spec.creditor,
		Direction:      model.DirectionRecord,
		Amount:         spec.total,
		Source:         spec.source,
		Note:           spec.description,
		ReferenceTable: "obligation_event",
		ReferenceID:    headID,
		TransactionUID: spec.transactionUID,
		User:           spec.user,
	}
	if result.MovementID, _, err = movements.Post(movement); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit schedule: %w", err)
	}
	return result, nil
}

// splitInstallments divides total into n 2-decimal slices, the last one
// absorbing the rounding difference so the slices sum exactly to total.
func splitInstallments(total decimal.Decimal, n int) []decimal.Decimal {
	per := money.Round2(total.Div(decimal.NewFromInt(int64(n))))
	amounts := make([]decimal.Decimal, n)
	running := decimal.Zero
	for i := 0; i < n-1; i++ {
		amounts[i] = per
		running = money.Round2(running.Add(per))
	}
	amounts[n-1] = money.Round2(total.Sub(running))
	return amounts
}

// addMonthsClamped advances a date by whole months, clamping to the last day
// of the target month (Jan 31 + 1 month = Feb 28/29).
func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	return clampDay(first, t.Day())
}

// clampDay returns the given day within month's month, clamped to its last day.
func clampDay(month time.Time, day int) time.Time {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, time.UTC)
}

// firstInvoiceMonth decides which invoice a purchase lands on: once the card
// closes (due day minus closing days), purchases belong to the next month.
func firstInvoiceMonth(purchase time.Time, dueDay, closingDays int) time.Time {
	month := time.Date(purchase.Year(), purchase.Month(), 1, 0, 0, 0, 0, time.UTC)
	if purchase.Day() > dueDay-closingDays {
		month = month.AddDate(0, 1, 0)
	}
	return month
}
