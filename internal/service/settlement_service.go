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

// SettlementService applies payments against obligation groups: a FIFO walk
// over the open installments, the cash debit, and exactly one movement-log
// row, all inside a single database transaction.
type SettlementService struct {
	db              *sql.DB
	obligationRepo  *repository.ObligationRepository
	movementRepo    *repository.MovementRepository
	snapshotRepo    *repository.SnapshotRepository
	bankBalanceRepo *repository.BankBalanceRepository
}

// NewSettlementService creates a new SettlementService with the provided repository dependencies.
func NewSettlementService(
	db *sql.DB,
	obligationRepo *repository.ObligationRepository,
	movementRepo *repository.MovementRepository,
	snapshotRepo *repository.SnapshotRepository,
	bankBalanceRepo *repository.BankBalanceRepository,
) *SettlementService {
	return &SettlementService{
		db:              db,
		obligationRepo:  obligationRepo,
		movementRepo:    movementRepo,
		snapshotRepo:    snapshotRepo,
		bankBalanceRepo: bankBalanceRepo,
	}
}

// ApplyPayment settles a payment against the open installments of one
// obligation group, oldest due date first. Interest, penalty and discount are
// a one-shot pool consumed entirely by the first installment visited; the
// principal amount is the gross cash tendered and walks forward until the
// cash applied (principal plus encargos) exhausts it. Discount counts toward
// principal without cash, so a fully discounted installment settles with no
// money leaving the till.
//
// The payment is idempotent: a replayed transaction uid returns the original
// outcome marker without touching any balance.
func (s *SettlementService) ApplyPayment(ctx context.Context, req request.PaymentRequest) (*model.SettlementResult, error) {
	date, err := repository.ParseTime(req.Date)
	if err != nil {
		return nil, apperrors.ErrInvalidDate
	}

	principal := money.FromFloat(req.PrincipalAmount)
	interest := money.FromFloat(req.InterestAmount)
	penalty := money.FromFloat(req.PenaltyAmount)
	discount := money.FromFloat(req.DiscountAmount)

	if !money.IsPositive(principal) && !money.IsPositive(discount) {
		return nil, apperrors.ErrInvalidAmount
	}
	if principal.IsNegative() || interest.IsNegative() || penalty.IsNegative() || discount.IsNegative() {
		return nil, apperrors.ErrInvalidAmount
	}

	key := model.ObligationGroupKey{
		Type:         model.ObligationType(req.ObligationType),
		Creditor:     req.Creditor,
		Competence:   req.Competence,
		ObligationID: req.ObligationID,
	}

	transactionUID := req.TransactionUID
	if transactionUID == "" {
		transactionUID = uid.Payment(
			repository.FormatDate(date),
			req.ObligationType,
			req.Creditor,
			req.Competence,
			req.ObligationID,
			principal, interest, penalty, discount,
			req.User,
		)
	}

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
		groupStatus, err := obligations.GroupStatus(key)
		if err != nil && err != apperrors.ErrObligationNotFound {
			return nil, err
		}
		return &model.SettlementResult{
			TransactionUID:   transactionUID,
			MovementID:       existingID,
			AlreadyProcessed: true,
			GroupStatus:      groupStatus,
		}, nil
	}

	installments, err := obligations.ListOpenInstallments(key)
	if err != nil {
		return nil, err
	}
	if len(installments) == 0 {
		// A group whose charges are all settled has nothing to settle:
		// return the tendered principal untouched. Only a group with no
		// charges at all is an error.
		groupStatus, err := obligations.GroupStatus(key)
		if err != nil {
			return nil, err
		}
		return &model.SettlementResult{
			Installments:       []model.InstallmentResult{},
			TransactionUID:     transactionUID,
			RemainderUnapplied: principal,
			GroupStatus:        groupStatus,
		}, nil
	}

	var (
		pool         = principal
		interestPool = interest
		penaltyPool  = penalty
		discountPool = discount
		cashOut      = decimal.Zero
		results      = []model.InstallmentResult{}
	)

	for i := range installments {
		first := i == 0
		if !money.IsPositive(pool) && !first {
			break
		}

		charge := &installments[i]
		open := money.NonNeg(charge.Open())

		principalHere := money.Round2(money.Min(pool, open))
		principalHere = money.NonNeg(principalHere)
		discountHere := money.Round2(money.Min(discountPool, money.NonNeg(open.Sub(principalHere))))
		discountHere = money.NonNeg(discountHere)

		res, err := obligations.ApplyInstallmentPayment(
			charge,
			principalHere, interestPool, penaltyPool, discountHere,
			date, req.PaymentMethod, req.User,
		)
		if err != nil {
			return nil, err
		}

		// The pool is gross cash tendered: encargos consume it alongside
		// principal. Discount never does, it costs no cash.
		pool = money.Round2(pool.Sub(res.CashEffect))
		// Encargos attach to the first installment only.
		interestPool = decimal.Zero
		penaltyPool = decimal.Zero
		discountPool = decimal.Zero

		cashOut = money.Round2(cashOut.Add(res.CashEffect))
		results = append(results, res)
	}

	account, err := s.debitOrigin(tx, req, date, cashOut)
	if err != nil {
		return nil, err
	}

	movement := &model.MovementLogEntry{
		Date:           date,
		Account:        account,
		Direction:      model.DirectionOut,
		Amount:         cashOut,
		Source:         "PAYMENT",
		Note:           installments[0].Creditor,
		ReferenceTable: "obligation_event",
		ReferenceID:    installments[0].ObligationID,
		TransactionUID: transactionUID,
		User:           req.User,
	}
	movementID, _, err := movements.Post(movement)
	if err != nil {
		return nil, err
	}

	groupStatus, err := obligations.GroupStatus(key)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	return &model.SettlementResult{
		CashOut:            cashOut,
		Installments:       results,
		TransactionUID:     transactionUID,
		MovementID:         movementID,
		RemainderUnapplied: money.NonNeg(pool),
		GroupStatus:        groupStatus,
	}, nil
}

// debitOrigin takes the cash for a payment out of the requested origin and
// returns the account name to record on the movement row. Till origins fail
// hard on insufficient funds; bank origins check only when the account has a
// balance row, since bank names are free text.
func (s *SettlementService) debitOrigin(tx *sql.Tx, req request.PaymentRequest, date time.Time, cashOut decimal.Decimal) (string, error) {
	snapshots := s.snapshotRepo.WithTx(tx)
	banks := s.bankBalanceRepo.WithTx(tx)

	switch req.Origin {
	case model.OriginTill:
		snap, err := snapshots.Ensure(date)
		if err != nil {
			return "", err
		}
		if !money.LTE(cashOut, snap.TillTotal) {
			return "", apperrors.ErrInsufficientFunds
		}
		fromTill, fromSales := splitDebit(snap.TillBalance, cashOut)
		snap.TillBalance = money.NonNeg(snap.TillBalance.Sub(fromTill))
		snap.TillSalesBalance = money.NonNeg(snap.TillSalesBalance.Sub(fromSales))
		if err := snapshots.Update(&snap); err != nil {
			return "", err
		}
		return model.AccountTill, nil

	case model.OriginSecondaryTill:
		snap, err := snapshots.Ensure(date)
		if err != nil {
			return "", err
		}
		if !money.LTE(cashOut, snap.SecondaryTillTotal) {
			return "", apperrors.ErrInsufficientFunds
		}
		fromToday, fromBalance := splitDebit(snap.SecondaryTillToday, cashOut)
		snap.SecondaryTillToday = money.NonNeg(snap.SecondaryTillToday.Sub(fromToday))
		snap.SecondaryTillBalance = money.NonNeg(snap.SecondaryTillBalance.Sub(fromBalance))
		if err := snapshots.Update(&snap); err != nil {
			return "", err
		}
		return model.AccountSecondaryTill, nil

	case model.OriginBank:
		if req.BankAccount == "" {
			return "", apperrors.ErrUnknownAccount
		}
		balance, found, err := banks.GetBalance(date, req.BankAccount)
		if err != nil {
			return "", err
		}
		if found && !money.LTE(cashOut, balance) {
			return "", apperrors.ErrInsufficientFunds
		}
		if _, err := banks.Adjust(date, req.BankAccount, cashOut.Neg()); err != nil {
			return "", err
		}
		return req.BankAccount, nil

	default:
		return "", apperrors.ErrUnknownAccount
	}
}

// splitDebit takes amount out of a primary bucket first and overflows the
// remainder into the secondary bucket.
func splitDebit(primary, amount decimal.Decimal) (fromPrimary, fromSecondary decimal.Decimal) {
	fromPrimary = money.Round2(money.Min(money.NonNeg(primary), amount))
	fromSecondary = money.Round2(amount.Sub(fromPrimary))
	return fromPrimary, fromSecondary
}
