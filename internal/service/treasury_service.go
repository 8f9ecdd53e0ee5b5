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

// TreasuryService owns the day-granular cash position: the per-date snapshot
// rows, transfers between the two tills, deposits into banks, and transfers
// between bank accounts.
type TreasuryService struct {
	db              *sql.DB
	snapshotRepo    *repository.SnapshotRepository
	bankBalanceRepo *repository.BankBalanceRepository
	movementRepo    *repository.MovementRepository
}

// NewTreasuryService creates a new TreasuryService with the provided repository dependencies.
func NewTreasuryService(
	db *sql.DB,
	snapshotRepo *repository.SnapshotRepository,
	bankBalanceRepo *repository.BankBalanceRepository,
	movementRepo *repository.MovementRepository,
) *TreasuryService {
	return &TreasuryService{
		db:              db,
		snapshotRepo:    snapshotRepo,
		bankBalanceRepo: bankBalanceRepo,
		movementRepo:    movementRepo,
	}
}

// EnsureSnapshot returns the snapshot for the given date, rolling the most
// recent earlier day forward on first touch. Called by every treasury write
// and by the daily cron job.
func (s *TreasuryService) EnsureSnapshot(ctx context.Context, date time.Time) (*model.CashPositionSnapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	snap, err := s.snapshotRepo.WithTx(tx).Ensure(date)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return &snap, nil
}

// GetBankBalances returns every bank account's balance as of the given date.
func (s *TreasuryService) GetBankBalances(date time.Time) ([]model.BankBalance, error) {
	return s.bankBalanceRepo.ListBalances(date)
}

// TransferTillToSecondary moves cash from the main till into the secondary
// till's daily counter. The amount comes out of the till balance first, then
// out of the sales balance, both clamped at zero. One IN movement on the
// secondary till records the transfer; an identical resubmission is a no-op.
func (s *TreasuryService) TransferTillToSecondary(ctx context.Context, req request.SecondaryTransferRequest) (*model.TransferResult, error) {
	date, amount, err := parseTreasuryInput(req.Date, req.Amount)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	snapshots := s.snapshotRepo.WithTx(tx)
	movements := s.movementRepo.WithTx(tx)

	// Replay check comes before any funds validation: a transfer that
	// drained the till must still resolve as a no-op when resubmitted.
	transactionUID := req.TransactionUID
	if transactionUID == "" {
		transactionUID = uid.Movement(
			repository.FormatDate(date), model.AccountSecondaryTill,
			string(model.DirectionIn), amount, "TILL_TRANSFER", "", "", "",
		)
	}
	if existingID, found, err := movements.FindByUID(transactionUID); err != nil {
		return nil, err
	} else if found {
		return &model.TransferResult{
			Date:           date,
			Amount:         amount,
			MovementID:     existingID,
			TransactionUID: transactionUID,
		}, nil
	}

	snap, err := snapshots.Ensure(date)
	if err != nil {
		return nil, err
	}
	if !money.LTE(amount, snap.TillTotal) {
		return nil, apperrors.ErrInsufficientFunds
	}

	fromTill, fromSales := splitDebit(snap.TillBalance, amount)
	snap.TillBalance = money.NonNeg(snap.TillBalance.Sub(fromTill))
	snap.TillSalesBalance = money.NonNeg(snap.TillSalesBalance.Sub(fromSales))
	snap.SecondaryTillToday = money.Round2(snap.SecondaryTillToday.Add(amount))

	movement := &model.MovementLogEntry{
		Date:           date,
		Account:        model.AccountSecondaryTill,
		Direction:      model.DirectionIn,
		Amount:         amount,
		Source:         "TILL_TRANSFER",
		TransactionUID: transactionUID,
		User:           req.User,
	}
	movementID, _, err := movements.Post(movement)
	if err != nil {
		return nil, err
	}

	if err := snapshots.Update(&snap); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit till transfer: %w", err)
	}

	return &model.TransferResult{
		Date:           date,
		Amount:         amount,
		FromTill:       fromTill,
		FromSales:      fromSales,
		MovementID:     movementID,
		TransactionUID: movement.TransactionUID,
		Snapshot:       &snap,
	}, nil
}

// DepositSecondaryToBank moves cash from the secondary till into a bank
// account: the daily counter drains first, then the carried balance. The bank
// balance is upserted with carry-forward and one IN movement on the bank
// records the deposit.
func (s *TreasuryService) DepositSecondaryToBank(ctx context.Context, req request.DepositRequest) (*model.TransferResult, error) {
	date, amount, err := parseTreasuryInput(req.Date, req.Amount)
	if err != nil {
		return nil, err
	}
	if req.BankAccount == "" {
		return nil, apperrors.ErrUnknownAccount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	snapshots := s.snapshotRepo.WithTx(tx)
	banks := s.bankBalanceRepo.WithTx(tx)
	movements := s.movementRepo.WithTx(tx)

	// Replay check before funds validation, as in TransferTillToSecondary.
	transactionUID := req.TransactionUID
	if transactionUID == "" {
		transactionUID = uid.Movement(
			repository.FormatDate(date), req.BankAccount,
			string(model.DirectionIn), amount, "DEPOSIT", "", "",
			"from "+model.AccountSecondaryTill,
		)
	}
	if existingID, found, err := movements.FindByUID(transactionUID); err != nil {
		return nil, err
	} else if found {
		return &model.TransferResult{
			Date:           date,
			Amount:         amount,
			MovementID:     existingID,
			TransactionUID: transactionUID,
		}, nil
	}

	snap, err := snapshots.Ensure(date)
	if err != nil {
		return nil, err
	}
	if !money.LTE(amount, snap.SecondaryTillTotal) {
		return nil, apperrors.ErrInsufficientFunds
	}

	fromToday, fromBalance := splitDebit(snap.SecondaryTillToday, amount)
	snap.SecondaryTillToday = money.NonNeg(snap.SecondaryTillToday.Sub(fromToday))
	snap.SecondaryTillBalance = money.NonNeg(snap.SecondaryTillBalance.Sub(fromBalance))

	movement := &model.MovementLogEntry{
		Date:           date,
		Account:        req.BankAccount,
		Direction:      model.DirectionIn,
		Amount:         amount,
		Source:         "DEPOSIT",
		Note:           "from " + model.AccountSecondaryTill,
		TransactionUID: transactionUID,
		User:           req.User,
	}
	movementID, _, err := movements.Post(movement)
	if err != nil {
		return nil, err
	}

	if err := snapshots.Update(&snap); err != nil {
		return nil, err
	}
	if _, err := banks.Adjust(date, req.BankAccount, amount); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit deposit: %w", err)
	}

	return &model.TransferResult{
		Date:           date,
		Amount:         amount,
		FromToday:      fromToday,
		FromBalance:    fromBalance,
		MovementID:     movementID,
		TransactionUID: movement.TransactionUID,
		Snapshot:       &snap,
	}, nil
}

// TransferBankToBank moves money between two bank accounts: two movement rows
// (OUT then IN) derived from one base transaction identifier and linked
// through a shared reference, both balances adjusted with carry-forward. The
// availability check is best-effort: an account with no balance history is
// trusted, since bank names are free text.
func (s *TreasuryService) TransferBankToBank(ctx context.Context, req request.BankTransferRequest) (*model.TransferResult, error) {
	date, amount, err := parseTreasuryInput(req.Date, req.Amount)
	if err != nil {
		return nil, err
	}
	if req.FromAccount == "" || req.ToAccount == "" {
		return nil, apperrors.ErrUnknownAccount
	}
	if uid.Sanitize(req.FromAccount, true) == uid.Sanitize(req.ToAccount, true) {
		return nil, apperrors.ErrSameAccount
	}

	baseUID := req.TransactionUID
	if baseUID == "" {
		baseUID = uid.BankTransfer(repository.FormatDate(date), amount, req.FromAccount, req.ToAccount, req.User)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	banks := s.bankBalanceRepo.WithTx(tx)
	movements := s.movementRepo.WithTx(tx)

	if existingID, found, err := movements.FindByUID(baseUID + "-out"); err != nil {
		return nil, err
	} else if found {
		return &model.TransferResult{
			Date:           date,
			Amount:         amount,
			MovementID:     existingID,
			TransactionUID: baseUID,
		}, nil
	}

	balance, found, err := banks.GetBalance(date, req.FromAccount)
	if err != nil {
		return nil, err
	}
	if found && !money.LTE(amount, balance) {
		return nil, apperrors.ErrInsufficientFunds
	}

	out := &model.MovementLogEntry{
		Date:           date,
		Account:        req.FromAccount,
		Direction:      model.DirectionOut,
		Amount:         amount,
		Source:         "BANK_TRANSFER",
		Note:           "to " + req.ToAccount,
		TransactionUID: baseUID + "-out",
		User:           req.User,
	}
	outID, _, err := movements.Post(out)
	if err != nil {
		return nil, err
	}

	in := &model.MovementLogEntry{
		Date:           date,
		Account:        req.ToAccount,
		Direction:      model.DirectionIn,
		Amount:         amount,
		Source:         "BANK_TRANSFER",
		Note:           "from " + req.FromAccount,
		ReferenceTable: "movement_log",
		ReferenceID:    outID,
		TransactionUID: baseUID + "-in",
		User:           req.User,
	}
	inID, _, err := movements.Post(in)
	if err != nil {
		return nil, err
	}

	if _, err := banks.Adjust(date, req.FromAccount, amount.Neg()); err != nil {
		return nil, err
	}
	if _, err := banks.Adjust(date, req.ToAccount, amount); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bank transfer: %w", err)
	}

	return &model.TransferResult{
		Date:           date,
		Amount:         amount,
		MovementID:     outID,
		PairMovementID: inID,
		TransactionUID: baseUID,
		BalanceChecked: found,
	}, nil
}

func parseTreasuryInput(dateStr string, amountFloat float64) (time.Time, decimal.Decimal, error) {
	date, err := repository.ParseTime(dateStr)
	if err != nil {
		return time.Time{}, decimal.Zero, apperrors.ErrInvalidDate
	}
	amount := money.FromFloat(amountFloat)
	if !money.IsPositive(amount) {
		return time.Time{}, decimal.Zero, apperrors.ErrInvalidAmount
	}
	return date, amount, nil
}
