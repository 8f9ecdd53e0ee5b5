package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alexmabud/flowdash-backend/internal/model"
	"github.com/alexmabud/flowdash-backend/internal/money"
)

// BankBalanceRepository provides data access methods for the bank_balance
// table: one row per (date, account), carried forward from the most recent
// earlier row when a new date is first written.
type BankBalanceRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewBankBalanceRepository creates a new BankBalanceRepository with the provided database connection.
func NewBankBalanceRepository(db *sql.DB) *BankBalanceRepository {
	return &BankBalanceRepository{db: db}
}

// WithTx returns a new BankBalanceRepository scoped to the provided transaction.
func (r *BankBalanceRepository) WithTx(tx *sql.Tx) *BankBalanceRepository {
	return &BankBalanceRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *BankBalanceRepository) getQuerier() interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetBalance returns the account's balance as of the given date: the row for
// that date if present, otherwise the most recent earlier row, otherwise
// zero. The bool reports whether any row was found at all.
func (r *BankBalanceRepository) GetBalance(date time.Time, account string) (decimal.Decimal, bool, error) {
	query := `
		SELECT balance
		FROM bank_balance
		WHERE account = ? AND date <= ?
		ORDER BY date DESC
		LIMIT 1
	`

	var balance decimal.Decimal
	err := r.getQuerier().QueryRow(query, account, FormatDate(date)).Scan(&balance)
	if err == sql.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to query bank balance: %w", err)
	}
	return balance, true, nil
}

// Adjust applies a signed delta to the account's balance on the given date.
// The date's row is created on first touch by carrying the latest earlier
// balance forward, so a deposit on a fresh day builds on yesterday's close.
// Returns the resulting balance.
func (r *BankBalanceRepository) Adjust(date time.Time, account string, delta decimal.Decimal) (decimal.Decimal, error) {
	current, _, err := r.GetBalance(date, account)
	if err != nil {
		return decimal.Zero, err
	}

	next := money.Round2(current.Add(delta))

	query := `
		INSERT INTO bank_balance (date, account, balance)
		VALUES (?, ?, ?)
		ON CONFLICT (date, account) DO UPDATE SET balance = excluded.balance
	`

	if _, err := r.getQuerier().Exec(query, FormatDate(date), account, next); err != nil {
		return decimal.Zero, fmt.Errorf("failed to upsert bank balance: %w", err)
	}
	return next, nil
}

// ListBalances returns every account's balance as of the given date, one
// entry per account, using the most recent row at or before the date.
func (r *BankBalanceRepository) ListBalances(date time.Time) ([]model.BankBalance, error) {
	query := `
		SELECT b.id, b.date, b.account, b.balance
		FROM bank_balance b
		JOIN (
			SELECT account, MAX(date) AS max_date
			FROM bank_balance
			WHERE date <= ?
			GROUP BY account
		) latest ON latest.account = b.account AND latest.max_date = b.date
		ORDER BY b.account ASC
	`

	rows, err := r.getQuerier().Query(query, FormatDate(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query bank_balance table: %w", err)
	}
	defer rows.Close()

	balances := []model.BankBalance{}
	for rows.Next() {
		var b model.BankBalance
		var dateStr string
		if err := rows.Scan(&b.ID, &dateStr, &b.Account, &b.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan bank_balance results: %w", err)
		}
		if b.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bank_balance table: %w", err)
	}
	return balances, nil
}
