package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alexmabud/flowdash-backend/internal/apperrors"
	"github.com/alexmabud/flowdash-backend/internal/model"
	"github.com/alexmabud/flowdash-backend/internal/money"
)

const snapshotColumns = `
	id, date, till_balance, secondary_till_balance, till_sales_balance,
	secondary_till_today, till_total, secondary_till_total
`

// SnapshotRepository provides data access methods for the
// cash_position_snapshot table: one row per calendar date, rolled forward
// from the most recent earlier row on first touch.
type SnapshotRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewSnapshotRepository creates a new SnapshotRepository with the provided database connection.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// WithTx returns a new SnapshotRepository scoped to the provided transaction.
func (r *SnapshotRepository) WithTx(tx *sql.Tx) *SnapshotRepository {
	return &SnapshotRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *SnapshotRepository) getQuerier() interface {
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

// Get retrieves the snapshot row for the given date.
func (r *SnapshotRepository) Get(date time.Time) (model.CashPositionSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM cash_position_snapshot
		WHERE date = ?
	`

	s, err := scanSnapshot(r.getQuerier().QueryRow(query, FormatDate(date)))
	if err == sql.ErrNoRows {
		return model.CashPositionSnapshot{}, apperrors.ErrSnapshotNotFound
	}
	if err != nil {
		return model.CashPositionSnapshot{}, fmt.Errorf("failed to query cash snapshot: %w", err)
	}
	return s, nil
}

// Ensure returns the snapshot row for the given date, creating it on first
// touch by rolling the most recent earlier row forward: till and sales
// balances carry over, the secondary till's daily counter resets to zero and
// its closing total becomes the new opening balance. With no earlier row the
// day starts from zeros.
func (r *SnapshotRepository) Ensure(date time.Time) (model.CashPositionSnapshot, error) {
	s, err := r.Get(date)
	if err == nil {
		return s, nil
	}
	if err != apperrors.ErrSnapshotNotFound {
		return model.CashPositionSnapshot{}, err
	}

	query := `
		SELECT ` + snapshotColumns + `
		FROM cash_position_snapshot
		WHERE date < ?
		ORDER BY date DESC
		LIMIT 1
	`

	prev, err := scanSnapshot(r.getQuerier().QueryRow(query, FormatDate(date)))
	if err != nil && err != sql.ErrNoRows {
		return model.CashPositionSnapshot{}, fmt.Errorf("failed to query previous cash snapshot: %w", err)
	}

	s = model.CashPositionSnapshot{
		Date:                 date,
		TillBalance:          prev.TillBalance,
		SecondaryTillBalance: prev.SecondaryTillTotal,
		TillSalesBalance:     prev.TillSalesBalance,
		SecondaryTillToday:   decimal.Zero,
	}
	recomputeTotals(&s)

	insert := `
		INSERT INTO cash_position_snapshot (
			date, till_balance, secondary_till_balance, till_sales_balance,
			secondary_till_today, till_total, secondary_till_total
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getQuerier().Exec(insert,
		FormatDate(date),
		s.TillBalance,
		s.SecondaryTillBalance,
		s.TillSalesBalance,
		s.SecondaryTillToday,
		s.TillTotal,
		s.SecondaryTillTotal,
	)
	if err != nil {
		return model.CashPositionSnapshot{}, fmt.Errorf("failed to insert cash snapshot: %w", err)
	}

	if s.ID, err = result.LastInsertId(); err != nil {
		return model.CashPositionSnapshot{}, fmt.Errorf("failed to read cash snapshot id: %w", err)
	}
	return s, nil
}

// Update persists the balances of an existing snapshot row, recomputing the
// denormalized totals first.
func (r *SnapshotRepository) Update(s *model.CashPositionSnapshot) error {
	recomputeTotals(s)

	query := `
		UPDATE cash_position_snapshot
		SET till_balance = ?, secondary_till_balance = ?, till_sales_balance = ?,
		    secondary_till_today = ?, till_total = ?, secondary_till_total = ?
		WHERE date = ?
	`

	result, err := r.getQuerier().Exec(query,
		s.TillBalance,
		s.SecondaryTillBalance,
		s.TillSalesBalance,
		s.SecondaryTillToday,
		s.TillTotal,
		s.SecondaryTillTotal,
		FormatDate(s.Date),
	)
	if err != nil {
		return fmt.Errorf("failed to update cash snapshot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrSnapshotNotFound
	}
	return nil
}

func recomputeTotals(s *model.CashPositionSnapshot) {
	s.TillBalance = money.Round2(s.TillBalance)
	s.SecondaryTillBalance = money.Round2(s.SecondaryTillBalance)
	s.TillSalesBalance = money.Round2(s.TillSalesBalance)
	s.SecondaryTillToday = money.Round2(s.SecondaryTillToday)
	s.TillTotal = money.Round2(s.TillBalance.Add(s.TillSalesBalance))
	s.SecondaryTillTotal = money.Round2(s.SecondaryTillBalance.Add(s.SecondaryTillToday))
}

func scanSnapshot(row interface{ Scan(dest ...any) error }) (model.CashPositionSnapshot, error) {
	var s model.CashPositionSnapshot
	var date string

	err := row.Scan(
		&s.ID,
		&date,
		&s.TillBalance,
		&s.SecondaryTillBalance,
		&s.TillSalesBalance,
		&s.SecondaryTillToday,
		&s.TillTotal,
		&s.SecondaryTillTotal,
	)
	if err != nil {
		return model.CashPositionSnapshot{}, err
	}

	if s.Date, err = ParseTime(date); err != nil {
		return model.CashPositionSnapshot{}, err
	}
	return s, nil
}
