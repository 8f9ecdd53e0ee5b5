package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alexmabud/flowdash-backend/internal/model"
	"github.com/alexmabud/flowdash-backend/internal/repository"
)

// ChargeBuilder provides a fluent interface for creating test CHARGE rows.
//
// Example usage:
//
//	// Simple creation with defaults
//	charge := testutil.NewCharge().Build(t, db)
//
//	// Customized charge
//	charge := testutil.NewCharge().
//	    WithType(model.ObligationLoan).
//	    WithAmount(250).
//	    WithDueDate("2026-03-10").
//	    Build(t, db)
type ChargeBuilder struct {
	ObligationID   int64
	ObligationType model.ObligationType
	Amount         decimal.Decimal
	DueDate        *time.Time
	Competence     string
	Creditor       string
	Number         int
	Count          int
	User           string
}

// NewCharge creates a ChargeBuilder with sensible defaults.
func NewCharge() *ChargeBuilder {
	return &ChargeBuilder{
		ObligationType: model.ObligationBoleto,
		Amount:         decimal.NewFromInt(100),
		Creditor:       "Test Supplier",
		Number:         1,
		Count:          1,
		User:           "tester",
	}
}

// WithObligationID threads an existing obligation head id.
func (b *ChargeBuilder) WithObligationID(id int64) *ChargeBuilder {
	b.ObligationID = id
	return b
}

// WithType sets the obligation type.
func (b *ChargeBuilder) WithType(t model.ObligationType) *ChargeBuilder {
	b.ObligationType = t
	return b
}

// WithAmount sets the face amount.
func (b *ChargeBuilder) WithAmount(amount float64) *ChargeBuilder {
	b.Amount = decimal.NewFromFloat(amount)
	return b
}

// WithDueDate sets the due date from a YYYY-MM-DD string.
func (b *ChargeBuilder) WithDueDate(date string) *ChargeBuilder {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	b.DueDate = &t
	return b
}

// WithCompetence sets the invoice competence month.
func (b *ChargeBuilder) WithCompetence(competence string) *ChargeBuilder {
	b.Competence = competence
	return b
}

// WithCreditor sets the creditor name.
func (b *ChargeBuilder) WithCreditor(creditor string) *ChargeBuilder {
	b.Creditor = creditor
	return b
}

// WithInstallment sets the installment position.
func (b *ChargeBuilder) WithInstallment(number, count int) *ChargeBuilder {
	b.Number = number
	b.Count = count
	return b
}

// Build inserts the CHARGE row and returns it with ids populated.
func (b *ChargeBuilder) Build(t *testing.T, db *sql.DB) model.ObligationEvent {
	t.Helper()

	repo := repository.NewObligationRepository(db)
	charge := model.ObligationEvent{
		ObligationID:      b.ObligationID,
		ObligationType:    b.ObligationType,
		EventCategory:     model.EventCharge,
		EventDate:         time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		DueDate:           b.DueDate,
		Competence:        b.Competence,
		InstallmentNumber: b.Number,
		InstallmentCount:  b.Count,
		Amount:            b.Amount,
		Creditor:          b.Creditor,
		Source:            "TEST",
		User:              b.User,
	}

	if _, _, err := repo.CreateCharge(&charge); err != nil {
		t.Fatalf("Failed to create test charge: %v", err)
	}
	return charge
}

// SnapshotBuilder provides a fluent interface for creating test cash
// position snapshots.
type SnapshotBuilder struct {
	Date             string
	Till             float64
	Sales            float64
	SecondaryBalance float64
	SecondaryToday   float64
}

// NewSnapshot creates a SnapshotBuilder for the given date with zero balances.
func NewSnapshot(date string) *SnapshotBuilder {
	return &SnapshotBuilder{Date: date}
}

// WithTill sets the till and sales balances.
func (b *SnapshotBuilder) WithTill(till, sales float64) *SnapshotBuilder {
	b.Till = till
	b.Sales = sales
	return b
}

// WithSecondary sets the secondary till balance and daily counter.
func (b *SnapshotBuilder) WithSecondary(balance, today float64) *SnapshotBuilder {
	b.SecondaryBalance = balance
	b.SecondaryToday = today
	return b
}

// Build inserts the snapshot row and returns it.
func (b *SnapshotBuilder) Build(t *testing.T, db *sql.DB) model.CashPositionSnapshot {
	t.Helper()

	query := `
		INSERT INTO cash_position_snapshot (
			date, till_balance, secondary_till_balance, till_sales_balance,
			secondary_till_today, till_total, secondary_till_total
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	tillTotal := b.Till + b.Sales
	secondaryTotal := b.SecondaryBalance + b.SecondaryToday

	result, err := db.Exec(query, b.Date, b.Till, b.SecondaryBalance, b.Sales, b.SecondaryToday, tillTotal, secondaryTotal)
	if err != nil {
		t.Fatalf("Failed to create test snapshot: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read test snapshot id: %v", err)
	}

	date, _ := time.Parse("2006-01-02", b.Date)
	return model.CashPositionSnapshot{
		ID:                   id,
		Date:                 date,
		TillBalance:          decimal.NewFromFloat(b.Till),
		SecondaryTillBalance: decimal.NewFromFloat(b.SecondaryBalance),
		TillSalesBalance:     decimal.NewFromFloat(b.Sales),
		SecondaryTillToday:   decimal.NewFromFloat(b.SecondaryToday),
		TillTotal:            decimal.NewFromFloat(tillTotal),
		SecondaryTillTotal:   decimal.NewFromFloat(secondaryTotal),
	}
}

// SeedBankBalance inserts a bank_balance row for the given date and account.
func SeedBankBalance(t *testing.T, db *sql.DB, date, account string, balance float64) {
	t.Helper()

	if _, err := db.Exec(
		"INSERT INTO bank_balance (date, account, balance) VALUES (?, ?, ?)",
		date, account, balance,
	); err != nil {
		t.Fatalf("Failed to seed bank balance: %v", err)
	}
}
