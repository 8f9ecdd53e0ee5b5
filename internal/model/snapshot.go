package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashPositionSnapshot is the single row per calendar day holding the till
// balances. TillTotal and SecondaryTillTotal are stored denormalized and
// recomputed on every write (till + sales, secondary + today).
type CashPositionSnapshot struct {
	ID                   int64           `json:"id"`
	Date                 time.Time       `json:"date"`
	TillBalance          decimal.Decimal `json:"tillBalance"`
	SecondaryTillBalance decimal.Decimal `json:"secondaryTillBalance"`
	TillSalesBalance     decimal.Decimal `json:"tillSalesBalance"`
	SecondaryTillToday   decimal.Decimal `json:"secondaryTillToday"`
	TillTotal            decimal.Decimal `json:"tillTotal"`
	SecondaryTillTotal   decimal.Decimal `json:"secondaryTillTotal"`
}

// BankBalance is one account's balance on one date. Replaces the legacy
// scheme of one physical column per bank account.
type BankBalance struct {
	ID      int64           `json:"id"`
	Date    time.Time       `json:"date"`
	Account string          `json:"account"`
	Balance decimal.Decimal `json:"balance"`
}

// TransferResult reports a treasury operation back to the caller.
type TransferResult struct {
	Date           time.Time       `json:"date"`
	Amount         decimal.Decimal `json:"amount"`
	FromTill       decimal.Decimal `json:"fromTill,omitempty"`
	FromSales      decimal.Decimal `json:"fromSales,omitempty"`
	FromToday      decimal.Decimal `json:"fromToday,omitempty"`
	FromBalance    decimal.Decimal `json:"fromBalance,omitempty"`
	MovementID     int64           `json:"movementId"`
	PairMovementID int64           `json:"pairMovementId,omitempty"`
	TransactionUID string          `json:"transactionUid"`
	BalanceChecked bool            `json:"balanceChecked"`

	Snapshot *CashPositionSnapshot `json:"snapshot,omitempty"`
}
