package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementDirection classifies a movement-log row's cash effect.
type MovementDirection string

// Valid movement directions. RECORD rows document an operation (a scheduled
// boleto, a programmed loan) without any cash effect.
const (
	DirectionIn     MovementDirection = "IN"
	DirectionOut    MovementDirection = "OUT"
	DirectionRecord MovementDirection = "RECORD"
)

// Well-known cash accounts. Bank accounts are free-text names and live in
// the bank_balance table; only the two tills are structural.
const (
	AccountTill          = "TILL"
	AccountSecondaryTill = "SECONDARY_TILL"
)

// Payment origins accepted by the settlement engine.
const (
	OriginTill          = "TILL"
	OriginSecondaryTill = "SECONDARY_TILL"
	OriginBank          = "BANK"
)

// MovementLogEntry is one row of the append-only cash/bank movement log.
// Rows are never mutated after insertion except for the reference_id
// self back-fill that happens immediately after insert.
type MovementLogEntry struct {
	ID             int64             `json:"id"`
	Date           time.Time         `json:"date"`
	Account        string            `json:"account"`
	Direction      MovementDirection `json:"direction"`
	Amount         decimal.Decimal   `json:"amount"`
	Source         string            `json:"source"`
	Note           string            `json:"note,omitempty"`
	ReferenceTable string            `json:"referenceTable,omitempty"`
	ReferenceID    int64             `json:"referenceId,omitempty"`
	TransactionUID string            `json:"transactionUid"`
	User           string            `json:"user,omitempty"`
	CreatedAt      time.Time         `json:"createdAt,omitempty"`
}
