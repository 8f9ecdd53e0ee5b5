package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/alexmabud/flowdash-backend/internal/money"
)

// ObligationType identifies the kind of debt an event belongs to.
type ObligationType string

// Valid obligation types.
const (
	ObligationBoleto  ObligationType = "BOLETO"
	ObligationInvoice ObligationType = "CREDIT_CARD_INVOICE"
	ObligationLoan    ObligationType = "LOAN"
	ObligationOther   ObligationType = "OTHER"
)

// EventCategory identifies the kind of fact an event row records.
type EventCategory string

// Valid event categories. CHARGE, INTEREST and PENALTY rows carry positive
// amounts; PAYMENT, DISCOUNT and ADJUSTMENT rows carry negative amounts.
const (
	EventCharge     EventCategory = "CHARGE"
	EventPayment    EventCategory = "PAYMENT"
	EventInterest   EventCategory = "INTEREST"
	EventPenalty    EventCategory = "PENALTY"
	EventDiscount   EventCategory = "DISCOUNT"
	EventAdjustment EventCategory = "ADJUSTMENT"
)

// ObligationStatus is derived from amount vs principal paid; it is never
// stored independently of recomputation.
type ObligationStatus string

// Derived settlement statuses.
const (
	StatusOpen    ObligationStatus = "OPEN"
	StatusPartial ObligationStatus = "PARTIAL"
	StatusSettled ObligationStatus = "SETTLED"
)

// ObligationEvent is one row of the append-only obligation event table.
// CHARGE rows additionally carry the payment accumulators; all other
// categories leave them at zero.
type ObligationEvent struct {
	ID                  int64            `json:"id"`
	ObligationID        int64            `json:"obligationId"`
	ObligationType      ObligationType   `json:"obligationType"`
	EventCategory       EventCategory    `json:"eventCategory"`
	EventDate           time.Time        `json:"eventDate"`
	DueDate             *time.Time       `json:"dueDate,omitempty"`
	Competence          string           `json:"competence,omitempty"`
	InstallmentNumber   int              `json:"installmentNumber,omitempty"`
	InstallmentCount    int              `json:"installmentCount,omitempty"`
	Amount              decimal.Decimal  `json:"amount"`
	PrincipalPaid       decimal.Decimal  `json:"principalPaid"`
	InterestPaid        decimal.Decimal  `json:"interestPaid"`
	PenaltyPaid         decimal.Decimal  `json:"penaltyPaid"`
	DiscountApplied     decimal.Decimal  `json:"discountApplied"`
	GrossPaid           decimal.Decimal  `json:"grossPaid"`
	Status              ObligationStatus `json:"status"`
	PaymentDate         *time.Time       `json:"paymentDate,omitempty"`
	Creditor            string           `json:"creditor,omitempty"`
	Description         string           `json:"description,omitempty"`
	PaymentMethod       string           `json:"paymentMethod,omitempty"`
	Source              string           `json:"source,omitempty"`
	User                string           `json:"user,omitempty"`
	ExternalReferenceID *int64           `json:"externalReferenceId,omitempty"`
	CreatedAt           time.Time        `json:"createdAt,omitempty"`
}

// Open returns the principal still due on a CHARGE row.
func (e ObligationEvent) Open() decimal.Decimal {
	return e.Amount.Sub(e.PrincipalPaid)
}

// DeriveStatus computes the settlement status of a charge from its face
// amount and accumulated principal. Discounts count toward principal, so a
// fully discounted installment derives SETTLED like any paid one.
func DeriveStatus(amount, principalPaid decimal.Decimal) ObligationStatus {
	switch {
	case money.GTE(principalPaid, amount):
		return StatusSettled
	case money.IsPositive(principalPaid):
		return StatusPartial
	default:
		return StatusOpen
	}
}

// ObligationGroupKey selects the installments of one debt: all CHARGE rows of
// the given type for a creditor, optionally narrowed to one competence or to
// one obligation id. The zero Competence/ObligationID mean "all".
type ObligationGroupKey struct {
	Type         ObligationType `json:"type"`
	Creditor     string         `json:"creditor"`
	Competence   string         `json:"competence,omitempty"`
	ObligationID int64          `json:"obligationId,omitempty"`
}

// InstallmentResult describes how one installment absorbed part of a payment.
type InstallmentResult struct {
	EventID          int64            `json:"eventId"`
	ObligationID     int64            `json:"obligationId"`
	PrincipalApplied decimal.Decimal  `json:"principalApplied"`
	InterestApplied  decimal.Decimal  `json:"interestApplied"`
	PenaltyApplied   decimal.Decimal  `json:"penaltyApplied"`
	DiscountApplied  decimal.Decimal  `json:"discountApplied"`
	CashEffect       decimal.Decimal  `json:"cashEffect"`
	Status           ObligationStatus `json:"status"`
}

// ScheduleResult is the outcome of programming an obligation (boleto, loan
// or card purchase) as installments.
type ScheduleResult struct {
	ObligationID       int64             `json:"obligationId"`
	InstallmentIDs     []int64           `json:"installmentIds"`
	InstallmentAmounts []decimal.Decimal `json:"installmentAmounts"`
	TotalAmount        decimal.Decimal   `json:"totalAmount"`
	MovementID         int64             `json:"movementId"`
	TransactionUID     string            `json:"transactionUid"`
	AlreadyProcessed   bool              `json:"alreadyProcessed"`
}

// AdjustmentResult reports how much principal an adjustment credited.
type AdjustmentResult struct {
	ObligationID  int64            `json:"obligationId"`
	AmountApplied decimal.Decimal  `json:"amountApplied"`
	GroupStatus   ObligationStatus `json:"groupStatus"`
}

// SettlementResult is the outcome of one ApplyPayment call.
type SettlementResult struct {
	CashOut            decimal.Decimal     `json:"cashOut"`
	Installments       []InstallmentResult `json:"installments"`
	TransactionUID     string              `json:"transactionUid"`
	MovementID         int64               `json:"movementId,omitempty"`
	RemainderUnapplied decimal.Decimal     `json:"remainderUnapplied"`
	AlreadyProcessed   bool                `json:"alreadyProcessed"`
	GroupStatus        ObligationStatus    `json:"groupStatus"`
}
