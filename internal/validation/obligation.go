package validation

import (
	"fmt"

	"github.com/alexmabud/flowdash-backend/internal/api/request"
)

// ValidateScheduleBoleto validates a boleto programming request.
//
// Required fields:
//   - purchaseDate, firstDueDate: YYYY-MM-DD dates
//   - totalAmount: positive
//   - installments: at least 1
//   - creditor, user: non-blank
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateScheduleBoleto(req request.ScheduleBoletoRequest) error {
	errors := make(map[string]string)

	checkDate(errors, "purchaseDate", req.PurchaseDate)
	checkDate(errors, "firstDueDate", req.FirstDueDate)
	checkPositive(errors, "totalAmount", req.TotalAmount)
	checkRequired(errors, "creditor", req.Creditor)
	checkRequired(errors, "user", req.User)

	if req.Installments < 1 {
		errors["installments"] = "installments must be at least 1"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateScheduleLoan validates a loan programming request. Same constraints
// as a boleto, plus installmentsPaid must fit within installments.
func ValidateScheduleLoan(req request.ScheduleLoanRequest) error {
	errors := make(map[string]string)

	checkDate(errors, "startDate", req.StartDate)
	checkDate(errors, "firstDueDate", req.FirstDueDate)
	checkPositive(errors, "totalAmount", req.TotalAmount)
	checkRequired(errors, "creditor", req.Creditor)
	checkRequired(errors, "user", req.User)

	if req.Installments < 1 {
		errors["installments"] = "installments must be at least 1"
	}
	if req.InstallmentsPaid < 0 || (req.Installments >= 1 && req.InstallmentsPaid > req.Installments) {
		errors["installmentsPaid"] = fmt.Sprintf("installmentsPaid must be between 0 and %d", req.Installments)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateCardPurchase validates a credit-card purchase request. DueDay must
// be a day of month; closingDays must not be negative.
func ValidateCardPurchase(req request.CardPurchaseRequest) error {
	errors := make(map[string]string)

	checkDate(errors, "purchaseDate", req.PurchaseDate)
	checkPositive(errors, "totalAmount", req.TotalAmount)
	checkRequired(errors, "card", req.Card)
	checkRequired(errors, "user", req.User)

	if req.Installments < 1 {
		errors["installments"] = "installments must be at least 1"
	}
	if req.DueDay < 1 || req.DueDay > 31 {
		errors["dueDay"] = "dueDay must be a day of month (1-31)"
	}
	if req.ClosingDays < 0 {
		errors["closingDays"] = "closingDays must not be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateAdjustment validates a principal adjustment request.
func ValidateAdjustment(req request.AdjustmentRequest) error {
	errors := make(map[string]string)

	checkDate(errors, "date", req.Date)
	checkPositive(errors, "amount", req.Amount)
	checkRequired(errors, "user", req.User)

	if req.ObligationID <= 0 {
		errors["obligationId"] = "obligationId is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
