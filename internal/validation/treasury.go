package validation

import (
	"github.com/alexmabud/flowdash-backend/internal/api/request"
)

// ValidateSecondaryTransfer validates a till-to-secondary transfer request.
func ValidateSecondaryTransfer(req request.SecondaryTransferRequest) error {
	errors := make(map[string]string)

	checkDate(errors, "date", req.Date)
	checkPositive(errors, "amount", req.Amount)
	checkRequired(errors, "user", req.User)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateDeposit validates a secondary-till-to-bank deposit request.
func ValidateDeposit(req request.DepositRequest) error {
	errors := make(map[string]string)

	checkDate(errors, "date", req.Date)
	checkPositive(errors, "amount", req.Amount)
	checkRequired(errors, "bankAccount", req.BankAccount)
	checkRequired(errors, "user", req.User)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateBankTransfer validates a bank-to-bank transfer request. Source and
// destination must both be present and differ.
func ValidateBankTransfer(req request.BankTransferRequest) error {
	errors := make(map[string]string)

	checkDate(errors, "date", req.Date)
	checkPositive(errors, "amount", req.Amount)
	checkRequired(errors, "fromAccount", req.FromAccount)
	checkRequired(errors, "toAccount", req.ToAccount)
	checkRequired(errors, "user", req.User)

	if req.FromAccount != "" && req.FromAccount == req.ToAccount {
		errors["toAccount"] = "source and destination accounts must differ"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
