package validation

import (
	"fmt"

	"github.com/alexmabud/flowdash-backend/internal/api/request"
	"github.com/alexmabud/flowdash-backend/internal/model"
)

// ValidObligationType contains the allowed obligation type values.
var ValidObligationType = map[string]bool{
	string(model.ObligationBoleto):  true,
	string(model.ObligationInvoice): true,
	string(model.ObligationLoan):    true,
	string(model.ObligationOther):   true,
}

// ValidPaymentOrigin contains the allowed payment origin values.
var ValidPaymentOrigin = map[string]bool{
	model.OriginTill:          true,
	model.OriginSecondaryTill: true,
	model.OriginBank:          true,
}

// ValidatePayment validates a settlement payment request.
//
// The obligation group must be addressed either by obligationId or by
// obligationType + creditor. At least one of principalAmount and
// discountAmount must be positive; encargo amounts must not be negative.
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidatePayment(req request.PaymentRequest) error {
	errors := make(map[string]string)

	checkDate(errors, "date", req.Date)
	checkRequired(errors, "user", req.User)
	checkCompetence(errors, "competence", req.Competence)
	checkNonNegative(errors, "principalAmount", req.PrincipalAmount)
	checkNonNegative(errors, "interestAmount", req.InterestAmount)
	checkNonNegative(errors, "penaltyAmount", req.PenaltyAmount)
	checkNonNegative(errors, "discountAmount", req.DiscountAmount)

	if req.PrincipalAmount <= 0.0 && req.DiscountAmount <= 0.0 {
		errors["principalAmount"] = "one of principalAmount or discountAmount must be positive"
	}

	if req.ObligationID <= 0 {
		if req.ObligationType == "" || req.Creditor == "" {
			errors["obligationId"] = "either obligationId or obligationType + creditor is required"
		} else if !ValidObligationType[req.ObligationType] {
			errors["obligationType"] = fmt.Sprintf("invalid type: %s", req.ObligationType)
		}
	}

	if !ValidPaymentOrigin[req.Origin] {
		errors["origin"] = fmt.Sprintf("invalid origin: %s", req.Origin)
	} else if req.Origin == model.OriginBank {
		checkRequired(errors, "bankAccount", req.BankAccount)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
