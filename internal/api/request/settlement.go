package request

// PaymentRequest applies a payment against an obligation group. The group is
// selected either by ObligationID alone or by ObligationType + Creditor
// (optionally narrowed to one Competence).
//
// Origin names where the cash leaves from: TILL, SECONDARY_TILL or BANK.
// BankAccount is required when Origin is BANK.
type PaymentRequest struct {
	Date            string  `json:"date"`
	ObligationType  string  `json:"obligationType,omitempty"`
	Creditor        string  `json:"creditor,omitempty"`
	Competence      string  `json:"competence,omitempty"`
	ObligationID    int64   `json:"obligationId,omitempty"`
	PrincipalAmount float64 `json:"principalAmount"`
	InterestAmount  float64 `json:"interestAmount,omitempty"`
	PenaltyAmount   float64 `json:"penaltyAmount,omitempty"`
	DiscountAmount  float64 `json:"discountAmount,omitempty"`
	Origin          string  `json:"origin"`
	BankAccount     string  `json:"bankAccount,omitempty"`
	PaymentMethod   string  `json:"paymentMethod,omitempty"`
	TransactionUID  string  `json:"transactionUid,omitempty"`
	User            string  `json:"user"`
}
