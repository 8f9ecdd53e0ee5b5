package request

// ScheduleBoletoRequest programs a boleto purchase as monthly installments.
type ScheduleBoletoRequest struct {
	PurchaseDate string  `json:"purchaseDate"`
	TotalAmount  float64 `json:"totalAmount"`
	Installments int     `json:"installments"`
	FirstDueDate string  `json:"firstDueDate"`
	Creditor     string  `json:"creditor"`
	Description  string  `json:"description,omitempty"`
	User         string  `json:"user"`
}

// ScheduleLoanRequest programs a loan as monthly installments. The first
// InstallmentsPaid installments are settled at creation without cash effect.
type ScheduleLoanRequest struct {
	StartDate        string  `json:"startDate"`
	TotalAmount      float64 `json:"totalAmount"`
	Installments     int     `json:"installments"`
	FirstDueDate     string  `json:"firstDueDate"`
	InstallmentsPaid int     `json:"installmentsPaid,omitempty"`
	Creditor         string  `json:"creditor"`
	Description      string  `json:"description,omitempty"`
	User             string  `json:"user"`
}

// CardPurchaseRequest splits a credit-card purchase across monthly invoice
// competences. DueDay is the invoice due day of month; ClosingDays is how
// many days before the due day the invoice closes.
type CardPurchaseRequest struct {
	PurchaseDate string  `json:"purchaseDate"`
	TotalAmount  float64 `json:"totalAmount"`
	Installments int     `json:"installments"`
	Card         string  `json:"card"`
	DueDay       int     `json:"dueDay"`
	ClosingDays  int     `json:"closingDays"`
	Description  string  `json:"description,omitempty"`
	User         string  `json:"user"`
}

// AdjustmentRequest credits principal against an obligation without cash
// effect, for importing debts that were partially paid outside the system.
type AdjustmentRequest struct {
	ObligationID int64   `json:"obligationId"`
	Amount       float64 `json:"amount"`
	Date         string  `json:"date"`
	Description  string  `json:"description,omitempty"`
	User         string  `json:"user"`
}
