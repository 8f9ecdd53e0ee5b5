package request

// SecondaryTransferRequest moves cash from the main till to the secondary till.
type SecondaryTransferRequest struct {
	Date           string  `json:"date"`
	Amount         float64 `json:"amount"`
	TransactionUID string  `json:"transactionUid,omitempty"`
	User           string  `json:"user"`
}

// DepositRequest moves cash from the secondary till into a bank account.
type DepositRequest struct {
	Date           string  `json:"date"`
	Amount         float64 `json:"amount"`
	BankAccount    string  `json:"bankAccount"`
	TransactionUID string  `json:"transactionUid,omitempty"`
	User           string  `json:"user"`
}

// BankTransferRequest moves money between two bank accounts.
type BankTransferRequest struct {
	Date           string  `json:"date"`
	Amount         float64 `json:"amount"`
	FromAccount    string  `json:"fromAccount"`
	ToAccount      string  `json:"toAccount"`
	TransactionUID string  `json:"transactionUid,omitempty"`
	User           string  `json:"user"`
}
