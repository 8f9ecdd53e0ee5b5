package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrObligationNotFound indicates that no obligation with the given ID exists.
	ErrObligationNotFound = errors.New("obligation not found")

	// ErrChargeNotFound indicates that an obligation has no CHARGE event row.
	ErrChargeNotFound = errors.New("charge event not found")

	// ErrMovementNotFound indicates that a movement-log entry does not exist.
	ErrMovementNotFound = errors.New("movement not found")

	// ErrSnapshotNotFound indicates that no cash-position snapshot exists for the date.
	ErrSnapshotNotFound = errors.New("cash snapshot not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidAmount indicates a non-positive or unparsable monetary input.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidObligationReference indicates an unknown obligation or installment id.
	ErrInvalidObligationReference = errors.New("invalid obligation reference")

	// ErrInsufficientFunds indicates that a payment or transfer exceeds the
	// available balance beyond the cent tolerance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnknownAccount indicates a transfer/deposit target that is not recognized.
	// Non-fatal in flows that tolerate free-text account names.
	ErrUnknownAccount = errors.New("unknown account")

	// ErrSameAccount indicates a bank transfer where source and destination match.
	ErrSameAccount = errors.New("source and destination accounts must differ")

	// ErrInvalidDate indicates a date that is missing or not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidInstallments indicates an installment count below 1.
	ErrInvalidInstallments = errors.New("installment count must be at least 1")

	// ErrEmptyUser indicates missing acting-user identification.
	ErrEmptyUser = errors.New("user is required")

	// ErrEmptyCreditor indicates a missing creditor/account name.
	ErrEmptyCreditor = errors.New("creditor is required")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data, not missing entities or validation issues.
var (
	ErrFailedToRetrieveObligations = errors.New("failed to retrieve obligations")
	ErrFailedToRetrieveMovements   = errors.New("failed to retrieve movements")
	ErrFailedToRetrieveSnapshot    = errors.New("failed to retrieve cash snapshot")
	ErrFailedToApplyPayment        = errors.New("failed to apply payment")
	ErrFailedToScheduleObligation  = errors.New("failed to schedule obligation")
	ErrFailedToTransfer            = errors.New("failed to register transfer")
	ErrFailedToGetVersionInfo      = errors.New("failed to get version information")
)
