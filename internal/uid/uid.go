// Package uid builds deterministic transaction identifiers for the movement
// log. When a caller does not supply an explicit UID, one is derived from the
// normalized business-fact tuple so that re-submitting the same logical
// request is naturally absorbed by the movement log's uniqueness constraint.
package uid

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Hasher turns the normalized parts of a business fact into a stable
// identifier. It is an interface so tests can substitute a readable fake.
type Hasher interface {
	Hash(parts ...string) string
}

// SHA256Hasher is the production Hasher: SHA-256 over the parts joined by '|'.
type SHA256Hasher struct{}

// Hash implements Hasher.
func (SHA256Hasher) Hash(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// Default is the hasher used by the repositories and services.
var Default Hasher = SHA256Hasher{}

// Sanitize trims and collapses internal whitespace. Upper-cases when asked,
// so that "Banco  Inter " and "banco inter" hash identically.
func Sanitize(s string, upper bool) string {
	base := strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
	if upper {
		return strings.ToUpper(base)
	}
	return base
}

// FormatAmount renders an amount with 6 decimal places for hashing.
// The extra precision keeps distinct sub-cent inputs from colliding before
// quantization happens.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(6)
}

// Movement derives the UID for a movement-log row from its normalized tuple.
func Movement(date, account, direction string, amount decimal.Decimal, source, refTable, refID, note string) string {
	return Default.Hash(
		"MOV",
		date,
		Sanitize(account, true),
		Sanitize(direction, true),
		FormatAmount(amount),
		Sanitize(source, true),
		Sanitize(refTable, true),
		refID,
		Sanitize(note, false),
	)
}

// BoletoSchedule derives the UID for programming a boleto purchase.
func BoletoSchedule(purchaseDate string, total decimal.Decimal, installments int, firstDue, creditor, description, user string) string {
	return Default.Hash(
		"BOLETO",
		purchaseDate,
		FormatAmount(total),
		itoa(installments),
		firstDue,
		Sanitize(creditor, true),
		Sanitize(description, false),
		Sanitize(user, true),
	)
}

// LoanSchedule derives the UID for programming loan installments.
func LoanSchedule(firstDue string, perInstallment decimal.Decimal, installments int, creditor, user string) string {
	return Default.Hash(
		"LOAN",
		firstDue,
		FormatAmount(perInstallment),
		itoa(installments),
		Sanitize(creditor, true),
		Sanitize(user, true),
	)
}

// CardPurchase derives the UID for a credit-card purchase split into invoices.
func CardPurchase(purchaseDate string, total decimal.Decimal, installments int, card, description, user string) string {
	return Default.Hash(
		"CARD",
		Sanitize(card, true),
		purchaseDate,
		FormatAmount(total),
		itoa(installments),
		Sanitize(description, false),
		Sanitize(user, true),
	)
}

// Payment derives the UID for a settlement payment against an obligation group.
func Payment(date, obligationType, creditor, competence string, obligationID int64, principal, interest, penalty, discount decimal.Decimal, user string) string {
	return Default.Hash(
		"PAYMENT",
		date,
		Sanitize(obligationType, true),
		Sanitize(creditor, true),
		competence,
		i64toa(obligationID),
		FormatAmount(principal),
		FormatAmount(interest),
		FormatAmount(penalty),
		FormatAmount(discount),
		Sanitize(user, true),
	)
}

// BankTransfer derives the base UID for a bank-to-bank transfer. The two
// movement rows of the transfer suffix it with "-out" and "-in".
func BankTransfer(date string, amount decimal.Decimal, from, to, user string) string {
	return Default.Hash(
		"BANKTRANSFER",
		date,
		FormatAmount(amount),
		Sanitize(from, true),
		Sanitize(to, true),
		Sanitize(user, true),
	)
}

func itoa(n int) string { return strconv.Itoa(n) }

func i64toa(n int64) string { return strconv.FormatInt(n, 10) }
