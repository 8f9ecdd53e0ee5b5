// Package money centralizes monetary arithmetic for the settlement core.
// All stored amounts are quantized to 2 decimal places (half-up) after every
// arithmetic step, and comparisons use a half-cent tolerance so that repeated
// rounding can never strand an obligation a fraction of a cent from settled.
package money

import "github.com/shopspring/decimal"

// Epsilon is the tolerance used for balance and settlement comparisons.
var Epsilon = decimal.New(5, -3) // 0.005

// Zero is a quantized zero, convenient for accumulator seeds.
var Zero = decimal.Zero

// Round2 quantizes to 2 decimal places, rounding half away from zero
// (the traditional financial ROUND_HALF_UP for positive values).
// A result within Epsilon of zero collapses to plain zero so that no
// negative-zero artifact can ever serialize.
func Round2(d decimal.Decimal) decimal.Decimal {
	r := d.Round(2)
	if r.IsZero() {
		return decimal.Zero
	}
	return r
}

// FromFloat converts a float64 input (JSON numbers) into a quantized amount.
func FromFloat(f float64) decimal.Decimal {
	return Round2(decimal.NewFromFloat(f))
}

// NonNeg clamps negative values to zero. Used when debiting balances so that
// rounding noise cannot leave a balance at -0.01.
func NonNeg(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// GTE reports a >= b within Epsilon.
func GTE(a, b decimal.Decimal) bool {
	return a.Cmp(b.Sub(Epsilon)) >= 0
}

// LTE reports a <= b within Epsilon.
func LTE(a, b decimal.Decimal) bool {
	return a.Cmp(b.Add(Epsilon)) <= 0
}

// IsZeroish reports |d| <= Epsilon.
func IsZeroish(d decimal.Decimal) bool {
	return d.Abs().Cmp(Epsilon) <= 0
}

// IsPositive reports d > Epsilon.
func IsPositive(d decimal.Decimal) bool {
	return d.Cmp(Epsilon) > 0
}
