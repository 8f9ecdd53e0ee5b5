package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRound2(t *testing.T) {
	t.Run("quantizes half up", func(t *testing.T) {
		cases := map[string]string{
			"10.005":  "10.01",
			"10.004":  "10",
			"0.1":     "0.1",
			"-10.005": "-10.01",
			"33.333":  "33.33",
		}
		for in, want := range cases {
			got := Round2(decimal.RequireFromString(in))
			if !got.Equal(decimal.RequireFromString(want)) {
				t.Errorf("Round2(%s) = %s, want %s", in, got, want)
			}
		}
	})

	t.Run("never emits negative zero", func(t *testing.T) {
		got := Round2(decimal.RequireFromString("-0.001"))
		if got.String() != "0" {
			t.Errorf("Expected 0, got %s", got)
		}
	})
}

func TestComparisons(t *testing.T) {
	a := decimal.RequireFromString("99.996")
	b := decimal.RequireFromString("100.00")

	if !GTE(a, b) {
		t.Error("99.996 should satisfy GTE(100.00) within tolerance")
	}
	if !LTE(decimal.RequireFromString("100.004"), b) {
		t.Error("100.004 should satisfy LTE(100.00) within tolerance")
	}
	if GTE(decimal.RequireFromString("99.99"), b) {
		t.Error("99.99 must not satisfy GTE(100.00)")
	}
	if !IsZeroish(decimal.RequireFromString("-0.004")) {
		t.Error("-0.004 should be zero within tolerance")
	}
	if IsPositive(decimal.RequireFromString("0.004")) {
		t.Error("0.004 must not count as positive")
	}
}

func TestNonNeg(t *testing.T) {
	if !NonNeg(decimal.RequireFromString("-0.01")).IsZero() {
		t.Error("negative balances must clamp to zero")
	}
	v := decimal.RequireFromString("12.34")
	if !NonNeg(v).Equal(v) {
		t.Error("positive values must pass through")
	}
}
