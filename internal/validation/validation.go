package validation

import (
	"strings"
	"time"
)

// checkDate records a field error when value is missing or not a
// YYYY-MM-DD date.
func checkDate(errors map[string]string, field, value string) {
	if strings.TrimSpace(value) == "" {
		errors[field] = field + " is required"
		return
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		errors[field] = err.Error()
	}
}

// checkRequired records a field error when value is blank.
func checkRequired(errors map[string]string, field, value string) {
	if strings.TrimSpace(value) == "" {
		errors[field] = field + " is required"
	}
}

// checkPositive records a field error when value is not strictly positive.
func checkPositive(errors map[string]string, field string, value float64) {
	if value <= 0.0 {
		errors[field] = field + " must be positive"
	}
}

// checkNonNegative records a field error when value is negative.
func checkNonNegative(errors map[string]string, field string, value float64) {
	if value < 0.0 {
		errors[field] = field + " must not be negative"
	}
}

// checkCompetence records a field error when value is present but not a
// YYYY-MM month.
func checkCompetence(errors map[string]string, field, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if _, err := time.Parse("2006-01", value); err != nil {
		errors[field] = "must be a YYYY-MM month"
	}
}
