package service_test

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()

	date, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("Failed to parse date %q: %v", s, err)
	}
	return date
}
