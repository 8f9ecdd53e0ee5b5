package repository

import (
	"database/sql"
	"fmt"
	"time"
)

// DateFormat is the canonical storage format for calendar dates.
const DateFormat = "2006-01-02"

// ParseTime parses a date string in "2006-01-02" or RFC3339 format.
// Note: mirrors validation.ParseTime — both are intentionally kept local to avoid cross-layer imports.
func ParseTime(str string) (time.Time, error) {
	for _, layout := range []string{DateFormat, time.RFC3339, time.DateTime} {
		if returnTime, err := time.Parse(layout, str); err == nil {
			return returnTime.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date: %q", str)
}

// FormatDate renders a time as a storage-format date string.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

func nullDate(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return FormatDate(*t)
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

func nullInt64(n *int64) any {
	if n == nil {
		return nil
	}
	return *n
}

func parseNullDate(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := ParseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
