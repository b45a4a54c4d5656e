package util

import (
	"fmt"
	"time"
)

// FirstOfMonth returns midnight UTC on the first day of t's calendar month.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the first day of the month n months after t's month.
// Anchoring on day 1 avoids time.AddDate day-overflow normalization.
func AddMonths(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}

// ParseMonth parses a "YYYY-MM" string into the first day of that month (UTC).
func ParseMonth(s string) (time.Time, error) {
	var year, month int
	if len(s) != 7 || s[4] != '-' {
		return time.Time{}, fmt.Errorf("invalid month format, expected YYYY-MM")
	}
	if _, err := fmt.Sscanf(s, "%04d-%02d", &year, &month); err != nil {
		return time.Time{}, fmt.Errorf("invalid month format, expected YYYY-MM: %w", err)
	}
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month must be between 1 and 12")
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// FormatMonth formats a time as "YYYY-MM".
func FormatMonth(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// PreviousMonth returns the year and month for the previous month
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}
