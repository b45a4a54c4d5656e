package util

import (
	"testing"
	"time"
)

func TestFirstOfMonth(t *testing.T) {
	d := time.Date(2024, time.March, 17, 15, 4, 5, 0, time.UTC)
	got := FirstOfMonth(d)
	want := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("FirstOfMonth = %v, want %v", got, want)
	}
}

func TestAddMonths(t *testing.T) {
	start := time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		n    int
		want time.Time
	}{
		{0, time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)},
		{1, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)},
		{2, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{14, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		if got := AddMonths(start, tt.n); !got.Equal(tt.want) {
			t.Errorf("AddMonths(%v, %d) = %v, want %v", start, tt.n, got, tt.want)
		}
	}
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("2024-01")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseMonth = %v, want %v", got, want)
	}

	for _, bad := range []string{"", "2024", "2024-13", "2024-00", "24-01", "2024/01"} {
		if _, err := ParseMonth(bad); err == nil {
			t.Errorf("ParseMonth(%q) expected error", bad)
		}
	}
}

func TestFormatMonth(t *testing.T) {
	d := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if got := FormatMonth(d); got != "2024-03" {
		t.Errorf("FormatMonth = %q, want 2024-03", got)
	}
}

func TestPreviousMonth(t *testing.T) {
	gotYear, gotMonth := PreviousMonth(2026, 1)
	if gotYear != 2025 || gotMonth != 12 {
		t.Errorf("PreviousMonth(2026, 1) = (%d, %d), want (2025, 12)", gotYear, gotMonth)
	}

	gotYear, gotMonth = PreviousMonth(2026, 6)
	if gotYear != 2026 || gotMonth != 5 {
		t.Errorf("PreviousMonth(2026, 6) = (%d, %d), want (2026, 5)", gotYear, gotMonth)
	}
}
