package util

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{300.00, "R$ 300,00"},
		{33.33, "R$ 33,33"},
		{0, "R$ 0,00"},
		{1234.56, "R$ 1.234,56"},
		{1234567.89, "R$ 1.234.567,89"},
		{-42.50, "-R$ 42,50"},
		{0.05, "R$ 0,05"},
	}

	for _, tt := range tests {
		if got := FormatBRL(decimal.NewFromFloat(tt.amount)); got != tt.want {
			t.Errorf("FormatBRL(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatDateBR(t *testing.T) {
	d := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	if got := FormatDateBR(d); got != "05/01/2024" {
		t.Errorf("FormatDateBR = %q, want 05/01/2024", got)
	}
}
