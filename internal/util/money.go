package util

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatBRL formats an amount as Brazilian currency, e.g. "R$ 1.234,56".
func FormatBRL(amount decimal.Decimal) string {
	s := amount.StringFixed(2)

	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	intPart := s[:len(s)-3]
	centsPart := s[len(s)-2:]

	// Group the integer part in threes with "." separators.
	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	out := "R$ " + b.String() + "," + centsPart
	if negative {
		out = "-" + out
	}
	return out
}

// FormatDateBR formats a date as dd/MM/yyyy.
func FormatDateBR(t time.Time) string {
	return t.Format("02/01/2006")
}
