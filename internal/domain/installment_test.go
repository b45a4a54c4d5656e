package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestPlanInstallments_EvenSplit(t *testing.T) {
	plan, err := PlanInstallments(decimal.NewFromFloat(300.00), 3, month(2024, time.January), "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(plan.Installments) != 3 {
		t.Fatalf("expected 3 installments, got %d", len(plan.Installments))
	}

	expectedMonths := []time.Time{
		month(2024, time.January),
		month(2024, time.February),
		month(2024, time.March),
	}
	expectedLabels := []string{"(1/3)", "(2/3)", "(3/3)"}

	for i, inst := range plan.Installments {
		if !inst.Amount.Equal(decimal.NewFromFloat(100.00)) {
			t.Errorf("installment %d: expected amount 100.00, got %s", i, inst.Amount)
		}
		if !inst.DueMonth.Equal(expectedMonths[i]) {
			t.Errorf("installment %d: expected due month %v, got %v", i, expectedMonths[i], inst.DueMonth)
		}
		if !strings.Contains(inst.Label, expectedLabels[i]) {
			t.Errorf("installment %d: label %q missing %q", i, inst.Label, expectedLabels[i])
		}
		if !strings.Contains(inst.Label, "(Origem - R$ 300,00)") {
			t.Errorf("installment %d: label %q missing origin total", i, inst.Label)
		}
	}

	if !plan.Remainder.IsZero() {
		t.Errorf("expected zero remainder, got %s", plan.Remainder)
	}
}

func TestPlanInstallments_TruncatesRemainder(t *testing.T) {
	// 100.00 / 3 truncates to 33.33 per entry; the missing cent is not
	// redistributed, only reported.
	plan, err := PlanInstallments(decimal.NewFromFloat(100.00), 3, month(2024, time.June), "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	sum := decimal.Zero
	for _, inst := range plan.Installments {
		if !inst.Amount.Equal(decimal.NewFromFloat(33.33)) {
			t.Errorf("expected amount 33.33, got %s", inst.Amount)
		}
		sum = sum.Add(inst.Amount)
	}

	if !plan.Remainder.Equal(decimal.NewFromFloat(0.01)) {
		t.Errorf("expected remainder 0.01, got %s", plan.Remainder)
	}
	if !sum.Add(plan.Remainder).Equal(plan.Total) {
		t.Errorf("scheduled sum %s plus remainder %s does not equal total %s", sum, plan.Remainder, plan.Total)
	}
}

func TestPlanInstallments_DueMonthsCrossYearBoundary(t *testing.T) {
	plan, err := PlanInstallments(decimal.NewFromFloat(1200.00), 12, month(2024, time.November), "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for i, inst := range plan.Installments {
		expected := month(2024, time.November).AddDate(0, i, 0)
		if !inst.DueMonth.Equal(expected) {
			t.Errorf("installment %d: expected due month %v, got %v", i, expected, inst.DueMonth)
		}
		if inst.DueMonth.Day() != 1 {
			t.Errorf("installment %d: due month must be first of month, got day %d", i, inst.DueMonth.Day())
		}
	}
}

func TestPlanInstallments_DefaultLabel(t *testing.T) {
	plan, err := PlanInstallments(decimal.NewFromFloat(50.00), 2, month(2024, time.March), "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(plan.Installments[0].Label, "Parcela ") {
		t.Errorf("expected default label prefix, got %q", plan.Installments[0].Label)
	}
}

func TestPlanInstallments_CustomDescription(t *testing.T) {
	plan, err := PlanInstallments(decimal.NewFromFloat(50.00), 1, month(2024, time.March), "Geladeira")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	label := plan.Installments[0].Label
	if !strings.HasPrefix(label, "Geladeira ") {
		t.Errorf("expected description prefix, got %q", label)
	}
	if !strings.Contains(label, "(1/1)") {
		t.Errorf("expected (1/1) suffix, got %q", label)
	}
}

func TestPlanInstallments_Validation(t *testing.T) {
	tests := []struct {
		name    string
		total   decimal.Decimal
		count   int
		wantErr error
	}{
		{"zero count", decimal.NewFromFloat(100.00), 0, ErrInstallmentCountInvalid},
		{"count above max", decimal.NewFromFloat(100.00), 49, ErrInstallmentCountInvalid},
		{"zero total", decimal.Zero, 3, ErrInstallmentTotalInvalid},
		{"negative total", decimal.NewFromFloat(-5.00), 3, ErrInstallmentTotalInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlanInstallments(tt.total, tt.count, month(2024, time.January), "")
			if err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPlanInstallments_NormalizesStartMonth(t *testing.T) {
	// A mid-month start date is anchored to the first of its month.
	start := time.Date(2024, time.May, 17, 13, 45, 0, 0, time.UTC)
	plan, err := PlanInstallments(decimal.NewFromFloat(80.00), 2, start, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !plan.Installments[0].DueMonth.Equal(month(2024, time.May)) {
		t.Errorf("expected 2024-05-01, got %v", plan.Installments[0].DueMonth)
	}
	if !plan.Installments[1].DueMonth.Equal(month(2024, time.June)) {
		t.Errorf("expected 2024-06-01, got %v", plan.Installments[1].DueMonth)
	}
}
