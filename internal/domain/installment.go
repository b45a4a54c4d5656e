package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/gestorloja/gestor-backend/internal/util"
	"github.com/shopspring/decimal"
)

var (
	ErrInstallmentTotalInvalid = errors.New("installment total must be positive")
	ErrInstallmentCountInvalid = errors.New("installment count must be between 1 and 48")
)

const (
	MinInstallmentCount = 1
	MaxInstallmentCount = 48
)

// DefaultInstallmentLabel is used when no description is given for a plan.
const DefaultInstallmentLabel = "Parcela"

// Installment is a single entry of an installment plan. It is not persisted
// itself; the recorder turns each entry into a Debt row.
type Installment struct {
	Amount   decimal.Decimal
	DueMonth time.Time
	Label    string
}

// InstallmentPlan is the result of splitting a total across N invoice months.
type InstallmentPlan struct {
	Total        decimal.Decimal
	Count        int
	StartMonth   time.Time
	Installments []Installment

	// Remainder is the part of Total not covered by the equal per-entry
	// amounts. The division truncates to cents and does not redistribute
	// the leftover, so summing the entries can fall short of Total by up
	// to Count-1 cents. Kept that way to match the billing history the
	// store already has; callers that care can surface it.
	Remainder decimal.Decimal
}

// PlanInstallments splits total into count equal monthly entries starting at
// startMonth. Each entry carries the same truncated quotient, a due month on
// the first day of its calendar month, and a label embedding the original
// total and the entry position.
func PlanInstallments(total decimal.Decimal, count int, startMonth time.Time, description string) (*InstallmentPlan, error) {
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInstallmentTotalInvalid
	}
	if count < MinInstallmentCount || count > MaxInstallmentCount {
		return nil, ErrInstallmentCountInvalid
	}

	if description == "" {
		description = DefaultInstallmentLabel
	}

	perInstallment := total.Div(decimal.NewFromInt(int64(count))).Truncate(2)
	origin := fmt.Sprintf("(Origem - %s)", util.FormatBRL(total))
	start := util.FirstOfMonth(startMonth)

	installments := make([]Installment, count)
	for i := 0; i < count; i++ {
		installments[i] = Installment{
			Amount:   perInstallment,
			DueMonth: util.AddMonths(start, i),
			Label:    fmt.Sprintf("%s %s (%d/%d)", description, origin, i+1, count),
		}
	}

	scheduled := perInstallment.Mul(decimal.NewFromInt(int64(count)))

	return &InstallmentPlan{
		Total:        total,
		Count:        count,
		StartMonth:   start,
		Installments: installments,
		Remainder:    total.Sub(scheduled),
	}, nil
}
