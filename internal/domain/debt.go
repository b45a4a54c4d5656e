package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrDebtNotFound           = errors.New("debt not found")
	ErrDebtAmountInvalid      = errors.New("debt amount must be positive")
	ErrDebtClientInvalid      = errors.New("debt client is required")
	ErrDebtDescriptionTooLong = errors.New("debt description must be 500 characters or less")
)

// DebtStatus reflects how much of a debt the payment ledger has covered.
// It is recomputed from payments on read, never stored.
type DebtStatus string

const (
	DebtStatusOpen    DebtStatus = "open"
	DebtStatusPartial DebtStatus = "partial"
	DebtStatusPaid    DebtStatus = "paid"
)

// Debt is an amount a client owes, attributed to one invoice month.
// Installment series are plain Debt rows sharing a sale link and labeled
// "(i/N)" by the planner.
type Debt struct {
	ID              int32           `json:"id"`
	ClientID        int32           `json:"clientId"`
	Amount          decimal.Decimal `json:"amount"`
	Description     *string         `json:"description,omitempty"`
	TransactionDate time.Time       `json:"transactionDate"`
	InvoiceMonth    time.Time       `json:"invoiceMonth"`
	Status          DebtStatus      `json:"status"`
	SaleID          *int32          `json:"saleId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (d *Debt) Validate() error {
	if d.ClientID <= 0 {
		return ErrDebtClientInvalid
	}
	if d.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrDebtAmountInvalid
	}
	if d.Description != nil && len(*d.Description) > MaxDescriptionLength {
		return ErrDebtDescriptionTooLong
	}
	return nil
}

// DebtStatusFor derives the status of a debt from the summed payments
// against it.
func DebtStatusFor(amount, paid decimal.Decimal) DebtStatus {
	switch {
	case paid.LessThanOrEqual(decimal.Zero):
		return DebtStatusOpen
	case paid.GreaterThanOrEqual(amount):
		return DebtStatusPaid
	default:
		return DebtStatusPartial
	}
}

type DebtRepository interface {
	Create(debt *Debt) (*Debt, error)
	CreateTx(tx interface{}, debt *Debt) (*Debt, error)
	GetByID(id int32) (*Debt, error)
	GetByClient(clientID int32) ([]*Debt, error)
	GetByMonth(month time.Time) ([]*Debt, error)
	GetOpenByClient(clientID int32) ([]*Debt, error)
	Update(debt *Debt) (*Debt, error)
	Delete(id int32) error
	SumOpenAmount() (decimal.Decimal, error)
	SumOpenAmountByClient(clientID int32) (decimal.Decimal, error)
}
