package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPaymentAmountInvalid = errors.New("payment amount must be positive")
	ErrPaymentDebtInvalid   = errors.New("payment debt is required")
)

// Payment settles part or all of a debt. The invoice month is copied from
// the debt so billing views can group payments without a join.
type Payment struct {
	ID           int32           `json:"id"`
	DebtID       int32           `json:"debtId"`
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"method"`
	InvoiceMonth time.Time       `json:"invoiceMonth"`
	PaidAt       time.Time       `json:"paidAt"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func (p *Payment) Validate() error {
	if p.DebtID <= 0 {
		return ErrPaymentDebtInvalid
	}
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrPaymentAmountInvalid
	}
	return nil
}

type PaymentRepository interface {
	Create(payment *Payment) (*Payment, error)
	GetByID(id int32) (*Payment, error)
	GetByDebt(debtID int32) ([]*Payment, error)
	SumByDebt(debtID int32) (decimal.Decimal, error)
	Delete(id int32) error
}
