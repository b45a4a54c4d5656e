package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrSaleNotFound      = errors.New("sale not found")
	ErrSaleAmountInvalid = errors.New("sale total must be positive")
	ErrSaleClientInvalid = errors.New("sale client is required")
	ErrSaleTotalMismatch = errors.New("sum of product values must equal the sale total")
	ErrSaleLineInvalid   = errors.New("product lines need a description and a positive value")
)

// Payment method labels as the storefront uses them.
const (
	PaymentMethodCash        = "dinheiro"
	PaymentMethodPix         = "pix"
	PaymentMethodCard        = "cartao"
	PaymentMethodStoreCredit = "crediario"
)

// IsStoreCredit reports whether a payment method defers payment into
// future-dated debts instead of settling at the point of sale.
func IsStoreCredit(method string) bool {
	return method == PaymentMethodStoreCredit
}

// ProductLine is one sold item on a sale, stored as structured JSON on the
// sale row.
type ProductLine struct {
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
}

// Sale is a point-of-sale record. Store-credit sales are linked from the
// debt rows they originate.
type Sale struct {
	ID            int32           `json:"id"`
	ClientID      int32           `json:"clientId"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Products      []ProductLine   `json:"products"`
	PaymentMethod string          `json:"paymentMethod"`

	// IdempotencyKey guards against duplicate submissions of the same
	// checkout. Optional; enforced unique when present.
	IdempotencyKey *string `json:"idempotencyKey,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Sale) Validate() error {
	if s.ClientID <= 0 {
		return ErrSaleClientInvalid
	}
	if s.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return ErrSaleAmountInvalid
	}
	if len(s.Products) > 0 {
		sum := decimal.Zero
		for _, line := range s.Products {
			if line.Description == "" || line.Value.LessThanOrEqual(decimal.Zero) {
				return ErrSaleLineInvalid
			}
			sum = sum.Add(line.Value)
		}
		if !sum.Equal(s.TotalAmount) {
			return ErrSaleTotalMismatch
		}
	}
	return nil
}

type SaleRepository interface {
	Create(sale *Sale) (*Sale, error)
	CreateTx(tx interface{}, sale *Sale) (*Sale, error)
	GetByID(id int32) (*Sale, error)
	GetByClient(clientID int32) ([]*Sale, error)
	GetByIdempotencyKey(key string) (*Sale, error)
	Delete(id int32) error
	SumByMonth(month time.Time) (decimal.Decimal, error)
}
