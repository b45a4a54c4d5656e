package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductNameEmpty    = errors.New("product name is required")
	ErrProductNameTooLong  = errors.New("product name must be 200 characters or less")
	ErrProductPriceInvalid = errors.New("product price must not be negative")
)

// Product is an inventory item. Quantity changes go through stock movements
// so the history stays auditable.
type Product struct {
	ID          int32           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	Quantity    int32           `json:"quantity"`
	MinQuantity int32           `json:"minQuantity"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   *time.Time      `json:"deletedAt,omitempty"`
}

func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrProductNameEmpty
	}
	if len(p.Name) > MaxNameLength {
		return ErrProductNameTooLong
	}
	if p.Price.IsNegative() {
		return ErrProductPriceInvalid
	}
	return nil
}

// LowStock reports whether the quantity has dropped to the reorder threshold.
func (p *Product) LowStock() bool {
	return p.Quantity <= p.MinQuantity
}

type ProductRepository interface {
	Create(product *Product) (*Product, error)
	GetByID(id int32) (*Product, error)
	GetAll() ([]*Product, error)
	Update(product *Product) (*Product, error)
	SoftDelete(id int32) error
	SetImageURL(id int32, imageURL *string) error
	AdjustQuantityTx(tx interface{}, id int32, delta int32) (*Product, error)
	CountLowStock() (int64, error)
}
