package domain

import (
	"errors"
	"time"
)

var (
	ErrStockMovementNotFound  = errors.New("stock movement not found")
	ErrStockMovementQuantity  = errors.New("stock movement quantity must be positive")
	ErrStockMovementBadType   = errors.New("stock movement type must be entrada or saida")
	ErrStockInsufficient      = errors.New("not enough stock for this movement")
	ErrStockMovementNoProduct = errors.New("stock movement product is required")
)

// MovementType is the direction of a stock movement.
type MovementType string

const (
	MovementIn  MovementType = "entrada"
	MovementOut MovementType = "saida"
)

// StockMovement adjusts a product's quantity. The adjustment and the
// movement row are written in the same transaction.
type StockMovement struct {
	ID        int32        `json:"id"`
	ProductID int32        `json:"productId"`
	Type      MovementType `json:"type"`
	Quantity  int32        `json:"quantity"`
	Note      *string      `json:"note,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

func (m *StockMovement) Validate() error {
	if m.ProductID <= 0 {
		return ErrStockMovementNoProduct
	}
	if m.Quantity <= 0 {
		return ErrStockMovementQuantity
	}
	if m.Type != MovementIn && m.Type != MovementOut {
		return ErrStockMovementBadType
	}
	return nil
}

// Delta returns the signed quantity change this movement applies.
func (m *StockMovement) Delta() int32 {
	if m.Type == MovementOut {
		return -m.Quantity
	}
	return m.Quantity
}

type StockMovementRepository interface {
	CreateTx(tx interface{}, movement *StockMovement) (*StockMovement, error)
	GetByProduct(productID int32) ([]*StockMovement, error)
}
