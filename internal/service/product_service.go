package service

import (
	"context"
	"strings"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// ProductService handles inventory business logic
type ProductService struct {
	pool           TxBeginner
	productRepo    domain.ProductRepository
	movementRepo   domain.StockMovementRepository
	eventPublisher websocket.EventPublisher
}

// NewProductService creates a new ProductService
func NewProductService(pool TxBeginner, productRepo domain.ProductRepository, movementRepo domain.StockMovementRepository) *ProductService {
	return &ProductService{
		pool:         pool,
		productRepo:  productRepo,
		movementRepo: movementRepo,
	}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *ProductService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ProductService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// CreateProductInput contains input for creating a product
type CreateProductInput struct {
	Name        string
	Price       decimal.Decimal
	Cost        decimal.Decimal
	Quantity    int32
	MinQuantity int32
}

// CreateProduct creates a new inventory item
func (s *ProductService) CreateProduct(input CreateProductInput) (*domain.Product, error) {
	product := &domain.Product{
		Name:        strings.TrimSpace(input.Name),
		Price:       input.Price,
		Cost:        input.Cost,
		Quantity:    input.Quantity,
		MinQuantity: input.MinQuantity,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	created, err := s.productRepo.Create(product)
	if err != nil {
		return nil, err
	}

	s.publishEvent(websocket.ProductCreated(created))
	return created, nil
}

// GetProduct returns a product by ID
func (s *ProductService) GetProduct(id int32) (*domain.Product, error) {
	return s.productRepo.GetByID(id)
}

// GetAllProducts returns all active products
func (s *ProductService) GetAllProducts() ([]*domain.Product, error) {
	return s.productRepo.GetAll()
}

// UpdateProductInput contains input for updating a product
type UpdateProductInput struct {
	Name        string
	Price       decimal.Decimal
	Cost        decimal.Decimal
	MinQuantity int32
}

// UpdateProduct updates a product's details. Quantity is not touched here;
// it only moves through stock movements.
func (s *ProductService) UpdateProduct(id int32, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Price = input.Price
	product.Cost = input.Cost
	product.MinQuantity = input.MinQuantity

	if err := product.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.productRepo.Update(product)
	if err != nil {
		return nil, err
	}

	s.publishEvent(websocket.ProductUpdated(updated))
	return updated, nil
}

// DeleteProduct soft-deletes a product
func (s *ProductService) DeleteProduct(id int32) error {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.productRepo.SoftDelete(id); err != nil {
		return err
	}

	s.publishEvent(websocket.ProductDeleted(product))
	return nil
}

// RegisterMovementInput contains input for a stock movement
type RegisterMovementInput struct {
	ProductID int32
	Type      domain.MovementType
	Quantity  int32
	Note      *string
}

// RegisterMovementResult pairs the movement with the adjusted product
type RegisterMovementResult struct {
	Movement *domain.StockMovement `json:"movement"`
	Product  *domain.Product       `json:"product"`
}

// RegisterMovement applies a stock movement. The quantity adjustment and the
// movement row commit together; an outgoing movement larger than the stock
// on hand fails with ErrStockInsufficient.
func (s *ProductService) RegisterMovement(ctx context.Context, input RegisterMovementInput) (*RegisterMovementResult, error) {
	if _, err := s.productRepo.GetByID(input.ProductID); err != nil {
		return nil, err
	}

	movement := &domain.StockMovement{
		ProductID: input.ProductID,
		Type:      input.Type,
		Quantity:  input.Quantity,
		Note:      trimOptional(input.Note),
	}
	if err := movement.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	product, err := s.productRepo.AdjustQuantityTx(tx, input.ProductID, movement.Delta())
	if err != nil {
		return nil, err
	}

	created, err := s.movementRepo.CreateTx(tx, movement)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.publishEvent(websocket.StockMovementCreated(created))
	s.publishEvent(websocket.ProductUpdated(product))

	return &RegisterMovementResult{Movement: created, Product: product}, nil
}

// GetMovementsByProduct returns the movement history of a product
func (s *ProductService) GetMovementsByProduct(productID int32) ([]*domain.StockMovement, error) {
	if _, err := s.productRepo.GetByID(productID); err != nil {
		return nil, err
	}
	return s.movementRepo.GetByProduct(productID)
}
