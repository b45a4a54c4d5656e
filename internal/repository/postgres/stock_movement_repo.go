package postgres

import (
	"context"
	"errors"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StockMovementRepository implements domain.StockMovementRepository using PostgreSQL
type StockMovementRepository struct {
	pool *pgxpool.Pool
}

// NewStockMovementRepository creates a new StockMovementRepository
func NewStockMovementRepository(pool *pgxpool.Pool) *StockMovementRepository {
	return &StockMovementRepository{pool: pool}
}

const movementColumns = `id, product_id, type, quantity, note, created_at`

func scanMovement(s scanner) (*domain.StockMovement, error) {
	var m domain.StockMovement
	var movementType string
	var note pgtype.Text
	var createdAt pgtype.Timestamptz

	if err := s.Scan(&m.ID, &m.ProductID, &movementType, &m.Quantity, &note, &createdAt); err != nil {
		return nil, err
	}

	m.Type = domain.MovementType(movementType)
	if note.Valid {
		m.Note = &note.String
	}
	m.CreatedAt = createdAt.Time
	return &m, nil
}

// CreateTx creates a stock movement within a transaction, alongside the
// quantity adjustment on the product row
func (r *StockMovementRepository) CreateTx(tx interface{}, movement *domain.StockMovement) (*domain.StockMovement, error) {
	pgxTx, ok := tx.(pgx.Tx)
	if !ok {
		return nil, errors.New("invalid transaction type")
	}

	note := pgtype.Text{}
	if movement.Note != nil {
		note.String = *movement.Note
		note.Valid = true
	}

	ctx := context.Background()
	row := pgxTx.QueryRow(ctx, `
		INSERT INTO stock_movements (product_id, type, quantity, note)
		VALUES ($1, $2, $3, $4)
		RETURNING `+movementColumns,
		movement.ProductID, string(movement.Type), movement.Quantity, note)
	return scanMovement(row)
}

// GetByProduct retrieves all movements for a product, newest first
func (r *StockMovementRepository) GetByProduct(productID int32) ([]*domain.StockMovement, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+movementColumns+` FROM stock_movements
		WHERE product_id = $1
		ORDER BY created_at DESC, id DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*domain.StockMovement
	for rows.Next() {
		movement, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}
	return movements, rows.Err()
}
