package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SaleRepository implements domain.SaleRepository using PostgreSQL
type SaleRepository struct {
	pool *pgxpool.Pool
}

// NewSaleRepository creates a new SaleRepository
func NewSaleRepository(pool *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{pool: pool}
}

const saleColumns = `id, client_id, total_amount, products, payment_method, idempotency_key, created_at, updated_at`

func scanSale(s scanner) (*domain.Sale, error) {
	var sale domain.Sale
	var totalAmount pgtype.Numeric
	var products []byte
	var idempotencyKey pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz

	if err := s.Scan(&sale.ID, &sale.ClientID, &totalAmount, &products, &sale.PaymentMethod, &idempotencyKey, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	sale.TotalAmount = pgNumericToDecimal(totalAmount)
	if len(products) > 0 {
		if err := json.Unmarshal(products, &sale.Products); err != nil {
			return nil, err
		}
	}
	if idempotencyKey.Valid {
		sale.IdempotencyKey = &idempotencyKey.String
	}
	sale.CreatedAt = createdAt.Time
	sale.UpdatedAt = updatedAt.Time
	return &sale, nil
}

func insertSale(ctx context.Context, q debtQuerier, sale *domain.Sale) (*domain.Sale, error) {
	totalAmount, err := decimalToPgNumeric(sale.TotalAmount)
	if err != nil {
		return nil, err
	}

	products, err := json.Marshal(sale.Products)
	if err != nil {
		return nil, err
	}

	idempotencyKey := pgtype.Text{}
	if sale.IdempotencyKey != nil {
		idempotencyKey.String = *sale.IdempotencyKey
		idempotencyKey.Valid = true
	}

	row := q.QueryRow(ctx, `
		INSERT INTO sales (client_id, total_amount, products, payment_method, idempotency_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+saleColumns,
		sale.ClientID, totalAmount, products, sale.PaymentMethod, idempotencyKey)
	return scanSale(row)
}

// Create creates a new sale
func (r *SaleRepository) Create(sale *domain.Sale) (*domain.Sale, error) {
	return insertSale(context.Background(), r.pool, sale)
}

// CreateTx creates a new sale within a transaction
func (r *SaleRepository) CreateTx(tx interface{}, sale *domain.Sale) (*domain.Sale, error) {
	pgxTx, ok := tx.(pgx.Tx)
	if !ok {
		return nil, errors.New("invalid transaction type")
	}
	return insertSale(context.Background(), pgxTx, sale)
}

// GetByID retrieves a sale by its ID
func (r *SaleRepository) GetByID(id int32) (*domain.Sale, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	sale, err := scanSale(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}

// GetByClient retrieves all sales for a client, newest first
func (r *SaleRepository) GetByClient(clientID int32) ([]*domain.Sale, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+saleColumns+` FROM sales
		WHERE client_id = $1
		ORDER BY created_at DESC, id DESC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []*domain.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

// GetByIdempotencyKey retrieves a sale previously recorded with the given key
func (r *SaleRepository) GetByIdempotencyKey(key string) (*domain.Sale, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE idempotency_key = $1`, key)
	sale, err := scanSale(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}

// Delete permanently removes a sale
func (r *SaleRepository) Delete(id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSaleNotFound
	}
	return nil
}

// SumByMonth returns the total sold in the calendar month containing t
func (r *SaleRepository) SumByMonth(month time.Time) (decimal.Decimal, error) {
	ctx := context.Background()
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var sum pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0) FROM sales
		WHERE created_at >= $1 AND created_at < $2`, start, end).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(sum), nil
}
