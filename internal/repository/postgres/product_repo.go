package postgres

import (
	"context"
	"errors"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductRepository implements domain.ProductRepository using PostgreSQL
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, name, price, cost, quantity, min_quantity, image_url, created_at, updated_at, deleted_at`

func scanProduct(s scanner) (*domain.Product, error) {
	var p domain.Product
	var price, cost pgtype.Numeric
	var imageURL pgtype.Text
	var createdAt, updatedAt, deletedAt pgtype.Timestamptz

	if err := s.Scan(&p.ID, &p.Name, &price, &cost, &p.Quantity, &p.MinQuantity, &imageURL, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	p.Price = pgNumericToDecimal(price)
	p.Cost = pgNumericToDecimal(cost)
	if imageURL.Valid {
		p.ImageURL = &imageURL.String
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	if deletedAt.Valid {
		p.DeletedAt = &deletedAt.Time
	}
	return &p, nil
}

// Create creates a new product
func (r *ProductRepository) Create(product *domain.Product) (*domain.Product, error) {
	ctx := context.Background()

	price, err := decimalToPgNumeric(product.Price)
	if err != nil {
		return nil, err
	}
	cost, err := decimalToPgNumeric(product.Cost)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, price, cost, quantity, min_quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+productColumns,
		product.Name, price, cost, product.Quantity, product.MinQuantity)
	return scanProduct(row)
}

// GetByID retrieves a product by its ID
func (r *ProductRepository) GetByID(id int32) (*domain.Product, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE id = $1 AND deleted_at IS NULL`, id)
	product, err := scanProduct(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// GetAll retrieves all products ordered by name
func (r *ProductRepository) GetAll() ([]*domain.Product, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE deleted_at IS NULL
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// Update updates a product's editable fields
func (r *ProductRepository) Update(product *domain.Product) (*domain.Product, error) {
	ctx := context.Background()

	price, err := decimalToPgNumeric(product.Price)
	if err != nil {
		return nil, err
	}
	cost, err := decimalToPgNumeric(product.Cost)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET name = $2, price = $3, cost = $4, min_quantity = $5, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+productColumns,
		product.ID, product.Name, price, cost, product.MinQuantity)
	updated, err := scanProduct(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return updated, nil
}

// SoftDelete marks a product as deleted
func (r *ProductRepository) SoftDelete(id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// SetImageURL stores or clears a product's image URL
func (r *ProductRepository) SetImageURL(id int32, imageURL *string) error {
	ctx := context.Background()

	url := pgtype.Text{}
	if imageURL != nil {
		url.String = *imageURL
		url.Valid = true
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET image_url = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// AdjustQuantityTx applies a signed quantity delta within a transaction.
// The quantity check and update happen in one statement so concurrent
// movements cannot drive stock negative.
func (r *ProductRepository) AdjustQuantityTx(tx interface{}, id int32, delta int32) (*domain.Product, error) {
	pgxTx, ok := tx.(pgx.Tx)
	if !ok {
		return nil, errors.New("invalid transaction type")
	}

	ctx := context.Background()
	row := pgxTx.QueryRow(ctx, `
		UPDATE products
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND quantity + $2 >= 0
		RETURNING `+productColumns, id, delta)
	product, err := scanProduct(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Either the product is gone or the delta would go negative;
			// let the caller disambiguate with a plain read.
			return nil, domain.ErrStockInsufficient
		}
		return nil, err
	}
	return product, nil
}

// CountLowStock counts products at or below their reorder threshold
func (r *ProductRepository) CountLowStock() (int64, error) {
	ctx := context.Background()
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM products
		WHERE deleted_at IS NULL AND quantity <= min_quantity`).Scan(&count)
	return count, err
}
