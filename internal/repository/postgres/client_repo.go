package postgres

import (
	"context"
	"time"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ClientRepository implements domain.ClientRepository using PostgreSQL
type ClientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

const clientColumns = `id, name, phone, whatsapp, address, last_reminder_month, created_at, updated_at, deleted_at`

// scanner is satisfied by both pgx.Row and pgx.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanClient(s scanner) (*domain.Client, error) {
	var c domain.Client
	var address pgtype.Text
	var lastReminder pgtype.Date
	var createdAt, updatedAt, deletedAt pgtype.Timestamptz

	if err := s.Scan(&c.ID, &c.Name, &c.Phone, &c.WhatsApp, &address, &lastReminder, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	if address.Valid {
		c.Address = &address.String
	}
	if lastReminder.Valid {
		c.LastReminderMonth = &lastReminder.Time
	}
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	if deletedAt.Valid {
		c.DeletedAt = &deletedAt.Time
	}
	return &c, nil
}

// Create creates a new client
func (r *ClientRepository) Create(client *domain.Client) (*domain.Client, error) {
	ctx := context.Background()

	address := pgtype.Text{}
	if client.Address != nil {
		address.String = *client.Address
		address.Valid = true
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO clients (name, phone, whatsapp, address)
		VALUES ($1, $2, $3, $4)
		RETURNING `+clientColumns,
		client.Name, client.Phone, client.WhatsApp, address)
	return scanClient(row)
}

// GetByID retrieves a client by its ID
func (r *ClientRepository) GetByID(id int32) (*domain.Client, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE id = $1 AND deleted_at IS NULL`, id)
	client, err := scanClient(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	return client, nil
}

// GetAll retrieves all clients ordered by name
func (r *ClientRepository) GetAll() ([]*domain.Client, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE deleted_at IS NULL
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

// Update updates a client's editable fields
func (r *ClientRepository) Update(client *domain.Client) (*domain.Client, error) {
	ctx := context.Background()

	address := pgtype.Text{}
	if client.Address != nil {
		address.String = *client.Address
		address.Valid = true
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE clients
		SET name = $2, phone = $3, whatsapp = $4, address = $5, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+clientColumns,
		client.ID, client.Name, client.Phone, client.WhatsApp, address)
	updated, err := scanClient(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	return updated, nil
}

// SoftDelete marks a client as deleted
func (r *ClientRepository) SoftDelete(id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE clients SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

// SetLastReminderMonth records the invoice month of the latest reminder sent
func (r *ClientRepository) SetLastReminderMonth(id int32, month time.Time) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE clients SET last_reminder_month = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		id, pgtype.Date{Time: month, Valid: true})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

// Helper functions shared by the repositories in this package

func decimalToPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var num pgtype.Numeric
	if err := num.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return num, nil
}

func pgNumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	if n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
