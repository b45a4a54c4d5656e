package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the schema when it does not exist yet. Statements are
// idempotent so the server can run this on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS clients (
			id SERIAL PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			phone VARCHAR(30) NOT NULL DEFAULT '',
			whatsapp BOOLEAN NOT NULL DEFAULT FALSE,
			address TEXT,
			last_reminder_month DATE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS sales (
			id SERIAL PRIMARY KEY,
			client_id INT NOT NULL REFERENCES clients(id),
			total_amount NUMERIC(12, 2) NOT NULL,
			products JSONB NOT NULL DEFAULT '[]',
			payment_method VARCHAR(50) NOT NULL,
			idempotency_key VARCHAR(100),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sales_idempotency_key
			ON sales(idempotency_key) WHERE idempotency_key IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_sales_client_id ON sales(client_id)`,
		`CREATE TABLE IF NOT EXISTS debts (
			id SERIAL PRIMARY KEY,
			client_id INT NOT NULL REFERENCES clients(id),
			amount NUMERIC(12, 2) NOT NULL CHECK (amount > 0),
			description VARCHAR(500),
			transaction_date DATE NOT NULL,
			invoice_month DATE NOT NULL,
			sale_id INT REFERENCES sales(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_debts_client_id ON debts(client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_debts_invoice_month ON debts(invoice_month)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id SERIAL PRIMARY KEY,
			debt_id INT NOT NULL REFERENCES debts(id) ON DELETE CASCADE,
			amount NUMERIC(12, 2) NOT NULL CHECK (amount > 0),
			method VARCHAR(50) NOT NULL,
			invoice_month DATE NOT NULL,
			paid_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_debt_id ON payments(debt_id)`,
		`CREATE TABLE IF NOT EXISTS products (
			id SERIAL PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			price NUMERIC(12, 2) NOT NULL DEFAULT 0,
			cost NUMERIC(12, 2) NOT NULL DEFAULT 0,
			quantity INT NOT NULL DEFAULT 0,
			min_quantity INT NOT NULL DEFAULT 0,
			image_url TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS stock_movements (
			id SERIAL PRIMARY KEY,
			product_id INT NOT NULL REFERENCES products(id),
			type VARCHAR(10) NOT NULL CHECK (type IN ('entrada', 'saida')),
			quantity INT NOT NULL CHECK (quantity > 0),
			note TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_movements_product_id ON stock_movements(product_id)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
