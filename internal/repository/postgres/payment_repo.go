package postgres

import (
	"context"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PaymentRepository implements domain.PaymentRepository using PostgreSQL
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentColumns = `id, debt_id, amount, method, invoice_month, paid_at, created_at`

func scanPayment(s scanner) (*domain.Payment, error) {
	var p domain.Payment
	var amount pgtype.Numeric
	var invoiceMonth pgtype.Date
	var paidAt, createdAt pgtype.Timestamptz

	if err := s.Scan(&p.ID, &p.DebtID, &amount, &p.Method, &invoiceMonth, &paidAt, &createdAt); err != nil {
		return nil, err
	}

	p.Amount = pgNumericToDecimal(amount)
	p.InvoiceMonth = invoiceMonth.Time
	p.PaidAt = paidAt.Time
	p.CreatedAt = createdAt.Time
	return &p, nil
}

// Create creates a new payment
func (r *PaymentRepository) Create(payment *domain.Payment) (*domain.Payment, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(payment.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO payments (debt_id, amount, method, invoice_month, paid_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+paymentColumns,
		payment.DebtID,
		amount,
		payment.Method,
		pgtype.Date{Time: payment.InvoiceMonth, Valid: true},
		payment.PaidAt)
	return scanPayment(row)
}

// GetByID retrieves a payment by its ID
func (r *PaymentRepository) GetByID(id int32) (*domain.Payment, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	payment, err := scanPayment(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// GetByDebt retrieves all payments against a debt, oldest first
func (r *PaymentRepository) GetByDebt(debtID int32) ([]*domain.Payment, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE debt_id = $1
		ORDER BY paid_at, id`, debtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

// SumByDebt returns the total paid against a debt
func (r *PaymentRepository) SumByDebt(debtID int32) (decimal.Decimal, error) {
	ctx := context.Background()
	var sum pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM payments WHERE debt_id = $1`, debtID).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(sum), nil
}

// Delete permanently removes a payment
func (r *PaymentRepository) Delete(id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}
