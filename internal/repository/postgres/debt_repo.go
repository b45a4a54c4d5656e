package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DebtRepository implements domain.DebtRepository using PostgreSQL
type DebtRepository struct {
	pool *pgxpool.Pool
}

// NewDebtRepository creates a new DebtRepository
func NewDebtRepository(pool *pgxpool.Pool) *DebtRepository {
	return &DebtRepository{pool: pool}
}

// Status is derived from the payment ledger on every read, so a debt row
// never stores a stale status.
const debtColumns = `d.id, d.client_id, d.amount, d.description, d.transaction_date, d.invoice_month, d.sale_id, d.created_at, d.updated_at, COALESCE(p.paid, 0) AS paid`

const debtFrom = ` FROM debts d
	LEFT JOIN (SELECT debt_id, SUM(amount) AS paid FROM payments GROUP BY debt_id) p ON p.debt_id = d.id`

func scanDebt(s scanner) (*domain.Debt, error) {
	var d domain.Debt
	var amount, paid pgtype.Numeric
	var description pgtype.Text
	var transactionDate, invoiceMonth pgtype.Date
	var saleID pgtype.Int4
	var createdAt, updatedAt pgtype.Timestamptz

	if err := s.Scan(&d.ID, &d.ClientID, &amount, &description, &transactionDate, &invoiceMonth, &saleID, &createdAt, &updatedAt, &paid); err != nil {
		return nil, err
	}

	d.Amount = pgNumericToDecimal(amount)
	if description.Valid {
		d.Description = &description.String
	}
	d.TransactionDate = transactionDate.Time
	d.InvoiceMonth = invoiceMonth.Time
	if saleID.Valid {
		d.SaleID = &saleID.Int32
	}
	d.CreatedAt = createdAt.Time
	d.UpdatedAt = updatedAt.Time
	d.Status = domain.DebtStatusFor(d.Amount, pgNumericToDecimal(paid))
	return &d, nil
}

type debtQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertDebt(ctx context.Context, q debtQuerier, debt *domain.Debt) (*domain.Debt, error) {
	amount, err := decimalToPgNumeric(debt.Amount)
	if err != nil {
		return nil, err
	}

	description := pgtype.Text{}
	if debt.Description != nil {
		description.String = *debt.Description
		description.Valid = true
	}

	saleID := pgtype.Int4{}
	if debt.SaleID != nil {
		saleID.Int32 = *debt.SaleID
		saleID.Valid = true
	}

	row := q.QueryRow(ctx, `
		INSERT INTO debts (client_id, amount, description, transaction_date, invoice_month, sale_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, client_id, amount, description, transaction_date, invoice_month, sale_id, created_at, updated_at, 0::numeric AS paid`,
		debt.ClientID,
		amount,
		description,
		pgtype.Date{Time: debt.TransactionDate, Valid: true},
		pgtype.Date{Time: debt.InvoiceMonth, Valid: true},
		saleID)
	return scanDebt(row)
}

// Create creates a new debt
func (r *DebtRepository) Create(debt *domain.Debt) (*domain.Debt, error) {
	return insertDebt(context.Background(), r.pool, debt)
}

// CreateTx creates a new debt within a transaction
func (r *DebtRepository) CreateTx(tx interface{}, debt *domain.Debt) (*domain.Debt, error) {
	pgxTx, ok := tx.(pgx.Tx)
	if !ok {
		return nil, errors.New("invalid transaction type")
	}
	return insertDebt(context.Background(), pgxTx, debt)
}

// GetByID retrieves a debt by its ID
func (r *DebtRepository) GetByID(id int32) (*domain.Debt, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+debtColumns+debtFrom+` WHERE d.id = $1`, id)
	debt, err := scanDebt(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrDebtNotFound
		}
		return nil, err
	}
	return debt, nil
}

// GetByClient retrieves all debts for a client, newest invoice month first
func (r *DebtRepository) GetByClient(clientID int32) ([]*domain.Debt, error) {
	return r.queryDebts(`SELECT `+debtColumns+debtFrom+`
		WHERE d.client_id = $1
		ORDER BY d.invoice_month DESC, d.id DESC`, clientID)
}

// GetByMonth retrieves all debts attributed to an invoice month
func (r *DebtRepository) GetByMonth(month time.Time) ([]*domain.Debt, error) {
	return r.queryDebts(`SELECT `+debtColumns+debtFrom+`
		WHERE d.invoice_month = $1
		ORDER BY d.client_id, d.id`, pgtype.Date{Time: month, Valid: true})
}

// GetOpenByClient retrieves debts not yet fully paid for a client
func (r *DebtRepository) GetOpenByClient(clientID int32) ([]*domain.Debt, error) {
	return r.queryDebts(`SELECT `+debtColumns+debtFrom+`
		WHERE d.client_id = $1 AND COALESCE(p.paid, 0) < d.amount
		ORDER BY d.invoice_month, d.id`, clientID)
}

func (r *DebtRepository) queryDebts(sql string, args ...any) ([]*domain.Debt, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var debts []*domain.Debt
	for rows.Next() {
		debt, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, debt)
	}
	return debts, rows.Err()
}

// Update updates a debt's amount, description and invoice month
func (r *DebtRepository) Update(debt *domain.Debt) (*domain.Debt, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(debt.Amount)
	if err != nil {
		return nil, err
	}

	description := pgtype.Text{}
	if debt.Description != nil {
		description.String = *debt.Description
		description.Valid = true
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE debts
		SET amount = $2, description = $3, invoice_month = $4, updated_at = NOW()
		WHERE id = $1`,
		debt.ID, amount, description, pgtype.Date{Time: debt.InvoiceMonth, Valid: true})
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrDebtNotFound
	}
	return r.GetByID(debt.ID)
}

// Delete permanently removes a debt and its payments
func (r *DebtRepository) Delete(id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM debts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDebtNotFound
	}
	return nil
}

// SumOpenAmount returns the outstanding balance across all clients
func (r *DebtRepository) SumOpenAmount() (decimal.Decimal, error) {
	ctx := context.Background()
	var sum pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(d.amount - COALESCE(p.paid, 0)), 0)`+debtFrom+`
		WHERE COALESCE(p.paid, 0) < d.amount`).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(sum), nil
}

// SumOpenAmountByClient returns the outstanding balance for one client
func (r *DebtRepository) SumOpenAmountByClient(clientID int32) (decimal.Decimal, error) {
	ctx := context.Background()
	var sum pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(d.amount - COALESCE(p.paid, 0)), 0)`+debtFrom+`
		WHERE d.client_id = $1 AND COALESCE(p.paid, 0) < d.amount`, clientID).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(sum), nil
}
