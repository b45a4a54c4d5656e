package service

import (
	"context"
	"strings"
	"time"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// DebtService records and manages client debts, including installment series.
type DebtService struct {
	pool           TxBeginner
	debtRepo       domain.DebtRepository
	clientRepo     domain.ClientRepository
	paymentRepo    domain.PaymentRepository
	eventPublisher websocket.EventPublisher
}

// NewDebtService creates a new DebtService
func NewDebtService(pool TxBeginner, debtRepo domain.DebtRepository, clientRepo domain.ClientRepository, paymentRepo domain.PaymentRepository) *DebtService {
	return &DebtService{
		pool:        pool,
		debtRepo:    debtRepo,
		clientRepo:  clientRepo,
		paymentRepo: paymentRepo,
	}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *DebtService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *DebtService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// CreateDebtInput contains input for recording a debt
type CreateDebtInput struct {
	ClientID        int32
	Amount          decimal.Decimal
	Description     *string
	TransactionDate *time.Time
	InvoiceMonth    time.Time

	// Installments above 1 splits Amount into an equal monthly series
	// starting at InvoiceMonth.
	Installments int
}

// CreateDebts records a debt, or an installment series when Installments > 1.
// Series rows are inserted in one transaction so a failure leaves nothing
// behind.
func (s *DebtService) CreateDebts(ctx context.Context, input CreateDebtInput) ([]*domain.Debt, error) {
	client, err := s.clientRepo.GetByID(input.ClientID)
	if err != nil {
		return nil, err
	}

	transactionDate := time.Now().UTC()
	if input.TransactionDate != nil {
		transactionDate = *input.TransactionDate
	}

	count := input.Installments
	if count <= 0 {
		count = 1
	}

	description := ""
	if input.Description != nil {
		description = strings.TrimSpace(*input.Description)
	}

	if count == 1 {
		debt := &domain.Debt{
			ClientID:        client.ID,
			Amount:          input.Amount,
			Description:     trimOptional(input.Description),
			TransactionDate: transactionDate,
			InvoiceMonth:    input.InvoiceMonth,
		}
		if err := debt.Validate(); err != nil {
			return nil, err
		}

		created, err := s.debtRepo.Create(debt)
		if err != nil {
			return nil, err
		}

		s.publishEvent(websocket.DebtCreated(created))
		return []*domain.Debt{created}, nil
	}

	plan, err := domain.PlanInstallments(input.Amount, count, input.InvoiceMonth, description)
	if err != nil {
		return nil, err
	}

	created, err := s.recordPlan(ctx, client.ID, nil, transactionDate, plan)
	if err != nil {
		return nil, err
	}

	for _, debt := range created {
		s.publishEvent(websocket.DebtCreated(debt))
	}
	return created, nil
}

// recordPlan inserts every installment of a plan in one transaction.
func (s *DebtService) recordPlan(ctx context.Context, clientID int32, saleID *int32, transactionDate time.Time, plan *domain.InstallmentPlan) ([]*domain.Debt, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created := make([]*domain.Debt, 0, len(plan.Installments))
	for _, inst := range plan.Installments {
		label := inst.Label
		debt := &domain.Debt{
			ClientID:        clientID,
			Amount:          inst.Amount,
			Description:     &label,
			TransactionDate: transactionDate,
			InvoiceMonth:    inst.DueMonth,
			SaleID:          saleID,
		}
		if err := debt.Validate(); err != nil {
			return nil, err
		}

		row, err := s.debtRepo.CreateTx(tx, debt)
		if err != nil {
			return nil, err
		}
		created = append(created, row)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// GetDebt returns a debt by ID
func (s *DebtService) GetDebt(id int32) (*domain.Debt, error) {
	return s.debtRepo.GetByID(id)
}

// GetDebtsByClient returns all debts of a client
func (s *DebtService) GetDebtsByClient(clientID int32) ([]*domain.Debt, error) {
	if _, err := s.clientRepo.GetByID(clientID); err != nil {
		return nil, err
	}
	return s.debtRepo.GetByClient(clientID)
}

// GetDebtsByMonth returns all debts attributed to an invoice month
func (s *DebtService) GetDebtsByMonth(month time.Time) ([]*domain.Debt, error) {
	return s.debtRepo.GetByMonth(month)
}

// UpdateDebtInput contains input for updating a debt
type UpdateDebtInput struct {
	Amount       decimal.Decimal
	Description  *string
	InvoiceMonth time.Time
}

// UpdateDebt updates a debt's amount, description and invoice month
func (s *DebtService) UpdateDebt(id int32, input UpdateDebtInput) (*domain.Debt, error) {
	debt, err := s.debtRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	debt.Amount = input.Amount
	debt.Description = trimOptional(input.Description)
	debt.InvoiceMonth = input.InvoiceMonth

	if err := debt.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.debtRepo.Update(debt)
	if err != nil {
		return nil, err
	}

	s.publishEvent(websocket.DebtUpdated(updated))
	return updated, nil
}

// DeleteDebt removes a debt and its payments
func (s *DebtService) DeleteDebt(id int32) error {
	debt, err := s.debtRepo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.debtRepo.Delete(id); err != nil {
		return err
	}

	s.publishEvent(websocket.DebtDeleted(debt))
	return nil
}
