package service

import (
	"time"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// PaymentService records payments against debts
type PaymentService struct {
	paymentRepo    domain.PaymentRepository
	debtRepo       domain.DebtRepository
	eventPublisher websocket.EventPublisher
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(paymentRepo domain.PaymentRepository, debtRepo domain.DebtRepository) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		debtRepo:    debtRepo,
	}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *PaymentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *PaymentService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// CreatePaymentInput contains input for recording a payment
type CreatePaymentInput struct {
	DebtID int32
	Amount decimal.Decimal
	Method string
	PaidAt *time.Time
}

// CreatePayment records a payment against a debt. The debt's invoice month
// is copied onto the payment for billing views.
func (s *PaymentService) CreatePayment(input CreatePaymentInput) (*domain.Payment, error) {
	debt, err := s.debtRepo.GetByID(input.DebtID)
	if err != nil {
		return nil, err
	}

	paidAt := time.Now().UTC()
	if input.PaidAt != nil {
		paidAt = *input.PaidAt
	}

	payment := &domain.Payment{
		DebtID:       debt.ID,
		Amount:       input.Amount,
		Method:       input.Method,
		InvoiceMonth: debt.InvoiceMonth,
		PaidAt:       paidAt,
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	created, err := s.paymentRepo.Create(payment)
	if err != nil {
		return nil, err
	}

	s.publishEvent(websocket.PaymentCreated(created))

	// The debt's status is derived from its payments, so the row the
	// dashboard holds is stale now.
	if updated, err := s.debtRepo.GetByID(debt.ID); err == nil {
		s.publishEvent(websocket.DebtUpdated(updated))
	}

	return created, nil
}

// GetPaymentsByDebt returns all payments recorded against a debt
func (s *PaymentService) GetPaymentsByDebt(debtID int32) ([]*domain.Payment, error) {
	if _, err := s.debtRepo.GetByID(debtID); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetByDebt(debtID)
}

// DeletePayment removes a payment, reopening the debt balance it covered
func (s *PaymentService) DeletePayment(id int32) error {
	payment, err := s.paymentRepo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.paymentRepo.Delete(id); err != nil {
		return err
	}

	s.publishEvent(websocket.PaymentDeleted(payment))

	if updated, err := s.debtRepo.GetByID(payment.DebtID); err == nil {
		s.publishEvent(websocket.DebtUpdated(updated))
	}

	return nil
}
