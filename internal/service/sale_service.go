package service

import (
	"context"
	"time"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/util"
	"github.com/gestorloja/gestor-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// SaleNotifier dispatches a post-sale message to the client. Implemented by
// NotificationService; a nil notifier disables dispatch.
type SaleNotifier interface {
	NotifySale(client *domain.Client, sale *domain.Sale, plan *domain.InstallmentPlan)
}

// SaleService records point-of-sale transactions. Store-credit sales also
// produce the debt rows the client will pay off month by month.
type SaleService struct {
	pool           TxBeginner
	saleRepo       domain.SaleRepository
	debtRepo       domain.DebtRepository
	clientRepo     domain.ClientRepository
	notifier       SaleNotifier
	eventPublisher websocket.EventPublisher
}

// NewSaleService creates a new SaleService
func NewSaleService(pool TxBeginner, saleRepo domain.SaleRepository, debtRepo domain.DebtRepository, clientRepo domain.ClientRepository) *SaleService {
	return &SaleService{
		pool:       pool,
		saleRepo:   saleRepo,
		debtRepo:   debtRepo,
		clientRepo: clientRepo,
	}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *SaleService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// SetNotifier sets the post-sale notifier
func (s *SaleService) SetNotifier(notifier SaleNotifier) {
	s.notifier = notifier
}

func (s *SaleService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// CreateSaleInput contains input for recording a sale
type CreateSaleInput struct {
	ClientID      int32
	TotalAmount   decimal.Decimal
	Products      []domain.ProductLine
	PaymentMethod string

	// Installments above 1 is only meaningful for store credit; the total
	// is split into that many monthly debts.
	Installments int

	// FirstDueMonth is the invoice month of the first installment. Defaults
	// to the month after the sale.
	FirstDueMonth *time.Time

	// IdempotencyKey makes retried submissions return the already-recorded
	// sale instead of inserting twice.
	IdempotencyKey *string

	// Notify requests a WhatsApp message to the client after recording.
	Notify bool
}

// CreateSaleResult is the outcome of recording a sale
type CreateSaleResult struct {
	Sale  *domain.Sale   `json:"sale"`
	Debts []*domain.Debt `json:"debts,omitempty"`

	// Duplicate is set when an idempotency key matched a previous
	// submission and nothing new was recorded.
	Duplicate bool `json:"duplicate,omitempty"`
}

// CreateSale records a sale. Non-credit methods write the sale row alone.
// Store credit additionally writes the installment debts, all in one
// transaction with the sale. Notification runs after commit and never fails
// the sale.
func (s *SaleService) CreateSale(ctx context.Context, input CreateSaleInput) (*CreateSaleResult, error) {
	client, err := s.clientRepo.GetByID(input.ClientID)
	if err != nil {
		return nil, err
	}

	if input.IdempotencyKey != nil && *input.IdempotencyKey != "" {
		existing, err := s.saleRepo.GetByIdempotencyKey(*input.IdempotencyKey)
		if err == nil {
			return &CreateSaleResult{Sale: existing, Duplicate: true}, nil
		}
		if err != domain.ErrSaleNotFound {
			return nil, err
		}
	}

	sale := &domain.Sale{
		ClientID:       client.ID,
		TotalAmount:    input.TotalAmount,
		Products:       input.Products,
		PaymentMethod:  input.PaymentMethod,
		IdempotencyKey: trimOptional(input.IdempotencyKey),
	}
	if err := sale.Validate(); err != nil {
		return nil, err
	}

	var (
		result *CreateSaleResult
		plan   *domain.InstallmentPlan
	)

	if domain.IsStoreCredit(input.PaymentMethod) {
		result, plan, err = s.recordCreditSale(ctx, client, sale, input)
	} else {
		result, err = s.recordSaleOnly(sale)
	}
	if err != nil {
		return nil, err
	}

	s.publishEvent(websocket.SaleCreated(result.Sale))
	for _, debt := range result.Debts {
		s.publishEvent(websocket.DebtCreated(debt))
	}

	// Delivery runs detached from the request. Its failure is the
	// notifier's to log; the recorded sale stands either way.
	if input.Notify && s.notifier != nil {
		go s.notifier.NotifySale(client, result.Sale, plan)
	}

	return result, nil
}

func (s *SaleService) recordSaleOnly(sale *domain.Sale) (*CreateSaleResult, error) {
	created, err := s.saleRepo.Create(sale)
	if err != nil {
		return nil, err
	}
	return &CreateSaleResult{Sale: created}, nil
}

func (s *SaleService) recordCreditSale(ctx context.Context, client *domain.Client, sale *domain.Sale, input CreateSaleInput) (*CreateSaleResult, *domain.InstallmentPlan, error) {
	count := input.Installments
	if count <= 0 {
		count = 1
	}

	now := time.Now().UTC()
	firstDue := util.AddMonths(util.FirstOfMonth(now), 1)
	if input.FirstDueMonth != nil {
		firstDue = util.FirstOfMonth(*input.FirstDueMonth)
	}

	plan, err := domain.PlanInstallments(input.TotalAmount, count, firstDue, saleDescription(sale))
	if err != nil {
		return nil, nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	createdSale, err := s.saleRepo.CreateTx(tx, sale)
	if err != nil {
		return nil, nil, err
	}

	debts := make([]*domain.Debt, 0, len(plan.Installments))
	for _, inst := range plan.Installments {
		label := inst.Label
		debt := &domain.Debt{
			ClientID:        client.ID,
			Amount:          inst.Amount,
			Description:     &label,
			TransactionDate: now,
			InvoiceMonth:    inst.DueMonth,
			SaleID:          &createdSale.ID,
		}
		row, err := s.debtRepo.CreateTx(tx, debt)
		if err != nil {
			return nil, nil, err
		}
		debts = append(debts, row)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	return &CreateSaleResult{Sale: createdSale, Debts: debts}, plan, nil
}

// saleDescription labels installment debts after the first sold product.
func saleDescription(sale *domain.Sale) string {
	if len(sale.Products) > 0 {
		return sale.Products[0].Description
	}
	return ""
}

// GetSale returns a sale by ID
func (s *SaleService) GetSale(id int32) (*domain.Sale, error) {
	return s.saleRepo.GetByID(id)
}

// GetSalesByClient returns all sales of a client
func (s *SaleService) GetSalesByClient(clientID int32) ([]*domain.Sale, error) {
	if _, err := s.clientRepo.GetByID(clientID); err != nil {
		return nil, err
	}
	return s.saleRepo.GetByClient(clientID)
}

// DeleteSale removes a sale record
func (s *SaleService) DeleteSale(id int32) error {
	sale, err := s.saleRepo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.saleRepo.Delete(id); err != nil {
		return err
	}

	s.publishEvent(websocket.SaleDeleted(sale))
	return nil
}
