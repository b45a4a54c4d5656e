package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/testutil"
)

func TestCreatePayment_CopiesInvoiceMonth(t *testing.T) {
	paymentRepo := testutil.NewMockPaymentRepository()
	debtRepo := testutil.NewMockDebtRepository()
	svc := NewPaymentService(paymentRepo, debtRepo)
	publisher := testutil.NewMockEventPublisher()
	svc.SetEventPublisher(publisher)

	month := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	debt, _ := debtRepo.Create(&domain.Debt{
		ClientID:     1,
		Amount:       decimal.NewFromFloat(100.00),
		InvoiceMonth: month,
	})

	payment, err := svc.CreatePayment(CreatePaymentInput{
		DebtID: debt.ID,
		Amount: decimal.NewFromFloat(40.00),
		Method: domain.PaymentMethodPix,
	})
	require.NoError(t, err)
	assert.Equal(t, month, payment.InvoiceMonth)
	assert.False(t, payment.PaidAt.IsZero())

	events := publisher.Published()
	require.Len(t, events, 2)
	assert.Equal(t, "payment.created", events[0].Type)
	assert.Equal(t, "debt.updated", events[1].Type)
}

func TestCreatePayment_DebtNotFound(t *testing.T) {
	svc := NewPaymentService(testutil.NewMockPaymentRepository(), testutil.NewMockDebtRepository())

	_, err := svc.CreatePayment(CreatePaymentInput{
		DebtID: 99,
		Amount: decimal.NewFromFloat(40.00),
	})
	assert.Equal(t, domain.ErrDebtNotFound, err)
}

func TestCreatePayment_InvalidAmount(t *testing.T) {
	paymentRepo := testutil.NewMockPaymentRepository()
	debtRepo := testutil.NewMockDebtRepository()
	svc := NewPaymentService(paymentRepo, debtRepo)

	debt, _ := debtRepo.Create(&domain.Debt{
		ClientID:     1,
		Amount:       decimal.NewFromFloat(100.00),
		InvoiceMonth: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	_, err := svc.CreatePayment(CreatePaymentInput{
		DebtID: debt.ID,
		Amount: decimal.Zero,
	})
	assert.Equal(t, domain.ErrPaymentAmountInvalid, err)
	assert.Empty(t, paymentRepo.Payments)
}

func TestDeletePayment(t *testing.T) {
	paymentRepo := testutil.NewMockPaymentRepository()
	debtRepo := testutil.NewMockDebtRepository()
	svc := NewPaymentService(paymentRepo, debtRepo)

	debt, _ := debtRepo.Create(&domain.Debt{
		ClientID:     1,
		Amount:       decimal.NewFromFloat(100.00),
		InvoiceMonth: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	payment, _ := paymentRepo.Create(&domain.Payment{
		DebtID: debt.ID,
		Amount: decimal.NewFromFloat(40.00),
	})

	require.NoError(t, svc.DeletePayment(payment.ID))
	assert.Empty(t, paymentRepo.Payments)

	assert.Equal(t, domain.ErrPaymentNotFound, svc.DeletePayment(payment.ID))
}
