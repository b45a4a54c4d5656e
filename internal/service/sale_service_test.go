package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/testutil"
)

// recordingNotifier captures NotifySale calls so tests can wait on the
// goroutine the recorder fires.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []*domain.InstallmentPlan
	done  chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{done: make(chan struct{}, 1)}
}

func (n *recordingNotifier) NotifySale(client *domain.Client, sale *domain.Sale, plan *domain.InstallmentPlan) {
	n.mu.Lock()
	n.calls = append(n.calls, plan)
	n.mu.Unlock()
	n.done <- struct{}{}
}

func (n *recordingNotifier) wait(t *testing.T) *domain.InstallmentPlan {
	t.Helper()
	select {
	case <-n.done:
	case <-time.After(time.Second):
		t.Fatal("notifier was not invoked")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[len(n.calls)-1]
}

func saleFixture() (*SaleService, *testutil.MockClientRepository, *testutil.MockSaleRepository, *testutil.MockDebtRepository, *testutil.MockTxBeginner) {
	clientRepo := testutil.NewMockClientRepository()
	saleRepo := testutil.NewMockSaleRepository()
	debtRepo := testutil.NewMockDebtRepository()
	pool := testutil.NewMockTxBeginner()
	svc := NewSaleService(pool, saleRepo, debtRepo, clientRepo)
	return svc, clientRepo, saleRepo, debtRepo, pool
}

func TestCreateSale_CashWritesSaleOnly(t *testing.T) {
	svc, clientRepo, saleRepo, debtRepo, pool := saleFixture()
	publisher := testutil.NewMockEventPublisher()
	svc.SetEventPublisher(publisher)

	client := newTestClient(clientRepo)

	result, err := svc.CreateSale(context.Background(), CreateSaleInput{
		ClientID:    client.ID,
		TotalAmount: decimal.NewFromFloat(80.00),
		Products: []domain.ProductLine{
			{Description: "Camiseta", Value: decimal.NewFromFloat(80.00)},
		},
		PaymentMethod: domain.PaymentMethodCash,
	})
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.Empty(t, result.Debts)
	assert.Len(t, saleRepo.Sales, 1)
	assert.Empty(t, debtRepo.Debts)
	assert.Empty(t, pool.Txs)

	events := publisher.Published()
	require.Len(t, events, 1)
	assert.Equal(t, "sale.created", events[0].Type)
}

func TestCreateSale_StoreCreditWritesSaleAndDebts(t *testing.T) {
	svc, clientRepo, saleRepo, debtRepo, pool := saleFixture()

	client := newTestClient(clientRepo)
	firstDue := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	result, err := svc.CreateSale(context.Background(), CreateSaleInput{
		ClientID:    client.ID,
		TotalAmount: decimal.NewFromFloat(300.00),
		Products: []domain.ProductLine{
			{Description: "Geladeira", Value: decimal.NewFromFloat(300.00)},
		},
		PaymentMethod: domain.PaymentMethodStoreCredit,
		Installments:  3,
		FirstDueMonth: &firstDue,
	})
	require.NoError(t, err)
	require.Len(t, result.Debts, 3)
	assert.Len(t, saleRepo.Sales, 1)
	assert.Len(t, debtRepo.Debts, 3)

	for i, debt := range result.Debts {
		assert.True(t, debt.Amount.Equal(decimal.NewFromFloat(100.00)))
		assert.Equal(t, time.Date(2024, time.Month(5+i), 1, 0, 0, 0, 0, time.UTC), debt.InvoiceMonth)
		require.NotNil(t, debt.SaleID)
		assert.Equal(t, result.Sale.ID, *debt.SaleID)
		assert.Contains(t, *debt.Description, "Geladeira")
	}

	require.Len(t, pool.Txs, 1)
	assert.True(t, pool.Txs[0].Committed)
}

func TestCreateSale_StoreCreditAbortsWhenDebtInsertFails(t *testing.T) {
	svc, clientRepo, _, debtRepo, pool := saleFixture()
	debtRepo.FailOnCreateTx = 2

	client := newTestClient(clientRepo)

	_, err := svc.CreateSale(context.Background(), CreateSaleInput{
		ClientID:      client.ID,
		TotalAmount:   decimal.NewFromFloat(300.00),
		PaymentMethod: domain.PaymentMethodStoreCredit,
		Installments:  3,
	})
	assert.Error(t, err)
	require.Len(t, pool.Txs, 1)
	assert.True(t, pool.Txs[0].RolledBack)
}

func TestCreateSale_TotalMismatch(t *testing.T) {
	svc, clientRepo, _, _, _ := saleFixture()

	client := newTestClient(clientRepo)

	_, err := svc.CreateSale(context.Background(), CreateSaleInput{
		ClientID:    client.ID,
		TotalAmount: decimal.NewFromFloat(100.00),
		Products: []domain.ProductLine{
			{Description: "Camiseta", Value: decimal.NewFromFloat(80.00)},
		},
		PaymentMethod: domain.PaymentMethodCash,
	})
	assert.Equal(t, domain.ErrSaleTotalMismatch, err)
}

func TestCreateSale_IdempotencyKeyReturnsExisting(t *testing.T) {
	svc, clientRepo, saleRepo, _, _ := saleFixture()

	client := newTestClient(clientRepo)
	key := "checkout-abc123"

	input := CreateSaleInput{
		ClientID:       client.ID,
		TotalAmount:    decimal.NewFromFloat(50.00),
		PaymentMethod:  domain.PaymentMethodPix,
		IdempotencyKey: &key,
	}

	first, err := svc.CreateSale(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := svc.CreateSale(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.Sale.ID, second.Sale.ID)
	assert.Len(t, saleRepo.Sales, 1)
}

func TestCreateSale_NotifiesAfterCommit(t *testing.T) {
	svc, clientRepo, _, _, _ := saleFixture()
	notifier := newRecordingNotifier()
	svc.SetNotifier(notifier)

	client := newTestClient(clientRepo)

	_, err := svc.CreateSale(context.Background(), CreateSaleInput{
		ClientID:    client.ID,
		TotalAmount: decimal.NewFromFloat(80.00),
		Products: []domain.ProductLine{
			{Description: "Camiseta", Value: decimal.NewFromFloat(80.00)},
		},
		PaymentMethod: domain.PaymentMethodCash,
		Notify:        true,
	})
	require.NoError(t, err)

	// Cash sale carries no installment plan
	plan := notifier.wait(t)
	assert.Nil(t, plan)
}

func TestCreateSale_StoreCreditNotifierReceivesPlan(t *testing.T) {
	svc, clientRepo, _, _, _ := saleFixture()
	notifier := newRecordingNotifier()
	svc.SetNotifier(notifier)

	client := newTestClient(clientRepo)

	_, err := svc.CreateSale(context.Background(), CreateSaleInput{
		ClientID:      client.ID,
		TotalAmount:   decimal.NewFromFloat(300.00),
		PaymentMethod: domain.PaymentMethodStoreCredit,
		Installments:  3,
		Notify:        true,
	})
	require.NoError(t, err)

	plan := notifier.wait(t)
	require.NotNil(t, plan)
	assert.Equal(t, 3, plan.Count)
	assert.True(t, plan.Installments[0].Amount.Equal(decimal.NewFromFloat(100.00)))
}

func TestDeleteSale(t *testing.T) {
	svc, clientRepo, saleRepo, _, _ := saleFixture()

	client := newTestClient(clientRepo)
	sale, _ := saleRepo.Create(&domain.Sale{
		ClientID:      client.ID,
		TotalAmount:   decimal.NewFromFloat(10.00),
		PaymentMethod: domain.PaymentMethodPix,
	})

	require.NoError(t, svc.DeleteSale(sale.ID))
	assert.Empty(t, saleRepo.Sales)

	assert.Equal(t, domain.ErrSaleNotFound, svc.DeleteSale(sale.ID))
}
