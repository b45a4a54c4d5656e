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

func TestGetSummary(t *testing.T) {
	debtRepo := testutil.NewMockDebtRepository()
	saleRepo := testutil.NewMockSaleRepository()
	productRepo := testutil.NewMockProductRepository()
	svc := NewDashboardService(debtRepo, saleRepo, productRepo)

	debtRepo.Create(&domain.Debt{ClientID: 1, Amount: decimal.NewFromFloat(120.00)})
	paid, _ := debtRepo.Create(&domain.Debt{ClientID: 1, Amount: decimal.NewFromFloat(500.00)})
	paid.Status = domain.DebtStatusPaid

	saleRepo.Create(&domain.Sale{ClientID: 1, TotalAmount: decimal.NewFromFloat(80.00), PaymentMethod: domain.PaymentMethodPix})

	productRepo.Create(&domain.Product{Name: "Camiseta", Price: decimal.NewFromFloat(49.90), Quantity: 1, MinQuantity: 2})
	productRepo.Create(&domain.Product{Name: "Bermuda", Price: decimal.NewFromFloat(59.90), Quantity: 10, MinQuantity: 2})

	now := time.Now()
	summary, err := svc.GetSummary(now)
	require.NoError(t, err)

	assert.True(t, summary.OpenDebtTotal.Equal(decimal.NewFromFloat(120.00)))
	assert.True(t, summary.MonthSalesTotal.Equal(decimal.NewFromFloat(80.00)))
	assert.Equal(t, int64(1), summary.LowStockCount)
	assert.Equal(t, now.Format("2006-01"), summary.Month)
}
