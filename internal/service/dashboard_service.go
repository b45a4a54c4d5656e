package service

import (
	"time"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/util"
	"github.com/shopspring/decimal"
)

// DashboardService aggregates the numbers the dashboard landing page shows
type DashboardService struct {
	debtRepo    domain.DebtRepository
	saleRepo    domain.SaleRepository
	productRepo domain.ProductRepository
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(debtRepo domain.DebtRepository, saleRepo domain.SaleRepository, productRepo domain.ProductRepository) *DashboardService {
	return &DashboardService{
		debtRepo:    debtRepo,
		saleRepo:    saleRepo,
		productRepo: productRepo,
	}
}

// Summary holds the dashboard headline numbers for one month
type Summary struct {
	Month           string          `json:"month"`
	OpenDebtTotal   decimal.Decimal `json:"openDebtTotal"`
	MonthSalesTotal decimal.Decimal `json:"monthSalesTotal"`
	LowStockCount   int64           `json:"lowStockCount"`
}

// GetSummary returns the open debt total, the month's sales total and the
// low-stock product count.
func (s *DashboardService) GetSummary(month time.Time) (*Summary, error) {
	month = util.FirstOfMonth(month)

	openDebt, err := s.debtRepo.SumOpenAmount()
	if err != nil {
		return nil, err
	}

	sales, err := s.saleRepo.SumByMonth(month)
	if err != nil {
		return nil, err
	}

	lowStock, err := s.productRepo.CountLowStock()
	if err != nil {
		return nil, err
	}

	return &Summary{
		Month:           util.FormatMonth(month),
		OpenDebtTotal:   openDebt,
		MonthSalesTotal: sales,
		LowStockCount:   lowStock,
	}, nil
}
