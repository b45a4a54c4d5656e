package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/service"
	"github.com/gestorloja/gestor-backend/internal/util"
)

// SaleHandler handles sale-related HTTP requests
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// SaleProductLine is one sold item in the request body
type SaleProductLine struct {
	Description string `json:"description"`
	Value       string `json:"value"`
}

// CreateSaleRequest represents the create sale request body
type CreateSaleRequest struct {
	ClientID      int32             `json:"clientId"`
	TotalAmount   string            `json:"totalAmount"`
	Products      []SaleProductLine `json:"products"`
	PaymentMethod string            `json:"paymentMethod"`
	Installments  int               `json:"installments,omitempty"`
	FirstDueMonth *string           `json:"firstDueMonth,omitempty"` // YYYY-MM
	Notify        bool              `json:"notify,omitempty"`
}

// CreateSale handles POST /api/v1/sales. An optional Idempotency-Key header
// makes retried submissions safe.
func (h *SaleHandler) CreateSale(c echo.Context) error {
	var req CreateSaleRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	total, err := decimal.NewFromString(req.TotalAmount)
	if err != nil {
		return NewValidationError(c, "Invalid total amount", []ValidationError{
			{Field: "totalAmount", Message: "Must be a valid decimal number"},
		})
	}

	products := make([]domain.ProductLine, 0, len(req.Products))
	for _, line := range req.Products {
		value, err := decimal.NewFromString(line.Value)
		if err != nil {
			return NewValidationError(c, "Invalid product value", []ValidationError{
				{Field: "products", Message: "Each product value must be a valid decimal number"},
			})
		}
		products = append(products, domain.ProductLine{Description: line.Description, Value: value})
	}

	input := service.CreateSaleInput{
		ClientID:      req.ClientID,
		TotalAmount:   total,
		Products:      products,
		PaymentMethod: req.PaymentMethod,
		Installments:  req.Installments,
		Notify:        req.Notify,
	}

	if req.FirstDueMonth != nil {
		firstDue, err := util.ParseMonth(*req.FirstDueMonth)
		if err != nil {
			return NewValidationError(c, "Invalid first due month", []ValidationError{
				{Field: "firstDueMonth", Message: "Must be in YYYY-MM format"},
			})
		}
		input.FirstDueMonth = &firstDue
	}

	if key := c.Request().Header.Get("Idempotency-Key"); key != "" {
		input.IdempotencyKey = &key
	}

	result, err := h.saleService.CreateSale(c.Request().Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrClientNotFound):
			return NewNotFoundError(c, "Client not found")
		case errors.Is(err, domain.ErrSaleAmountInvalid),
			errors.Is(err, domain.ErrSaleTotalMismatch),
			errors.Is(err, domain.ErrSaleLineInvalid),
			errors.Is(err, domain.ErrInstallmentCountInvalid):
			return NewValidationError(c, err.Error(), nil)
		}
		log.Error().Err(err).Int32("client_id", req.ClientID).Msg("Failed to create sale")
		return NewInternalError(c, "Failed to create sale")
	}

	if result.Duplicate {
		return c.JSON(http.StatusOK, result)
	}

	log.Info().
		Int32("client_id", req.ClientID).
		Int32("sale_id", result.Sale.ID).
		Str("payment_method", req.PaymentMethod).
		Int("debts", len(result.Debts)).
		Msg("Sale recorded")
	return c.JSON(http.StatusCreated, result)
}

// GetSale handles GET /api/v1/sales/:id
func (h *SaleHandler) GetSale(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid sale ID", nil)
	}

	sale, err := h.saleService.GetSale(id)
	if err != nil {
		if errors.Is(err, domain.ErrSaleNotFound) {
			return NewNotFoundError(c, "Sale not found")
		}
		log.Error().Err(err).Int32("sale_id", id).Msg("Failed to get sale")
		return NewInternalError(c, "Failed to get sale")
	}
	return c.JSON(http.StatusOK, sale)
}

// DeleteSale handles DELETE /api/v1/sales/:id
func (h *SaleHandler) DeleteSale(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid sale ID", nil)
	}

	if err := h.saleService.DeleteSale(id); err != nil {
		if errors.Is(err, domain.ErrSaleNotFound) {
			return NewNotFoundError(c, "Sale not found")
		}
		log.Error().Err(err).Int32("sale_id", id).Msg("Failed to delete sale")
		return NewInternalError(c, "Failed to delete sale")
	}

	log.Info().Int32("sale_id", id).Msg("Sale deleted")
	return c.NoContent(http.StatusNoContent)
}
