package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/service"
	"github.com/gestorloja/gestor-backend/internal/util"
)

// DebtHandler handles debt-related HTTP requests
type DebtHandler struct {
	debtService    *service.DebtService
	paymentService *service.PaymentService
}

// NewDebtHandler creates a new DebtHandler
func NewDebtHandler(debtService *service.DebtService, paymentService *service.PaymentService) *DebtHandler {
	return &DebtHandler{
		debtService:    debtService,
		paymentService: paymentService,
	}
}

// CreateDebtRequest represents the create debt request body
type CreateDebtRequest struct {
	ClientID        int32   `json:"clientId"`
	Amount          string  `json:"amount"`
	Description     *string `json:"description,omitempty"`
	TransactionDate *string `json:"transactionDate,omitempty"` // RFC 3339
	InvoiceMonth    string  `json:"invoiceMonth"`              // YYYY-MM
	Installments    int     `json:"installments,omitempty"`
}

// UpdateDebtRequest represents the update debt request body
type UpdateDebtRequest struct {
	Amount       string  `json:"amount"`
	Description  *string `json:"description,omitempty"`
	InvoiceMonth string  `json:"invoiceMonth"` // YYYY-MM
}

// CreateDebt handles POST /api/v1/debts
func (h *DebtHandler) CreateDebt(c echo.Context) error {
	var req CreateDebtRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	invoiceMonth, err := util.ParseMonth(req.InvoiceMonth)
	if err != nil {
		return NewValidationError(c, "Invalid invoice month", []ValidationError{
			{Field: "invoiceMonth", Message: "Must be in YYYY-MM format"},
		})
	}

	var transactionDate *time.Time
	if req.TransactionDate != nil {
		parsed, err := time.Parse(time.RFC3339, *req.TransactionDate)
		if err != nil {
			return NewValidationError(c, "Invalid transaction date", []ValidationError{
				{Field: "transactionDate", Message: "Must be an RFC 3339 timestamp"},
			})
		}
		transactionDate = &parsed
	}

	debts, err := h.debtService.CreateDebts(c.Request().Context(), service.CreateDebtInput{
		ClientID:        req.ClientID,
		Amount:          amount,
		Description:     req.Description,
		TransactionDate: transactionDate,
		InvoiceMonth:    invoiceMonth,
		Installments:    req.Installments,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrClientNotFound):
			return NewNotFoundError(c, "Client not found")
		case errors.Is(err, domain.ErrInstallmentCountInvalid),
			errors.Is(err, domain.ErrInstallmentTotalInvalid),
			errors.Is(err, domain.ErrDebtAmountInvalid),
			errors.Is(err, domain.ErrDebtDescriptionTooLong):
			return NewValidationError(c, err.Error(), nil)
		}
		log.Error().Err(err).Int32("client_id", req.ClientID).Msg("Failed to create debt")
		return NewInternalError(c, "Failed to create debt")
	}

	log.Info().Int32("client_id", req.ClientID).Int("count", len(debts)).Msg("Debt recorded")
	return c.JSON(http.StatusCreated, debts)
}

// GetDebts handles GET /api/v1/debts?month=YYYY-MM
func (h *DebtHandler) GetDebts(c echo.Context) error {
	monthParam := c.QueryParam("month")
	if monthParam == "" {
		return NewValidationError(c, "month query parameter is required", nil)
	}

	month, err := util.ParseMonth(monthParam)
	if err != nil {
		return NewValidationError(c, "Invalid month", []ValidationError{
			{Field: "month", Message: "Must be in YYYY-MM format"},
		})
	}

	debts, err := h.debtService.GetDebtsByMonth(month)
	if err != nil {
		log.Error().Err(err).Str("month", monthParam).Msg("Failed to get debts")
		return NewInternalError(c, "Failed to get debts")
	}
	return c.JSON(http.StatusOK, debts)
}

// GetDebt handles GET /api/v1/debts/:id
func (h *DebtHandler) GetDebt(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid debt ID", nil)
	}

	debt, err := h.debtService.GetDebt(id)
	if err != nil {
		if errors.Is(err, domain.ErrDebtNotFound) {
			return NewNotFoundError(c, "Debt not found")
		}
		log.Error().Err(err).Int32("debt_id", id).Msg("Failed to get debt")
		return NewInternalError(c, "Failed to get debt")
	}
	return c.JSON(http.StatusOK, debt)
}

// UpdateDebt handles PUT /api/v1/debts/:id
func (h *DebtHandler) UpdateDebt(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid debt ID", nil)
	}

	var req UpdateDebtRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	invoiceMonth, err := util.ParseMonth(req.InvoiceMonth)
	if err != nil {
		return NewValidationError(c, "Invalid invoice month", []ValidationError{
			{Field: "invoiceMonth", Message: "Must be in YYYY-MM format"},
		})
	}

	debt, err := h.debtService.UpdateDebt(id, service.UpdateDebtInput{
		Amount:       amount,
		Description:  req.Description,
		InvoiceMonth: invoiceMonth,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDebtNotFound):
			return NewNotFoundError(c, "Debt not found")
		case errors.Is(err, domain.ErrDebtAmountInvalid), errors.Is(err, domain.ErrDebtDescriptionTooLong):
			return NewValidationError(c, err.Error(), nil)
		}
		log.Error().Err(err).Int32("debt_id", id).Msg("Failed to update debt")
		return NewInternalError(c, "Failed to update debt")
	}
	return c.JSON(http.StatusOK, debt)
}

// DeleteDebt handles DELETE /api/v1/debts/:id
func (h *DebtHandler) DeleteDebt(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid debt ID", nil)
	}

	if err := h.debtService.DeleteDebt(id); err != nil {
		if errors.Is(err, domain.ErrDebtNotFound) {
			return NewNotFoundError(c, "Debt not found")
		}
		log.Error().Err(err).Int32("debt_id", id).Msg("Failed to delete debt")
		return NewInternalError(c, "Failed to delete debt")
	}

	log.Info().Int32("debt_id", id).Msg("Debt deleted")
	return c.NoContent(http.StatusNoContent)
}

// GetDebtPayments handles GET /api/v1/debts/:id/payments
func (h *DebtHandler) GetDebtPayments(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid debt ID", nil)
	}

	payments, err := h.paymentService.GetPaymentsByDebt(id)
	if err != nil {
		if errors.Is(err, domain.ErrDebtNotFound) {
			return NewNotFoundError(c, "Debt not found")
		}
		log.Error().Err(err).Int32("debt_id", id).Msg("Failed to get payments")
		return NewInternalError(c, "Failed to get payments")
	}
	return c.JSON(http.StatusOK, payments)
}
