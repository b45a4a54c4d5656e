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
)

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest represents the create payment request body
type CreatePaymentRequest struct {
	DebtID int32   `json:"debtId"`
	Amount string  `json:"amount"`
	Method string  `json:"method"`
	PaidAt *string `json:"paidAt,omitempty"` // RFC 3339
}

// CreatePayment handles POST /api/v1/payments
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	var req CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	var paidAt *time.Time
	if req.PaidAt != nil {
		parsed, err := time.Parse(time.RFC3339, *req.PaidAt)
		if err != nil {
			return NewValidationError(c, "Invalid paid at", []ValidationError{
				{Field: "paidAt", Message: "Must be an RFC 3339 timestamp"},
			})
		}
		paidAt = &parsed
	}

	payment, err := h.paymentService.CreatePayment(service.CreatePaymentInput{
		DebtID: req.DebtID,
		Amount: amount,
		Method: req.Method,
		PaidAt: paidAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDebtNotFound):
			return NewNotFoundError(c, "Debt not found")
		case errors.Is(err, domain.ErrPaymentAmountInvalid):
			return NewValidationError(c, err.Error(), nil)
		}
		log.Error().Err(err).Int32("debt_id", req.DebtID).Msg("Failed to create payment")
		return NewInternalError(c, "Failed to create payment")
	}

	log.Info().Int32("debt_id", req.DebtID).Int32("payment_id", payment.ID).Msg("Payment recorded")
	return c.JSON(http.StatusCreated, payment)
}

// DeletePayment handles DELETE /api/v1/payments/:id
func (h *PaymentHandler) DeletePayment(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid payment ID", nil)
	}

	if err := h.paymentService.DeletePayment(id); err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return NewNotFoundError(c, "Payment not found")
		}
		log.Error().Err(err).Int32("payment_id", id).Msg("Failed to delete payment")
		return NewInternalError(c, "Failed to delete payment")
	}

	log.Info().Int32("payment_id", id).Msg("Payment deleted")
	return c.NoContent(http.StatusNoContent)
}
