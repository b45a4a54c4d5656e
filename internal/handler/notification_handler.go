package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/service"
)

// NotificationHandler exposes the two message-dispatch endpoints. These
// follow the storefront's legacy contract: HTTP 200 {"success": true} on
// delivery, HTTP 400 {"error": message} on any failure. They do not use
// problem details.
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// SaleNotificationRequest represents the sale notification request body
type SaleNotificationRequest struct {
	ClientID          int32             `json:"clientId"`
	Products          []SaleProductLine `json:"products"`
	Total             string            `json:"total"`
	PaymentMethod     string            `json:"paymentMethod"`
	Installments      int               `json:"installments,omitempty"`
	InstallmentAmount string            `json:"installmentAmount,omitempty"`
	FirstDueDate      *string           `json:"firstDueDate,omitempty"` // YYYY-MM-DD
}

// ReminderRequest represents the reminder request body
type ReminderRequest struct {
	ClientID      int32  `json:"clientId"`
	DueDate       string `json:"dueDate"` // YYYY-MM-DD
	InvoiceAmount string `json:"invoiceAmount"`
	TotalDebt     string `json:"totalDebt"`
}

func notifySuccess(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func notifyError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

// SendSaleNotification handles POST /api/v1/notifications/sale
func (h *NotificationHandler) SendSaleNotification(c echo.Context) error {
	var req SaleNotificationRequest
	if err := c.Bind(&req); err != nil {
		return notifyError(c, "invalid request body")
	}

	total, err := decimal.NewFromString(req.Total)
	if err != nil {
		return notifyError(c, "invalid total")
	}

	products := make([]domain.ProductLine, 0, len(req.Products))
	for _, line := range req.Products {
		value, err := decimal.NewFromString(line.Value)
		if err != nil {
			return notifyError(c, "invalid product value")
		}
		products = append(products, domain.ProductLine{Description: line.Description, Value: value})
	}

	input := service.SendSaleMessageInput{
		ClientID:      req.ClientID,
		Products:      products,
		Total:         total,
		PaymentMethod: req.PaymentMethod,
		Installments:  req.Installments,
	}

	if req.Installments > 1 {
		if req.InstallmentAmount != "" {
			amount, err := decimal.NewFromString(req.InstallmentAmount)
			if err != nil {
				return notifyError(c, "invalid installment amount")
			}
			input.InstallmentAmount = amount
		}
		if req.FirstDueDate != nil {
			firstDue, err := time.Parse("2006-01-02", *req.FirstDueDate)
			if err != nil {
				return notifyError(c, "invalid first due date")
			}
			input.FirstDueDate = firstDue
		}
	}

	if err := h.notificationService.SendSaleMessage(c.Request().Context(), input); err != nil {
		log.Warn().Err(err).Int32("client_id", req.ClientID).Msg("Sale notification failed")
		return notifyError(c, err.Error())
	}

	return notifySuccess(c)
}

// SendReminder handles POST /api/v1/notifications/reminder
func (h *NotificationHandler) SendReminder(c echo.Context) error {
	var req ReminderRequest
	if err := c.Bind(&req); err != nil {
		return notifyError(c, "invalid request body")
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return notifyError(c, "invalid due date")
	}

	invoiceAmount, err := decimal.NewFromString(req.InvoiceAmount)
	if err != nil {
		return notifyError(c, "invalid invoice amount")
	}

	totalDebt, err := decimal.NewFromString(req.TotalDebt)
	if err != nil {
		return notifyError(c, "invalid total debt")
	}

	err = h.notificationService.SendReminder(c.Request().Context(), service.SendReminderInput{
		ClientID:      req.ClientID,
		DueDate:       dueDate,
		InvoiceAmount: invoiceAmount,
		TotalDebt:     totalDebt,
	})
	if err != nil {
		log.Warn().Err(err).Int32("client_id", req.ClientID).Msg("Reminder failed")
		return notifyError(c, err.Error())
	}

	return notifySuccess(c)
}
