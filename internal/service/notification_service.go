package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/messaging"
	"github.com/gestorloja/gestor-backend/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// PaymentMethodLabel maps a stored payment method to the label shown in
// messages. Unknown methods pass through unchanged.
func PaymentMethodLabel(method string) string {
	switch method {
	case domain.PaymentMethodCash:
		return "Dinheiro"
	case domain.PaymentMethodPix:
		return "Pix"
	case domain.PaymentMethodCard:
		return "Cartão"
	case domain.PaymentMethodStoreCredit:
		return "Crediário"
	}
	return method
}

// NotificationService composes and dispatches WhatsApp messages to clients.
type NotificationService struct {
	sender     messaging.Sender
	clientRepo domain.ClientRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(sender messaging.Sender, clientRepo domain.ClientRepository) *NotificationService {
	return &NotificationService{
		sender:     sender,
		clientRepo: clientRepo,
	}
}

// ComposeSaleMessage builds the purchase confirmation text: greeting,
// bulleted product list, formatted total and payment method. Installment
// details are appended when the sale was split.
func ComposeSaleMessage(clientName string, products []domain.ProductLine, total decimal.Decimal, methodLabel string, installments int, installmentAmount decimal.Decimal, firstDueDate time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Olá, %s! Obrigado pela sua compra:\n\n", clientName)
	for _, line := range products {
		fmt.Fprintf(&b, "• %s - %s\n", line.Description, util.FormatBRL(line.Value))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", util.FormatBRL(total))
	fmt.Fprintf(&b, "Forma de pagamento: %s\n", methodLabel)

	if installments > 1 {
		fmt.Fprintf(&b, "\nParcelado em %dx de %s\n", installments, util.FormatBRL(installmentAmount))
		fmt.Fprintf(&b, "Primeira parcela: %s\n", util.FormatDateBR(firstDueDate))
	}

	return b.String()
}

// ComposeReminder builds the invoice reminder text. Pure template, no
// branching beyond currency formatting.
func ComposeReminder(clientName string, dueDate time.Time, invoiceAmount, totalDebt decimal.Decimal) string {
	return fmt.Sprintf(
		"Olá, %s! Lembrete da sua fatura: %s com vencimento em %s.\nTotal em aberto: %s.",
		clientName,
		util.FormatBRL(invoiceAmount),
		util.FormatDateBR(dueDate),
		util.FormatBRL(totalDebt),
	)
}

// SendSaleMessageInput mirrors the notification endpoint body
type SendSaleMessageInput struct {
	ClientID          int32
	Products          []domain.ProductLine
	Total             decimal.Decimal
	PaymentMethod     string
	Installments      int
	InstallmentAmount decimal.Decimal
	FirstDueDate      time.Time
}

// SendSaleMessage composes and delivers a purchase confirmation. Unlike the
// post-commit path, failures here surface to the caller.
func (s *NotificationService) SendSaleMessage(ctx context.Context, input SendSaleMessageInput) error {
	client, err := s.clientRepo.GetByID(input.ClientID)
	if err != nil {
		return err
	}
	if !client.CanNotify() {
		return domain.ErrClientPhoneMissing
	}

	text := ComposeSaleMessage(
		client.Name,
		input.Products,
		input.Total,
		PaymentMethodLabel(input.PaymentMethod),
		input.Installments,
		input.InstallmentAmount,
		input.FirstDueDate,
	)

	return s.sender.Send(ctx, client.Phone, text)
}

// SendReminderInput contains input for dispatching an invoice reminder
type SendReminderInput struct {
	ClientID      int32
	DueDate       time.Time
	InvoiceAmount decimal.Decimal
	TotalDebt     decimal.Decimal
}

// SendReminder composes and delivers an invoice reminder, then marks the
// client's last reminded month. The marker update is best-effort.
func (s *NotificationService) SendReminder(ctx context.Context, input SendReminderInput) error {
	client, err := s.clientRepo.GetByID(input.ClientID)
	if err != nil {
		return err
	}
	if !client.CanNotify() {
		return domain.ErrClientPhoneMissing
	}

	text := ComposeReminder(client.Name, input.DueDate, input.InvoiceAmount, input.TotalDebt)

	if err := s.sender.Send(ctx, client.Phone, text); err != nil {
		return err
	}

	month := util.FirstOfMonth(input.DueDate)
	if err := s.clientRepo.SetLastReminderMonth(client.ID, month); err != nil {
		log.Warn().Err(err).Int32("client_id", client.ID).Msg("failed to mark last reminder month")
	}

	return nil
}

// NotifySale implements SaleNotifier. It runs after the sale committed, so
// every failure is logged and swallowed.
func (s *NotificationService) NotifySale(client *domain.Client, sale *domain.Sale, plan *domain.InstallmentPlan) {
	if !client.CanNotify() {
		log.Debug().Int32("client_id", client.ID).Msg("client not reachable on whatsapp, skipping sale notification")
		return
	}

	installments := 0
	installmentAmount := decimal.Zero
	var firstDueDate time.Time
	if plan != nil && plan.Count > 1 {
		installments = plan.Count
		installmentAmount = plan.Installments[0].Amount
		firstDueDate = plan.Installments[0].DueMonth
	}

	text := ComposeSaleMessage(
		client.Name,
		sale.Products,
		sale.TotalAmount,
		PaymentMethodLabel(sale.PaymentMethod),
		installments,
		installmentAmount,
		firstDueDate,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.sender.Send(ctx, client.Phone, text); err != nil {
		log.Warn().Err(err).
			Int32("client_id", client.ID).
			Int32("sale_id", sale.ID).
			Msg("sale notification delivery failed")
	}
}
