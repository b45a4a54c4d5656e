package service

import (
	"context"
	"time"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ReminderService walks clients with open debts for an invoice month and
// dispatches their reminders. Used by the scheduled reminder command.
type ReminderService struct {
	clientRepo    domain.ClientRepository
	debtRepo      domain.DebtRepository
	notifications *NotificationService
}

// NewReminderService creates a new ReminderService
func NewReminderService(clientRepo domain.ClientRepository, debtRepo domain.DebtRepository, notifications *NotificationService) *ReminderService {
	return &ReminderService{
		clientRepo:    clientRepo,
		debtRepo:      debtRepo,
		notifications: notifications,
	}
}

// ReminderRunResult summarizes a reminder sweep
type ReminderRunResult struct {
	Month   time.Time
	Sent    int
	Skipped int
	Failed  int
	Clients int
}

// RunMonth sends a reminder to every notifiable client holding unpaid debts
// in the given invoice month. Clients already reminded for that month are
// skipped. A single failed delivery does not stop the sweep.
func (s *ReminderService) RunMonth(ctx context.Context, month time.Time) (*ReminderRunResult, error) {
	month = util.FirstOfMonth(month)

	debts, err := s.debtRepo.GetByMonth(month)
	if err != nil {
		return nil, err
	}

	// Unpaid amount per client for this month
	owed := make(map[int32]decimal.Decimal)
	for _, debt := range debts {
		if debt.Status == domain.DebtStatusPaid {
			continue
		}
		owed[debt.ClientID] = owed[debt.ClientID].Add(debt.Amount)
	}

	result := &ReminderRunResult{Month: month, Clients: len(owed)}

	for clientID, invoiceAmount := range owed {
		client, err := s.clientRepo.GetByID(clientID)
		if err != nil {
			log.Warn().Err(err).Int32("client_id", clientID).Msg("reminder sweep: client lookup failed")
			result.Failed++
			continue
		}

		if !client.CanNotify() {
			result.Skipped++
			continue
		}
		if client.LastReminderMonth != nil && client.LastReminderMonth.Equal(month) {
			result.Skipped++
			continue
		}

		totalDebt, err := s.debtRepo.SumOpenAmountByClient(clientID)
		if err != nil {
			log.Warn().Err(err).Int32("client_id", clientID).Msg("reminder sweep: open amount lookup failed")
			result.Failed++
			continue
		}

		err = s.notifications.SendReminder(ctx, SendReminderInput{
			ClientID:      clientID,
			DueDate:       month,
			InvoiceAmount: invoiceAmount,
			TotalDebt:     totalDebt,
		})
		if err != nil {
			log.Warn().Err(err).Int32("client_id", clientID).Msg("reminder sweep: delivery failed")
			result.Failed++
			continue
		}

		result.Sent++
	}

	return result, nil
}
