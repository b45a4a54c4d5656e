package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gestorloja/gestor-backend/internal/config"
	"github.com/gestorloja/gestor-backend/internal/messaging"
	"github.com/gestorloja/gestor-backend/internal/repository/postgres"
	"github.com/gestorloja/gestor-backend/internal/service"
	"github.com/gestorloja/gestor-backend/internal/util"
)

var rootCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send WhatsApp invoice reminders for a billing month",
	Long: `Sends a WhatsApp reminder to every client holding unpaid debts in the
given invoice month. Clients without a WhatsApp number and clients already
reminded for that month are skipped.

Meant to run from cron at the start of each billing cycle.`,
	Example: `  # Remind for the current month
  remind

  # Remind for a specific month
  remind --month 2024-03`,
	RunE: runRemind,
}

func init() {
	rootCmd.Flags().String("month", "", "Invoice month to remind for (format: YYYY-MM, default: current month)")
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runRemind(cmd *cobra.Command, args []string) error {
	monthStr, _ := cmd.Flags().GetString("month")

	month := time.Now().UTC()
	if monthStr != "" {
		parsed, err := util.ParseMonth(monthStr)
		if err != nil {
			return fmt.Errorf("invalid month format, use YYYY-MM: %w", err)
		}
		month = parsed
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if !cfg.WhatsAppEnabled() {
		return fmt.Errorf("WHATSAPP_API_URL is not configured")
	}
	var sender messaging.Sender = messaging.NewWhatsAppClient(cfg.WhatsApp.APIURL, cfg.WhatsApp.APIKey)

	clientRepo := postgres.NewClientRepository(pool)
	debtRepo := postgres.NewDebtRepository(pool)

	notifications := service.NewNotificationService(sender, clientRepo)
	reminders := service.NewReminderService(clientRepo, debtRepo, notifications)

	result, err := reminders.RunMonth(ctx, month)
	if err != nil {
		return fmt.Errorf("reminder sweep: %w", err)
	}

	log.Info().
		Str("month", util.FormatMonth(result.Month)).
		Int("clients", result.Clients).
		Int("sent", result.Sent).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Reminder sweep finished")

	fmt.Printf("Month %s: %d clients with open debts, %d reminded, %d skipped, %d failed\n",
		util.FormatMonth(result.Month), result.Clients, result.Sent, result.Skipped, result.Failed)

	if result.Failed > 0 {
		return fmt.Errorf("%d reminders failed to deliver", result.Failed)
	}
	return nil
}
