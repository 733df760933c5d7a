package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliyamo/club-events/internal/config"
	"github.com/iliyamo/club-events/internal/queue"
)

// The notifier worker drains registration.confirmed and hands each
// message to the mailer.
func main() {
	cfg := config.MustLoad()
	logger := cfg.NewLogger()

	if cfg.RabbitMQURL == "" {
		logger.Error("RABBITMQ_URL is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{
		URL:    cfg.RabbitMQURL,
		Mailer: queue.LogMailer{Logger: logger},
		Logger: logger,
	}
	logger.Info("notifier started", "queue", queue.RegistrationQueue)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("notifier stopped", "err", err)
		os.Exit(1)
	}
	logger.Info("notifier stopped")
}
