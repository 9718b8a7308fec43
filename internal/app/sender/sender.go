// Package sender assembles the notification worker consuming password-reset
// messages from the broker and delivering them over SMTP.
package sender

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/muhammad-anas65/TaskCash/internal/config"
	"github.com/muhammad-anas65/TaskCash/internal/lib/smtp"
	"github.com/muhammad-anas65/TaskCash/internal/rabbitmq"
	senderservice "github.com/muhammad-anas65/TaskCash/internal/services/sender"
)

// App is the assembled notification worker.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	resetQueue    string
	logger        *slog.Logger
}

// New connects the broker, declares the queue topology and wires the
// SMTP transport.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.AddressRabbit, 5, 2*time.Second)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, cfg.ResetQueue)
	if err != nil {
		conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(transport, cfg.ResetURL, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		resetQueue:    cfg.ResetQueue,
		logger:        logger,
	}, nil
}

// Run consumes reset messages until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, a.resetQueue, a.senderService.SendPasswordReset)
	if err != nil {
		a.logger.Error("failed to start reset queue consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
