// Package notifier собирает потребителя событий регистрации, который рассылает письма.
package notifier

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/slwc/membership/internal/config"
	"github.com/slwc/membership/internal/lib/rabbitmq"
	"github.com/slwc/membership/internal/lib/sl"
	"github.com/slwc/membership/internal/lib/smtp"
	notificationservice "github.com/slwc/membership/internal/services/notification"
	"github.com/slwc/membership/internal/storage/repository"
)

// App потребитель очереди регистраций.
type App struct {
	conn                *amqp.Connection
	ch                  *amqp.Channel
	db                  *repository.Storage
	notificationService *notificationservice.NotificationService
	logger              *slog.Logger
}

// New подключает PostgreSQL и RabbitMQ.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetRegistrationQueues())
	if err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	notificationService := notificationservice.NewNotificationService(transport, db, logger)

	return &App{
		conn:                conn,
		ch:                  ch,
		db:                  db,
		notificationService: notificationService,
		logger:              logger,
	}, nil
}

// Run слушает очередь до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.RegistrationQueue, a.notificationService.HandleRegistration)
	if err != nil {
		a.logger.Error("failed to start registration consumer", sl.Err(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("notifier shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
	return nil
}
