package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/tenant-identity/config"
	"github.com/oksasatya/tenant-identity/internal/infrastructure/messaging"
	"github.com/oksasatya/tenant-identity/internal/notification"
	"github.com/oksasatya/tenant-identity/pkg/helpers"
	"github.com/oksasatya/tenant-identity/pkg/mailer"
	tpl "github.com/oksasatya/tenant-identity/pkg/mailer/templates"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-notifications", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; notification worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQNotificationQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.WithError(err).Fatal("amqp dial")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Fatal("amqp channel")
	}
	defer func() { _ = ch.Close() }()

	if err := helpers.DeclareTopicExchange(ch, cfg.RabbitMQExchange); err != nil {
		logger.WithError(err).Fatal("exchange declare")
	}
	if err := helpers.DeclareBoundQueue(ch, cfg.RabbitMQExchange, cfg.RabbitMQNotificationQueue, "identity.#"); err != nil {
		logger.WithError(err).Fatal("queue declare")
	}

	notifier := notification.NewNotifier(
		mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender),
		tpl.Branding{
			CompanyName:    cfg.CompanyName,
			CompanyAddress: cfg.CompanyAddress,
			AppName:        cfg.CompanyName,
			LogoURL:        cfg.LogoURL,
			SupportURL:     cfg.SupportURL,
			PrivacyURL:     cfg.PrivacyURL,
			LoginURL:       cfg.LoginURL,
		},
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := messaging.NewConsumer(ch, cfg.RabbitMQNotificationQueue, 16, notification.ErrMalformed, logger)
	logger.WithField("queue", cfg.RabbitMQNotificationQueue).Info("notification worker listening")
	if err := consumer.Run(ctx, notifier.Handle); err != nil {
		logger.WithError(err).Error("consumer stopped")
	}
	logger.Info("notification worker exited")
}
