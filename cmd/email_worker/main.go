package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/egarage-auth/config"
	"github.com/oksasatya/egarage-auth/pkg/helpers"
	"github.com/oksasatya/egarage-auth/pkg/mailer"
	mailtpl "github.com/oksasatya/egarage-auth/pkg/mailer/templates"
)

const consumerTag = "egarage-email-worker"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg, "email-worker")

	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sender, closeSender, err := mailer.NewSender(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("mail sender: %v", err)
	}
	defer closeSender()

	// prefetch for fair dispatch
	conn, ch, err := helpers.DialRabbit(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, 16)
	if err != nil {
		log.Fatalf("amqp: %v", err)
	}
	defer func() { _ = conn.Close() }()
	defer func() { _ = ch.Close() }()
	// separate confirm-mode channel for retries
	pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		log.Fatalf("amqp publisher: %v", err)
	}
	defer pub.Close()

	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, consumerTag, false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	worker := &mailer.Worker{
		Sender:      sender,
		Resolver:    mailtpl.NewCachingResolver(mailtpl.IPAPIResolver{}, time.Hour),
		Logger:      logger,
		SendTimeout: 15 * time.Second,
	}
	retrier := &mailer.Retrier{
		Publisher:   pub,
		Logger:      logger,
		MaxAttempts: cfg.MailMaxAttempts,
		Backoff:     cfg.MailRetryBackoff,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			retrier.Settle(ctx, msg, worker.Handle(ctx, msg.Body))
		}
	}()

	helpers.LogInfo(logger, "email worker listening", logrus.Fields{"queue": cfg.RabbitMQEmailQueue, "send_enabled": cfg.MailSendEnabled})
	select {
	case <-ctx.Done():
	case <-done:
		logger.Warn("delivery channel closed")
	}
	logger.Info("shutting down...")
	_ = ch.Cancel(consumerTag, false)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
