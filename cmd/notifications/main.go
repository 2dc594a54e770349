package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"products-api/internal/config"
	"products-api/internal/notifications"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	os.Exit(run(logger))
}

func run(logger *slog.Logger) int {
	cfg, err := config.LoadNotifications()
	if err != nil {
		logger.Error("load config", "error", err)
		return 1
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("connect rabbitmq", "error", err)
		return 1
	}
	defer conn.Close()
	connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))

	consumer, err := notifications.NewConsumer(conn, cfg.EventsQueue, cfg.Prefetch, logger)
	if err != nil {
		logger.Error("init consumer", "error", err)
		return 1
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("notifications service started",
			"queue", cfg.EventsQueue,
			"prefetch", cfg.Prefetch,
		)
		errCh <- consumer.Listen(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case amqpErr := <-connClosed:
		logger.Error("rabbitmq connection closed", "error", connErr(amqpErr))
		return 1
	case err := <-errCh:
		if err != nil {
			logger.Error("consumer failed", "error", err)
			return 1
		}
		logger.Info("notifications service stopped")
		return 0
	}

	shutdownDeadline := time.NewTimer(cfg.ShutdownTimeout)
	defer shutdownDeadline.Stop()
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("consumer stop failed", "error", err)
			return 1
		}
	case <-shutdownDeadline.C:
		logger.Warn("consumer shutdown timeout reached")
	}

	logger.Info("notifications service stopped")
	return 0
}

// connErr converts the close notification, which is nil on a clean close.
func connErr(err *amqp.Error) error {
	if err == nil {
		return fmt.Errorf("connection closed")
	}
	return err
}
