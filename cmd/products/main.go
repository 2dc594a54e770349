package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"products-api/internal/config"
	producthttp "products-api/internal/products/http"
	"products-api/internal/products/messaging"
	"products-api/internal/products/repository"
	"products-api/internal/products/service"
	"products-api/internal/products/validation"

	_ "products-api/docs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	metricCreatedTotal = "products_created_total"
	metricUpdatedTotal = "products_updated_total"
	metricDeletedTotal = "products_deleted_total"
)

// @title        Products API
// @version      1.0
// @description  In-memory product catalogue with filtering, pagination and change events.
// @host         localhost:3000
// @BasePath     /
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        x-api-key
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	os.Exit(run(logger))
}

func run(logger *slog.Logger) int {
	cfg, err := config.LoadProducts()
	if err != nil {
		logger.Error("load config", "error", err)
		return 1
	}

	repo := repository.NewMemory()
	if cfg.SeedDemoData {
		repo.Seed(repository.DemoCatalog(time.Now().UTC()))
		logger.Info("demo catalogue loaded", "products", len(repo.List()))
	}

	var publisher service.Publisher = messaging.NopPublisher{}
	if cfg.EventsEnabled() {
		rabbitConn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("connect rabbitmq", "error", err)
			return 1
		}
		defer rabbitConn.Close()

		rabbit, err := messaging.NewRabbitPublisher(rabbitConn, cfg.EventsQueue)
		if err != nil {
			logger.Error("init publisher", "error", err)
			return 1
		}
		defer rabbit.Close()
		publisher = rabbit
	}

	counters := service.Counters{
		Created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricCreatedTotal,
			Help: "Total number of products created",
		}),
		Updated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricUpdatedTotal,
			Help: "Total number of products updated",
		}),
		Deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricDeletedTotal,
			Help: "Total number of products deleted",
		}),
	}
	prometheus.MustRegister(counters.Created, counters.Updated, counters.Deleted)

	requests, err := producthttp.NewRequestCounter(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Error("init metrics", "error", err)
		return 1
	}

	svc := service.New(repo, publisher, logger, counters)

	gin.SetMode(gin.ReleaseMode)
	router := producthttp.NewRouter(producthttp.RouterConfig{
		Logger:    logger,
		Clock:     time.Now,
		Requests:  requests,
		Handler:   producthttp.NewHandler(svc),
		Validator: validation.New(),
		Health:    repo,
		APIKey:    cfg.APIKey,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("products service started",
			"addr", cfg.HTTPAddr,
			"events_enabled", cfg.EventsEnabled(),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("http server failed", "error", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return 1
	}
	logger.Info("products service stopped")
	return exitCode
}
