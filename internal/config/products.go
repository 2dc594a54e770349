package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"products-api/internal/products"
)

const (
	defaultHTTPAddr        = ":3000"
	defaultShutdownTimeout = 10 * time.Second

	defaultReadHeaderTimeout = 5 * time.Second
)

type Products struct {
	APIKey            string
	HTTPAddr          string
	RabbitMQURL       string
	EventsQueue       string
	SeedDemoData      bool
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration
}

// EventsEnabled reports whether product change events are published.
func (p Products) EventsEnabled() bool {
	return p.RabbitMQURL != ""
}

func LoadProducts() (Products, error) {
	cfg := Products{
		APIKey:            getEnv("API_KEY", ""),
		HTTPAddr:          getEnv("HTTP_ADDR", portAddr()),
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		EventsQueue:       getEnv("EVENTS_QUEUE", products.EventsQueue),
		ShutdownTimeout:   defaultShutdownTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	if cfg.APIKey == "" {
		return Products{}, fmt.Errorf("API_KEY is required")
	}

	seed, err := getEnvBool("SEED_DEMO_DATA", false)
	if err != nil {
		return Products{}, err
	}
	cfg.SeedDemoData = seed

	return cfg, nil
}

// portAddr honours a bare PORT variable when HTTP_ADDR is unset.
func portAddr() string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return defaultHTTPAddr
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, value)
	}
	return parsed, nil
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, value)
	}
	return parsed, nil
}
