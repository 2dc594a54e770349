package config

import (
	"errors"
	"time"

	"products-api/internal/products"
)

const defaultPrefetch = 10

var errRabbitMQURLRequired = errors.New("RABBITMQ_URL is required")

// Notifications configures the event consumer. Prefetch bounds the number of
// unacknowledged deliveries the broker pushes at once.
type Notifications struct {
	RabbitMQURL     string
	EventsQueue     string
	Prefetch        int
	ShutdownTimeout time.Duration
}

func LoadNotifications() (Notifications, error) {
	url := getEnv("RABBITMQ_URL", "")
	if url == "" {
		return Notifications{}, errRabbitMQURLRequired
	}

	prefetch, err := getEnvInt("NOTIFICATIONS_PREFETCH", defaultPrefetch)
	if err != nil {
		return Notifications{}, err
	}

	return Notifications{
		RabbitMQURL:     url,
		EventsQueue:     getEnv("EVENTS_QUEUE", products.EventsQueue),
		Prefetch:        prefetch,
		ShutdownTimeout: defaultShutdownTimeout,
	}, nil
}
