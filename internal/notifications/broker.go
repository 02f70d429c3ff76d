package notifications

import (
	"context"
	"fmt"

	"wanderly/internal/outbox"
	"wanderly/internal/shared/config"
)

// Publisher is an outbox publisher that owns a broker connection
type Publisher interface {
	outbox.Publisher
	Close() error
}

type Consumer interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewPublisher connects to the configured broker
func NewPublisher(cfg config.NotificationConfig) (Publisher, error) {
	switch cfg.Broker {
	case config.BrokerKafka:
		return NewKafkaPublisher(cfg)
	case config.BrokerRabbitMQ:
		return NewRabbitPublisher(cfg)
	}
	return nil, fmt.Errorf("unknown notification broker %q", cfg.Broker)
}

func NewConsumer(cfg config.NotificationConfig, handler *Handler) (Consumer, error) {
	switch cfg.Broker {
	case config.BrokerKafka:
		return NewKafkaConsumer(cfg, handler)
	case config.BrokerRabbitMQ:
		return NewRabbitConsumer(cfg, handler), nil
	}
	return nil, fmt.Errorf("unknown notification broker %q", cfg.Broker)
}
