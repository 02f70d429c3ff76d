package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"wanderly/internal/outbox"
	"wanderly/internal/shared/config"
	"wanderly/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Pipeline is the outbox relay plus, when an inbox is available, the broker
// consumer that fills it.
type Pipeline struct {
	relay     *outbox.Relay
	publisher Publisher
	consumer  Consumer
	log       *logger.Logger
}

// StartPipeline connects to the broker and starts relaying. inbox may be nil,
// in which case events are published but nothing consumes them here.
func StartPipeline(ctx context.Context, cfg *config.Config, db *gorm.DB, inbox *mongo.Database, users UserLookup) (*Pipeline, error) {
	p := &Pipeline{log: logger.GetDefault().WithComponent("notifications")}

	publisher, err := NewPublisher(cfg.Notifications)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s publisher: %w", cfg.Notifications.Broker, err)
	}
	p.publisher = publisher

	if inbox != nil {
		if err := EnsureIndexes(ctx, inbox); err != nil {
			p.log.Warn("could not create inbox indexes", slog.Any("error", err))
		}
		handler := NewHandler(NewDispatcher(users), NewMongoStore(inbox), cfg.Notifications)
		consumer, err := NewConsumer(cfg.Notifications, handler)
		if err != nil {
			_ = publisher.Close()
			return nil, fmt.Errorf("failed to create %s consumer: %w", cfg.Notifications.Broker, err)
		}
		if err := consumer.Start(ctx); err != nil {
			_ = publisher.Close()
			return nil, fmt.Errorf("failed to start consumer: %w", err)
		}
		p.consumer = consumer
	} else {
		p.log.Warn("no notification inbox; consumer not started")
	}

	p.relay = outbox.NewRelay(outbox.NewRepository(db), publisher, cfg.Outbox)
	p.relay.Start(ctx)

	p.log.Info("notification pipeline started",
		slog.String("broker", cfg.Notifications.Broker),
		slog.Bool("consumer", p.consumer != nil))
	return p, nil
}

// Stop drains the relay before closing the broker connections
func (p *Pipeline) Stop() {
	p.relay.Stop()
	if p.consumer != nil {
		if err := p.consumer.Stop(); err != nil {
			p.log.Error("error stopping consumer", slog.Any("error", err))
		}
	}
	if err := p.publisher.Close(); err != nil {
		p.log.Error("error closing publisher", slog.Any("error", err))
	}
}
