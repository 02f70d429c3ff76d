package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"wanderly/internal/shared/config"
	"wanderly/pkg/logger"
)

// Publisher delivers one message to the broker
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Relay drains outbox_events to a Publisher on a ticker
type Relay struct {
	store     Store
	publisher Publisher
	config    config.OutboxConfig
	log       *logger.Logger
	now       func() time.Time

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewRelay(store Store, publisher Publisher, cfg config.OutboxConfig) *Relay {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	return &Relay{
		store:     store,
		publisher: publisher,
		config:    cfg,
		log:       logger.GetDefault().WithComponent("outbox-relay"),
		now:       time.Now,
		done:      make(chan struct{}),
	}
}

// Start runs the relay loop until Stop is called or ctx is cancelled
func (r *Relay) Start(ctx context.Context) {
	r.log.Info("starting outbox relay",
		slog.Duration("interval", r.config.PollInterval),
		slog.Int("batch_size", r.config.BatchSize))

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.config.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.drain(ctx)
			case <-r.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the loop and waits for an in-flight batch to finish
func (r *Relay) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
	})
	r.wg.Wait()
	r.log.Info("outbox relay stopped")
}

// drain keeps claiming batches while they come back full
func (r *Relay) drain(ctx context.Context) {
	for {
		n, err := r.RunOnce(ctx)
		if err != nil {
			r.log.Error("outbox relay batch failed", slog.Any("error", err))
			return
		}
		if n < r.config.BatchSize || ctx.Err() != nil {
			return
		}
	}
}

// RunOnce relays a single batch and returns how many events it handled
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	now := r.now()
	return r.store.Claim(ctx, now, r.config.BatchSize, func(events []*Event) {
		for _, ev := range events {
			if err := r.publisher.Publish(ctx, ev.Message()); err != nil {
				ev.markFailed(err, now, r.config.MaxAttempts, r.config.BaseBackoff, r.config.MaxBackoff)
				if ev.Status == StatusFailed {
					r.log.Error("outbox event dead after max attempts",
						slog.String("event_id", ev.ID.String()),
						slog.String("event_type", ev.EventType),
						slog.Int("attempts", ev.Attempts),
						slog.Any("error", err))
				} else {
					r.log.Warn("outbox publish failed, will retry",
						slog.String("event_id", ev.ID.String()),
						slog.Int("attempts", ev.Attempts),
						slog.Time("next_attempt", ev.AvailableAt),
						slog.Any("error", err))
				}
				continue
			}
			ev.markPublished(now)
			r.log.LogOutboxPublished(ctx, ev.ID.String(), ev.EventType, ev.Attempts)
		}
	})
}
