package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"wanderly/internal/outbox"
	"wanderly/internal/shared/config"
	"wanderly/pkg/logger"
)

// Handler turns one broker message into a stored notification
type Handler struct {
	dispatcher *Dispatcher
	store      Store
	maxRetries int
	backoff    time.Duration
	log        *logger.Logger
}

func NewHandler(dispatcher *Dispatcher, store Store, cfg config.NotificationConfig) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		store:      store,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
		log:        logger.GetDefault().WithComponent("notification-consumer"),
	}
}

// Handle returns nil once the message is stored or dropped as poison. An error
// means every retry failed and the broker should redeliver.
func (h *Handler) Handle(ctx context.Context, body []byte) error {
	var msg outbox.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		h.log.Warn("dropping undecodable notification message", slog.Any("error", err), slog.Int("bytes", len(body)))
		return nil
	}

	for attempt := 0; ; attempt++ {
		err := h.process(ctx, msg)
		if err == nil {
			if attempt > 0 {
				h.log.Info("notification stored after retry",
					slog.String("event_id", msg.ID.String()),
					slog.Int("retries", attempt))
			}
			return nil
		}
		if errors.Is(err, ErrPoison) {
			h.log.Warn("dropping poison notification message",
				slog.String("event_id", msg.ID.String()),
				slog.String("event_type", msg.Type),
				slog.Any("error", err))
			return nil
		}
		if attempt >= h.maxRetries {
			h.log.Error("notification failed after retries",
				slog.String("event_id", msg.ID.String()),
				slog.String("event_type", msg.Type),
				slog.Int("attempts", attempt+1),
				slog.Any("error", err))
			return err
		}

		delay := h.backoff * time.Duration(1<<attempt)
		h.log.Warn("notification handling failed, retrying",
			slog.String("event_id", msg.ID.String()),
			slog.Duration("delay", delay),
			slog.Any("error", err))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *Handler) process(ctx context.Context, msg outbox.Message) error {
	delivery, err := h.dispatcher.Route(ctx, msg)
	if err != nil {
		return err
	}
	return h.store.Save(ctx, *delivery)
}
