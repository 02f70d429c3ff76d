package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"wanderly/internal/outbox"
	"wanderly/internal/shared/config"
	"wanderly/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// confirmation is the broker's answer to one publish
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// publishChannel is what RabbitPublisher needs from a confirm-mode channel
type publishChannel interface {
	Publish(ctx context.Context, queue string, msg amqp.Publishing) (confirmation, error)
	Close() error
}

type amqpPublishChannel struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func (c *amqpPublishChannel) Publish(ctx context.Context, queue string, msg amqp.Publishing) (confirmation, error) {
	dc, err := c.ch.PublishWithDeferredConfirmWithContext(ctx, "", queue, false, false, msg)
	if err != nil {
		return nil, err
	}
	if dc == nil {
		return nil, errors.New("channel is not in confirm mode")
	}
	return dc, nil
}

func (c *amqpPublishChannel) Close() error {
	_ = c.ch.Close()
	return c.conn.Close()
}

// RabbitPublisher publishes persistent messages to a durable queue through
// the default exchange and waits for the broker's confirm.
type RabbitPublisher struct {
	mu    sync.Mutex
	ch    publishChannel
	queue string
	log   *logger.Logger
}

func NewRabbitPublisher(cfg config.NotificationConfig) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}
	return newRabbitPublisher(&amqpPublishChannel{conn: conn, ch: ch}, cfg.Queue), nil
}

func newRabbitPublisher(ch publishChannel, queue string) *RabbitPublisher {
	return &RabbitPublisher{
		ch:    ch,
		queue: queue,
		log:   logger.GetDefault().WithComponent("rabbitmq-publisher"),
	}
}

func (p *RabbitPublisher) Publish(ctx context.Context, msg outbox.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	confirm, err := p.ch.Publish(ctx, p.queue, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID.String(),
		Type:         msg.Type,
		Timestamp:    msg.OccurredAt.UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to RabbitMQ: %w", err)
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("failed waiting for publish confirm: %w", err)
	}
	if !acked {
		return errors.New("broker nacked the message")
	}

	p.log.DebugContext(ctx, "message published to RabbitMQ",
		slog.String("queue", p.queue),
		slog.String("event_type", msg.Type))
	return nil
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Close()
}

const consumerTag = "wanderly-notifier"

// consumeSession is one live connection consuming the queue
type consumeSession interface {
	Deliveries() <-chan amqp.Delivery
	// Closed yields once when the connection drops
	Closed() <-chan *amqp.Error
	// Cancel stops deliveries; the deliveries channel is closed afterwards
	Cancel() error
	Close() error
}

type amqpConsumeSession struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	deliveries <-chan amqp.Delivery
	closed     chan *amqp.Error
}

func (s *amqpConsumeSession) Deliveries() <-chan amqp.Delivery { return s.deliveries }
func (s *amqpConsumeSession) Closed() <-chan *amqp.Error       { return s.closed }

func (s *amqpConsumeSession) Cancel() error {
	err := s.ch.Cancel(consumerTag, false)
	_ = s.ch.Close()
	return err
}

func (s *amqpConsumeSession) Close() error {
	_ = s.ch.Close()
	return s.conn.Close()
}

// RabbitConsumer consumes the notification queue with manual acks and
// reconnects with backoff when the connection drops.
type RabbitConsumer struct {
	queue   string
	workers int
	handler *Handler
	log     *logger.Logger

	open       func() (consumeSession, error)
	backoff    time.Duration
	maxBackoff time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRabbitConsumer(cfg config.NotificationConfig, handler *Handler) *RabbitConsumer {
	workers := cfg.ConsumerWorkers
	if workers < 1 {
		workers = 1
	}
	c := &RabbitConsumer{
		queue:      cfg.Queue,
		workers:    workers,
		handler:    handler,
		log:        logger.GetDefault().WithComponent("rabbitmq-consumer"),
		backoff:    time.Second,
		maxBackoff: 30 * time.Second,
	}
	c.open = func() (consumeSession, error) { return c.dial(cfg.RabbitMQURL) }
	return c
}

func (c *RabbitConsumer) dial(url string) (consumeSession, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if err := ch.Qos(c.workers*2, 0, false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set QoS: %w", err)
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	deliveries, err := ch.Consume(c.queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("queue consume: %w", err)
	}
	return &amqpConsumeSession{
		conn:       conn,
		ch:         ch,
		deliveries: deliveries,
		closed:     conn.NotifyClose(make(chan *amqp.Error, 1)),
	}, nil
}

func (c *RabbitConsumer) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)
	c.log.Info("starting notification consumers",
		slog.Int("workers", c.workers),
		slog.String("queue", c.queue))

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		backoff := c.backoff
		for ctx.Err() == nil {
			err := c.consume(ctx)
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("consume loop ended, reconnecting",
				slog.Duration("backoff", backoff),
				slog.Any("error", err))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			backoff = nextBackoff(backoff, c.maxBackoff)
		}
	}()
	return nil
}

func nextBackoff(cur, limit time.Duration) time.Duration {
	if next := cur * 2; next < limit {
		return next
	}
	return limit
}

func (c *RabbitConsumer) consume(ctx context.Context) error {
	session, err := c.open()
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	var workers sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for d := range session.Deliveries() {
				c.deliver(ctx, d)
			}
		}()
	}

	select {
	case <-ctx.Done():
		_ = session.Cancel()
		workers.Wait()
		return ctx.Err()
	case amqpErr := <-session.Closed():
		workers.Wait()
		if amqpErr != nil {
			return amqpErr
		}
		return errors.New("connection closed")
	}
}

func (c *RabbitConsumer) deliver(ctx context.Context, d amqp.Delivery) {
	if err := c.handler.Handle(ctx, d.Body); err != nil {
		// redelivered later; retries already applied backoff
		if nackErr := d.Nack(false, true); nackErr != nil {
			c.log.Error("failed to nack delivery", slog.Any("error", nackErr))
		}
		return
	}
	if err := d.Ack(false); err != nil {
		c.log.Error("failed to ack delivery", slog.Any("error", err))
	}
}

func (c *RabbitConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	c.log.Info("notification consumers stopped")
	return nil
}
