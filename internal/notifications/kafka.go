package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"wanderly/internal/outbox"
	"wanderly/internal/shared/config"
	"wanderly/pkg/logger"

	"github.com/IBM/sarama"
)

// KafkaPublisher writes outbox messages to a topic, keyed by aggregate so that
// one trip's or registration's events stay ordered on a partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

func NewKafkaPublisher(cfg config.NotificationConfig) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Timeout = 10 * time.Second
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.KafkaBrokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return newKafkaPublisher(producer, cfg.Topic), nil
}

func newKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		log:      logger.GetDefault().WithComponent("kafka-publisher"),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, msg outbox.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(msg.AggregateType + ":" + msg.AggregateID),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_id"), Value: []byte(msg.ID.String())},
			{Key: []byte("event_type"), Value: []byte(msg.Type)},
		},
		Timestamp: msg.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	p.log.DebugContext(ctx, "message published to Kafka",
		slog.String("topic", p.topic),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
		slog.String("event_type", msg.Type))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// KafkaConsumer runs one consumer group member per configured worker
type KafkaConsumer struct {
	groups  []sarama.ConsumerGroup
	topic   string
	handler *Handler
	log     *logger.Logger
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewKafkaConsumer(cfg config.NotificationConfig, handler *Handler) (*KafkaConsumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = 30 * time.Second
	saramaConfig.Consumer.Group.Heartbeat.Interval = 3 * time.Second
	saramaConfig.Consumer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Consumer.MaxProcessingTime = 5 * time.Minute
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	workers := cfg.ConsumerWorkers
	if workers < 1 {
		workers = 1
	}

	c := &KafkaConsumer{
		topic:   cfg.Topic,
		handler: handler,
		log:     logger.GetDefault().WithComponent("kafka-consumer"),
	}
	for i := 0; i < workers; i++ {
		group, err := sarama.NewConsumerGroup(cfg.KafkaBrokers, cfg.ConsumerGroupID, saramaConfig)
		if err != nil {
			c.closeGroups()
			return nil, fmt.Errorf("failed to create consumer group: %w", err)
		}
		c.groups = append(c.groups, group)
	}
	return c, nil
}

func (c *KafkaConsumer) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)
	c.log.Info("starting notification consumers",
		slog.Int("workers", len(c.groups)),
		slog.String("topic", c.topic))

	for i, group := range c.groups {
		c.wg.Add(2)
		go func(group sarama.ConsumerGroup) {
			defer c.wg.Done()
			for err := range group.Errors() {
				c.log.Error("consumer group error", slog.Any("error", err))
			}
		}(group)
		go func(workerID int, group sarama.ConsumerGroup) {
			defer c.wg.Done()
			c.run(ctx, workerID, group)
		}(i, group)
	}
	return nil
}

func (c *KafkaConsumer) run(ctx context.Context, workerID int, group sarama.ConsumerGroup) {
	handler := &groupHandler{handler: c.handler, workerID: workerID, log: c.log}
	for {
		if err := group.Consume(ctx, []string{c.topic}, handler); err != nil {
			c.log.Error("error consuming messages", slog.Int("worker", workerID), slog.Any("error", err))
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (c *KafkaConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	err := c.closeGroups()
	c.wg.Wait()
	c.log.Info("notification consumers stopped")
	return err
}

func (c *KafkaConsumer) closeGroups() error {
	var first error
	for _, g := range c.groups {
		if err := g.Close(); err != nil && first == nil {
			first = fmt.Errorf("failed to close consumer group: %w", err)
		}
	}
	return first
}

type groupHandler struct {
	handler  *Handler
	workerID int
	log      *logger.Logger
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.log.Debug("consumer group session started", slog.Int("worker", h.workerID))
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.log.Debug("consumer group session ended", slog.Int("worker", h.workerID))
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			// nothing past a failed message is marked; the rejoin resumes from it
			if err := h.handler.Handle(session.Context(), message.Value); err != nil {
				h.log.Error("stopping claim at unhandled message",
					slog.Int("worker", h.workerID),
					slog.Int("partition", int(message.Partition)),
					slog.Int64("offset", message.Offset),
					slog.Any("error", err))
				return fmt.Errorf("failed to handle message at offset %d: %w", message.Offset, err)
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}
