package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/herbwise/fangmatch/internal/config"
	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/logging"
	"github.com/herbwise/fangmatch/pkg/errors"
)

// ErrProducerClosed is returned by Publish after Close.
var ErrProducerClosed = errors.New(errors.ErrCodeInternal, "kafka producer closed")

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes JSON events.  Counters are atomic so callers may read
// them concurrently with publishing.
type Producer struct {
	writer WriterInterface
	logger logging.Logger
	closed atomic.Bool

	sent   atomic.Int64
	failed atomic.Int64
}

// NewProducer builds a producer for the configured brokers.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.ProducerRetries,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireAll,
	}
	return &Producer{writer: writer, logger: log}
}

// NewProducerWithWriter builds a producer around an existing writer, for
// tests.
func NewProducerWithWriter(w WriterInterface, log logging.Logger) *Producer {
	return &Producer{writer: w, logger: log}
}

// Publish marshals event as JSON and writes it to topic, keyed for
// per-entity ordering.
func (p *Producer) Publish(ctx context.Context, topic, key string, event interface{}) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.failed.Add(1)
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event")
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now().UTC(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.failed.Add(1)
		p.logger.Error("failed to publish event",
			logging.String("topic", topic), logging.String("key", key), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to publish event")
	}

	p.sent.Add(1)
	p.logger.Debug("event published", logging.String("topic", topic), logging.String("key", key))
	return nil
}

// PublishFormulaChanged publishes a catalog change notification.
func (p *Producer) PublishFormulaChanged(ctx context.Context, event FormulaChangedEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return p.Publish(ctx, TopicFormulaChanged, event.FormulaID, event)
}

// Sent returns the number of successfully published messages.
func (p *Producer) Sent() int64 { return p.sent.Load() }

// Failed returns the number of failed publishes.
func (p *Producer) Failed() int64 { return p.failed.Load() }

// Close flushes and closes the writer.  Publish calls after Close return
// ErrProducerClosed.
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}
