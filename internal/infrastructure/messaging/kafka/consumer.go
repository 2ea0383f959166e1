package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/herbwise/fangmatch/internal/config"
	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/logging"
)

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// FormulaChangedHandler receives decoded catalog change events.  Handler
// errors are logged, not fatal; the consumer keeps reading.
type FormulaChangedHandler func(ctx context.Context, event FormulaChangedEvent) error

// Consumer reads the formula-changed topic and dispatches to a handler.
type Consumer struct {
	reader  ReaderInterface
	handler FormulaChangedHandler
	logger  logging.Logger
}

// NewConsumer builds a group consumer for the formula-changed topic.
func NewConsumer(cfg config.KafkaConfig, handler FormulaChangedHandler, log logging.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		GroupID: cfg.GroupID,
		Topic:   TopicFormulaChanged,
	})
	return &Consumer{reader: reader, handler: handler, logger: log}
}

// NewConsumerWithReader builds a consumer around an existing reader, for
// tests.
func NewConsumerWithReader(r ReaderInterface, handler FormulaChangedHandler, log logging.Logger) *Consumer {
	return &Consumer{reader: r, handler: handler, logger: log}
}

// Run reads until ctx is canceled or the reader is closed.  Undecodable
// messages are logged and skipped.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var event FormulaChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Warn("skipping undecodable event",
				logging.String("topic", msg.Topic), logging.Err(err))
			continue
		}

		if err := c.handler(ctx, event); err != nil {
			c.logger.Error("formula-changed handler failed",
				logging.String("type", event.Type),
				logging.String("formula_id", event.FormulaID),
				logging.Err(err))
		}
	}
}

// Close stops the underlying reader; a blocked Run returns afterwards.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
