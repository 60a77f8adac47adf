// Package kafka publishes ripple events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/papercomputeco/minutes/pkg/eventstream"
)

// DefaultTopic is the topic ripple events are published to.
const DefaultTopic = "minutes.ripple.detected"

// Publisher writes ripple events to Kafka. Messages are keyed by decision id
// so all events for one decision land on the same partition.
type Publisher struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Brokers is the list of bootstrap broker addresses.
	Brokers []string

	// Topic overrides DefaultTopic when set.
	Topic string
}

func NewPublisher(c Config, logger *zap.Logger) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}

	topic := c.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	writer := &kafkago.Writer{
		Addr:     kafkago.TCP(c.Brokers...),
		Topic:    topic,
		Balancer: &kafkago.LeastBytes{},
	}

	logger.Info("kafka ripple publisher initialized",
		zap.Strings("brokers", c.Brokers),
		zap.String("topic", topic),
	)

	return &Publisher{
		writer: writer,
		logger: logger,
	}, nil
}

// PublishRipple serializes the event as JSON and writes it to the topic.
func (p *Publisher) PublishRipple(ctx context.Context, event *eventstream.RippleDetectedEvent) error {
	if event == nil {
		return eventstream.ErrNilRippleEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling ripple event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.DecisionID),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing ripple event: %w", err)
	}

	p.logger.Debug("published ripple event",
		zap.String("event_id", event.EventID),
		zap.String("decision_id", event.DecisionID),
		zap.Int("total_affected", event.TotalAffected),
	)

	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
