// Package kafka publishes turn events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/Birmingham-AI/willAIam/pkg/eventstream"
)

// DefaultTopic is the topic turn events are published to when none is
// configured.
const DefaultTopic = "willaiam.turns"

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Brokers is the list of bootstrap broker addresses. Required.
	Brokers []string

	// Topic is the destination topic. Defaults to DefaultTopic if empty.
	Topic string
}

// Publisher writes turn events to a Kafka topic as JSON messages keyed by
// event id.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Kafka-backed eventstream publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}, nil
}

// PublishTurn writes one turn event.
func (p *Publisher) PublishTurn(ctx context.Context, event *eventstream.TurnCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling turn event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.EventID),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("publishing turn event: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ eventstream.Publisher = (*Publisher)(nil)
