package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/thanhnp/dealer-hedge/internal/events"
)

// eventTypeHeader carries the event type so consumers can filter without
// decoding the payload.
const eventTypeHeader = "event-type"

// Publisher writes ledger events to a Kafka topic, keyed by transfer address
// so events of one address land on the same partition.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a publisher for topic. Writes wait for all in-sync
// replicas.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Publish writes a single event and blocks until the brokers acknowledge it.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	msg, err := newMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Close flushes pending writes and releases the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func newMessage(event events.Event) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.Key()),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: eventTypeHeader, Value: []byte(event.Type)},
		},
	}, nil
}

var _ events.Publisher = (*Publisher)(nil)
