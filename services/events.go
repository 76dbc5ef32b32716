package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Order event types
const (
	EventOrderCreated       = "order.created"
	EventOrderUpdated       = "order.updated"
	EventOrderItemsReplaced = "order.items_replaced"
	EventOrderDeleted       = "order.deleted"
)

// OrderEvent is published after an order write succeeds
type OrderEvent struct {
	Type        string    `json:"type"`
	UserID      string    `json:"user_id"`
	OrderID     string    `json:"order_id"`
	OrderNumber int64     `json:"order_number,omitempty"`
	Status      string    `json:"status,omitempty"`
	TotalAmount string    `json:"total_amount,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// EventPublisher delivers domain events to downstream consumers
type EventPublisher interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
	Close() error
}

// KafkaPublisher writes JSON events to a single kafka topic
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka: no topic configured")
	}

	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			WriteTimeout:           5 * time.Second,
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
	}, nil
}

func (p *KafkaPublisher) PublishEvent(ctx context.Context, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishEvent(context.Context, string, interface{}) error { return nil }

func (NopPublisher) Close() error { return nil }

// RecordingPublisher keeps published events in memory for assertions in tests
type RecordingPublisher struct {
	mu     sync.Mutex
	events []interface{}
	keys   []string
	Err    error
}

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (r *RecordingPublisher) PublishEvent(_ context.Context, key string, event interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.keys = append(r.keys, key)
	r.events = append(r.events, event)
	return nil
}

func (r *RecordingPublisher) Close() error { return nil }

// Events returns a copy of every event published so far
func (r *RecordingPublisher) Events() []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]interface{}, len(r.events))
	copy(out, r.events)
	return out
}

// Keys returns the message keys in publish order
func (r *RecordingPublisher) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}
