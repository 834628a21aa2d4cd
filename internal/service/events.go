package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/Austinpowers7/storehive-backend/internal/entity"
)

const (
	EventOrderCreated   = "created"
	EventOrderConfirmed = "confirmed"
)

// EventPublisher publishes order lifecycle events.
type EventPublisher interface {
	PublishOrder(ctx context.Context, event string, order *entity.Order) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) PublishOrder(ctx context.Context, event string, order *entity.Order) error {
	orderJSON, err := json.Marshal(order)
	if err != nil {
		return err
	}

	// order-created-<id> or order-confirmed-<id>
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%s-%s", event, order.ID)),
		Value: orderJSON,
	}
	return p.writer.WriteMessages(ctx, msg)
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrder(ctx context.Context, event string, order *entity.Order) error {
	return nil
}
