package kafka

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/example/shopfront/internal/event"
)

// EnvelopeHandler processes one decoded event envelope. Returning an error
// logs the failure; the consumer keeps going.
type EnvelopeHandler func(ctx context.Context, env event.Envelope) error

// Consumer reads storefront events from the topic as part of a consumer
// group and dispatches each envelope to the handler.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

// Consume loops until the context is cancelled.
func (c *Consumer) Consume(ctx context.Context, handler EnvelopeHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[Kafka] Error reading message: %v", err)
			continue
		}

		var env event.Envelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			log.Printf("[Kafka] Skipping undecodable message at offset %d: %v", msg.Offset, err)
			continue
		}

		if err := handler(ctx, env); err != nil {
			log.Printf("[Kafka] Error handling %s event %s: %v", env.Type, env.ID, err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
