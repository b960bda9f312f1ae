package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TypeOrderPlaced marks the event published once an order is durably
// written; the notifier reacts to it.
const TypeOrderPlaced = "OrderPlaced"

// Envelope wraps a domain event for transport. Data holds the JSON-encoded
// payload; Type tells consumers how to decode it.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// Wrap encodes the payload into a new envelope.
func Wrap(eventType string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now(),
		Data:       data,
	}, nil
}

// Decode unmarshals the envelope payload into out.
func (e Envelope) Decode(out any) error {
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}
