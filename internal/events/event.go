package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	EventSource  = "skill-tracker"
	EventVersion = "1.0"

	metadataEventType = "event_type"
)

// Event is the envelope of everything published on the bus.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent wraps data in an envelope with a fresh id.
func NewEvent(eventType string, data any) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event data: %w", eventType, err)
	}
	return &Event{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

// DecodeData unmarshals the event payload into dest.
func (e *Event) DecodeData(dest any) error {
	if err := json.Unmarshal(e.Data, dest); err != nil {
		return fmt.Errorf("decode %s event data: %w", e.Type, err)
	}
	return nil
}

func toMessage(e *Event) (*message.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(e.ID, payload)
	msg.Metadata.Set(metadataEventType, e.Type)
	return msg, nil
}

// FromMessage decodes the envelope carried by a watermill message.
func FromMessage(msg *message.Message) (*Event, error) {
	var e Event
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return nil, fmt.Errorf("unmarshal event %s: %w", msg.UUID, err)
	}
	return &e, nil
}
