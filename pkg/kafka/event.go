package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// envelopeVersion is bumped when the envelope layout changes, not the payload.
const envelopeVersion = 1

// Aggregate identifies what an event is about. The ID doubles as the message
// key, so one aggregate's events keep their order within a partition.
type Aggregate struct {
	Type string
	ID   string
}

// Event is the JSON envelope written as the message value.
type Event struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	AggregateID   string            `json:"aggregate_id"`
	AggregateType string            `json:"aggregate_type"`
	Version       int               `json:"version"`
	Timestamp     time.Time         `json:"timestamp"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// EventOption sets optional envelope fields.
type EventOption func(*Event)

// WithCorrelationID ties the event to the request that caused it. Empty IDs
// are ignored.
func WithCorrelationID(id string) EventOption {
	return func(e *Event) { e.CorrelationID = id }
}

// WithMetadata adds key=value to the envelope metadata. Empty values are
// ignored so anonymous requests don't emit blank user IDs.
func WithMetadata(key, value string) EventOption {
	return func(e *Event) {
		if value == "" {
			return
		}
		if e.Metadata == nil {
			e.Metadata = make(map[string]string)
		}
		e.Metadata[key] = value
	}
}

// NewEvent wraps data for agg with a fresh ID and a UTC timestamp.
func NewEvent(source, eventType string, agg Aggregate, data any, opts ...EventOption) (*Event, error) {
	if agg.ID == "" {
		return nil, fmt.Errorf("%s event: aggregate id is required", eventType)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	e := &Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateID:   agg.ID,
		AggregateType: agg.Type,
		Version:       envelopeVersion,
		Timestamp:     time.Now().UTC(),
		Source:        source,
		Data:          raw,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Key returns the partition key.
func (e *Event) Key() []byte {
	return []byte(e.AggregateID)
}

// Headers returns the routing headers consumers filter on without decoding
// the value.
func (e *Event) Headers() []kafka.Header {
	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(e.EventType)},
		{Key: "source", Value: []byte(e.Source)},
	}
	if e.CorrelationID != "" {
		headers = append(headers, kafka.Header{Key: "correlation_id", Value: []byte(e.CorrelationID)})
	}
	return headers
}

// Marshal serializes the envelope.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
