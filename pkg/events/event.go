package events

import "time"

// Event is the contract for records published on the analytics bus.
type Event interface {
	// EventType returns the unique code for this event (e.g., "INTERACTION_LOGGED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic Event implementation used across the bus.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewInteractionLogged builds the analytics event emitted after each
// completed pipeline run.
func NewInteractionLogged(data map[string]interface{}) BaseEvent {
	return BaseEvent{
		Type:       "INTERACTION_LOGGED",
		Data:       data,
		OccurredAt: time.Now(),
	}
}
