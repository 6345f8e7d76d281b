// Package events carries in-process domain events between modules so side
// effects like counter refreshes stay off the request path. The dialer and
// campaigns services publish here; the scheduler subscribes.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event (campaign created, campaign
// exhausted, deal finalized).
type Event interface {
	// EventName identifies the event type, e.g. "campaigns.exhausted".
	EventName() string
	// OccurredAt reports when the event happened.
	OccurredAt() time.Time
}

// BaseEvent supplies the timestamp shared by all events.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt reports when the event happened.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes events of one type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls the underlying function.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events to subscribed handlers.
type Bus interface {
	// Publish dispatches the event to every handler subscribed to its name.
	// Handlers run asynchronously; publish never blocks the caller.
	Publish(ctx context.Context, event Event)

	// PublishSync dispatches the event and waits for every handler.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler for the named event type, matching
	// Event.EventName.
	Subscribe(eventName string, handler Handler)
}
