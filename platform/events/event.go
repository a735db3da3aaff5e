// Package events provides the in-process event bus that carries sync
// outcomes from the update service to its subscribers.
// This is part of the platform layer and contains no business logic.
package events

import (
	"context"
	"time"

	"salesrep_sync/platform/logger"
)

// Event is implemented by every published event.
type Event interface {
	// EventName identifies the event type for subscriptions.
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the fields shared by all events.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"requestId,omitempty"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps the current time and the request ID found on ctx.
func NewBaseEvent(ctx context.Context) BaseEvent {
	base := BaseEvent{Timestamp: time.Now().UTC()}
	if id, ok := ctx.Value(logger.RequestIDKey).(string); ok {
		base.RequestID = id
	}
	return base
}

// Handler processes events of a specific type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes events to subscribed handlers.
type Bus interface {
	// Publish runs the handlers in the background.
	Publish(ctx context.Context, event Event)
	// PublishSync runs the handlers before returning.
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
