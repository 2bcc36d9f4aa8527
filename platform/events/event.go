// Package events is the in-process pub/sub layer modules use instead of
// calling each other's services directly.
package events

import (
	"context"
	"time"
)

// Event is anything a module publishes. EventName doubles as the
// subscription key, so it must be stable across releases.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent supplies the timestamp; concrete events embed it.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes events for one subscription.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes events to subscribers. Publish is fire-and-forget and
// runs handlers asynchronously; PublishSync waits and returns the first
// handler error. Subscribe keys on Event.EventName().
type Bus interface {
	Publish(ctx context.Context, event Event)
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
