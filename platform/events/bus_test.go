package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"salesorch_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestInMemoryBusPublishSync(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	var calls int32
	bus.Subscribe("lead.created", HandlerFunc(func(ctx context.Context, ev Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}))
	bus.Subscribe("lead.created", HandlerFunc(func(ctx context.Context, ev Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "lead.created"})
	if err == nil {
		t.Fatal("expected joined handler error, got nil")
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 handler calls, got %d", got)
	}
}

func TestInMemoryBusPublishAsync(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	done := make(chan struct{})
	bus.Subscribe("call.completed", HandlerFunc(func(ctx context.Context, ev Event) error {
		close(done)
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "call.completed"})
	bus.Wait()

	select {
	case <-done:
	default:
		t.Fatal("handler did not run")
	}
}

func TestInMemoryBusNoSubscribers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	// Publishing with no subscribers must not panic or block.
	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "nobody.listens"})
	bus.Wait()

	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "nobody.listens"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
