package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"salesorch_backend/platform/logger"
)

// InMemoryBus is a process-local Bus implementation. Asynchronous handlers
// run in their own goroutine with a bounded timeout so a slow subscriber
// cannot stall the publisher.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger
	wg       sync.WaitGroup

	// HandlerTimeout bounds async handler execution. Zero means no timeout.
	HandlerTimeout time.Duration
}

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers:       make(map[string][]Handler),
		log:            log,
		HandlerTimeout: 30 * time.Second,
	}
}

// Subscribe registers a handler for the given event name.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish dispatches the event to every subscriber asynchronously.
// Handler errors are logged, never propagated to the publisher.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	subs := append([]Handler(nil), b.handlers[event.EventName()]...)
	b.mu.RUnlock()

	for _, h := range subs {
		h := h
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()

			// Detach from the request context so in-flight handlers
			// survive the HTTP response.
			hctx := context.WithoutCancel(ctx)
			if b.HandlerTimeout > 0 {
				var cancel context.CancelFunc
				hctx, cancel = context.WithTimeout(hctx, b.HandlerTimeout)
				defer cancel()
			}

			if err := h.Handle(hctx, event); err != nil {
				b.log.Error("event handler failed",
					"event", event.EventName(),
					"error", err,
				)
			}
		}()
	}
}

// PublishSync dispatches the event and waits for every subscriber.
// All handler errors are joined and returned.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	b.mu.RLock()
	subs := append([]Handler(nil), b.handlers[event.EventName()]...)
	b.mu.RUnlock()

	var errs []error
	for _, h := range subs {
		if err := h.Handle(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Wait blocks until all in-flight async handlers have finished.
// Used during graceful shutdown.
func (b *InMemoryBus) Wait() {
	b.wg.Wait()
}
