package events

import (
	"sync"
	"time"
)

// Handler receives events emitted on a Bus.
type Handler func(Event)

// Bus provides synchronous event distribution across components.
// Subscribers are invoked in registration order, on the emitting
// goroutine. The orchestrator run loop emits every node and job event;
// the daemon emits its own start/stop events only before that loop
// starts and after it returns, so handlers never race each other.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	closed   bool
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler to receive every future event.
// Returns an unsubscribe function.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers = append(b.handlers, h)
	idx := len(b.handlers) - 1

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if idx < len(b.handlers) {
			b.handlers[idx] = nil
		}
	}
}

// Emit stamps the event's time and delivers it to every subscriber.
func (b *Bus) Emit(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, h := range b.handlers {
		if h != nil {
			h(e)
		}
	}
}

// Close marks the bus closed; subsequent Emit calls are no-ops.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
