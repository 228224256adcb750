// Package events provides in-process pub/sub so screens can subscribe to
// session changes instead of re-reading storage on every focus.
package events

import (
	"sync"
	"time"
)

// Type identifies a kind of domain event.
type Type string

const (
	// SessionChanged fires when the stored session is set or cleared.
	SessionChanged Type = "session.changed"
	// ReservationCreated fires after a successful reservation submission.
	ReservationCreated Type = "reservation.created"
)

// Event is a lightweight domain event.
type Event struct {
	Type      Type
	Payload   any
	CreatedAt time.Time
}

// Handler reacts to an event.
type Handler func(event Event)

// Bus provides in-process pub/sub for events.
type Bus struct {
	subscribers map[Type][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[Type][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		handler(event)
	}
}
