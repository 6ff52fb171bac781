// Package event provides the in-memory publish/subscribe bus that connects
// the detection pipeline to its display collaborators.
package event

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event is a typed message on the bus.
type Event struct {
	Topic     string
	Source    string // Component that emitted the event
	Timestamp time.Time
	Payload   any // Type depends on topic
}

// Handler processes events from the bus.
type Handler func(ctx context.Context, event Event)

// Bus is an in-memory event bus. Publish is synchronous (handlers run in
// the caller's goroutine); PublishAsync dispatches each handler in its own
// goroutine. A panicking handler never takes down the publisher.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]handlerEntry // topic -> handlers
	nextID   uint64
	logger   *zap.Logger
}

type handlerEntry struct {
	id      uint64
	handler Handler
}

// NewBus creates a new in-memory event bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]handlerEntry),
		logger:   logger,
	}
}

// Publish dispatches an event synchronously to all handlers for its topic.
func (b *Bus) Publish(ctx context.Context, event Event) {
	for _, h := range b.snapshot(event.Topic) {
		b.safeCall(ctx, h.handler, event)
	}
}

// PublishAsync dispatches an event asynchronously to all handlers for its topic.
func (b *Bus) PublishAsync(ctx context.Context, event Event) {
	for _, h := range b.snapshot(event.Topic) {
		go b.safeCall(ctx, h.handler, event)
	}
}

// Subscribe registers a handler for a topic. Returns an unsubscribe function.
func (b *Bus) Subscribe(topic string, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[topic] = append(b.handlers[topic], handlerEntry{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		entries := b.handlers[topic]
		for i, e := range entries {
			if e.id == id {
				b.handlers[topic] = append(entries[:i], entries[i+1:]...)
				return
			}
		}
	}
}

// snapshot copies the handler list for a topic so handlers can subscribe or
// unsubscribe while a publish is in flight.
func (b *Bus) snapshot(topic string) []handlerEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	entries := make([]handlerEntry, len(b.handlers[topic]))
	copy(entries, b.handlers[topic])
	return entries
}

func (b *Bus) safeCall(ctx context.Context, handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("topic", event.Topic),
				zap.String("source", event.Source),
				zap.Any("panic", r),
			)
		}
	}()
	handler(ctx, event)
}
