package eventbus

import (
	"context"
	"log/slog"
	"sync"
)

// Handler consumes a published event. Handlers run synchronously on the
// publisher's goroutine; keep them short.
type Handler func(ctx context.Context, routingKey string, payload []byte)

// InProcessBus is an in-memory bus delivering events synchronously to
// subscribed handlers. This is the default observer surface for embedded
// library consumers.
type InProcessBus struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	handlers []Handler
}

// NewInProcessBus creates an empty in-process bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{logger: logger}
}

// Subscribe registers a handler for all published events.
func (b *InProcessBus) Subscribe(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish dispatches the event to every subscriber. A panicking subscriber
// is logged and must not take the publisher down.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.dispatch(ctx, handler, routingKey, payload)
	}
	return nil
}

func (b *InProcessBus) dispatch(ctx context.Context, handler Handler, routingKey string, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"routing_key", routingKey,
				"panic", r,
			)
		}
	}()
	handler(ctx, routingKey, payload)
}

// Close is a no-op for the in-process bus.
func (b *InProcessBus) Close() error {
	return nil
}

var _ Publisher = (*InProcessBus)(nil)
