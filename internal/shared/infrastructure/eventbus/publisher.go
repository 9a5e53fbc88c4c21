// Package eventbus publishes entitlement events to observers. Embedded
// consumers subscribe to the in-process bus; server-side embedders can fan
// snapshot changes out through RabbitMQ instead.
package eventbus

import "context"

// Publisher sends events to an event bus.
type Publisher interface {
	// Publish sends a payload under a routing key.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close closes the publisher connection.
	Close() error
}

// NoopPublisher discards every event. Default when no observer is wired.
type NoopPublisher struct{}

// Publish does nothing.
func (NoopPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	return nil
}

// Close does nothing.
func (NoopPublisher) Close() error { return nil }

var _ Publisher = NoopPublisher{}
