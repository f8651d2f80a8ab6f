// Package eventbus moves domain events between processes. The RabbitMQ
// publisher and consumer are used in server mode; the in-process bus covers
// local mode where no broker is running.
package eventbus

import "context"

// Publisher sends serialized domain events to the bus.
type Publisher interface {
	// Publish sends a payload under the given routing key.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close releases the broker connection.
	Close() error
}
