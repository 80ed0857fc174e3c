package services

import "log/slog"

// EventPublisher delivers domain events after a mutation has committed.
// The rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(routingKey string, payload interface{}) error
}

// publish sends an event when a publisher is configured. Delivery failures are
// logged and never undo the committed mutation.
func publish(p EventPublisher, routingKey string, payload map[string]interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(routingKey, payload); err != nil {
		slog.Warn("failed to publish event", "routing_key", routingKey, "error", err)
	}
}
