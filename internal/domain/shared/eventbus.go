package shared

import "context"

// EventHandler reacts to published domain events. An empty EventTypes means
// every event.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher is what application services publish through. Publishing
// happens after the owning transaction commits; handler failures are logged,
// never returned to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}
