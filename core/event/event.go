// Package event defines all events that can be published by the application.
// Events represent processing progress and results and are consumed by the
// presentation layer.
package event

// Event is the base interface for all events.
// Events are published by the application layer and consumed by subscribers.
type Event interface {
	// EventName returns the name of the event for logging/debugging
	EventName() string
}

// RequestEvent is an event that originates from a specific processing request.
type RequestEvent interface {
	Event
	// RequestID returns the source request ID
	RequestID() string
}

// baseRequestEvent provides common implementation for request events.
type baseRequestEvent struct {
	requestID string
}

func (e *baseRequestEvent) RequestID() string {
	return e.requestID
}
