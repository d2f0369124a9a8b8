package events

// Subscriber is an interface for event consumers.
// Implementations adapt the event stream to a specific transport.
type Subscriber interface {
	// Send delivers an event. It may wait for the transport queue but
	// returns once the transport has stopped.
	Send(Event) error

	// Close cleanly shuts down the subscriber.
	Close() error
}
