package events

// Subscriber consumes broker events. Implementations adapt the event
// stream to one transport and must not block in Send.
type Subscriber interface {
	Send(Event) error
	Close() error
}
