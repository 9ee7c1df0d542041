package events

// Message is one event payload received from the bus.
type Message struct {
	Topic string
	Data  []byte
}

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers messages matching topic on the returned channel
	// until the returned cancel function is called.
	Subscribe(topic string) (<-chan Message, func(), error)
	Close() error
}
