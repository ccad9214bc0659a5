package types

// Attribute is a key/value pair attached to an event.
type Attribute struct {
	Key   string
	Value string
}

// Event is a typed occurrence recorded during an operation.
type Event struct {
	Type       string
	Attributes []Attribute
}

// NewAttribute returns a new event attribute.
func NewAttribute(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// NewEvent constructs an event from a type and attributes.
func NewEvent(ty string, attrs ...Attribute) Event {
	return Event{Type: ty, Attributes: attrs}
}

// EventManager accumulates events emitted over the course of a single
// operation. All context copies derived from one root share the same
// manager, so nested calls contribute to the same stream.
type EventManager struct {
	events []Event
}

// NewEventManager returns an empty event manager.
func NewEventManager() *EventManager {
	return &EventManager{}
}

// EmitEvent records an event.
func (em *EventManager) EmitEvent(event Event) {
	em.events = append(em.events, event)
}

// Events returns all recorded events in emission order.
func (em *EventManager) Events() []Event {
	return em.events
}
