package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
// Usage: bus.Publish(ButtonPressEvent{...})
func (b *Bus) Publish(ev Event) {
	// Type switch so the generic Publish sees the concrete type
	switch e := ev.(type) {
	case TouchStartEvent:
		event.Publish(b.dispatcher, e)
	case TouchStopEvent:
		event.Publish(b.dispatcher, e)
	case ButtonPressEvent:
		event.Publish(b.dispatcher, e)
	case DisplayBlankEvent:
		event.Publish(b.dispatcher, e)
	case BacklightSetEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function.
// The handler's parameter type determines which events it receives.
// Returns an unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e ButtonPressEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(TouchStartEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(TouchStopEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ButtonPressEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DisplayBlankEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(BacklightSetEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// No-op unsubscribe for unrecognized handler types
		return func() {}
	}
}
