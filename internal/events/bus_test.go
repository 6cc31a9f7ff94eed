package events

import (
	"sync"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan ButtonPressEvent, 1)

	unsub := bus.Subscribe(func(e ButtonPressEvent) {
		received <- e
	})
	defer unsub()

	ev := ButtonPressEvent{
		Code:      158,
		Name:      "KEY_BACK",
		Timestamp: "2025-01-27T10:30:00Z",
	}
	bus.Publish(ev)

	got := <-received
	if got.Code != ev.Code {
		t.Errorf("Expected code %d, got %d", ev.Code, got.Code)
	}
	if got.Name != ev.Name {
		t.Errorf("Expected name %s, got %s", ev.Name, got.Name)
	}
}

func TestBus_MultipleSubscribers(_ *testing.T) {
	bus := New()
	received1 := make(chan BacklightSetEvent, 1)
	received2 := make(chan BacklightSetEvent, 1)

	unsub1 := bus.Subscribe(func(e BacklightSetEvent) {
		received1 <- e
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(e BacklightSetEvent) {
		received2 <- e
	})
	defer unsub2()

	bus.Publish(BacklightSetEvent{On: true, Reason: ReasonButton})

	<-received1
	<-received2
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan TouchStartEvent, 1)

	unsub := bus.Subscribe(func(e TouchStartEvent) {
		received <- e
	})

	bus.Publish(TouchStartEvent{})
	<-received

	unsub()

	bus.Publish(TouchStartEvent{})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
		// Expected - no event
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()

	touchReceived := make(chan bool, 1)
	blankReceived := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(_ TouchStopEvent) {
		touchReceived <- true
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(_ DisplayBlankEvent) {
		blankReceived <- true
	})
	defer unsub2()

	bus.Publish(TouchStopEvent{})
	<-touchReceived

	select {
	case <-blankReceived:
		t.Fatal("Display subscriber should NOT have received TouchStopEvent")
	case <-time.After(10 * time.Millisecond):
		// Expected
	}

	bus.Publish(DisplayBlankEvent{Unblanked: true})
	<-blankReceived

	select {
	case <-touchReceived:
		t.Fatal("Touch subscriber should NOT have received DisplayBlankEvent")
	case <-time.After(10 * time.Millisecond):
		// Expected
	}
}

func TestBus_ThreadSafety(_ *testing.T) {
	bus := New()
	var wg sync.WaitGroup
	numGoroutines := 10
	eventsPerGoroutine := 100
	expected := numGoroutines * eventsPerGoroutine

	receivedCh := make(chan bool, expected)

	unsub := bus.Subscribe(func(_ ButtonPressEvent) {
		receivedCh <- true
	})
	defer unsub()

	for range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range eventsPerGoroutine {
				bus.Publish(ButtonPressEvent{
					Code:      158,
					Timestamp: time.Now().Format(time.RFC3339),
				})
			}
		}()
	}

	wg.Wait()

	for range expected {
		<-receivedCh
	}
}

func TestBus_AllEventTypes(t *testing.T) {
	bus := New()

	tests := []struct {
		name  string
		event Event
	}{
		{"TouchStart", TouchStartEvent{}},
		{"TouchStop", TouchStopEvent{}},
		{"ButtonPress", ButtonPressEvent{Code: 139, Name: "KEY_MENU"}},
		{"DisplayBlank", DisplayBlankEvent{Unblanked: true}},
		{"BacklightSet", BacklightSetEvent{On: false, Reason: ReasonAutoOff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(_ *testing.T) {
			received := make(chan Event, 1)

			var unsub func()
			switch tt.event.(type) {
			case TouchStartEvent:
				unsub = bus.Subscribe(func(e TouchStartEvent) { received <- e })
			case TouchStopEvent:
				unsub = bus.Subscribe(func(e TouchStopEvent) { received <- e })
			case ButtonPressEvent:
				unsub = bus.Subscribe(func(e ButtonPressEvent) { received <- e })
			case DisplayBlankEvent:
				unsub = bus.Subscribe(func(e DisplayBlankEvent) { received <- e })
			case BacklightSetEvent:
				unsub = bus.Subscribe(func(e BacklightSetEvent) { received <- e })
			}
			defer unsub()

			bus.Publish(tt.event)
			<-received
		})
	}
}

func TestBus_UnknownHandlerType(t *testing.T) {
	bus := New()

	// Handlers for types outside the bus must not panic and get a no-op unsubscribe
	unsub := bus.Subscribe(func(_ string) {})
	if unsub == nil {
		t.Fatal("expected a no-op unsubscribe function")
	}
	unsub()
}

func TestSubscribeToChannel(t *testing.T) {
	bus := New()
	ch := make(chan any, 10)

	unsub := SubscribeToChannel[BacklightSetEvent](bus, ch)
	defer unsub()

	ev := BacklightSetEvent{On: true, Reason: ReasonTouch}
	bus.Publish(ev)

	received := <-ch
	setEvent, ok := received.(BacklightSetEvent)
	if !ok {
		t.Fatalf("Expected BacklightSetEvent, got %T", received)
	}
	if setEvent.Reason != ev.Reason {
		t.Errorf("Expected reason %s, got %s", ev.Reason, setEvent.Reason)
	}
}

func TestSubscribeToChannel_NonBlocking(_ *testing.T) {
	bus := New()
	ch := make(chan any) // No buffer

	unsub := SubscribeToChannel[TouchStartEvent](bus, ch)
	defer unsub()

	done := make(chan bool, 1)
	go func() {
		bus.Publish(TouchStartEvent{})
		done <- true
	}()

	<-done // Should complete without blocking
}
