package input

import (
	"log/slog"
	"os"
	"testing"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/nathanchance/op5/internal/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		codes []evdev.EvCode
		want  Capabilities
	}{
		{
			name:  "touch panel",
			codes: []evdev.EvCode{evdev.BTN_TOUCH},
			want:  Capabilities{TouchSurface: true},
		},
		{
			name:  "capacitive keys",
			codes: []evdev.EvCode{evdev.KEY_BACK, evdev.KEY_APPSELECT},
			want:  Capabilities{TouchKeys: true},
		},
		{
			name:  "combined panel and keys",
			codes: []evdev.EvCode{evdev.BTN_TOUCH, evdev.KEY_MENU, evdev.KEY_HOMEPAGE},
			want:  Capabilities{TouchSurface: true, TouchKeys: true},
		},
		{
			name:  "keyboard",
			codes: []evdev.EvCode{evdev.KEY_A, evdev.KEY_ENTER, evdev.KEY_SPACE},
			want:  Capabilities{},
		},
		{
			name:  "no key events",
			codes: nil,
			want:  Capabilities{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.codes)
			if got != tt.want {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func waitEvent[T any](t *testing.T, ch chan T) T {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for event")
	}
	var zero T
	return zero
}

func assertNoEvent[T any](t *testing.T, ch chan T) {
	t.Helper()
	time.Sleep(50 * time.Millisecond)
	select {
	case ev := <-ch:
		t.Errorf("Expected no event, got %+v", ev)
	default:
	}
}

func TestHandleTouchEdges(t *testing.T) {
	bus := events.New()
	m := NewMonitor(bus, testLogger())
	caps := Capabilities{TouchSurface: true}

	starts := make(chan events.TouchStartEvent, 4)
	stops := make(chan events.TouchStopEvent, 4)
	defer bus.Subscribe(func(ev events.TouchStartEvent) { starts <- ev })()
	defer bus.Subscribe(func(ev events.TouchStopEvent) { stops <- ev })()

	m.handle(&evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.BTN_TOUCH, Value: 1}, caps)
	waitEvent(t, starts)

	m.handle(&evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.BTN_TOUCH, Value: 0}, caps)
	waitEvent(t, stops)
	assertNoEvent(t, starts)
}

func TestHandleButtonPress(t *testing.T) {
	bus := events.New()
	m := NewMonitor(bus, testLogger())
	caps := Capabilities{TouchKeys: true}

	presses := make(chan events.ButtonPressEvent, 4)
	defer bus.Subscribe(func(ev events.ButtonPressEvent) { presses <- ev })()

	m.handle(&evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.KEY_BACK, Value: 1}, caps)
	ev := waitEvent(t, presses)
	if ev.Code != int(evdev.KEY_BACK) {
		t.Errorf("Code = %d, want %d", ev.Code, int(evdev.KEY_BACK))
	}
	if ev.Name != "KEY_BACK" {
		t.Errorf("Name = %q, want %q", ev.Name, "KEY_BACK")
	}

	// Releases and auto-repeats are not presses.
	m.handle(&evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.KEY_BACK, Value: 0}, caps)
	m.handle(&evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.KEY_BACK, Value: 2}, caps)
	assertNoEvent(t, presses)

	// Ordinary keyboard keys are not touchkeys.
	m.handle(&evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.KEY_A, Value: 1}, caps)
	assertNoEvent(t, presses)
}

func TestHandleRespectsCapabilities(t *testing.T) {
	bus := events.New()
	m := NewMonitor(bus, testLogger())

	starts := make(chan events.TouchStartEvent, 4)
	presses := make(chan events.ButtonPressEvent, 4)
	defer bus.Subscribe(func(ev events.TouchStartEvent) { starts <- ev })()
	defer bus.Subscribe(func(ev events.ButtonPressEvent) { presses <- ev })()

	// A keys-only device may still emit stray BTN_TOUCH codes.
	m.handle(&evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.BTN_TOUCH, Value: 1}, Capabilities{TouchKeys: true})
	assertNoEvent(t, starts)

	// A panel without touchkeys never produces presses.
	m.handle(&evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.KEY_MENU, Value: 1}, Capabilities{TouchSurface: true})
	assertNoEvent(t, presses)
}

func TestHandleIgnoresNonKeyEvents(t *testing.T) {
	bus := events.New()
	m := NewMonitor(bus, testLogger())
	caps := Capabilities{TouchSurface: true, TouchKeys: true}

	starts := make(chan events.TouchStartEvent, 4)
	defer bus.Subscribe(func(ev events.TouchStartEvent) { starts <- ev })()

	m.handle(&evdev.InputEvent{Type: evdev.EV_ABS, Code: evdev.ABS_X, Value: 1}, caps)
	m.handle(&evdev.InputEvent{Type: evdev.EV_SYN, Code: 0, Value: 0}, caps)
	assertNoEvent(t, starts)
}

func TestStopWithoutStart(t *testing.T) {
	m := NewMonitor(events.New(), testLogger())
	m.Stop()
}
