package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nathanchance/op5/internal/events"
)

func TestObserveCountsEvents(t *testing.T) {
	bus := events.New()
	unsubscribe := Observe(bus)
	defer unsubscribe()

	startsBefore := testutil.ToFloat64(inputEvents.WithLabelValues("touch_start"))
	pressesBefore := testutil.ToFloat64(inputEvents.WithLabelValues("button_press"))
	unblanksBefore := testutil.ToFloat64(inputEvents.WithLabelValues("display_unblank"))

	bus.Publish(events.TouchStartEvent{Timestamp: "2026-01-01T00:00:00Z"})
	bus.Publish(events.ButtonPressEvent{Code: 158, Name: "KEY_BACK", Timestamp: "2026-01-01T00:00:00Z"})
	bus.Publish(events.DisplayBlankEvent{Unblanked: true, Timestamp: "2026-01-01T00:00:00Z"})

	// Bus delivery is asynchronous.
	time.Sleep(100 * time.Millisecond)

	if got := testutil.ToFloat64(inputEvents.WithLabelValues("touch_start")); got != startsBefore+1 {
		t.Errorf("touch_start count = %v, want %v", got, startsBefore+1)
	}
	if got := testutil.ToFloat64(inputEvents.WithLabelValues("button_press")); got != pressesBefore+1 {
		t.Errorf("button_press count = %v, want %v", got, pressesBefore+1)
	}
	if got := testutil.ToFloat64(inputEvents.WithLabelValues("display_unblank")); got != unblanksBefore+1 {
		t.Errorf("display_unblank count = %v, want %v", got, unblanksBefore+1)
	}
}

func TestObserveTracksBacklightState(t *testing.T) {
	bus := events.New()
	unsubscribe := Observe(bus)
	defer unsubscribe()

	onBefore := testutil.ToFloat64(backlightWrites.WithLabelValues("on", "touch"))

	bus.Publish(events.BacklightSetEvent{On: true, Reason: "touch", Timestamp: "2026-01-01T00:00:00Z"})
	time.Sleep(100 * time.Millisecond)

	if got := testutil.ToFloat64(backlightOn); got != 1 {
		t.Errorf("backlightOn = %v, want 1", got)
	}
	if got := testutil.ToFloat64(backlightWrites.WithLabelValues("on", "touch")); got != onBefore+1 {
		t.Errorf("writes_total{on,touch} = %v, want %v", got, onBefore+1)
	}

	bus.Publish(events.BacklightSetEvent{On: false, Reason: "auto_off", Timestamp: "2026-01-01T00:00:01Z"})
	time.Sleep(100 * time.Millisecond)

	if got := testutil.ToFloat64(backlightOn); got != 0 {
		t.Errorf("backlightOn = %v, want 0", got)
	}
}

func TestObserveUnsubscribe(t *testing.T) {
	bus := events.New()
	unsubscribe := Observe(bus)

	before := testutil.ToFloat64(inputEvents.WithLabelValues("touch_stop"))

	unsubscribe()
	bus.Publish(events.TouchStopEvent{Timestamp: "2026-01-01T00:00:00Z"})
	time.Sleep(100 * time.Millisecond)

	if got := testutil.ToFloat64(inputEvents.WithLabelValues("touch_stop")); got != before {
		t.Errorf("touch_stop count = %v, want unchanged %v", got, before)
	}
}

func TestModeAndTimeoutGauges(t *testing.T) {
	SetMode(2)
	if got := testutil.ToFloat64(touchkeyMode); got != 2 {
		t.Errorf("touchkeyMode = %v, want 2", got)
	}

	SetTimeoutMs(8000)
	if got := testutil.ToFloat64(touchkeyTimeout); got != 8000 {
		t.Errorf("touchkeyTimeout = %v, want 8000", got)
	}
}
