package display

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nathanchance/op5/internal/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func writeBrightness(t *testing.T, path, value string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(value), 0644); err != nil {
		t.Fatal(err)
	}
}

func nextBlankEvent(t *testing.T, ch <-chan any) events.DisplayBlankEvent {
	t.Helper()
	select {
	case raw := <-ch:
		ev, ok := raw.(events.DisplayBlankEvent)
		if !ok {
			t.Fatalf("expected DisplayBlankEvent, got %T", raw)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no display event received")
		return events.DisplayBlankEvent{}
	}
}

func TestWatcherEdgeDetection(t *testing.T) {
	node := filepath.Join(t.TempDir(), "brightness")
	writeBrightness(t, node, "128\n")

	bus := events.New()
	received := make(chan any, 10)
	unsub := events.SubscribeToChannel[events.DisplayBlankEvent](bus, received)
	defer unsub()

	w := New(node, bus, testLogger())
	w.interval = 20 * time.Millisecond
	w.Start()
	defer w.Stop()

	// Initial state primes the detector without an event
	time.Sleep(80 * time.Millisecond)
	select {
	case ev := <-received:
		t.Fatalf("unexpected event for initial state: %v", ev)
	default:
	}

	// Screen off
	writeBrightness(t, node, "0\n")
	if ev := nextBlankEvent(t, received); ev.Unblanked {
		t.Error("brightness dropping to zero should report a blank")
	}

	// Screen on
	writeBrightness(t, node, "64\n")
	if ev := nextBlankEvent(t, received); !ev.Unblanked {
		t.Error("brightness rising from zero should report an unblank")
	}
}

func TestWatcherIgnoresLevelChanges(t *testing.T) {
	node := filepath.Join(t.TempDir(), "brightness")
	writeBrightness(t, node, "100\n")

	bus := events.New()
	received := make(chan any, 10)
	unsub := events.SubscribeToChannel[events.DisplayBlankEvent](bus, received)
	defer unsub()

	w := New(node, bus, testLogger())
	w.interval = 20 * time.Millisecond
	w.Start()
	defer w.Stop()

	// Dimming without blanking is not a power transition
	writeBrightness(t, node, "10\n")
	time.Sleep(100 * time.Millisecond)

	select {
	case ev := <-received:
		t.Fatalf("unexpected event for brightness level change: %v", ev)
	default:
	}
}

func TestWatcherMissingNode(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), events.New(), testLogger())

	// Degraded mode: no node, no goroutine, Stop is safe
	w.Start()
	w.Stop()
}

func TestReadBrightness(t *testing.T) {
	node := filepath.Join(t.TempDir(), "brightness")

	writeBrightness(t, node, " 42\n")
	got, err := readBrightness(node)
	if err != nil {
		t.Fatalf("readBrightness error: %v", err)
	}
	if got != 42 {
		t.Errorf("readBrightness = %d, want 42", got)
	}

	writeBrightness(t, node, "garbage")
	if _, err := readBrightness(node); err == nil {
		t.Error("readBrightness should fail on non-numeric content")
	}
}
