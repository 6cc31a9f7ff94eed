// Package display turns panel backlight brightness transitions into
// display blank and unblank events.
//
// Without a framebuffer notifier to hook, the panel state is read the way
// sysfs exposes it: a backlight class device whose brightness drops to
// zero when the screen blanks and rises when it wakes.
package display

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nathanchance/op5/internal/events"
)

const (
	backlightClassRoot = "/sys/class/backlight"
	ledsClassRoot      = "/sys/class/leds"

	defaultPollInterval = 200 * time.Millisecond
)

// Watcher polls a display brightness node and publishes DisplayBlankEvent
// on every zero crossing.
type Watcher struct {
	path     string
	interval time.Duration
	bus      *events.Bus
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates a watcher for the given brightness node. An empty path
// triggers auto discovery at Start.
func New(path string, bus *events.Bus, logger *slog.Logger) *Watcher {
	return &Watcher{
		path:     path,
		interval: defaultPollInterval,
		bus:      bus,
		logger:   logger,
	}
}

// Start begins polling. A missing or unreadable node is non-fatal: the
// daemon keeps running without display wake integration.
func (w *Watcher) Start() {
	if w.path == "" {
		w.path = discoverBrightnessNode()
	}
	if w.path == "" {
		w.logger.Warn("No display brightness node found, display events disabled")
		return
	}
	if _, err := readBrightness(w.path); err != nil {
		w.logger.Warn("Display brightness node not readable, display events disabled",
			"path", w.path, "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	w.logger.Info("Watching display brightness", "path", w.path, "interval", w.interval)
	go w.watch(ctx)
}

// Stop halts polling and waits for the poll loop to exit. Safe to call
// when Start never ran or found no node.
func (w *Watcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
	w.cancel = nil
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Prime the edge detector, no event for the initial state
	last, _ := readBrightness(w.path)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current, err := readBrightness(w.path)
			if err != nil {
				continue
			}
			if (current > 0) == (last > 0) {
				last = current
				continue
			}

			unblanked := current > 0
			w.logger.Debug("Display power transition",
				"unblanked", unblanked, "brightness", current)
			w.bus.Publish(events.DisplayBlankEvent{
				Unblanked: unblanked,
				Timestamp: time.Now().Format(time.RFC3339),
			})
			last = current
		}
	}
}

// Discover returns the brightness node auto discovery would bind to,
// empty when none exists.
func Discover() string {
	return discoverBrightnessNode()
}

// discoverBrightnessNode looks for the panel backlight where the kernel
// exposes it: a backlight class device first, then the lcd-backlight LED
// node some phones use instead.
func discoverBrightnessNode() string {
	if entries, err := os.ReadDir(backlightClassRoot); err == nil {
		for _, entry := range entries {
			candidate := filepath.Join(backlightClassRoot, entry.Name(), "brightness")
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}

	candidate := filepath.Join(ledsClassRoot, "lcd-backlight", "brightness")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}

	return ""
}

func readBrightness(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	raw := strings.TrimSpace(string(data))
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("unexpected brightness value %q: %w", raw, err)
	}
	return value, nil
}
