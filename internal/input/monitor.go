// Package input feeds display touch and capacitive key events from evdev
// devices into the event bus.
package input

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/nathanchance/op5/internal/events"
)

// touchKeyCodes are the key codes phones report for the capacitive
// buttons below the screen.
var touchKeyCodes = map[evdev.EvCode]struct{}{
	evdev.KEY_BACK:      {},
	evdev.KEY_MENU:      {},
	evdev.KEY_HOMEPAGE:  {},
	evdev.KEY_APPSELECT: {},
}

// Capabilities describes what an input device contributes.
type Capabilities struct {
	TouchSurface bool // reports BTN_TOUCH contact edges
	TouchKeys    bool // reports capacitive key presses
}

func (c Capabilities) any() bool {
	return c.TouchSurface || c.TouchKeys
}

// Classify inspects a device's EV_KEY capabilities. Touch panels report
// BTN_TOUCH; the capacitive keys show up as regular key codes, sometimes
// on the same device as the panel.
func Classify(keys []evdev.EvCode) Capabilities {
	var caps Capabilities
	for _, code := range keys {
		if code == evdev.BTN_TOUCH {
			caps.TouchSurface = true
		}
		if _, ok := touchKeyCodes[code]; ok {
			caps.TouchKeys = true
		}
	}
	return caps
}

// Monitor reads evdev devices and publishes touch and button events.
type Monitor struct {
	bus     *events.Bus
	logger  *slog.Logger
	devices []*evdev.InputDevice
	wg      sync.WaitGroup
}

// NewMonitor creates a monitor publishing to bus.
func NewMonitor(bus *events.Bus, logger *slog.Logger) *Monitor {
	return &Monitor{
		bus:    bus,
		logger: logger,
	}
}

// Start scans /dev/input and begins reading from every device that can
// contribute touch or key events. Finding none is non-fatal: the API
// event injection routes still work.
func (m *Monitor) Start() error {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return fmt.Errorf("list input devices: %w", err)
	}

	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			m.logger.Debug("Skipping input device", "path", p.Path, "error", err)
			continue
		}

		caps := Classify(dev.CapableEvents(evdev.EV_KEY))
		if !caps.any() {
			dev.Close()
			continue
		}

		m.logger.Info("Monitoring input device",
			"path", p.Path,
			"name", p.Name,
			"touch_surface", caps.TouchSurface,
			"touch_keys", caps.TouchKeys)

		m.devices = append(m.devices, dev)
		m.wg.Add(1)
		go m.read(dev, caps)
	}

	if len(m.devices) == 0 {
		m.logger.Warn("No touch or key input devices found, hardware events disabled")
	}

	return nil
}

// Stop closes the devices, which unblocks the readers, and waits for them.
func (m *Monitor) Stop() {
	for _, dev := range m.devices {
		dev.Close()
	}
	m.wg.Wait()
	m.devices = nil
}

// read pumps one device until it closes or errors.
func (m *Monitor) read(dev *evdev.InputDevice, caps Capabilities) {
	defer m.wg.Done()

	for {
		ev, err := dev.ReadOne()
		if err != nil {
			return
		}
		m.handle(ev, caps)
	}
}

// handle translates one input event into bus traffic. Key repeats
// (value 2) never qualify as presses.
func (m *Monitor) handle(ev *evdev.InputEvent, caps Capabilities) {
	if ev.Type != evdev.EV_KEY {
		return
	}

	now := time.Now().Format(time.RFC3339)

	if ev.Code == evdev.BTN_TOUCH {
		if !caps.TouchSurface {
			return
		}
		switch ev.Value {
		case 1:
			m.bus.Publish(events.TouchStartEvent{Timestamp: now})
		case 0:
			m.bus.Publish(events.TouchStopEvent{Timestamp: now})
		}
		return
	}

	if !caps.TouchKeys || ev.Value != 1 {
		return
	}
	if _, ok := touchKeyCodes[ev.Code]; !ok {
		return
	}

	m.bus.Publish(events.ButtonPressEvent{
		Code:      int(ev.Code),
		Name:      ev.CodeName(),
		Timestamp: now,
	})
}
