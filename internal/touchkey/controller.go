package touchkey

import (
	"log/slog"
	"sync"
	"time"

	"github.com/nathanchance/op5/internal/backlight"
	"github.com/nathanchance/op5/internal/events"
	"github.com/nathanchance/op5/internal/version"
)

// Timeout bounds in milliseconds. Inputs at or below legacySecondsMax are
// seconds from the pre-1.2.0 unit convention and get upconverted.
const (
	timeoutMinMs     = 1000
	timeoutMaxMs     = 30000
	legacySecondsMax = 30
)

// Controller owns the touch-key backlight policy: one mode, one timeout,
// one cancelable auto-off timer. A single mutex serializes configuration
// writes, event callbacks and the timer's own fire callback.
type Controller struct {
	driver backlight.Driver
	bus    *events.Bus
	logger *slog.Logger

	mu       sync.Mutex
	mode     Mode
	timeout  time.Duration
	touched  bool
	offTimer *time.Timer
	armSeq   uint64
	closed   bool

	unsubscribe []func()
}

// New creates a controller with the default policy: touchkey-only mode,
// ROM-controlled timeout.
func New(driver backlight.Driver, bus *events.Bus, logger *slog.Logger) *Controller {
	return &Controller{
		driver: driver,
		bus:    bus,
		logger: logger,
		mode:   ModeTouchkeyOnly,
	}
}

// Start subscribes the controller to touch, button and display events.
// Without a bus the controller still works through direct calls, it just
// loses the hardware event integration.
func (c *Controller) Start() {
	if c.bus == nil {
		c.logger.Warn("No event bus, touch and display integration disabled")
		return
	}

	c.unsubscribe = append(c.unsubscribe,
		c.bus.Subscribe(func(_ events.TouchStartEvent) { c.TouchStart() }),
		c.bus.Subscribe(func(_ events.TouchStopEvent) { c.TouchStop() }),
		c.bus.Subscribe(func(_ events.ButtonPressEvent) { c.ButtonPress() }),
		c.bus.Subscribe(func(e events.DisplayBlankEvent) { c.HandleDisplayBlank(e.Unblanked) }),
	)

	c.logger.Info("Touchkey controller started",
		"mode", c.Mode().String(),
		"timeout", c.Timeout())
}

// Close cancels the pending timer and detaches from the event bus. Once
// Close has taken the lock, no further callback reaches the driver.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.cancelOffTimerLocked()
	c.mu.Unlock()

	for _, unsub := range c.unsubscribe {
		unsub()
	}
	c.unsubscribe = nil

	c.logger.Info("Touchkey controller stopped")
}

// SetMode stores a new operating mode. Every accepted write cancels the
// pending auto-off timer and resets the backlight to off, so no stale
// timer from the previous mode can leave the light stuck on.
func (c *Controller) SetMode(mode Mode) error {
	if !mode.Valid() {
		return &ValidationError{
			Field:  "mode",
			Value:  int(mode),
			Reason: "must be 0 (touchkey and display), 1 (touchkey only) or 2 (off)",
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}

	c.mode = mode
	c.cancelOffTimerLocked()
	c.setBacklightLocked(false, events.ReasonModeChange)

	c.logger.Info("Mode changed", "mode", mode.String())
	return nil
}

// SetTimeout stores a new auto-off timeout in milliseconds. Inputs at or
// below 30 are legacy seconds and upconverted first; the result must be 0
// (ROM controls timing) or within [1000, 30000]. Accepted writes cancel
// the pending timer and reset the backlight to off.
func (c *Controller) SetTimeout(ms int) error {
	normalized, ok := normalizeTimeout(ms)
	if !ok {
		return &ValidationError{
			Field:  "timeout",
			Value:  ms,
			Reason: "must be 0 or between 1000 and 30000 milliseconds (values up to 30 are taken as seconds)",
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}

	c.timeout = time.Duration(normalized) * time.Millisecond
	c.cancelOffTimerLocked()
	c.setBacklightLocked(false, events.ReasonTimeoutChange)

	c.logger.Info("Timeout changed", "timeout", c.timeout)
	return nil
}

// normalizeTimeout applies the legacy seconds conversion and validates the
// result.
func normalizeTimeout(ms int) (int, bool) {
	if ms <= legacySecondsMax {
		ms *= 1000
	}
	if ms != 0 && (ms < timeoutMinMs || ms > timeoutMaxMs) {
		return 0, false
	}
	return ms, true
}

// Mode returns the active operating mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Timeout returns the active auto-off timeout. Zero means the ROM governs
// backlight timing.
func (c *Controller) Timeout() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeout
}

// Version returns the read-only daemon version string.
func (c *Controller) Version() string {
	return version.String()
}

// TouchStart records the beginning of display contact. In touchkey and
// display mode the backlight turns on and holds while contact continues.
func (c *Controller) TouchStart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.touched = true

	if c.mode == ModeTouchkeyAndDisplay {
		c.setBacklightLocked(true, events.ReasonTouch)
		c.cancelOffTimerLocked()
	}
}

// TouchStop records the end of display contact. In touchkey and display
// mode the auto-off timer re-arms; the light stays on until it fires.
func (c *Controller) TouchStop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.touched = false

	if c.mode == ModeTouchkeyAndDisplay {
		c.cancelOffTimerLocked()
		c.armOffTimerLocked()
	}
}

// ButtonPress handles a capacitive key press. The light turns on and the
// auto-off timer re-arms whenever the daemon owns backlight timing: in
// touchkey and display mode, or in touchkey-only mode with a nonzero
// timeout. Otherwise the press is ignored and hardware timing applies.
func (c *Controller) ButtonPress() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	if c.mode == ModeTouchkeyAndDisplay ||
		(c.mode == ModeTouchkeyOnly && c.timeout != 0) {
		c.setBacklightLocked(true, events.ReasonButton)
		c.cancelOffTimerLocked()
		c.armOffTimerLocked()
	}
}

// HandleDisplayBlank reacts to display power transitions. Only the screen
// turning on acts: the backlight resets to off and any pending timer is
// dropped, whatever the mode. Blank transitions are ignored.
func (c *Controller) HandleDisplayBlank(unblanked bool) {
	if !unblanked {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.setBacklightLocked(false, events.ReasonDisplayWake)
	c.cancelOffTimerLocked()
}

// HardwareRequest gates autonomous backlight writes from the native LED
// driver. Only touchkey-only mode with a zero timeout leaves timing to
// the hardware; every other configuration owns the backlight and denies
// the request. On success the requested value passes through unchanged.
func (c *Controller) HardwareRequest(on bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != ModeTouchkeyOnly || c.timeout != 0 {
		return false, ErrPermissionDenied
	}
	return on, nil
}

// armOffTimerLocked schedules the auto-off timer for the current timeout,
// replacing whatever was pending. A zero timeout fires immediately.
// Callers hold c.mu.
func (c *Controller) armOffTimerLocked() {
	c.armSeq++
	seq := c.armSeq

	if c.offTimer != nil {
		c.offTimer.Stop()
	}
	c.offTimer = time.AfterFunc(c.timeout, func() {
		c.autoOff(seq)
	})
}

// cancelOffTimerLocked drops the pending timer. Canceling a fired or never
// armed timer is a no-op. Callers hold c.mu.
func (c *Controller) cancelOffTimerLocked() {
	c.armSeq++
	if c.offTimer != nil {
		c.offTimer.Stop()
		c.offTimer = nil
	}
}

// autoOff is the timer fire callback. The sequence number identifies the
// arm this callback belongs to; a mismatch means a cancel or re-arm won
// the race and the fire must be dropped.
func (c *Controller) autoOff(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || seq != c.armSeq {
		return
	}

	c.logger.Debug("Timeout over, disabling touchkey backlight")
	c.setBacklightLocked(false, events.ReasonAutoOff)
	c.offTimer = nil
}

// setBacklightLocked writes the LED state and publishes the observable
// side effect. Driver errors degrade to a warning; the policy state
// machine never fails on hardware errors. Callers hold c.mu.
func (c *Controller) setBacklightLocked(on bool, reason string) {
	if err := c.driver.Set(on); err != nil {
		c.logger.Warn("Failed to set backlight", "on", on, "reason", reason, "error", err)
	}

	if c.bus != nil {
		c.bus.Publish(events.BacklightSetEvent{
			On:        on,
			Reason:    reason,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
}
