package backlight

import "github.com/nathanchance/op5/internal/logging"

// noop implements Driver for systems without a touch-key LED node.
type noop struct {
	logger logging.Logger
}

// newNoop creates a new no-op backlight driver.
func newNoop(logger logging.Logger) *noop {
	return &noop{
		logger: logger,
	}
}

// Set logs the request but performs no actual hardware control.
func (n *noop) Set(on bool) error {
	if n.logger != nil {
		n.logger.Debug("Backlight control not available (no-op)", "on", on)
	}
	return nil
}

// Path returns empty since no sysfs node backs this driver.
func (n *noop) Path() string {
	return ""
}
