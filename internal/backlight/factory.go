package backlight

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/nathanchance/op5/internal/logging"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// candidateNodes are LED class names used for capacitive key backlights,
// probed in order when no node is configured.
var candidateNodes = []string{
	"button-backlight",
	"button-backlight1",
	"keyboard-backlight",
}

// New creates a backlight driver for the touch-key LED.
// An explicit node name skips probing; otherwise the well-known names are
// tried in order. Falls back to a no-op driver when nothing is available.
func New(node string, logger logging.Logger) Driver {
	if logger != nil {
		logger.Info("Detecting touch-key backlight node", "board_model", detectBoard())
	}

	if node != "" {
		driver, err := newSysfs(filepath.Join(sysfsLEDRoot, node))
		if err != nil {
			if logger != nil {
				logger.Warn("Configured LED node not usable, backlight control disabled",
					"node", node, "error", err)
			}
			return newNoop(logger)
		}
		return logDriver(driver, logger)
	}

	for _, name := range candidateNodes {
		driver, err := newSysfs(filepath.Join(sysfsLEDRoot, name))
		if err == nil {
			return logDriver(driver, logger)
		}
	}

	if logger != nil {
		logger.Warn("No touch-key LED node found, backlight control disabled")
	}
	return newNoop(logger)
}

func logDriver(driver *sysfs, logger logging.Logger) Driver {
	if logger != nil {
		logger.Info("Using sysfs backlight driver", "path", driver.Path())
	}
	return driver
}

// detectBoard reads the device tree model to identify the phone.
func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}

	// Device tree model contains null bytes, trim them
	return strings.TrimRight(string(data), "\x00")
}
