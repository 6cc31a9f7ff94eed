package backlight

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

const sysfsLEDRoot = "/sys/class/leds"

// sysfs implements Driver using the Linux sysfs LED class interface.
type sysfs struct {
	dir string
	max []byte // raw max_brightness value, written for "on"
}

// newSysfs creates a driver for the LED class directory at dir.
// The directory must expose a brightness attribute.
func newSysfs(dir string) (*sysfs, error) {
	if _, err := os.Stat(filepath.Join(dir, "brightness")); err != nil {
		return nil, fmt.Errorf("LED node %s has no brightness attribute: %w", dir, err)
	}

	max := []byte("255")
	if data, err := os.ReadFile(filepath.Join(dir, "max_brightness")); err == nil {
		if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 {
			max = trimmed
		}
	}

	return &sysfs{dir: dir, max: max}, nil
}

// Set writes max_brightness or zero to the brightness attribute.
func (s *sysfs) Set(on bool) error {
	value := []byte("0")
	if on {
		value = s.max
	}

	brightnessPath := filepath.Join(s.dir, "brightness")
	if err := os.WriteFile(brightnessPath, value, 0644); err != nil {
		return fmt.Errorf("failed to set backlight brightness: %w", err)
	}

	return nil
}

// Path returns the sysfs directory backing the driver.
func (s *sysfs) Path() string {
	return s.dir
}
