package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Settings are the file-backed values that may change while the daemon
// runs. Pointer fields distinguish "key absent" from an explicit zero so
// a reload never clobbers state the file does not mention.
type Settings struct {
	Touchkey TouchkeySettings  `toml:"touchkey"`
	Logging  map[string]string `toml:"logging"`
}

// TouchkeySettings mirrors the [touchkey] table.
type TouchkeySettings struct {
	Mode      *int `toml:"mode"`
	TimeoutMs *int `toml:"timeout_ms"`
}

// LoadSettings reads the config file fresh. It is the loader handed to
// the file watcher, so reload handlers always see current file contents.
func LoadSettings(path string) (Settings, error) {
	var s Settings

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse config file: %w", err)
	}
	return s, nil
}
