// Package logging provides structured logging with per-module log level configuration.
//
// # Overview
//
// The logging system uses Go's slog package with automatic output routing:
//   - Logs to systemd journal when available (Linux systems with journald)
//   - Logs to stdout when a terminal, pipe, or file is connected
//   - Keeps a ring buffer of recent entries for the /api/logs endpoint
//
// # Usage
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",      // Global log level: debug, info, warn, error
//		Format: "text",      // Output format: text or json
//		Modules: map[string]string{
//			"touchkey": "debug", // Per-module overrides
//			"http":     "warn",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("touchkey")
//	logger.Info("mode changed", "mode", mode)
//	logger.Debug("timer armed", "timeout", timeout)
//
// # Viewing Logs
//
// When running as a systemd service or on a system with journald:
//
//	journalctl -t touchkeyd              # All touchkeyd logs
//	journalctl -t touchkeyd -f           # Follow live
//	journalctl -t touchkeyd -p err       # Errors only
//
// Filter by structured fields:
//
//	journalctl -t touchkeyd MODULE=touchkey
//	journalctl -t touchkeyd REASON=auto_off
//
// # Configuration
//
// Log levels can be set globally or per-module. Module-specific levels
// override the global level for that module only.
//
// Example TOML configuration, where level and format are global and every
// other key names a module:
//
//	[logging]
//	level = "info"
//	format = "text"
//	touchkey = "debug"
//	input = "warn"
package logging
