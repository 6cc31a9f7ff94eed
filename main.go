package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nathanchance/op5/cmd"
	"github.com/nathanchance/op5/internal/api"
	"github.com/nathanchance/op5/internal/backlight"
	"github.com/nathanchance/op5/internal/config"
	"github.com/nathanchance/op5/internal/display"
	"github.com/nathanchance/op5/internal/events"
	"github.com/nathanchance/op5/internal/input"
	"github.com/nathanchance/op5/internal/logging"
	"github.com/nathanchance/op5/internal/metrics"
	"github.com/nathanchance/op5/internal/systemd"
	"github.com/nathanchance/op5/internal/touchkey"
	"github.com/nathanchance/op5/internal/updater"
	"github.com/nathanchance/op5/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"touchkeyd.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Touchkey settings
	TouchkeyMode      int `help:"Startup backlight mode (0=touchkey and display, 1=touchkey only, 2=off)" default:"1" toml:"touchkey.mode" env:"TOUCHKEY_MODE"`
	TouchkeyTimeoutMs int `help:"Startup auto-off timeout in milliseconds, 0 disables" default:"0" toml:"touchkey.timeout_ms" env:"TOUCHKEY_TIMEOUT_MS"`

	// Hardware settings
	BacklightNode     string `help:"LED class node for the key backlight (empty probes known names)" toml:"hardware.backlight_node" env:"BACKLIGHT_NODE"`
	DisplayBrightness string `help:"Display brightness file to watch (empty probes /sys/class/backlight)" toml:"hardware.display_brightness" env:"DISPLAY_BRIGHTNESS"`

	// Update settings
	UpdateRepo       string `help:"GitHub repository for self-updates" default:"nathanchance/op5" toml:"update.repo" env:"UPDATE_REPO"`
	UpdatePrerelease bool   `help:"Include prereleases when checking for updates" default:"false" toml:"update.prerelease" env:"UPDATE_PRERELEASE"`
	UpdateCheck      bool   `help:"Check for updates on startup" default:"false" toml:"update.check_on_start" env:"UPDATE_CHECK"`

	// Logging settings
	LoggingLevel    string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat   string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingTouchkey string `help:"Touchkey controller logging level" toml:"logging.touchkey" env:"LOGGING_TOUCHKEY"`
	LoggingInput    string `help:"Input monitor logging level" toml:"logging.input" env:"LOGGING_INPUT"`
	LoggingDisplay  string `help:"Display watcher logging level" toml:"logging.display" env:"LOGGING_DISPLAY"`
	LoggingAPI      string `help:"API logging level" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP     string `help:"HTTP request logging level" toml:"logging.http" env:"LOGGING_HTTP"`
	LoggingUpdater  string `help:"Updater logging level" toml:"logging.updater" env:"LOGGING_UPDATER"`
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging: module levels from the config file's [logging]
		// table, globals and flagged modules from the resolved options
		loggingConfig := config.LoadLoggingConfig(opts.Config)
		loggingConfig.Level = opts.LoggingLevel
		loggingConfig.Format = opts.LoggingFormat
		for module, level := range map[string]string{
			"touchkey": opts.LoggingTouchkey,
			"input":    opts.LoggingInput,
			"display":  opts.LoggingDisplay,
			"api":      opts.LoggingAPI,
			"http":     opts.LoggingHTTP,
			"updater":  opts.LoggingUpdater,
		} {
			if level != "" {
				loggingConfig.Modules[module] = level
			}
		}
		logging.Initialize(loggingConfig)

		logger := logging.GetLogger("main")
		logger.Info("Starting touchkeyd", "version", version.String())

		// Create event bus for in-process event handling
		bus := events.New()

		// LED driver and the policy controller around it
		driver := backlight.New(opts.BacklightNode, logging.GetLogger("backlight"))
		controller := touchkey.New(driver, bus, logging.GetLogger("touchkey"))

		// Configured startup state goes through the same setters the API
		// uses, so validation and the reset-to-off policy hold here too
		if err := controller.SetMode(touchkey.Mode(opts.TouchkeyMode)); err != nil {
			logger.Warn("Ignoring configured mode", "mode", opts.TouchkeyMode, "error", err)
		}
		if err := controller.SetTimeout(opts.TouchkeyTimeoutMs); err != nil {
			logger.Warn("Ignoring configured timeout", "timeout_ms", opts.TouchkeyTimeoutMs, "error", err)
		}

		// Hardware event sources
		monitor := input.NewMonitor(bus, logging.GetLogger("input"))
		displayWatcher := display.New(opts.DisplayBrightness, bus, logging.GetLogger("display"))

		// Metrics follow the bus; seed the config gauges
		unobserve := metrics.Observe(bus)
		metrics.SetMode(int(controller.Mode()))
		metrics.SetTimeoutMs(int(controller.Timeout() / time.Millisecond))

		// Systemd is optional: without it the updater falls back to SIGTERM
		// restarts and the system status route disappears
		var sysd *systemd.Manager
		if manager, err := systemd.NewManager(context.Background()); err != nil {
			logger.Warn("Systemd unavailable, unit control disabled", "error", err)
		} else {
			sysd = manager
		}

		updateService, err := updater.NewService(&updater.Options{
			Repository: opts.UpdateRepo,
			Prerelease: opts.UpdatePrerelease,
			Systemd:    sysd,
		})
		if err != nil {
			logger.Warn("Self-update unavailable", "error", err)
		}

		server := api.NewServer(&api.Options{
			AuthUsername:      opts.AuthUsername,
			AuthPassword:      opts.AuthPassword,
			Controller:        controller,
			Bus:               bus,
			UpdateService:     updateService,
			SystemdManager:    sysd,
			PrometheusHandler: promhttp.Handler(),
		})

		// Live reload for [touchkey] and [logging] keys in the config file
		watcher := config.NewConfigWatcher(opts.Config, config.LoadSettings, logging.GetLogger("config"))
		watcher.OnReload(func(settings config.Settings) {
			if settings.Touchkey.Mode != nil {
				mode := touchkey.Mode(*settings.Touchkey.Mode)
				if reloadErr := controller.SetMode(mode); reloadErr != nil {
					logger.Warn("Ignoring reloaded mode", "mode", *settings.Touchkey.Mode, "error", reloadErr)
				} else {
					metrics.SetMode(*settings.Touchkey.Mode)
				}
			}
			if settings.Touchkey.TimeoutMs != nil {
				if reloadErr := controller.SetTimeout(*settings.Touchkey.TimeoutMs); reloadErr != nil {
					logger.Warn("Ignoring reloaded timeout", "timeout_ms", *settings.Touchkey.TimeoutMs, "error", reloadErr)
				} else {
					metrics.SetTimeoutMs(int(controller.Timeout() / time.Millisecond))
				}
			}
			for module, level := range settings.Logging {
				if module == "level" || module == "format" {
					continue
				}
				if !logging.SetModuleLevel(module, level) {
					logger.Warn("Ignoring invalid log level", "module", module, "level", level)
				}
			}
		})

		hooks.OnStart(func() {
			controller.Start()

			if startErr := monitor.Start(); startErr != nil {
				logger.Warn("Input monitoring unavailable", "error", startErr)
			}
			displayWatcher.Start()

			if startErr := watcher.Start(); startErr != nil {
				logger.Warn("Config watcher failed to start, live reload disabled", "error", startErr)
			}

			if opts.UpdateCheck && updateService != nil && updateService.IsEnabled() {
				go func() {
					ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
					defer cancel()
					info, checkErr := updateService.CheckForUpdate(ctx)
					if checkErr != nil {
						logger.Debug("Startup update check failed", "error", checkErr)
						return
					}
					if info.UpdateAvailable {
						logger.Info("Update available",
							"current", info.CurrentVersion, "latest", info.LatestVersion)
					}
				}()
			}

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}
			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Warn("Error stopping config watcher", "error", stopErr)
			}
			displayWatcher.Stop()
			monitor.Stop()
			unobserve()
			controller.Close()
			if sysd != nil {
				sysd.Close()
			}
		})
	})

	cli.Root().Use = "touchkeyd"
	cli.Root().Version = version.String()

	// Add probe command
	cli.Root().AddCommand(cmd.CreateProbeCmd())

	// Run the CLI
	cli.Run()
}
