// Package metrics provides Prometheus metrics for the touchkey backlight daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nathanchance/op5/internal/events"
)

var (
	backlightOn = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "touchkeyd",
		Subsystem: "backlight",
		Name:      "on",
		Help:      "Whether the touchkey backlight is lit (1) or dark (0)",
	})

	backlightWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "touchkeyd",
		Subsystem: "backlight",
		Name:      "writes_total",
		Help:      "Backlight writes by state and reason",
	}, []string{"state", "reason"})

	inputEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "touchkeyd",
		Subsystem: "input",
		Name:      "events_total",
		Help:      "Touch, key and display events by type",
	}, []string{"type"})

	touchkeyMode = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "touchkeyd",
		Subsystem: "touchkey",
		Name:      "mode",
		Help:      "Active backlight mode (0=touchkey_display, 1=touchkey_only, 2=off)",
	})

	touchkeyTimeout = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "touchkeyd",
		Subsystem: "touchkey",
		Name:      "timeout_milliseconds",
		Help:      "Auto-off timeout in milliseconds, 0 means disabled",
	})
)

// SetMode records the active backlight mode.
func SetMode(mode int) {
	touchkeyMode.Set(float64(mode))
}

// SetTimeoutMs records the configured auto-off timeout.
func SetTimeoutMs(ms int) {
	touchkeyTimeout.Set(float64(ms))
}

// Observe feeds the collectors from bus traffic. The returned function
// unsubscribes them.
func Observe(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(func(_ events.TouchStartEvent) {
			inputEvents.WithLabelValues("touch_start").Inc()
		}),
		bus.Subscribe(func(_ events.TouchStopEvent) {
			inputEvents.WithLabelValues("touch_stop").Inc()
		}),
		bus.Subscribe(func(_ events.ButtonPressEvent) {
			inputEvents.WithLabelValues("button_press").Inc()
		}),
		bus.Subscribe(func(ev events.DisplayBlankEvent) {
			if ev.Unblanked {
				inputEvents.WithLabelValues("display_unblank").Inc()
			} else {
				inputEvents.WithLabelValues("display_blank").Inc()
			}
		}),
		bus.Subscribe(func(ev events.BacklightSetEvent) {
			state := "off"
			lit := 0.0
			if ev.On {
				state = "on"
				lit = 1
			}
			backlightOn.Set(lit)
			backlightWrites.WithLabelValues(state, ev.Reason).Inc()
		}),
	}

	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}
