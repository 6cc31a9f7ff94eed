package events

// Event type constants for kelindar/event.
const (
	TypeTouchStart uint32 = iota + 1
	TypeTouchStop
	TypeButtonPress
	TypeDisplayBlank
	TypeBacklightSet
)

// Reasons attached to BacklightSetEvent, naming which policy path drove the write.
const (
	ReasonModeChange    = "mode_change"
	ReasonTimeoutChange = "timeout_change"
	ReasonTouch         = "touch"
	ReasonButton        = "button"
	ReasonAutoOff       = "auto_off"
	ReasonDisplayWake   = "display_wake"
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// TouchStartEvent fires when contact with the display touch surface begins.
type TouchStartEvent struct {
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for TouchStartEvent.
func (e TouchStartEvent) Type() uint32 { return TypeTouchStart }

// TouchStopEvent fires when contact with the display touch surface ends.
type TouchStopEvent struct {
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for TouchStopEvent.
func (e TouchStopEvent) Type() uint32 { return TypeTouchStop }

// ButtonPressEvent fires on a capacitive touch-key button press.
type ButtonPressEvent struct {
	Code      int    `json:"code" example:"158" doc:"Input event key code"`
	Name      string `json:"name" example:"KEY_BACK" doc:"Key name, empty when unknown"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ButtonPressEvent.
func (e ButtonPressEvent) Type() uint32 { return TypeButtonPress }

// DisplayBlankEvent fires on a display power transition.
// Unblanked is true when the screen turns on.
type DisplayBlankEvent struct {
	Unblanked bool   `json:"unblanked" example:"true" doc:"True when the screen turned on"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DisplayBlankEvent.
func (e DisplayBlankEvent) Type() uint32 { return TypeDisplayBlank }

// BacklightSetEvent is published for every write to the touch-key backlight,
// carrying the policy reason that drove it.
type BacklightSetEvent struct {
	On        bool   `json:"on" example:"true" doc:"Requested backlight state"`
	Reason    string `json:"reason" example:"button" doc:"Policy path: mode_change, timeout_change, touch, button, auto_off, display_wake"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for BacklightSetEvent.
func (e BacklightSetEvent) Type() uint32 { return TypeBacklightSet }
