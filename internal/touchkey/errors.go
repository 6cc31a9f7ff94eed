package touchkey

import (
	"errors"
	"fmt"
)

// ErrPermissionDenied is returned by HardwareRequest when the current
// configuration does not allow the hardware to drive the backlight itself.
var ErrPermissionDenied = errors.New("backlight timing is daemon controlled in this configuration")

// ValidationError reports a rejected configuration write.
// The previous value stays in effect.
type ValidationError struct {
	Field  string
	Value  int
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %d: %s", e.Field, e.Value, e.Reason)
}
