package backlight

// Driver abstracts the touch-key backlight LED across device generations.
// The backlight is binary: implementations map "on" to the node's maximum
// brightness and "off" to zero.
type Driver interface {
	// Set drives the backlight fully on or off. The caller treats the write
	// as fire-and-forget; failures are logged, never propagated as policy
	// errors.
	Set(on bool) error

	// Path returns the sysfs directory backing the driver, empty for no-ops.
	Path() string
}
