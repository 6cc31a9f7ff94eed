package touchkey

// Mode selects when the touch-key backlight may illuminate.
type Mode int

// Wire values follow the kernel driver convention: 0 lights the keys on
// display or key touches, 1 leaves them to the ROM unless a timeout is
// set, 2 keeps them dark.
const (
	ModeTouchkeyAndDisplay Mode = iota
	ModeTouchkeyOnly
	ModeOff
)

// Valid reports whether m is one of the three defined modes.
func (m Mode) Valid() bool {
	return m >= ModeTouchkeyAndDisplay && m <= ModeOff
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeTouchkeyAndDisplay:
		return "touchkey_display"
	case ModeTouchkeyOnly:
		return "touchkey_only"
	case ModeOff:
		return "off"
	default:
		return "unknown"
	}
}
