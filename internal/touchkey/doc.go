// Package touchkey implements the backlight policy for capacitive touch-key
// buttons.
//
// The controller is a small timer-driven state machine deciding when the
// key backlight LED is on. It holds three configuration knobs and one piece
// of transient state:
//
//   - Mode: which triggers may light the keys (see Mode)
//   - Timeout: how long the light stays on after the last trigger, in
//     daemon-controlled configurations; zero delegates timing to the ROM
//   - Version: read-only daemon version string
//   - touched: whether the display surface is currently being contacted
//
// # Behavior by mode
//
//	                         touch start   touch stop   button press   hardware request
//	touchkey_only, t=0       -             -            -              allowed
//	touchkey_only, t>0       -             -            on + arm       denied
//	touchkey_display         on, cancel    arm          on + arm       denied
//	off                      -             -            -              denied
//
// A display unblank forces the light off and drops any pending timer in
// every mode, so the keys never stay lit when the screen wakes.
//
// # Concurrency
//
// Touch events, button events, display transitions, configuration writes
// and the auto-off timer callback all serialize on one mutex. At most one
// auto-off timer is pending; arming replaces the previous one atomically,
// and a generation counter drops stale fires that lost the race with a
// cancel. After Close no callback reaches the hardware driver.
package touchkey
