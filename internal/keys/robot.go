package keys

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// Robot delivers key events through robotgo, which injects them via the
// native input APIs of macOS, Windows and X11.
type Robot struct{}

// NewRobot creates a robotgo-backed Sink.
func NewRobot() *Robot {
	return &Robot{}
}

// KeyDown holds k down until KeyUp.
func (r *Robot) KeyDown(k Key) error {
	if err := robotgo.KeyToggle(string(k), "down"); err != nil {
		return fmt.Errorf("key down %s: %w", k, err)
	}
	return nil
}

// KeyUp releases k.
func (r *Robot) KeyUp(k Key) error {
	if err := robotgo.KeyToggle(string(k), "up"); err != nil {
		return fmt.Errorf("key up %s: %w", k, err)
	}
	return nil
}

// Press taps k once.
func (r *Robot) Press(k Key) error {
	if err := robotgo.KeyTap(string(k)); err != nil {
		return fmt.Errorf("press %s: %w", k, err)
	}
	return nil
}

// Hotkey holds ks down together. robotgo's own modifier handling only covers
// ctrl/alt/shift/cmd, so plain keys are toggled one by one.
func (r *Robot) Hotkey(ks ...Key) error {
	return hotkeyWith(r, ks)
}

// Close is a no-op.
func (r *Robot) Close() error {
	return nil
}
