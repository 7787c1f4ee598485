//go:build !linux

package keys

import "errors"

// Uinput is only available on Linux.
type Uinput struct{}

// OpenUinput always fails outside Linux.
func OpenUinput(path string) (*Uinput, error) {
	return nil, errors.New("uinput is only supported on linux")
}

func (u *Uinput) KeyDown(k Key) error    { return nil }
func (u *Uinput) KeyUp(k Key) error      { return nil }
func (u *Uinput) Press(k Key) error      { return nil }
func (u *Uinput) Hotkey(ks ...Key) error { return nil }
func (u *Uinput) Close() error           { return nil }
