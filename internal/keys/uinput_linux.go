//go:build linux

package keys

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sys/unix"
)

// uinput ioctl requests (linux/uinput.h).
const (
	uiDevCreate  = 0x5501     // _IO('U', 1)
	uiDevDestroy = 0x5502     // _IO('U', 2)
	uiSetEvBit   = 0x40045564 // _IOW('U', 100, int)
	uiSetKeyBit  = 0x40045565 // _IOW('U', 101, int)

	busUSB        = 0x03
	uinputMaxName = 80
	absCnt        = 64
)

// uinputUserDev mirrors the legacy struct uinput_user_dev.
type uinputUserDev struct {
	Name         [uinputMaxName]byte
	Bustype      uint16
	Vendor       uint16
	Product      uint16
	Version      uint16
	FFEffectsMax uint32
	Absmax       [absCnt]int32
	Absmin       [absCnt]int32
	Absfuzz      [absCnt]int32
	Absflat      [absCnt]int32
}

// Uinput is a Sink that creates a virtual keyboard through /dev/uinput.
// Events reach every application, including games that ignore synthetic
// X11 events.
type Uinput struct {
	fd int
}

// OpenUinput registers a virtual keyboard able to emit every known key.
func OpenUinput(path string) (*Uinput, error) {
	if path == "" {
		path = "/dev/uinput"
	}

	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := setupUinput(fd); err != nil {
		unix.Close(fd)
		return nil, err
	}

	// Give the input subsystem a moment to announce the new device.
	time.Sleep(200 * time.Millisecond)

	return &Uinput{fd: fd}, nil
}

func setupUinput(fd int) error {
	if err := unix.IoctlSetInt(fd, uiSetEvBit, evKey); err != nil {
		return fmt.Errorf("enable key events: %w", err)
	}

	codes := make([]int, 0, len(linuxKeyCodes))
	for _, code := range linuxKeyCodes {
		codes = append(codes, int(code))
	}
	sort.Ints(codes)
	for _, code := range codes {
		if err := unix.IoctlSetInt(fd, uiSetKeyBit, code); err != nil {
			return fmt.Errorf("enable key %d: %w", code, err)
		}
	}

	dev := uinputUserDev{Bustype: busUSB, Vendor: 0x1234, Product: 0x5678, Version: 1}
	copy(dev.Name[:], "mudra virtual keyboard")

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, dev); err != nil {
		return fmt.Errorf("encode device: %w", err)
	}
	if _, err := unix.Write(fd, buf.Bytes()); err != nil {
		return fmt.Errorf("write device: %w", err)
	}

	if err := unix.IoctlSetInt(fd, uiDevCreate, 0); err != nil {
		return fmt.Errorf("create device: %w", err)
	}
	return nil
}

func (u *Uinput) emit(k Key, value int32) error {
	code, ok := linuxKeyCodes[k]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, k)
	}
	if _, err := unix.Write(u.fd, encodeKey(code, value, time.Now())); err != nil {
		return fmt.Errorf("write key %s: %w", k, err)
	}
	return nil
}

// KeyDown holds k down until KeyUp.
func (u *Uinput) KeyDown(k Key) error { return u.emit(k, valuePress) }

// KeyUp releases k.
func (u *Uinput) KeyUp(k Key) error { return u.emit(k, valueRelease) }

// Press taps k once.
func (u *Uinput) Press(k Key) error { return pressWith(u, k) }

// Hotkey holds ks down together.
func (u *Uinput) Hotkey(ks ...Key) error { return hotkeyWith(u, ks) }

// Close destroys the virtual device.
func (u *Uinput) Close() error {
	if u.fd < 0 {
		return nil
	}
	err := unix.IoctlSetInt(u.fd, uiDevDestroy, 0)
	if err != nil {
		err = fmt.Errorf("destroy uinput device: %w", err)
	}
	err = errors.Join(err, unix.Close(u.fd))
	u.fd = -1
	return err
}
