// Package keys delivers key events from recognized gestures to the operating system.
package keys

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Key names a keyboard key. Names follow the robotgo/pyautogui convention:
// single lowercase letters plus named keys such as "space" and "shift".
type Key string

// Keys used by the default gesture table.
const (
	Shift Key = "shift"
	Space Key = "space"
	A     Key = "a"
	D     Key = "d"
	W     Key = "w"
	S     Key = "s"
	F     Key = "f"
	R     Key = "r"
	T     Key = "t"
	Q     Key = "q"
)

// ErrUnknownKey is returned when a sink cannot map a key name.
var ErrUnknownKey = errors.New("unknown key")

// Sink receives key events. Implementations are called from the frame loop
// only and need not be safe for concurrent use.
type Sink interface {
	KeyDown(k Key) error
	KeyUp(k Key) error
	Press(k Key) error
	// Hotkey presses all keys in order and releases them in reverse order.
	Hotkey(ks ...Key) error
}

// EventKind classifies a key event.
type EventKind string

const (
	EventDown   EventKind = "down"
	EventUp     EventKind = "up"
	EventPress  EventKind = "press"
	EventHotkey EventKind = "hotkey"
)

// Event is a single key event as emitted to a Sink.
type Event struct {
	Kind EventKind `json:"kind"`
	Keys []Key     `json:"keys"`
}

// String renders the event as "down(a)" or "hotkey(space+a)".
func (e Event) String() string {
	names := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		names[i] = string(k)
	}
	return fmt.Sprintf("%s(%s)", e.Kind, strings.Join(names, "+"))
}

// ParseKey normalizes a key name from configuration.
func ParseKey(name string) (Key, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrUnknownKey)
	}
	if _, ok := linuxKeyCodes[Key(name)]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return Key(name), nil
}

// Names returns every known key name, sorted.
func Names() []Key {
	return slices.Sorted(maps.Keys(linuxKeyCodes))
}

// toggler is the down/up primitive that hotkeys and presses are built from.
type toggler interface {
	KeyDown(k Key) error
	KeyUp(k Key) error
}

// pressWith taps one key through a toggler.
func pressWith(t toggler, k Key) error {
	if err := t.KeyDown(k); err != nil {
		return err
	}
	return t.KeyUp(k)
}

// hotkeyWith holds every key down in order, then releases in reverse order.
// Keys that were pressed are released even when a later press fails.
func hotkeyWith(t toggler, ks []Key) error {
	var pressed []Key
	var firstErr error
	for _, k := range ks {
		if err := t.KeyDown(k); err != nil {
			firstErr = err
			break
		}
		pressed = append(pressed, k)
	}
	for i := len(pressed) - 1; i >= 0; i-- {
		if err := t.KeyUp(pressed[i]); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// linuxKeyCodes maps supported key names to Linux input event codes
// (input-event-codes.h). The table doubles as the set of known keys.
var linuxKeyCodes = map[Key]uint16{
	"esc":   1,
	"1":     2,
	"2":     3,
	"3":     4,
	"4":     5,
	"5":     6,
	"6":     7,
	"7":     8,
	"8":     9,
	"9":     10,
	"0":     11,
	"tab":   15,
	"q":     16,
	"w":     17,
	"e":     18,
	"r":     19,
	"t":     20,
	"y":     21,
	"u":     22,
	"i":     23,
	"o":     24,
	"p":     25,
	"enter": 28,
	"ctrl":  29,
	"a":     30,
	"s":     31,
	"d":     32,
	"f":     33,
	"g":     34,
	"h":     35,
	"j":     36,
	"k":     37,
	"l":     38,
	"shift": 42,
	"z":     44,
	"x":     45,
	"c":     46,
	"v":     47,
	"b":     48,
	"n":     49,
	"m":     50,
	"alt":   56,
	"space": 57,
	"up":    103,
	"left":  105,
	"right": 106,
	"down":  108,
}
