// Package gesture turns hand landmarks into game key events.
//
// A frame's landmarks are reduced to a FingerState, the five
// extended/folded flags of thumb, index, middle, ring and pinky. The
// FingerState is looked up in a Table of Bindings and a Mapper applies the
// binding to a keys.Sink, tracking held movement keys and the cooldown
// between discrete actions.
package gesture

import (
	"fmt"
	"image"
	"strings"

	"github.com/ayusman/mudra/internal/detector"
)

// FingerState packs the five finger flags into the low five bits.
// The thumb is the most significant bit, so the binary rendering reads
// thumb, index, middle, ring, pinky from left to right.
type FingerState uint8

// Finger bits.
const (
	Pinky FingerState = 1 << iota
	Ring
	Middle
	Index
	Thumb
)

const fingerMask = Thumb | Index | Middle | Ring | Pinky

// fingerTips pairs each non-thumb finger with its tip landmark.
var fingerTips = []struct {
	bit FingerState
	tip int
}{
	{Index, detector.IndexTip},
	{Middle, detector.MiddleTip},
	{Ring, detector.RingTip},
	{Pinky, detector.PinkyTip},
}

// Fingers derives the FingerState from pixel landmarks of a mirrored frame.
// It returns false unless exactly 21 points are given.
//
// The thumb counts as extended when its tip lies to the right of the IP
// joint. Every other finger counts as extended when its tip is above the
// joint two positions below it.
func Fingers(points []image.Point) (FingerState, bool) {
	if len(points) != detector.NumLandmarks {
		return 0, false
	}

	var s FingerState
	if points[detector.ThumbTip].X > points[detector.ThumbIP].X {
		s |= Thumb
	}
	for _, f := range fingerTips {
		if points[f.tip].Y < points[f.tip-2].Y {
			s |= f.bit
		}
	}
	return s, true
}

// Has reports whether finger f is extended.
func (s FingerState) Has(f FingerState) bool {
	return s&f == f
}

// String renders the state as five binary digits, e.g. "01001".
func (s FingerState) String() string {
	return fmt.Sprintf("%05b", uint8(s&fingerMask))
}

// ParseFingerState parses five binary digits, thumb first. Spaces and
// commas are ignored, so "0,1,0,0,1" is accepted too.
func ParseFingerState(text string) (FingerState, error) {
	digits := strings.Map(func(r rune) rune {
		if r == ' ' || r == ',' {
			return -1
		}
		return r
	}, text)

	if len(digits) != 5 {
		return 0, fmt.Errorf("finger state %q: want 5 digits", text)
	}

	var s FingerState
	for _, r := range digits {
		s <<= 1
		switch r {
		case '1':
			s |= 1
		case '0':
		default:
			return 0, fmt.Errorf("finger state %q: invalid digit %q", text, r)
		}
	}
	return s, nil
}

// MarshalText implements encoding.TextMarshaler.
func (s FingerState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *FingerState) UnmarshalText(text []byte) error {
	v, err := ParseFingerState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
