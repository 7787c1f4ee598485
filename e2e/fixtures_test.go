package e2e

import (
	"testing"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"gocv.io/x/gocv"
)

// noHand marks a frame without a detection in a pose script.
const noHand = "-"

// poses turns finger patterns such as "01000" into one detection per frame.
func poses(t *testing.T, patterns ...string) [][]detector.HandLandmarks {
	t.Helper()
	seq := make([][]detector.HandLandmarks, len(patterns))
	for i, p := range patterns {
		if p == noHand {
			continue
		}
		s, err := gesture.ParseFingerState(p)
		if err != nil {
			t.Fatalf("pose %q: %v", p, err)
		}
		hand := detector.PoseLandmarks(
			s.Has(gesture.Thumb), s.Has(gesture.Index), s.Has(gesture.Middle),
			s.Has(gesture.Ring), s.Has(gesture.Pinky),
		)
		seq[i] = []detector.HandLandmarks{hand}
	}
	return seq
}

// stroke returns one closed-pinch detection per normalized fingertip point.
func stroke(xy ...[2]float64) [][]detector.HandLandmarks {
	seq := make([][]detector.HandLandmarks, len(xy))
	for i, p := range xy {
		seq[i] = []detector.HandLandmarks{detector.PinchLandmarks(p[0], p[1], true)}
	}
	return seq
}

// frames returns n blank camera frames released at cleanup.
func frames(t *testing.T, n int) []*gocv.Mat {
	t.Helper()
	fs := capture.BlankFrames(n, 640, 480)
	t.Cleanup(func() {
		for _, f := range fs {
			f.Close()
		}
	})
	return fs
}
