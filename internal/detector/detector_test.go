package detector

import (
	"errors"
	"image"
	"testing"
)

func TestHandLandmarks_Pixels(t *testing.T) {
	t.Run("scales and truncates to frame size", func(t *testing.T) {
		hand := HandLandmarks{Points: []Point3D{
			{X: 0.5, Y: 0.5},
			{X: 0.999, Y: 0.001},
			{X: 0, Y: 1},
		}}

		got := hand.Pixels(640, 480)
		want := []image.Point{{320, 240}, {639, 0}, {0, 480}}

		if len(got) != len(want) {
			t.Fatalf("expected %d points, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("point %d: expected %v, got %v", i, want[i], got[i])
			}
		}
	})

	t.Run("nil hand returns nil", func(t *testing.T) {
		var hand *HandLandmarks
		if pts := hand.Pixels(640, 480); pts != nil {
			t.Errorf("expected nil, got %v", pts)
		}
	})

	t.Run("partial hand keeps its length", func(t *testing.T) {
		hand := PartialLandmarks(12)
		if pts := hand.Pixels(640, 480); len(pts) != 12 {
			t.Errorf("expected 12 points, got %d", len(pts))
		}
	})
}

func TestHandLandmarks_Complete(t *testing.T) {
	full := PoseLandmarks(true, true, true, true, true)
	if !full.Complete() {
		t.Error("pose landmarks should be complete")
	}

	partial := PartialLandmarks(20)
	if partial.Complete() {
		t.Error("20 landmarks should not be complete")
	}

	var missing *HandLandmarks
	if missing.Complete() {
		t.Error("nil hand should not be complete")
	}
}

func TestFirst(t *testing.T) {
	if First(nil) != nil {
		t.Error("expected nil for no hands")
	}

	hands := []HandLandmarks{PoseLandmarks(true, false, false, false, false)}
	if got := First(hands); got != &hands[0] {
		t.Error("expected pointer to first hand")
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{PoseLandmarks(false, true, false, false, false)})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 1 {
			t.Errorf("expected 1 hand, got %d", len(hands))
		}
	})

	t.Run("consumes sequence before falling back", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{PoseLandmarks(true, true, true, true, true)})
		mock.SetSequence([][]HandLandmarks{nil, {PartialLandmarks(5)}})

		first, _ := mock.Detect(nil)
		second, _ := mock.Detect(nil)
		third, _ := mock.Detect(nil)

		if len(first) != 0 {
			t.Errorf("first call: expected no hands, got %d", len(first))
		}
		if len(second) != 1 || len(second[0].Points) != 5 {
			t.Errorf("second call: expected one partial hand, got %v", second)
		}
		if len(third) != 1 || !third[0].Complete() {
			t.Errorf("third call: expected fallback hand, got %v", third)
		}
		if mock.Calls() != 3 {
			t.Errorf("expected 3 calls, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestPoseLandmarks(t *testing.T) {
	tips := [4]int{IndexTip, MiddleTip, RingTip, PinkyTip}

	t.Run("extended fingers have tips above PIP", func(t *testing.T) {
		hand := PoseLandmarks(true, true, true, true, true)

		if hand.Points[ThumbTip].X <= hand.Points[ThumbIP].X {
			t.Error("extended thumb tip should be right of thumb IP")
		}
		for _, tip := range tips {
			if hand.Points[tip].Y >= hand.Points[tip-2].Y {
				t.Errorf("landmark %d should be above landmark %d", tip, tip-2)
			}
		}
	})

	t.Run("folded fingers have tips below PIP", func(t *testing.T) {
		hand := PoseLandmarks(false, false, false, false, false)

		if hand.Points[ThumbTip].X > hand.Points[ThumbIP].X {
			t.Error("folded thumb tip should be left of thumb IP")
		}
		for _, tip := range tips {
			if hand.Points[tip].Y <= hand.Points[tip-2].Y {
				t.Errorf("landmark %d should be below landmark %d", tip, tip-2)
			}
		}
	})
}

func TestParseResponse(t *testing.T) {
	t.Run("keeps partial point lists", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":[{"x":0.1,"y":0.2,"z":0},{"x":0.3,"y":0.4,"z":0}],"handedness":"Left","score":0.8}]}` + "\n")

		hands, err := parseResponse(line)
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(hands))
		}
		if len(hands[0].Points) != 2 {
			t.Errorf("expected 2 points, got %d", len(hands[0].Points))
		}
		if hands[0].Handedness != "Left" {
			t.Errorf("expected handedness Left, got %s", hands[0].Handedness)
		}
	})

	t.Run("no hands", func(t *testing.T) {
		hands, err := parseResponse([]byte(`{"hands":[]}`))
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("expected no hands, got %d", len(hands))
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := parseResponse([]byte("not json")); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})
}

func TestMediaPipeDetector_Args(t *testing.T) {
	d := &MediaPipeDetector{config: DefaultConfig(), script: "/opt/mp.py"}

	args := d.args()
	want := []string{"/opt/mp.py", "--max-hands", "1", "--min-detection", "0.7", "--min-tracking", "0.5"}

	if len(args) != len(want) {
		t.Fatalf("expected %d args, got %v", len(want), args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("arg %d: expected %q, got %q", i, want[i], args[i])
		}
	}
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Script = "/nonexistent/mediapipe_service.py"

	if _, err := NewMediaPipeDetector(cfg); err == nil {
		t.Error("expected error for missing script")
	}
}
