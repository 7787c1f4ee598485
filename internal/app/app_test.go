package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/store"
	"gocv.io/x/gocv"
)

func TestLoop(t *testing.T) {
	errBoom := errors.New("boom")

	t.Run("stops when step says so", func(t *testing.T) {
		calls := 0
		err := Loop(context.Background(), func(context.Context) (bool, error) {
			calls++
			return calls == 3, nil
		})
		if err != nil || calls != 3 {
			t.Errorf("Loop() = %v after %d calls, want nil after 3", err, calls)
		}
	})

	t.Run("returns step error", func(t *testing.T) {
		err := Loop(context.Background(), func(context.Context) (bool, error) {
			return true, errBoom
		})
		if !errors.Is(err, errBoom) {
			t.Errorf("Loop() = %v, want %v", err, errBoom)
		}
	})

	t.Run("cancellation is not an error", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := Loop(ctx, func(context.Context) (bool, error) {
			calls++
			if calls == 2 {
				cancel()
			}
			return false, nil
		})
		if err != nil || calls != 2 {
			t.Errorf("Loop() = %v after %d calls, want nil after 2", err, calls)
		}
	})

	t.Run("cancelled before start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Loop(ctx, func(context.Context) (bool, error) {
			t.Fatal("step should not run")
			return false, nil
		})
		if err != nil {
			t.Errorf("Loop() = %v", err)
		}
	})
}

func TestFrameSource_DetectErrors(t *testing.T) {
	det := detector.NewMockDetector()
	det.SetError(errors.New("pipe closed"))
	src := frameSource{detector: det}

	frame := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer frame.Close()

	for i := 1; i < maxDetectErrors; i++ {
		hands, err := src.detect(&frame)
		if err != nil || hands != nil {
			t.Fatalf("failure %d: got (%v, %v), want no hand", i, hands, err)
		}
	}
	if _, err := src.detect(&frame); err == nil {
		t.Fatalf("failure %d should end the session", maxDetectErrors)
	}

	det.SetError(nil)
	if _, err := src.detect(&frame); err != nil || src.detectErrs != 0 {
		t.Errorf("success should reset the failure count, got %d (%v)", src.detectErrs, err)
	}
}

// testFrames returns n blank 640x480 frames released at cleanup.
func testFrames(t *testing.T, n int) []*gocv.Mat {
	t.Helper()
	frames := capture.BlankFrames(n, 640, 480)
	t.Cleanup(func() {
		for _, f := range frames {
			f.Close()
		}
	})
	return frames
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fakeClock advances by step on every call.
func fakeClock(step time.Duration) func() time.Time {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		at = at.Add(step)
		return at
	}
}

// recordingPublisher keeps every published event type.
type recordingPublisher struct {
	mu    sync.Mutex
	kinds []string
	data  []any
}

func (p *recordingPublisher) Publish(kind string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kinds = append(p.kinds, kind)
	p.data = append(p.data, data)
}

func (p *recordingPublisher) count(kind string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, k := range p.kinds {
		if k == kind {
			n++
		}
	}
	return n
}
