// Package app runs the two mudra frame loops: the gesture-to-keys mapper
// and the air-drawing tracker. Each loop is single threaded; other
// goroutines reach it only through the methods documented as safe.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/display"
	"github.com/ayusman/mudra/internal/store"
	"gocv.io/x/gocv"
)

// ErrSessionClosed is returned by commands sent after the loop has exited.
var ErrSessionClosed = errors.New("session closed")

// maxDetectErrors is how many consecutive detector failures end a session.
const maxDetectErrors = 10

// Window keys shared by both programs.
const (
	keyQuit   = 'q'
	keyClear  = 'c'
	keyUndo   = 'u'
	keyFinish = 'f'
)

// Publisher receives live events for the websocket feed.
type Publisher interface {
	Publish(kind string, data any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

// StepFunc runs one loop iteration. Returning stop ends the loop cleanly.
type StepFunc func(ctx context.Context) (stop bool, err error)

// Loop calls step until ctx is cancelled, step reports stop, or step fails.
// Cancellation is not an error.
func Loop(ctx context.Context, step StepFunc) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		stop, err := step(ctx)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// frameSource is the camera and detector pair shared by both loops.
type frameSource struct {
	camera     capture.Camera
	detector   detector.Detector
	detectErrs int
}

func (f *frameSource) open() error {
	if err := f.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	return nil
}

func (f *frameSource) close() {
	if err := f.camera.Close(); err != nil {
		slog.Warn("closing camera", "error", err)
	}
	if f.detector != nil {
		if err := f.detector.Close(); err != nil {
			slog.Warn("closing detector", "error", err)
		}
	}
}

func (f *frameSource) read() (*gocv.Mat, error) {
	frame, err := f.camera.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return frame, nil
}

// detect runs the detector on frame. A failure counts as no hand; only a
// run of maxDetectErrors failures is returned as an error.
func (f *frameSource) detect(frame *gocv.Mat) ([]detector.HandLandmarks, error) {
	hands, err := f.detector.Detect(frame)
	if err != nil {
		f.detectErrs++
		slog.Warn("hand detection failed", "error", err, "consecutive", f.detectErrs)
		if f.detectErrs >= maxDetectErrors {
			return nil, fmt.Errorf("detector: %w", err)
		}
		return nil, nil
	}
	f.detectErrs = 0
	return hands, nil
}

// pixels returns the first hand's landmarks in frame pixels, nil for none.
func pixels(hands []detector.HandLandmarks, frame *gocv.Mat) []image.Point {
	return detector.First(hands).Pixels(frame.Cols(), frame.Rows())
}

// recorder persists a session when a store is configured.
type recorder struct {
	store *store.Store
	id    string
}

func startSession(s *store.Store, app store.App) *recorder {
	r := &recorder{store: s}
	if s == nil {
		return r
	}
	sess, err := s.Sessions().Start(app)
	if err != nil {
		slog.Warn("recording session", "app", app, "error", err)
		return r
	}
	r.id = sess.ID
	slog.Info("session started", "app", app, "session", sess.ID)
	return r
}

func (r *recorder) end(frames int, runErr error) {
	if r.id == "" {
		return
	}
	if err := r.store.Sessions().End(r.id, frames, runErr); err != nil {
		slog.Warn("ending session", "session", r.id, "error", err)
	}
}

func closeSurface(s display.Surface) {
	if err := s.Close(); err != nil {
		slog.Warn("closing display", "error", err)
	}
}

func now(clock func() time.Time) time.Time {
	if clock == nil {
		return time.Now()
	}
	return clock()
}
