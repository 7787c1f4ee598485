package app

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/display"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
	"gocv.io/x/gocv"
)

// KeysConfig wires the gesture-to-keys loop. Camera, Detector, Mapper and
// Surface are required.
type KeysConfig struct {
	Camera   capture.Camera
	Detector detector.Detector
	Mapper   *gesture.Mapper
	Surface  display.Surface

	// Motion, when set, skips detection on still frames and reuses the
	// previous result.
	Motion *capture.MotionDetector
	// MaxSkip bounds how many frames in a row may reuse a detection.
	// Zero means capture.DefaultMaxSkip.
	MaxSkip int
	Store   *store.Store
	Events  Publisher
	// OnAction is called from the loop for every fired action.
	OnAction func(gesture.Outcome)
	Clock    func() time.Time
}

// KeysApp turns hand poses into key events.
type KeysApp struct {
	cfg     KeysConfig
	src     frameSource
	session *recorder
	enabled atomic.Bool

	frames    int
	lastHands []detector.HandLandmarks
	haveLast  bool
	skipped   int
	fired     int
}

// NewKeysApp creates a KeysApp. Mapping starts enabled.
func NewKeysApp(cfg KeysConfig) *KeysApp {
	if cfg.Events == nil {
		cfg.Events = nopPublisher{}
	}
	if cfg.MaxSkip <= 0 {
		cfg.MaxSkip = capture.DefaultMaxSkip
	}
	a := &KeysApp{
		cfg: cfg,
		src: frameSource{camera: cfg.Camera, detector: cfg.Detector},
	}
	a.enabled.Store(true)
	return a
}

// SetEnabled turns key output on or off. Safe for concurrent use.
// While disabled every frame counts as "no hand", so held keys are released.
func (a *KeysApp) SetEnabled(on bool) {
	a.enabled.Store(on)
	a.cfg.Events.Publish("enabled", on)
}

// Enabled reports whether key output is on. Safe for concurrent use.
func (a *KeysApp) Enabled() bool {
	return a.enabled.Load()
}

// Frames returns the number of frames processed by the last Run.
func (a *KeysApp) Frames() int {
	return a.frames
}

// Fired returns the number of actions fired by the last Run.
func (a *KeysApp) Fired() int {
	return a.fired
}

// Run opens the camera and processes frames until ctx is cancelled, the
// quit key is pressed, or a frame cannot be read. The camera, detector,
// surface and any held key are released on every path.
func (a *KeysApp) Run(ctx context.Context) (err error) {
	a.frames, a.fired, a.haveLast, a.skipped = 0, 0, false, 0
	a.session = startSession(a.cfg.Store, store.AppKeys)
	defer func() { a.session.end(a.frames, err) }()
	defer closeSurface(a.cfg.Surface)
	defer a.src.close()
	if a.cfg.Motion != nil {
		defer a.cfg.Motion.Close()
	}

	if err := a.src.open(); err != nil {
		return err
	}
	defer a.release()

	slog.Info("gesture mapping started")
	err = Loop(ctx, a.step)
	slog.Info("gesture mapping stopped", "frames", a.frames, "fired", a.fired, "error", err)
	return err
}

func (a *KeysApp) release() {
	out, err := a.cfg.Mapper.Release()
	if err != nil {
		slog.Warn("releasing held keys", "error", err)
	}
	if len(out.Events) > 0 {
		a.cfg.Events.Publish("keys", out)
	}
}

func (a *KeysApp) step(ctx context.Context) (bool, error) {
	frame, err := a.src.read()
	if err != nil {
		return true, err
	}
	defer frame.Close()
	a.frames++

	hands, err := a.hands(frame)
	if err != nil {
		return true, err
	}

	points := pixels(hands, frame)
	enabled := a.Enabled()
	input := points
	if !enabled {
		input = nil
	}

	at := now(a.cfg.Clock)
	out, err := a.cfg.Mapper.Step(at, input)
	if err != nil {
		slog.Warn("key sink failed", "state", out.State.String(), "action", out.Action, "error", err)
	}
	a.report(at, out)

	a.overlay(frame, points, out, enabled)
	if err := a.cfg.Surface.Show(frame); err != nil {
		slog.Debug("display failed", "error", err)
	}
	return a.cfg.Surface.Key() == keyQuit, nil
}

// hands applies the motion gate in front of the detector. A detection is
// reused for at most MaxSkip frames.
func (a *KeysApp) hands(frame *gocv.Mat) ([]detector.HandLandmarks, error) {
	if a.cfg.Motion != nil {
		moved, _ := a.cfg.Motion.Detect(frame)
		if !moved && a.haveLast && a.skipped < a.cfg.MaxSkip {
			a.skipped++
			return a.lastHands, nil
		}
	}

	hands, err := a.src.detect(frame)
	if err != nil {
		return nil, err
	}
	a.lastHands, a.haveLast, a.skipped = hands, true, 0
	return hands, nil
}

func (a *KeysApp) report(at time.Time, out gesture.Outcome) {
	if len(out.Events) > 0 {
		a.cfg.Events.Publish("keys", out)
	}
	if !out.Fired {
		return
	}

	a.fired++
	slog.Info("action fired", "action", out.Action, "state", out.State.String(), "events", len(out.Events))
	if a.cfg.OnAction != nil {
		a.cfg.OnAction(out)
	}

	if a.session.id == "" {
		return
	}
	events := make([]string, len(out.Events))
	for i, e := range out.Events {
		events[i] = e.String()
	}
	raw, err := json.Marshal(events)
	if err != nil {
		slog.Warn("encoding event keys", "action", out.Action, "error", err)
		return
	}
	e := &store.Event{
		SessionID: a.session.id,
		At:        at.UTC(),
		Action:    string(out.Action),
		State:     out.State.String(),
		Keys:      raw,
	}
	if err := a.cfg.Store.Events().Create(e); err != nil {
		slog.Warn("storing event", "action", out.Action, "error", err)
	}
}

func (a *KeysApp) overlay(frame *gocv.Mat, points []image.Point, out gesture.Outcome, enabled bool) {
	display.DrawHand(frame, points)

	lines := []string{"no hand"}
	if out.Hand && !out.Partial {
		action := string(out.Action)
		if action == "" {
			action = "-"
		}
		lines = []string{fmt.Sprintf("%s %s", out.State, action)}
	}
	lines = append(lines, fmt.Sprintf("L:%v R:%v", out.Movement.Left, out.Movement.Right))
	display.DrawText(frame, lines...)

	if !enabled {
		display.DrawAlert(frame, "paused")
	}
}
