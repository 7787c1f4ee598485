package app

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/display"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/sketch"
	"github.com/ayusman/mudra/internal/store"
	"gocv.io/x/gocv"
)

// DrawConfig wires the air-drawing loop. Camera, Detector, Tracker and
// Surface are required.
type DrawConfig struct {
	Camera   capture.Camera
	Detector detector.Detector
	Tracker  *sketch.Tracker
	Surface  display.Surface

	Store  *store.Store
	Events Publisher
}

type commandKind string

const (
	cmdClear  commandKind = "clear"
	cmdUndo   commandKind = "undo"
	cmdFinish commandKind = "finish"
)

// parkPoll is how often a finished session checks the window for keys.
const parkPoll = 50 * time.Millisecond

type command struct {
	kind  commandKind
	reply chan bool
}

// DrawApp draws with the index fingertip while the pinch is closed.
//
// Commands may come from any goroutine; they are queued and applied by the
// loop at the top of the next frame, so only the loop touches the canvas.
// Finishing saves the canvas and parks the loop: no frames are read until a
// clear reopens the session. DrawApp implements api.CanvasController.
type DrawApp struct {
	cfg     DrawConfig
	src     frameSource
	session *recorder
	cmds    chan command
	done    chan struct{}
	once    sync.Once

	mu      sync.RWMutex
	png     []byte
	state   api.CanvasState
	drawing string

	frames int
}

// NewDrawApp creates a DrawApp.
func NewDrawApp(cfg DrawConfig) *DrawApp {
	if cfg.Events == nil {
		cfg.Events = nopPublisher{}
	}
	return &DrawApp{
		cfg:  cfg,
		src:  frameSource{camera: cfg.Camera, detector: cfg.Detector},
		cmds: make(chan command, 8),
		done: make(chan struct{}),
	}
}

// Run opens the camera and draws until ctx is cancelled, the quit key is
// pressed, or a frame cannot be read. Run may be called once.
func (a *DrawApp) Run(ctx context.Context) (err error) {
	a.session = startSession(a.cfg.Store, store.AppDraw)
	defer func() { a.session.end(a.frames, err) }()
	defer a.once.Do(func() { close(a.done) })
	defer closeSurface(a.cfg.Surface)
	defer a.src.close()

	if err := a.src.open(); err != nil {
		return err
	}

	a.refresh(true)
	slog.Info("drawing started")
	err = Loop(ctx, a.step)

	t := a.cfg.Tracker
	a.refresh(true)
	a.mu.Lock()
	a.state.Running = false
	a.mu.Unlock()

	slog.Info("drawing stopped", "frames", a.frames, "segments", t.Segments(), "finished", t.Finished(), "error", err)
	return err
}

// Done is closed when Run returns.
func (a *DrawApp) Done() <-chan struct{} {
	return a.done
}

// Snapshot returns the latest canvas PNG and state. Safe for concurrent use.
func (a *DrawApp) Snapshot() ([]byte, api.CanvasState) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.png, a.state
}

// Drawing returns the id of the stored drawing once a finished session
// has been saved.
func (a *DrawApp) Drawing() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.drawing
}

// Clear blanks the canvas. Safe for concurrent use.
func (a *DrawApp) Clear() error {
	_, err := a.send(cmdClear)
	return err
}

// Undo removes the last segment and reports whether there was one.
// Safe for concurrent use.
func (a *DrawApp) Undo() (bool, error) {
	return a.send(cmdUndo)
}

// Finish ends the session. Safe for concurrent use.
func (a *DrawApp) Finish() error {
	_, err := a.send(cmdFinish)
	return err
}

func (a *DrawApp) send(kind commandKind) (bool, error) {
	cmd := command{kind: kind, reply: make(chan bool, 1)}
	select {
	case a.cmds <- cmd:
	case <-a.done:
		return false, ErrSessionClosed
	}

	select {
	case changed := <-cmd.reply:
		return changed, nil
	case <-a.done:
		select {
		case changed := <-cmd.reply:
			return changed, nil
		default:
			return false, ErrSessionClosed
		}
	}
}

// drain applies every queued command.
func (a *DrawApp) drain() {
	for {
		select {
		case cmd := <-a.cmds:
			a.handle(cmd)
		default:
			return
		}
	}
}

// handle applies cmd and refreshes the snapshot before replying, so a
// caller that reads Snapshot afterwards sees the result.
func (a *DrawApp) handle(cmd command) {
	changed := a.apply(cmd.kind)
	if changed {
		a.refresh(true)
	}
	cmd.reply <- changed
}

func (a *DrawApp) apply(kind commandKind) bool {
	t := a.cfg.Tracker
	switch kind {
	case cmdClear:
		t.Clear()
		slog.Info("canvas cleared")
		a.cfg.Events.Publish("clear", nil)
		return true
	case cmdUndo:
		if !t.Undo() {
			return false
		}
		a.cfg.Events.Publish("undo", map[string]int{"segments": t.Segments()})
		return true
	case cmdFinish:
		if t.Finished() {
			return false
		}
		t.Finish()
		slog.Info("drawing finished", "segments", t.Segments())
		a.cfg.Events.Publish("finish", map[string]int{"segments": t.Segments()})
		a.save()
		return true
	}
	return false
}

func (a *DrawApp) step(ctx context.Context) (bool, error) {
	t := a.cfg.Tracker
	a.drain()
	if t.Finished() {
		return a.park(ctx)
	}
	dirty := false

	frame, err := a.src.read()
	if err != nil {
		return true, err
	}
	defer frame.Close()
	a.frames++

	size := t.Canvas().Size()
	if frame.Cols() != size.X || frame.Rows() != size.Y {
		gocv.Resize(*frame, frame, size, 0, 0, gocv.InterpolationLinear)
	}

	hands, err := a.src.detect(frame)
	if err != nil {
		return true, err
	}
	points := pixels(hands, frame)
	out := t.Step(points)
	if out.Drew {
		dirty = true
		a.cfg.Events.Publish("segment", map[string]any{
			"from":     out.Segment[0],
			"to":       out.Segment[1],
			"segments": t.Segments(),
		})
	}

	a.overlay(frame, points, out)
	if err := a.cfg.Surface.Show(frame); err != nil {
		slog.Debug("display failed", "error", err)
	}

	switch a.cfg.Surface.Key() {
	case keyQuit:
		a.refresh(dirty)
		return true, nil
	case keyClear:
		dirty = a.apply(cmdClear) || dirty
	case keyUndo:
		dirty = a.apply(cmdUndo) || dirty
	case keyFinish:
		dirty = a.apply(cmdFinish) || dirty
	}

	a.refresh(dirty)
	return false, nil
}

// park waits while the session is finished. Commands are still applied and
// the window is polled for keys; a clear resumes drawing.
func (a *DrawApp) park(ctx context.Context) (bool, error) {
	tick := time.NewTicker(parkPoll)
	defer tick.Stop()

	for a.cfg.Tracker.Finished() {
		select {
		case <-ctx.Done():
			return true, nil
		case cmd := <-a.cmds:
			a.handle(cmd)
		case <-tick.C:
			switch a.cfg.Surface.Key() {
			case keyQuit:
				return true, nil
			case keyClear:
				a.apply(cmdClear)
				a.refresh(true)
			}
		}
	}
	slog.Info("drawing resumed")
	return false, nil
}

func (a *DrawApp) overlay(frame *gocv.Mat, points []image.Point, out sketch.Outcome) {
	t := a.cfg.Tracker
	display.Composite(frame, t.Canvas().Mat())
	display.DrawHand(frame, points)
	if out.Hand && !out.Partial {
		display.DrawCursor(frame, out.Point, out.Touching, t.Config().Color)
	}
	display.DrawText(frame,
		fmt.Sprintf("%s  segments %d", t.State(), t.Segments()),
		"c clear  u undo  f finish",
	)
}

// refresh re-encodes the canvas when dirty and updates the state summary.
func (a *DrawApp) refresh(dirty bool) {
	t := a.cfg.Tracker
	var png []byte
	if dirty {
		var err error
		if png, err = t.Canvas().EncodePNG(); err != nil {
			slog.Warn("encoding canvas", "error", err)
		}
	}

	size := t.Canvas().Size()
	a.mu.Lock()
	defer a.mu.Unlock()
	if png != nil {
		a.png = png
	}
	a.state = api.CanvasState{
		Width:    size.X,
		Height:   size.Y,
		Segments: t.Segments(),
		History:  t.HistoryLen(),
		Finished: t.Finished(),
		Running:  true,
	}
}

func (a *DrawApp) save() {
	png, err := a.cfg.Tracker.Canvas().EncodePNG()
	if err != nil {
		slog.Warn("encoding finished canvas", "error", err)
		return
	}
	if a.cfg.Store == nil {
		return
	}

	size := a.cfg.Tracker.Canvas().Size()
	d := &store.Drawing{
		SessionID: a.session.id,
		Width:     size.X,
		Height:    size.Y,
		Segments:  a.cfg.Tracker.Segments(),
		PNG:       png,
	}
	if err := a.cfg.Store.Drawings().Create(d); err != nil {
		slog.Warn("saving drawing", "error", err)
		return
	}

	a.mu.Lock()
	a.drawing = d.ID
	a.mu.Unlock()
	slog.Info("drawing saved", "drawing", d.ID, "segments", d.Segments)
	a.cfg.Events.Publish("saved", map[string]string{"id": d.ID})
}
