package sketch

import (
	"image"
	"image/color"
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

// Config controls stroke geometry and canvas size.
type Config struct {
	Width  int
	Height int
	// TouchThreshold is the thumb-tip to index-MCP distance, in pixels,
	// below which the pinch counts as closed.
	TouchThreshold float64
	Color          color.RGBA
	Thickness      int
	// HistoryLimit caps undo snapshots; 0 keeps all of them.
	HistoryLimit int
}

// DefaultConfig returns a 640x480 canvas with a 30 px touch threshold.
func DefaultConfig() Config {
	return Config{
		Width:          640,
		Height:         480,
		TouchThreshold: 30,
		Color:          color.RGBA{R: 255, G: 0, B: 255, A: 255},
		Thickness:      5,
	}
}

// State is the drawing activity.
type State int

const (
	// Idle has no stroke anchor.
	Idle State = iota
	// Active has an anchor; the next closed-pinch frame draws from it.
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

// Outcome describes what one Step did.
type Outcome struct {
	Hand     bool
	Partial  bool
	Finished bool
	// Touching is set when the pinch was closed.
	Touching bool
	Point    image.Point
	Distance float64
	// Drew is set when Segment was added to the canvas.
	Drew    bool
	Segment [2]image.Point
}

// Tracker owns one drawing session: the canvas, its undo history and the
// stroke anchor. It is not safe for concurrent use.
type Tracker struct {
	cfg      Config
	canvas   *Canvas
	history  *History
	prev     image.Point
	hasPrev  bool
	finished bool
	segments int
}

// NewTracker starts a session on a blank canvas.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		cfg:     cfg,
		canvas:  NewCanvas(cfg.Width, cfg.Height),
		history: NewHistory(cfg.HistoryLimit),
	}
}

// Step processes one frame of pixel landmarks.
func (t *Tracker) Step(points []image.Point) Outcome {
	if t.finished {
		return Outcome{Finished: true, Hand: len(points) > 0}
	}

	if len(points) == 0 {
		t.hasPrev = false
		return Outcome{}
	}
	if len(points) != detector.NumLandmarks {
		return Outcome{Hand: true, Partial: true}
	}

	tip := points[detector.IndexTip]
	dist := distance(points[detector.ThumbTip], points[detector.IndexMCP])
	out := Outcome{Hand: true, Point: tip, Distance: dist}

	if dist >= t.cfg.TouchThreshold {
		t.hasPrev = false
		return out
	}

	out.Touching = true
	if t.hasPrev {
		t.history.Push(t.canvas.Clone())
		t.canvas.Line(t.prev, tip, t.cfg.Color, t.cfg.Thickness)
		t.segments++
		out.Drew = true
		out.Segment = [2]image.Point{t.prev, tip}
	}
	t.prev = tip
	t.hasPrev = true
	return out
}

func distance(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// Clear blanks the canvas, empties the history and reopens a finished
// session.
func (t *Tracker) Clear() {
	t.canvas.Reset()
	t.history.Clear()
	t.hasPrev = false
	t.finished = false
	t.segments = 0
}

// Undo restores the canvas to the snapshot taken before the last segment.
// It reports false when there is nothing to undo or the session is finished.
func (t *Tracker) Undo() bool {
	if t.finished {
		return false
	}
	snap, ok := t.history.Pop()
	if !ok {
		return false
	}
	t.canvas.replace(snap)
	t.segments--
	return true
}

// Finish freezes the session. Only Clear undoes it.
func (t *Tracker) Finish() {
	t.finished = true
	t.hasPrev = false
}

// Config returns the settings the tracker was created with.
func (t *Tracker) Config() Config {
	return t.cfg
}

// Finished reports whether Finish was called since the last Clear.
func (t *Tracker) Finished() bool {
	return t.finished
}

// State reports whether a stroke anchor is set.
func (t *Tracker) State() State {
	if t.hasPrev {
		return Active
	}
	return Idle
}

// Prev returns the stroke anchor, if any.
func (t *Tracker) Prev() (image.Point, bool) {
	return t.prev, t.hasPrev
}

// Canvas returns the live canvas. Callers must not modify or close it.
func (t *Tracker) Canvas() *Canvas {
	return t.canvas
}

// HistoryLen returns the number of undo snapshots.
func (t *Tracker) HistoryLen() int {
	return t.history.Len()
}

// Segments returns the number of segments currently on the canvas.
func (t *Tracker) Segments() int {
	return t.segments
}

// Close releases the canvas and every snapshot.
func (t *Tracker) Close() error {
	t.history.Clear()
	return t.canvas.Close()
}
