// Package display shows composed frames and reads window keys.
package display

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// NoKey is returned by Key when nothing was pressed.
const NoKey = -1

// Surface receives every composed frame. Key polls the keyboard once per
// frame and returns NoKey when idle.
type Surface interface {
	Show(frame *gocv.Mat) error
	Key() int
	Close() error
}

// Window is a HighGUI window. It must be used from the goroutine that
// created it.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window titled title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

func (w *Window) Show(frame *gocv.Mat) error {
	w.win.IMShow(*frame)
	return nil
}

// Key waits one millisecond for a key press.
func (w *Window) Key() int {
	k := w.win.WaitKey(1)
	if k < 0 {
		return NoKey
	}
	return k & 0xff
}

func (w *Window) Close() error {
	return w.win.Close()
}

// Null discards frames. Keys queued with Press are returned one per poll.
type Null struct {
	mu     sync.Mutex
	shown  int
	keys   []int
	closed bool
}

// NewNull returns an empty Null surface.
func NewNull() *Null {
	return &Null{}
}

// Press queues keys for subsequent Key calls.
func (n *Null) Press(keys ...int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.keys = append(n.keys, keys...)
}

func (n *Null) Show(frame *gocv.Mat) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shown++
	return nil
}

func (n *Null) Key() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.keys) == 0 {
		return NoKey
	}
	k := n.keys[0]
	n.keys = n.keys[1:]
	return k
}

func (n *Null) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	return nil
}

// Shown returns how many frames were shown.
func (n *Null) Shown() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.shown
}

// Closed reports whether Close was called.
func (n *Null) Closed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed
}

// Multi fans frames out to several surfaces and returns the first key any
// of them reports.
type Multi []Surface

func (m Multi) Show(frame *gocv.Mat) error {
	var errs []error
	for _, s := range m {
		if err := s.Show(frame); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Key() int {
	key := NoKey
	for _, s := range m {
		if k := s.Key(); k != NoKey && key == NoKey {
			key = k
		}
	}
	return key
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
