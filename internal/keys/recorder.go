package keys

import "sync"

// Recorder is a Sink that records every event instead of delivering it.
// It is used by tests and by the "log" sink.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// SetError makes every subsequent call fail with err (after recording).
func (r *Recorder) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recorder) record(kind EventKind, ks ...Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: kind, Keys: append([]Key(nil), ks...)})
	return r.err
}

func (r *Recorder) KeyDown(k Key) error    { return r.record(EventDown, k) }
func (r *Recorder) KeyUp(k Key) error      { return r.record(EventUp, k) }
func (r *Recorder) Press(k Key) error      { return r.record(EventPress, k) }
func (r *Recorder) Hotkey(ks ...Key) error { return r.record(EventHotkey, ks...) }

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Strings returns the recorded events rendered with Event.String.
func (r *Recorder) Strings() []string {
	events := r.Events()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.String()
	}
	return out
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
