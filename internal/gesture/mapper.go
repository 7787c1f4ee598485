package gesture

import (
	"fmt"
	"image"
	"time"

	"github.com/ayusman/mudra/internal/keys"
)

// Movement mirrors the movement keys currently held down through the sink.
type Movement struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// Held reports whether direction d is held.
func (m Movement) Held(d Direction) bool {
	if d == Left {
		return m.Left
	}
	return m.Right
}

func (m *Movement) set(d Direction, v bool) {
	if d == Left {
		m.Left = v
	} else {
		m.Right = v
	}
}

// Outcome describes what one Step did.
type Outcome struct {
	// Hand is false when the frame had no landmarks at all.
	Hand bool `json:"hand"`
	// Partial is set when the landmarks were incomplete and ignored.
	Partial bool        `json:"partial,omitempty"`
	State   FingerState `json:"state"`
	// Action is the matched binding's action, empty on fallback.
	Action Action `json:"action,omitempty"`
	// Fired is set when a discrete action went through the cooldown.
	Fired    bool         `json:"fired"`
	Events   []keys.Event `json:"events,omitempty"`
	Movement Movement     `json:"movement"`
}

// Mapper holds the per-session state of the gesture-to-keys mapping: the
// held movement keys and the cooldown. It is not safe for concurrent use.
type Mapper struct {
	table    Table
	sink     keys.Sink
	cooldown Cooldown
	move     Movement
	moveKeys map[Direction]keys.Key
}

// NewMapper validates table and creates a Mapper that emits to sink.
func NewMapper(table Table, sink keys.Sink, cooldown time.Duration) (*Mapper, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}

	m := &Mapper{
		table:    table,
		sink:     sink,
		cooldown: Cooldown{Window: cooldown},
		moveKeys: make(map[Direction]keys.Key),
	}
	for _, d := range []Direction{Left, Right} {
		if k, ok := table.MoveKey(d); ok {
			m.moveKeys[d] = k
		}
	}
	return m, nil
}

// Movement returns the currently held movement keys.
func (m *Mapper) Movement() Movement {
	return m.move
}

// Step processes one frame of pixel landmarks taken at now.
//
// No landmarks releases any held movement key. An incomplete set changes
// nothing. Otherwise the FingerState's binding is applied; a state without
// a binding releases the movement keys.
func (m *Mapper) Step(now time.Time, points []image.Point) (Outcome, error) {
	var out Outcome

	if len(points) == 0 {
		err := m.release(&out)
		out.Movement = m.move
		return out, err
	}

	out.Hand = true
	state, ok := Fingers(points)
	if !ok {
		out.Partial = true
		out.Movement = m.move
		return out, nil
	}
	out.State = state

	var err error
	b, bound := m.table.Lookup(state)
	if bound {
		out.Action = b.Action
		err = m.apply(now, b, &out)
	} else {
		err = m.release(&out)
	}

	out.Movement = m.move
	return out, err
}

// Release lets go of every held movement key, right first.
func (m *Mapper) Release() (Outcome, error) {
	var out Outcome
	err := m.release(&out)
	out.Movement = m.move
	return out, err
}

func (m *Mapper) apply(now time.Time, b Binding, out *Outcome) error {
	switch b.Kind {
	case KindPress:
		if !m.cooldown.Ready(now) {
			return nil
		}
		if err := m.emit(out, keys.EventPress, b.Keys...); err != nil {
			return err
		}
		m.cooldown.Mark(now)
		out.Fired = true

	case KindHold:
		if !m.move.Held(b.Dir) {
			if err := m.down(out, b.Dir); err != nil {
				return err
			}
		}
		if m.move.Held(b.Dir.Opposite()) {
			if err := m.up(out, b.Dir.Opposite()); err != nil {
				return err
			}
		}

	case KindCombo:
		if !m.move.Held(b.Dir) || !m.cooldown.Ready(now) {
			return nil
		}
		if err := m.up(out, b.Dir); err != nil {
			return err
		}
		if err := m.emit(out, keys.EventHotkey, b.Keys...); err != nil {
			return err
		}
		if err := m.down(out, b.Dir); err != nil {
			return err
		}
		m.cooldown.Mark(now)
		out.Fired = true

	default:
		return fmt.Errorf("binding %s: unknown kind %q", b.Action, b.Kind)
	}
	return nil
}

func (m *Mapper) release(out *Outcome) error {
	for _, d := range []Direction{Right, Left} {
		if !m.move.Held(d) {
			continue
		}
		if err := m.up(out, d); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mapper) down(out *Outcome, d Direction) error {
	if err := m.emit(out, keys.EventDown, m.moveKeys[d]); err != nil {
		return err
	}
	m.move.set(d, true)
	return nil
}

func (m *Mapper) up(out *Outcome, d Direction) error {
	if err := m.emit(out, keys.EventUp, m.moveKeys[d]); err != nil {
		return err
	}
	m.move.set(d, false)
	return nil
}

func (m *Mapper) emit(out *Outcome, kind keys.EventKind, ks ...keys.Key) error {
	var err error
	switch kind {
	case keys.EventDown:
		err = m.sink.KeyDown(ks[0])
	case keys.EventUp:
		err = m.sink.KeyUp(ks[0])
	case keys.EventPress:
		err = m.sink.Press(ks[0])
	case keys.EventHotkey:
		err = m.sink.Hotkey(ks...)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", keys.Event{Kind: kind, Keys: ks}, err)
	}
	out.Events = append(out.Events, keys.Event{Kind: kind, Keys: append([]keys.Key(nil), ks...)})
	return nil
}
