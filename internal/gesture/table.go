package gesture

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ayusman/mudra/internal/keys"
)

// Action names what a binding does in the game.
type Action string

// Actions of the default table.
const (
	Dodge     Action = "dodge"
	MoveLeft  Action = "move-left"
	JumpLeft  Action = "jump-left"
	Jump      Action = "jump"
	Up        Action = "up"
	Down      Action = "down"
	MoveRight Action = "move-right"
	JumpRight Action = "jump-right"
	Health    Action = "health"
	Parry     Action = "parry"
	Attack    Action = "attack"
)

// Kind selects how a binding drives the key sink.
type Kind string

const (
	// KindPress taps one key, gated by the cooldown.
	KindPress Kind = "press"
	// KindHold holds a movement key down until the hand leaves the pose.
	// Only edges emit events and the cooldown does not apply.
	KindHold Kind = "hold"
	// KindCombo fires only while its direction is held: the movement key is
	// released, the hotkey pressed, and the movement key held again.
	// Gated by the cooldown.
	KindCombo Kind = "combo"
)

// Direction is a horizontal movement direction.
type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
)

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Left {
		return Right
	}
	return Left
}

// Binding is the action a FingerState maps to.
type Binding struct {
	Action Action     `yaml:"action" json:"action"`
	Kind   Kind       `yaml:"kind" json:"kind"`
	Keys   []keys.Key `yaml:"keys" json:"keys"`
	Dir    Direction  `yaml:"dir,omitempty" json:"dir,omitempty"`
}

// Table maps finger states to bindings. States without an entry fall back
// to releasing the movement keys.
type Table map[FingerState]Binding

// DefaultTable returns the eleven-pose game layout.
func DefaultTable() Table {
	return Table{
		0b11111: {Action: Dodge, Kind: KindPress, Keys: []keys.Key{keys.Shift}},
		0b00001: {Action: MoveLeft, Kind: KindHold, Keys: []keys.Key{keys.A}, Dir: Left},
		0b01001: {Action: JumpLeft, Kind: KindCombo, Keys: []keys.Key{keys.Space, keys.A}, Dir: Left},
		0b01000: {Action: Jump, Kind: KindPress, Keys: []keys.Key{keys.Space}},
		0b00111: {Action: Up, Kind: KindPress, Keys: []keys.Key{keys.W}},
		0b00011: {Action: Down, Kind: KindPress, Keys: []keys.Key{keys.S}},
		0b10000: {Action: MoveRight, Kind: KindHold, Keys: []keys.Key{keys.D}, Dir: Right},
		0b11000: {Action: JumpRight, Kind: KindCombo, Keys: []keys.Key{keys.Space, keys.D}, Dir: Right},
		0b01111: {Action: Health, Kind: KindPress, Keys: []keys.Key{keys.F}},
		0b00110: {Action: Parry, Kind: KindPress, Keys: []keys.Key{keys.R}},
		0b00000: {Action: Attack, Kind: KindPress, Keys: []keys.Key{keys.T}},
	}
}

// ErrInvalidTable wraps every Validate failure.
var ErrInvalidTable = errors.New("invalid gesture table")

// Validate checks every binding and the movement layout: at most one hold
// binding per direction, and a combo only for a direction that has one.
func (t Table) Validate() error {
	holds := make(map[Direction]FingerState)
	for _, state := range t.States() {
		b := t[state]
		if state&^fingerMask != 0 {
			return fmt.Errorf("%w: state %d out of range", ErrInvalidTable, state)
		}
		if b.Action == "" {
			return fmt.Errorf("%w: %s has no action", ErrInvalidTable, state)
		}
		for _, k := range b.Keys {
			if _, err := keys.ParseKey(string(k)); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidTable, state, err)
			}
		}

		switch b.Kind {
		case KindPress:
			if len(b.Keys) != 1 {
				return fmt.Errorf("%w: %s: press needs exactly one key", ErrInvalidTable, state)
			}
		case KindHold:
			if len(b.Keys) != 1 {
				return fmt.Errorf("%w: %s: hold needs exactly one key", ErrInvalidTable, state)
			}
			if b.Dir != Left && b.Dir != Right {
				return fmt.Errorf("%w: %s: hold needs a direction", ErrInvalidTable, state)
			}
			if other, dup := holds[b.Dir]; dup {
				return fmt.Errorf("%w: %s and %s both hold %s", ErrInvalidTable, other, state, b.Dir)
			}
			holds[b.Dir] = state
		case KindCombo:
			if len(b.Keys) == 0 {
				return fmt.Errorf("%w: %s: combo needs keys", ErrInvalidTable, state)
			}
			if b.Dir != Left && b.Dir != Right {
				return fmt.Errorf("%w: %s: combo needs a direction", ErrInvalidTable, state)
			}
		default:
			return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidTable, state, b.Kind)
		}
	}

	for _, state := range t.States() {
		b := t[state]
		if b.Kind != KindCombo {
			continue
		}
		if _, ok := holds[b.Dir]; !ok {
			return fmt.Errorf("%w: %s: no hold binding for %s", ErrInvalidTable, state, b.Dir)
		}
	}
	return nil
}

// States returns the bound states in ascending order.
func (t Table) States() []FingerState {
	states := make([]FingerState, 0, len(t))
	for s := range t {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })
	return states
}

// MoveKey returns the key held for direction d.
func (t Table) MoveKey(d Direction) (keys.Key, bool) {
	for _, b := range t {
		if b.Kind == KindHold && b.Dir == d {
			return b.Keys[0], true
		}
	}
	return "", false
}

// Lookup returns the binding for s.
func (t Table) Lookup(s FingerState) (Binding, bool) {
	b, ok := t[s]
	return b, ok
}

// ParseTable converts a string-keyed layout, as read from configuration,
// into a validated Table. Key names are normalized to their canonical form.
func ParseTable(raw map[string]Binding) (Table, error) {
	t := make(Table, len(raw))
	for text, b := range raw {
		s, err := ParseFingerState(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
		}
		if _, dup := t[s]; dup {
			return nil, fmt.Errorf("%w: %s bound twice", ErrInvalidTable, s)
		}
		names := make([]keys.Key, len(b.Keys))
		for i, k := range b.Keys {
			key, err := keys.ParseKey(string(k))
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTable, s, err)
			}
			names[i] = key
		}
		b.Keys = names
		t[s] = b
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
