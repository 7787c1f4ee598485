package gesture

import (
	"errors"
	"testing"

	"github.com/ayusman/mudra/internal/keys"
)

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()
	if err := table.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	want := map[string]Action{
		"11111": Dodge,
		"00001": MoveLeft,
		"01001": JumpLeft,
		"01000": Jump,
		"00111": Up,
		"00011": Down,
		"10000": MoveRight,
		"11000": JumpRight,
		"01111": Health,
		"00110": Parry,
		"00000": Attack,
	}
	if len(table) != len(want) {
		t.Fatalf("expected %d bindings, got %d", len(want), len(table))
	}

	for text, action := range want {
		s, err := ParseFingerState(text)
		if err != nil {
			t.Fatal(err)
		}
		b, ok := table.Lookup(s)
		if !ok {
			t.Errorf("%s: no binding", text)
			continue
		}
		if b.Action != action {
			t.Errorf("%s: action = %s, want %s", text, b.Action, action)
		}
	}

	if k, _ := table.MoveKey(Left); k != keys.A {
		t.Errorf("left key = %q, want a", k)
	}
	if k, _ := table.MoveKey(Right); k != keys.D {
		t.Errorf("right key = %q, want d", k)
	}
}

func TestTable_Validate(t *testing.T) {
	hold := func(d Direction, k keys.Key) Binding {
		return Binding{Action: "move", Kind: KindHold, Keys: []keys.Key{k}, Dir: d}
	}

	tests := []struct {
		name  string
		table Table
	}{
		{"missing action", Table{0: {Kind: KindPress, Keys: []keys.Key{keys.T}}}},
		{"unknown kind", Table{0: {Action: "x", Kind: "tap", Keys: []keys.Key{keys.T}}}},
		{"unknown key", Table{0: {Action: "x", Kind: KindPress, Keys: []keys.Key{"hyper"}}}},
		{"press without key", Table{0: {Action: "x", Kind: KindPress}}},
		{"hold without direction", Table{1: {Action: "x", Kind: KindHold, Keys: []keys.Key{keys.A}}}},
		{"two holds one direction", Table{1: hold(Left, keys.A), 2: hold(Left, keys.D)}},
		{"combo without hold", Table{9: {Action: "x", Kind: KindCombo, Keys: []keys.Key{keys.Space}, Dir: Left}}},
		{"state out of range", Table{0x20: {Action: "x", Kind: KindPress, Keys: []keys.Key{keys.T}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.table.Validate(); !errors.Is(err, ErrInvalidTable) {
				t.Errorf("expected ErrInvalidTable, got %v", err)
			}
		})
	}
}

func TestParseTable(t *testing.T) {
	table, err := ParseTable(map[string]Binding{
		"0,0,0,0,1": {Action: MoveLeft, Kind: KindHold, Keys: []keys.Key{keys.A}, Dir: Left},
		"01001":     {Action: JumpLeft, Kind: KindCombo, Keys: []keys.Key{keys.Space, keys.A}, Dir: Left},
	})
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if b, ok := table.Lookup(Pinky); !ok || b.Action != MoveLeft {
		t.Errorf("00001 not bound to move-left: %+v", b)
	}

	if _, err := ParseTable(map[string]Binding{"01001": {}, "0,1,0,0,1": {}}); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("duplicate state: expected ErrInvalidTable, got %v", err)
	}
	if _, err := ParseTable(map[string]Binding{"2": {}}); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("bad state: expected ErrInvalidTable, got %v", err)
	}
}

func TestParseTable_NormalizesKeys(t *testing.T) {
	raw := []keys.Key{" SPACE", "A "}
	table, err := ParseTable(map[string]Binding{
		"00001": {Action: MoveLeft, Kind: KindHold, Keys: []keys.Key{"A"}, Dir: Left},
		"01001": {Action: JumpLeft, Kind: KindCombo, Keys: raw, Dir: Left},
	})
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}

	if k, ok := table.MoveKey(Left); !ok || k != keys.A {
		t.Errorf("MoveKey(Left) = %q, want %q", k, keys.A)
	}
	b, _ := table.Lookup(Index | Pinky)
	if len(b.Keys) != 2 || b.Keys[0] != keys.Space || b.Keys[1] != keys.A {
		t.Errorf("combo keys = %q, want [space a]", b.Keys)
	}
	if raw[0] != " SPACE" {
		t.Error("ParseTable should not modify the caller's key slice")
	}
	if _, err := ParseTable(map[string]Binding{
		"00001": {Action: MoveLeft, Kind: KindHold, Keys: []keys.Key{"hyper"}, Dir: Left},
	}); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("unknown key: expected ErrInvalidTable, got %v", err)
	}
}
