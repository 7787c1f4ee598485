package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/ayusman/mudra/internal/keys"
)

func TestCommand_Linux(t *testing.T) {
	tests := []struct {
		action string
		keys   []string
		want   string
	}{
		{"keydown", []string{"a"}, "xdotool keydown a"},
		{"keyup", []string{"d"}, "xdotool keyup d"},
		{"press", []string{"space"}, "xdotool key space"},
		{"hotkey", []string{"space", "a"}, "xdotool key space+a"},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			args, err := command("linux", tt.action, tt.keys)
			if err != nil {
				t.Fatalf("command() error = %v", err)
			}
			if got := strings.Join(args, " "); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommand_Darwin(t *testing.T) {
	args, err := command("darwin", "hotkey", []string{"space", "d"})
	if err != nil {
		t.Fatalf("command() error = %v", err)
	}
	if args[0] != "osascript" {
		t.Fatalf("expected osascript, got %q", args[0])
	}

	script := args[2]
	down := strings.Index(script, "key down (key code 2)")
	up := strings.Index(script, "key up (key code 2)")
	spaceUp := strings.Index(script, "key up (key code 49)")
	if down < 0 || up < down || spaceUp < up {
		t.Errorf("unexpected hotkey order:\n%s", script)
	}

	if _, err := command("darwin", "press", []string{"f13"}); err == nil {
		t.Error("expected error for unknown mac key")
	}
}

func TestCommand_Errors(t *testing.T) {
	if _, err := command("linux", "scroll", []string{"a"}); err == nil {
		t.Error("expected error for unknown action")
	}
	if _, err := command("plan9", "press", []string{"a"}); err == nil {
		t.Error("expected error for unsupported platform")
	}
}

func TestHandle_NoKeys(t *testing.T) {
	err := handle(Request{Action: "press", Params: []byte(`{"keys":[]}`)})
	if !errors.Is(err, errNoKeys) {
		t.Errorf("expected errNoKeys, got %v", err)
	}
}

func TestCommand_EveryKnownKey(t *testing.T) {
	for _, k := range keys.Names() {
		for _, goos := range []string{"linux", "darwin"} {
			if _, err := command(goos, "press", []string{string(k)}); err != nil {
				t.Errorf("%s press %q: %v", goos, k, err)
			}
		}
	}
}

func TestCommand_LinuxKeysyms(t *testing.T) {
	args, err := command("linux", "hotkey", []string{"ctrl", "enter"})
	if err != nil {
		t.Fatalf("command() error = %v", err)
	}
	if got := strings.Join(args, " "); got != "xdotool key ctrl+Return" {
		t.Errorf("got %q", got)
	}
}
