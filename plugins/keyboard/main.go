// Package main is the keyboard plugin. It reads one key request on stdin
// and drives the desktop keyboard with xdotool on Linux or System Events
// on macOS.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Request is the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params"`
}

// Response is written to stdout.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// KeyParams names the keys an action applies to.
type KeyParams struct {
	Keys []string `json:"keys"`
}

var errNoKeys = errors.New("keys are required")

// xdotoolNames maps key names to X keysyms. Letters, digits and the
// modifier aliases pass through unchanged.
var xdotoolNames = map[string]string{
	"enter": "Return",
	"esc":   "Escape",
	"tab":   "Tab",
	"up":    "Up",
	"down":  "Down",
	"left":  "Left",
	"right": "Right",
}

// macKeyCodes maps key names to macOS virtual key codes (ANSI layout).
var macKeyCodes = map[string]int{
	"a": 0, "s": 1, "d": 2, "f": 3, "h": 4, "g": 5, "z": 6, "x": 7,
	"c": 8, "v": 9, "b": 11, "q": 12, "w": 13, "e": 14, "r": 15, "y": 16,
	"t": 17, "o": 31, "u": 32, "i": 34, "p": 35, "l": 37, "j": 38, "k": 40,
	"n": 45, "m": 46,
	"1": 18, "2": 19, "3": 20, "4": 21, "6": 22, "5": 23, "9": 25, "7": 26,
	"8": 28, "0": 29,
	"enter": 36, "tab": 48, "space": 49, "esc": 53,
	"shift": 56, "alt": 58, "ctrl": 59,
	"left": 123, "right": 124, "down": 125, "up": 126,
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		respond(fmt.Errorf("failed to decode request: %w", err))
		return
	}
	respond(handle(req))
}

func handle(req Request) error {
	var p KeyParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return fmt.Errorf("failed to parse params: %w", err)
		}
	}
	if len(p.Keys) == 0 {
		return errNoKeys
	}

	args, err := command(runtime.GOOS, req.Action, p.Keys)
	if err != nil {
		return err
	}
	return run(args)
}

// command builds the argv that performs action on keys for goos.
func command(goos, action string, keys []string) ([]string, error) {
	switch goos {
	case "linux":
		return xdotool(action, keys)
	case "darwin":
		script, err := appleScript(action, keys)
		if err != nil {
			return nil, err
		}
		return []string{"osascript", "-e", script}, nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

func xdotool(action string, keys []string) ([]string, error) {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k
		if n, ok := xdotoolNames[k]; ok {
			names[i] = n
		}
	}

	switch action {
	case "keydown":
		return append([]string{"xdotool", "keydown"}, names...), nil
	case "keyup":
		return append([]string{"xdotool", "keyup"}, names...), nil
	case "press":
		return append([]string{"xdotool", "key"}, names...), nil
	case "hotkey":
		return []string{"xdotool", "key", strings.Join(names, "+")}, nil
	default:
		return nil, fmt.Errorf("unknown action: %s", action)
	}
}

func appleScript(action string, keys []string) (string, error) {
	codes := make([]int, len(keys))
	for i, k := range keys {
		c, ok := macKeyCodes[k]
		if !ok {
			return "", fmt.Errorf("unknown key: %s", k)
		}
		codes[i] = c
	}

	var lines []string
	switch action {
	case "keydown":
		for _, c := range codes {
			lines = append(lines, fmt.Sprintf("key down (key code %d)", c))
		}
	case "keyup":
		for _, c := range codes {
			lines = append(lines, fmt.Sprintf("key up (key code %d)", c))
		}
	case "press":
		for _, c := range codes {
			lines = append(lines, fmt.Sprintf("key code %d", c))
		}
	case "hotkey":
		for _, c := range codes {
			lines = append(lines, fmt.Sprintf("key down (key code %d)", c))
		}
		for i := len(codes) - 1; i >= 0; i-- {
			lines = append(lines, fmt.Sprintf("key up (key code %d)", codes[i]))
		}
	default:
		return "", fmt.Errorf("unknown action: %s", action)
	}

	return "tell application \"System Events\"\n" + strings.Join(lines, "\n") + "\nend tell", nil
}

func run(args []string) error {
	out, err := exec.Command(args[0], args[1:]...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func respond(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
