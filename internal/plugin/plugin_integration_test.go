package plugin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestPlugin_Keyboard_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dir := findPluginDir("keyboard")
	if dir == "" {
		t.Skip("keyboard plugin not built")
	}

	mgr := NewManager(filepath.Dir(dir))
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	plug, err := mgr.Get("keyboard")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, err := os.Stat(plug.Executable); err != nil {
		t.Skip("keyboard plugin binary not built")
	}

	executor := NewExecutor(5000)

	// Requests the plugin must reject without touching the keyboard.
	tests := []struct {
		name string
		req  *Request
	}{
		{"empty keys", &Request{Action: "press", Params: json.RawMessage(`{"keys":[]}`)}},
		{"unknown action", &Request{Action: "scroll", Params: json.RawMessage(`{"keys":["a"]}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := executor.Execute(context.Background(), plug, tt.req)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if resp.Success {
				t.Error("expected failure response")
			}
		})
	}
}

func findPluginDir(name string) string {
	for _, dir := range []string{
		filepath.Join("../../plugins", name),
		filepath.Join("../../../plugins", name),
	} {
		if _, err := os.Stat(filepath.Join(dir, manifestFile)); err == nil {
			return dir
		}
	}
	return ""
}
