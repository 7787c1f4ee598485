package keys

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ayusman/mudra/internal/plugin"
)

// PluginSink forwards key events to a keyboard plugin executable.
// Each event is one plugin invocation with action "keydown", "keyup",
// "press" or "hotkey" and params {"keys": [...]}.
type PluginSink struct {
	plugin   *plugin.Plugin
	executor *plugin.Executor
}

// keyParams is the params payload sent to the keyboard plugin.
type keyParams struct {
	Keys []Key `json:"keys"`
}

// pluginActions are the actions a keyboard plugin must declare.
var pluginActions = []string{"keydown", "keyup", "press", "hotkey"}

// NewPluginSink looks up the named plugin in the manager and checks that it
// declares every key action.
func NewPluginSink(mgr *plugin.Manager, name string, exec *plugin.Executor) (*PluginSink, error) {
	p, err := mgr.Get(name)
	if err != nil {
		return nil, fmt.Errorf("keyboard plugin %q: %w", name, err)
	}
	for _, action := range pluginActions {
		if !p.Manifest.Supports(action) {
			return nil, fmt.Errorf("keyboard plugin %q does not support %q", name, action)
		}
	}
	return &PluginSink{plugin: p, executor: exec}, nil
}

func (s *PluginSink) send(action string, ks ...Key) error {
	params, err := json.Marshal(keyParams{Keys: ks})
	if err != nil {
		return err
	}

	resp, err := s.executor.Execute(context.Background(), s.plugin, &plugin.Request{
		Action: action,
		Params: params,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("plugin %s %s: %s", s.plugin.Manifest.Name, action, resp.Error)
	}
	return nil
}

func (s *PluginSink) KeyDown(k Key) error    { return s.send("keydown", k) }
func (s *PluginSink) KeyUp(k Key) error      { return s.send("keyup", k) }
func (s *PluginSink) Press(k Key) error      { return s.send("press", k) }
func (s *PluginSink) Hotkey(ks ...Key) error { return s.send("hotkey", ks...) }

// Close is a no-op; each event runs its own process.
func (s *PluginSink) Close() error { return nil }
