package keys

import (
	"fmt"
	"log/slog"

	"github.com/ayusman/mudra/internal/plugin"
)

// Sink backends selectable from configuration.
const (
	BackendRobot  = "robotgo"
	BackendUinput = "uinput"
	BackendPlugin = "plugin"
	BackendLog    = "log"
)

// Device is a Sink that holds an OS resource.
type Device interface {
	Sink
	Close() error
}

// Config selects and configures a Sink backend.
type Config struct {
	Backend    string
	UinputPath string
	PluginDir  string
	PluginName string
	TimeoutMs  int
}

// Open creates the configured Sink.
func Open(cfg Config) (Device, error) {
	switch cfg.Backend {
	case BackendRobot, "":
		return NewRobot(), nil
	case BackendUinput:
		u, err := OpenUinput(cfg.UinputPath)
		if err != nil {
			return nil, err
		}
		return u, nil
	case BackendPlugin:
		mgr := plugin.NewManager(cfg.PluginDir)
		if err := mgr.Discover(); err != nil {
			return nil, fmt.Errorf("discover plugins: %w", err)
		}
		ps, err := NewPluginSink(mgr, cfg.PluginName, plugin.NewExecutor(cfg.TimeoutMs))
		if err != nil {
			return nil, err
		}
		return ps, nil
	case BackendLog:
		return NewLogSink(slog.Default()), nil
	default:
		return nil, fmt.Errorf("unknown key sink %q", cfg.Backend)
	}
}

// LogSink logs every event instead of delivering it. Useful for dry runs.
type LogSink struct {
	log *slog.Logger
	rec *Recorder
}

// NewLogSink creates a LogSink writing to log.
func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log, rec: NewRecorder()}
}

func (s *LogSink) emit(kind EventKind, ks ...Key) error {
	e := Event{Kind: kind, Keys: ks}
	s.log.Info("key event", "event", e.String())
	return s.rec.record(kind, ks...)
}

func (s *LogSink) KeyDown(k Key) error    { return s.emit(EventDown, k) }
func (s *LogSink) KeyUp(k Key) error      { return s.emit(EventUp, k) }
func (s *LogSink) Press(k Key) error      { return s.emit(EventPress, k) }
func (s *LogSink) Hotkey(ks ...Key) error { return s.emit(EventHotkey, ks...) }

// Events returns everything logged so far.
func (s *LogSink) Events() []Event { return s.rec.Events() }

// Close is a no-op.
func (s *LogSink) Close() error { return nil }
