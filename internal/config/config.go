// Package config loads the YAML configuration shared by mudra-keys and
// mudra-draw. Defaults come from Default, a file may override any of them,
// and command-line flags are applied last through FlagOverrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/keys"
	"github.com/ayusman/mudra/internal/sketch"
)

// ErrEmptyPath is returned by LoadFile for an empty path.
var ErrEmptyPath = errors.New("config path is empty")

// Config is the top-level YAML document.
type Config struct {
	Camera   CameraConfig   `yaml:"camera"`
	Detector DetectorConfig `yaml:"detector"`
	Keys     KeysConfig     `yaml:"keys"`
	Draw     DrawConfig     `yaml:"draw"`
	Motion   MotionConfig   `yaml:"motion"`
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Display  DisplayConfig  `yaml:"display"`
	Tray     TrayConfig     `yaml:"tray"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type CameraConfig struct {
	Device int  `yaml:"device"`
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	FPS    int  `yaml:"fps"`
	Mirror bool `yaml:"mirror"`
}

type DetectorConfig struct {
	Python       string  `yaml:"python,omitempty"`
	Script       string  `yaml:"script,omitempty"`
	MaxHands     int     `yaml:"max_hands"`
	MinDetection float64 `yaml:"min_detection"`
	MinTracking  float64 `yaml:"min_tracking"`
}

type KeysConfig struct {
	// Sink is one of robotgo, uinput, plugin or log.
	Sink       string `yaml:"sink"`
	CooldownMS int    `yaml:"cooldown_ms"`
	UinputPath string `yaml:"uinput_path"`
	PluginDir  string `yaml:"plugin_dir"`
	PluginName string `yaml:"plugin_name"`
	TimeoutMS  int    `yaml:"timeout_ms"`
	// Bindings replaces the default table when non-empty. Keys are five
	// binary digits, thumb first.
	Bindings map[string]gesture.Binding `yaml:"bindings,omitempty"`
}

type DrawConfig struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	TouchThreshold float64 `yaml:"touch_threshold"`
	Thickness      int     `yaml:"thickness"`
	// Color is red, green, blue.
	Color        []int `yaml:"color"`
	HistoryLimit int   `yaml:"history_limit"`
	// MinTracking replaces detector.min_tracking for the drawing program.
	MinTracking float64 `yaml:"min_tracking"`
}

type MotionConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Threshold float64 `yaml:"threshold"`
	// MaxSkip is how many still frames in a row may reuse a detection.
	MaxSkip int `yaml:"max_skip"`
}

type ServerConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir,omitempty"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type DisplayConfig struct {
	Window bool   `yaml:"window"`
	Title  string `yaml:"title,omitempty"`
}

type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a fully populated Config.
func Default() Config {
	det := detector.DefaultConfig()
	cam := capture.DefaultConfig()
	sk := sketch.DefaultConfig()

	return Config{
		Camera: CameraConfig{
			Device: cam.Device,
			Width:  cam.Width,
			Height: cam.Height,
			FPS:    cam.FPS,
			Mirror: cam.Mirror,
		},
		Detector: DetectorConfig{
			MaxHands:     det.MaxHands,
			MinDetection: det.MinConfidence,
			MinTracking:  det.MinTrackingConf,
		},
		Keys: KeysConfig{
			Sink:       keys.BackendRobot,
			CooldownMS: int(gesture.DefaultCooldown / time.Millisecond),
			UinputPath: "/dev/uinput",
			PluginDir:  "~/.mudra/plugins",
			PluginName: "keyboard",
			TimeoutMS:  2000,
		},
		Draw: DrawConfig{
			Width:          sk.Width,
			Height:         sk.Height,
			TouchThreshold: sk.TouchThreshold,
			Thickness:      sk.Thickness,
			Color:          []int{int(sk.Color.R), int(sk.Color.G), int(sk.Color.B)},
			HistoryLimit:   sk.HistoryLimit,
			MinTracking:    detector.DrawTrackingConf,
		},
		Motion: MotionConfig{
			Enabled:   true,
			Threshold: capture.DefaultMotionThreshold,
			MaxSkip:   capture.DefaultMaxSkip,
		},
		Server: ServerConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8080",
		},
		Store: StoreConfig{
			Path: "~/.mudra/mudra.db",
		},
		Display: DisplayConfig{
			Window: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFile reads a YAML file on top of Default. Unknown fields and
// trailing documents are rejected.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Config{}, ErrEmptyPath
	}
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes on top of Default.
func Parse(b []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err == nil {
		return Config{}, errors.New("decode config yaml: unexpected trailing document")
	}
	return cfg, nil
}

// FlagOverrides holds flag values; nil pointers are not applied.
type FlagOverrides struct {
	CameraDevice *int
	KeysSink     *string
	ServerAddr   *string
	ServerOff    *bool
	StorePath    *string
	NoWindow     *bool
	Tray         *bool
	LogLevel     *string
}

// Apply merges the overrides into cfg.
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.CameraDevice != nil {
		cfg.Camera.Device = *o.CameraDevice
	}
	if o.KeysSink != nil {
		cfg.Keys.Sink = *o.KeysSink
	}
	if o.ServerAddr != nil {
		cfg.Server.Addr = *o.ServerAddr
	}
	if o.ServerOff != nil && *o.ServerOff {
		cfg.Server.Enabled = false
	}
	if o.StorePath != nil {
		cfg.Store.Path = *o.StorePath
	}
	if o.NoWindow != nil && *o.NoWindow {
		cfg.Display.Window = false
	}
	if o.Tray != nil {
		cfg.Tray.Enabled = *o.Tray
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
}

// Validate checks the invariants the rest of the program relies on.
func (c *Config) Validate() error {
	if c.Camera.Device < 0 {
		return errors.New("camera.device must be >= 0")
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return errors.New("camera.width and camera.height must be > 0")
	}
	if c.Camera.FPS <= 0 {
		return errors.New("camera.fps must be > 0")
	}

	if c.Detector.MaxHands != 1 {
		return errors.New("detector.max_hands must be 1")
	}
	if !unit(c.Detector.MinDetection) || !unit(c.Detector.MinTracking) {
		return errors.New("detector.min_detection and detector.min_tracking must be within [0, 1]")
	}

	switch c.Keys.Sink {
	case keys.BackendRobot, keys.BackendUinput, keys.BackendPlugin, keys.BackendLog:
	default:
		return fmt.Errorf("keys.sink must be one of %s, %s, %s or %s",
			keys.BackendRobot, keys.BackendUinput, keys.BackendPlugin, keys.BackendLog)
	}
	if c.Keys.CooldownMS < 0 {
		return errors.New("keys.cooldown_ms must be >= 0")
	}
	if c.Keys.Sink == keys.BackendPlugin && c.Keys.PluginName == "" {
		return errors.New("keys.sink is plugin but keys.plugin_name is empty")
	}
	if _, err := c.Table(); err != nil {
		return fmt.Errorf("keys.bindings: %w", err)
	}

	if c.Draw.Width <= 0 || c.Draw.Height <= 0 {
		return errors.New("draw.width and draw.height must be > 0")
	}
	if c.Draw.TouchThreshold <= 0 {
		return errors.New("draw.touch_threshold must be > 0")
	}
	if c.Draw.Thickness <= 0 {
		return errors.New("draw.thickness must be > 0")
	}
	if !unit(c.Draw.MinTracking) {
		return errors.New("draw.min_tracking must be within [0, 1]")
	}
	if c.Draw.HistoryLimit < 0 {
		return errors.New("draw.history_limit must be >= 0")
	}
	if len(c.Draw.Color) != 3 {
		return errors.New("draw.color must have three components")
	}
	for _, v := range c.Draw.Color {
		if v < 0 || v > 255 {
			return errors.New("draw.color components must be within [0, 255]")
		}
	}

	if c.Motion.Enabled && c.Motion.Threshold <= 0 {
		return errors.New("motion.threshold must be > 0")
	}
	if c.Motion.Enabled && c.Motion.MaxSkip < 1 {
		return errors.New("motion.max_skip must be >= 1")
	}
	if c.Server.Enabled && c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if c.Store.Path == "" {
		return errors.New("store.path must not be empty")
	}
	if c.Logging.Level == "" {
		return errors.New("logging.level must not be empty")
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

// CaptureConfig converts the camera section.
func (c *Config) CaptureConfig() capture.Config {
	return capture.Config{
		Device: c.Camera.Device,
		Width:  c.Camera.Width,
		Height: c.Camera.Height,
		FPS:    c.Camera.FPS,
		Mirror: c.Camera.Mirror,
	}
}

// DetectorConfig converts the detector section.
func (c *Config) DetectorConfig() detector.Config {
	return detector.Config{
		MaxHands:        c.Detector.MaxHands,
		MinConfidence:   c.Detector.MinDetection,
		MinTrackingConf: c.Detector.MinTracking,
		Python:          ExpandPath(c.Detector.Python),
		Script:          ExpandPath(c.Detector.Script),
	}
}

// DrawDetectorConfig is DetectorConfig with the drawing tracking
// confidence.
func (c *Config) DrawDetectorConfig() detector.Config {
	dc := c.DetectorConfig()
	dc.MinTrackingConf = c.Draw.MinTracking
	return dc
}

// SinkConfig converts the keys section.
func (c *Config) SinkConfig() keys.Config {
	return keys.Config{
		Backend:    c.Keys.Sink,
		UinputPath: c.Keys.UinputPath,
		PluginDir:  ExpandPath(c.Keys.PluginDir),
		PluginName: c.Keys.PluginName,
		TimeoutMs:  c.Keys.TimeoutMS,
	}
}

// Cooldown returns keys.cooldown_ms as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Keys.CooldownMS) * time.Millisecond
}

// Table returns the configured gesture table, or the default one.
func (c *Config) Table() (gesture.Table, error) {
	if len(c.Keys.Bindings) == 0 {
		return gesture.DefaultTable(), nil
	}
	return gesture.ParseTable(c.Keys.Bindings)
}

// SketchConfig converts the draw section.
func (c *Config) SketchConfig() sketch.Config {
	cfg := sketch.Config{
		Width:          c.Draw.Width,
		Height:         c.Draw.Height,
		TouchThreshold: c.Draw.TouchThreshold,
		Thickness:      c.Draw.Thickness,
		HistoryLimit:   c.Draw.HistoryLimit,
		Color:          sketch.DefaultConfig().Color,
	}
	if len(c.Draw.Color) == 3 {
		cfg.Color = color.RGBA{R: uint8(c.Draw.Color[0]), G: uint8(c.Draw.Color[1]), B: uint8(c.Draw.Color[2]), A: 255}
	}
	return cfg
}

// StorePath returns store.path with "~" expanded.
func (c *Config) StorePath() string {
	return ExpandPath(c.Store.Path)
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(p string) string {
	if p == "" || p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		return filepath.Join(home, p[2:])
	}
	return p
}
