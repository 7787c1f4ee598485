// Package cli holds the start-up plumbing shared by the mudra commands:
// flags, configuration, logging and the optional components.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/display"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/store"
)

// Options are the parsed command line.
type Options struct {
	ConfigPath string
	Overrides  config.FlagOverrides
}

// ParseFlags parses args for the named command. Only flags given on the
// command line end up in Overrides.
func ParseFlags(name string, args []string, output io.Writer) (Options, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		opts      Options
		device    = fs.Int("camera", 0, "camera device index")
		sink      = fs.String("sink", "", "key sink: robotgo, uinput, plugin or log")
		addr      = fs.String("addr", "", "HTTP listen address")
		noServer  = fs.Bool("no-server", false, "disable the HTTP server")
		storePath = fs.String("db", "", "SQLite database path")
		noWindow  = fs.Bool("no-window", false, "do not open a preview window")
		useTray   = fs.Bool("tray", false, "show the system tray menu")
		logLevel  = fs.String("log-level", "", "log level: error, warn, info or debug")
	)
	fs.StringVar(&opts.ConfigPath, "config", "", "YAML configuration file")

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	if fs.NArg() > 0 {
		return Options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	fs.Visit(func(f *flag.Flag) {
		o := &opts.Overrides
		switch f.Name {
		case "camera":
			o.CameraDevice = device
		case "sink":
			o.KeysSink = sink
		case "addr":
			o.ServerAddr = addr
		case "no-server":
			o.ServerOff = noServer
		case "db":
			o.StorePath = storePath
		case "no-window":
			o.NoWindow = noWindow
		case "tray":
			o.Tray = useTray
		case "log-level":
			o.LogLevel = logLevel
		}
	})
	return opts, nil
}

// Load builds the effective configuration: defaults or the config file,
// then flag overrides, then validation.
func Load(opts Options) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.LoadFile(opts.ConfigPath); err != nil {
			return config.Config{}, err
		}
	}
	opts.Overrides.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Setup parses flags, loads the configuration and installs the default
// logger.
func Setup(name string, args []string, stderr io.Writer) (config.Config, error) {
	opts, err := ParseFlags(name, args, stderr)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := Load(opts)
	if err != nil {
		return config.Config{}, err
	}
	if _, err := logging.Setup(stderr, cfg.Logging.Level); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// OpenStore opens the configured database, creating its directory.
func OpenStore(cfg config.Config) (*store.Store, error) {
	path := cfg.StorePath()
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	return store.New(path)
}

// Surface returns the output surface: the preview, plus a window titled
// display.title or title unless disabled. A nil preview means no HTTP stream.
func Surface(cfg config.Config, preview *display.Preview, title string) display.Surface {
	var surfaces display.Multi
	if cfg.Display.Window {
		if cfg.Display.Title != "" {
			title = cfg.Display.Title
		}
		surfaces = append(surfaces, display.NewWindow(title))
	}
	if preview != nil {
		surfaces = append(surfaces, preview)
	}
	if len(surfaces) == 0 {
		return display.NewNull()
	}
	return surfaces
}

// FindWebDir returns the static file directory: the configured one, or the
// first of "web", "../web" and ~/.mudra/web that exists.
func FindWebDir(configured string) string {
	if configured != "" {
		return config.ExpandPath(configured)
	}
	for _, p := range []string{"web", "../web", "~/.mudra/web"} {
		p = config.ExpandPath(p)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

// ExitCode maps a run error to a process exit status. Help requests exit 0.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	default:
		return 1
	}
}
