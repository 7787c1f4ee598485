package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/cli"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/display"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/keys"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
	"golang.org/x/sync/errgroup"
)

func main() {
	err := run(os.Args[1:])
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "mudra-keys:", err)
	}
	os.Exit(cli.ExitCode(err))
}

func run(args []string) error {
	cfg, err := cli.Setup("mudra-keys", args, os.Stderr)
	if err != nil {
		return err
	}
	fmt.Println("mudra-keys - hand poses to key presses")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table, err := cfg.Table()
	if err != nil {
		return err
	}
	sink, err := keys.Open(cfg.SinkConfig())
	if err != nil {
		return fmt.Errorf("open key sink: %w", err)
	}
	defer sink.Close()

	mapper, err := gesture.NewMapper(table, sink, cfg.Cooldown())
	if err != nil {
		return err
	}

	det, err := detector.NewMediaPipeDetector(cfg.DetectorConfig())
	if err != nil {
		return fmt.Errorf("hand detector: %w", err)
	}

	var st *store.Store
	if cfg.Store.Path != "" {
		if st, err = cli.OpenStore(cfg); err != nil {
			return err
		}
		defer st.Close()
	}

	var (
		preview *display.Preview
		hub     *server.Hub
	)
	if cfg.Server.Enabled {
		preview = display.NewPreview()
		hub = server.NewHub()
	}

	var menu *tray.Tray
	if cfg.Tray.Enabled {
		menu = tray.New()
	}

	kcfg := app.KeysConfig{
		Camera:   capture.NewCamera(cfg.CaptureConfig()),
		Detector: det,
		Mapper:   mapper,
		Surface:  cli.Surface(cfg, preview, "mudra keys"),
		Store:    st,
		OnAction: func(out gesture.Outcome) {
			if menu != nil {
				menu.SetLastAction(string(out.Action))
			}
		},
	}
	if hub != nil {
		kcfg.Events = hub
	}
	if cfg.Motion.Enabled {
		kcfg.Motion = capture.NewMotionDetector(cfg.Motion.Threshold)
		kcfg.MaxSkip = cfg.Motion.MaxSkip
	}
	keysApp := app.NewKeysApp(kcfg)

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Server.Enabled {
		srv := server.New(server.Config{
			App:       string(store.AppKeys),
			StaticDir: cli.FindWebDir(cfg.Server.StaticDir),
			Store:     st,
			Frames:    preview,
			Hub:       hub,
		})
		fmt.Printf("Dashboard on http://%s\n", cfg.Server.Addr)
		g.Go(func() error { return srv.Run(ctx, cfg.Server.Addr) })
	}

	g.Go(func() error {
		defer stop()
		return keysApp.Run(ctx)
	})

	if menu != nil {
		menu.OnToggle(keysApp.SetEnabled)
		menu.OnQuit(stop)
		go func() {
			<-ctx.Done()
			menu.Quit()
		}()
		menu.Run()
		stop()
	}

	err = g.Wait()
	slog.Info("mudra-keys exiting", "error", err)
	return err
}
