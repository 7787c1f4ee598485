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
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/sketch"
	"github.com/ayusman/mudra/internal/store"
	"golang.org/x/sync/errgroup"
)

func main() {
	err := run(os.Args[1:])
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "mudra-draw:", err)
	}
	os.Exit(cli.ExitCode(err))
}

func run(args []string) error {
	cfg, err := cli.Setup("mudra-draw", args, os.Stderr)
	if err != nil {
		return err
	}
	fmt.Println("mudra-draw - draw in the air with a pinch")
	fmt.Println("Keys: c clear, u undo, f finish and save, q quit")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	det, err := detector.NewMediaPipeDetector(cfg.DrawDetectorConfig())
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

	tracker := sketch.NewTracker(cfg.SketchConfig())
	defer tracker.Close()

	var (
		preview *display.Preview
		hub     *server.Hub
	)
	if cfg.Server.Enabled {
		preview = display.NewPreview()
		hub = server.NewHub()
	}

	dcfg := app.DrawConfig{
		Camera:   capture.NewCamera(cfg.CaptureConfig()),
		Detector: det,
		Tracker:  tracker,
		Surface:  cli.Surface(cfg, preview, "mudra draw"),
		Store:    st,
	}
	if hub != nil {
		dcfg.Events = hub
	}
	drawApp := app.NewDrawApp(dcfg)

	if !cfg.Server.Enabled {
		return drawApp.Run(ctx)
	}

	srv := server.New(server.Config{
		App:       string(store.AppDraw),
		StaticDir: cli.FindWebDir(cfg.Server.StaticDir),
		Store:     st,
		Frames:    preview,
		Hub:       hub,
		Canvas:    drawApp,
	})
	fmt.Printf("Canvas on http://%s/api/canvas\n", cfg.Server.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx, cfg.Server.Addr) })
	g.Go(func() error {
		defer stop()
		return drawApp.Run(gctx)
	})

	err = g.Wait()
	slog.Info("mudra-draw exiting", "error", err)
	return err
}
