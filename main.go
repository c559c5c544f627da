package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/soocke/facebox-go/app"
	"github.com/soocke/facebox-go/config"
	"github.com/soocke/facebox-go/debug"
)

const (
	flagConfig   = "config"
	flagLens     = "lens"
	flagSource   = "source"
	flagImage    = "image"
	flagTemplate = "template"
	flagRotation = "rotation"
	flagMode     = "mode"
	flagHeadless = "headless"
	flagDuration = "duration"
	flagSnapshot = "snapshot"
	flagDebug    = "debug"
)

func main() {
	a := &cli.App{
		Name:  "facebox",
		Usage: "live camera-style preview with detected regions outlined on top",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Value:   "facebox.json",
				Usage:   "load configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:  flagLens,
				Usage: "lens facing: front (mirrored) or back",
			},
			&cli.StringFlag{
				Name:  flagSource,
				Usage: "frame source: screen or image",
			},
			&cli.StringFlag{
				Name:  flagImage,
				Usage: "still image replayed by the image source",
			},
			&cli.StringFlag{
				Name:  flagTemplate,
				Usage: "template image; enables template matching instead of skin-tone detection",
			},
			&cli.IntFlag{
				Name:  flagRotation,
				Usage: "sensor rotation in degrees, clockwise: 0, 90, 180 or 270",
			},
			&cli.StringFlag{
				Name:  flagMode,
				Usage: "detector performance mode: fast or accurate",
			},
			&cli.BoolFlag{
				Name:  flagHeadless,
				Usage: "run without a window",
			},
			&cli.DurationFlag{
				Name:  flagDuration,
				Usage: "stop a headless run after this long",
			},
			&cli.StringFlag{
				Name:  flagSnapshot,
				Usage: "write the final composed frame of a headless run to `FILE`",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging and runtime metrics",
			},
		},
		Action: run,
	}
	if err := a.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfgPath := c.String(flagConfig)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		// A broken file still yields defaults; say so and keep going.
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	if cfg.Debug {
		debug.StartGoroutineLogger(10*time.Second, logger)
		debug.StartMemLogger(10*time.Second, logger)
	}

	container, err := app.BuildContainer(cfg, cfgPath, logger)
	if err != nil {
		return err
	}

	if c.Bool(flagHeadless) {
		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return app.RunHeadless(ctx, container, app.HeadlessOptions{
			Duration: c.Duration(flagDuration),
			Snapshot: c.String(flagSnapshot),
		})
	}
	app.NewWindow("Facebox", container).Start()
	return nil
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet(flagLens) {
		cfg.Lens = c.String(flagLens)
	}
	if c.IsSet(flagSource) {
		cfg.Source = c.String(flagSource)
	}
	if c.IsSet(flagImage) {
		cfg.ImagePath = c.String(flagImage)
		if !c.IsSet(flagSource) {
			cfg.Source = "image"
		}
	}
	if c.IsSet(flagTemplate) {
		cfg.TemplatePath = c.String(flagTemplate)
	}
	if c.IsSet(flagRotation) {
		cfg.SensorRotation = c.Int(flagRotation)
	}
	if c.IsSet(flagMode) {
		cfg.PerformanceMode = c.String(flagMode)
	}
	if c.IsSet(flagDebug) {
		cfg.Debug = c.Bool(flagDebug)
	}
}

