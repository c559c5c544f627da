package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/soocke/facebox-go/config"
	"github.com/soocke/facebox-go/domain/capture"
	"github.com/soocke/facebox-go/domain/detect"
	"github.com/soocke/facebox-go/domain/pipeline"
	"github.com/soocke/facebox-go/geometry"
	"github.com/soocke/facebox-go/ui/images"
	"github.com/soocke/facebox-go/ui/model"
	"github.com/soocke/facebox-go/ui/presenter"
	"github.com/soocke/facebox-go/ui/view"
)

// AppContainer assembles the frame source, detector, pipeline and the models
// shared by the window and headless modes. It holds no Tk widgets.
type AppContainer struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger
	SessionID  string
	Lens       geometry.LensFacing
	View       geometry.Extent

	Slot       *capture.LatestSlot
	CaptureSvc *capture.Service
	Detector   *detect.Async
	Pipeline   *pipeline.Controller

	Overlay  *model.OverlayModel
	Capture  *model.CaptureModel
	Session  *model.SessionModel
	Preview  *presenter.PreviewPresenter
	Renderer *images.Renderer
	Picker   *view.RegionPicker

	// OnInvalidate, when set, runs on the main context each time the
	// overlay gains a pending redraw. Set it before capture starts.
	OnInvalidate func()
}

// BuildContainer constructs all non-UI components from a validated cfg.
// Nothing is started.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger) (*AppContainer, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &AppContainer{
		Config:     cfg,
		ConfigPath: cfgPath,
		SessionID:  uuid.NewString(),
		Lens:       cfg.LensFacing(),
		View:       cfg.ViewExtent(),
	}
	c.Logger = logger.With("session", c.SessionID)

	grab, err := c.grabber()
	if err != nil {
		return nil, err
	}
	c.Slot = capture.NewLatestSlot()
	c.CaptureSvc = capture.NewService(capture.Downscale(grab, cfg.TargetExtent()), c.Slot, capture.Options{
		Rotation: cfg.Rotation(),
		Interval: time.Duration(cfg.FrameIntervalMS) * time.Millisecond,
	}, c.Logger)

	det, err := detect.New(cfg, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("detector: %w", err)
	}
	c.Detector = detect.NewAsync(det, cfg.MaxInFlight, c.Logger)

	c.Renderer, err = images.NewRenderer(images.Style{
		CornerRadius: cfg.CornerRadius,
		StrokeWidth:  cfg.StrokeWidth,
		Color:        cfg.StrokeColor,
	})
	if err != nil {
		_ = c.Detector.Close()
		return nil, err
	}

	c.Overlay = model.NewOverlayModel(func() {
		if c.OnInvalidate != nil {
			c.OnInvalidate()
		}
	})
	c.Capture = &model.CaptureModel{}
	c.Session = model.NewSessionModel(c.SessionID, c.Lens)
	c.Preview = presenter.NewPreviewPresenter(c.View, c.Lens, cfg.PerformanceMode == detect.ModeFast.String())
	c.Pipeline = pipeline.New(pipeline.Options{
		Detector:    c.Detector,
		Overlay:     c.Overlay,
		View:        pipeline.ExtentFunc(cfg.ViewExtent),
		Lens:        c.Lens,
		MaxInFlight: cfg.MaxInFlight,
		Preview:     c.Preview.OnFrame,
		Logger:      c.Logger,
	})
	c.Logger.Info("container ready",
		"lens", c.Lens.String(),
		"source", cfg.Source,
		"view", c.View.String(),
		"target", cfg.TargetExtent().String(),
		"rotation", int(cfg.Rotation()),
	)
	return c, nil
}

func (c *AppContainer) grabber() (capture.Grabber, error) {
	if c.Config.Source == "image" {
		img, err := imaging.Open(c.Config.ImagePath)
		if err != nil {
			return nil, fmt.Errorf("open image source %s: %w", c.Config.ImagePath, err)
		}
		return capture.StillGrabber(img), nil
	}
	c.Picker = view.NewRegionPicker(c.Config, c.ConfigPath, c.Logger)
	return capture.ScreenGrabber(c.Picker.ActiveRect), nil
}

// Close stops capture, drains the pipeline and releases the pending frame.
// It must run on the pipeline's main context.
func (c *AppContainer) Close(ctx context.Context) error {
	var err error
	if c.CaptureSvc != nil {
		c.CaptureSvc.Stop()
	}
	if c.Pipeline != nil {
		err = multierr.Append(err, c.Pipeline.Shutdown(ctx))
	}
	if c.Slot != nil {
		c.Slot.Close()
		if st := c.Slot.Stats(); st.Pending {
			err = multierr.Append(err, fmt.Errorf("slot still holds a frame after close"))
		}
	}
	if c.CaptureSvc != nil {
		if st := c.CaptureSvc.Stats(); st.DoubleReleases > 0 {
			err = multierr.Append(err, fmt.Errorf("capture: %d double releases", st.DoubleReleases))
		}
	}
	return err
}
