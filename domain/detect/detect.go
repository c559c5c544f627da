// Package detect finds rectangular regions of interest in frames. Detectors
// are synchronous; Async turns one into a submit-and-await-future capability
// that never blocks the caller.
package detect

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/soocke/facebox-go/config"
)

var (
	// ErrClosed is reported for work submitted after Close.
	ErrClosed = errors.New("detect: detector closed")
	// ErrBusy is reported when the work queue is full.
	ErrBusy = errors.New("detect: detector busy")
)

// Region is one detection in the analyzed image's own pixel space.
type Region struct {
	Box   image.Rectangle
	Score float64
	Label string
}

// Detector analyses a single image. Implementations need not be safe for
// concurrent use; Async serializes calls on one worker.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]Region, error)
	Close() error
}

// PerformanceMode trades accuracy for latency. Fixed at construction.
type PerformanceMode int

const (
	ModeFast PerformanceMode = iota
	ModeAccurate
)

func (m PerformanceMode) String() string {
	if m == ModeAccurate {
		return "accurate"
	}
	return "fast"
}

// ParsePerformanceMode accepts "fast" or "accurate".
func ParsePerformanceMode(s string) (PerformanceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fast":
		return ModeFast, nil
	case "accurate":
		return ModeAccurate, nil
	}
	return ModeFast, fmt.Errorf("detect: unknown performance mode %q", s)
}

// New builds the detector selected by cfg: template matching when a
// template path is configured, skin-tone face candidates otherwise.
func New(cfg *config.Config, logger *slog.Logger) (Detector, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	mode, err := ParsePerformanceMode(cfg.PerformanceMode)
	if err != nil {
		return nil, err
	}
	if cfg.TemplatePath != "" {
		tmpl, err := imaging.Open(cfg.TemplatePath)
		if err != nil {
			return nil, fmt.Errorf("load template %s: %w", cfg.TemplatePath, err)
		}
		if logger != nil {
			logger.Info("detector", "kind", "template", "mode", mode.String(), "template", cfg.TemplatePath)
		}
		td, err := NewTemplateDetector(tmpl, TemplateOptions{
			Mode:        mode,
			MinScale:    cfg.MinScale,
			MaxScale:    cfg.MaxScale,
			ScaleStep:   cfg.ScaleStep,
			Threshold:   cfg.Threshold,
			Stride:      cfg.Stride,
			Refine:      cfg.Refine,
			StopOnScore: cfg.StopOnScore,
		})
		if err != nil {
			return nil, err
		}
		return td, nil
	}
	if logger != nil {
		logger.Info("detector", "kind", "skin", "mode", mode.String())
	}
	return NewSkinDetector(SkinOptions{Mode: mode, MinRegionPx: cfg.MinRegionPx, MinScore: cfg.MinScore}), nil
}
