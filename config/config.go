package config

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/soocke/facebox-go/geometry"
)

// Config holds runtime configuration for capture, detection and overlay.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug"`

	// Session
	Lens           string `json:"lens"`            // front | back
	SensorRotation int    `json:"sensor_rotation"` // 0, 90, 180, 270
	Source         string `json:"source"`          // screen | image
	ImagePath      string `json:"image_path"`
	TemplatePath   string `json:"template_path"`

	// Extents
	ViewWidth    int `json:"view_width"`
	ViewHeight   int `json:"view_height"`
	TargetWidth  int `json:"target_width"`
	TargetHeight int `json:"target_height"`

	// Pacing
	FrameIntervalMS   int `json:"frame_interval_ms"`
	RefreshIntervalMS int `json:"refresh_interval_ms"`
	MaxInFlight       int `json:"max_in_flight"`

	// Detection parameters
	PerformanceMode string  `json:"performance_mode"` // fast | accurate
	MinScore        float64 `json:"min_score"`
	MinRegionPx     int     `json:"min_region_px"`
	MinScale        float64 `json:"min_scale"`
	MaxScale        float64 `json:"max_scale"`
	ScaleStep       float64 `json:"scale_step"`
	Threshold       float64 `json:"threshold"`
	Stride          int     `json:"stride"`
	Refine          bool    `json:"refine"`
	StopOnScore     float64 `json:"stop_on_score"`

	// Overlay style
	CornerRadius float64 `json:"corner_radius"`
	StrokeWidth  float64 `json:"stroke_width"`
	StrokeColor  string  `json:"stroke_color"`

	// Screen selection rectangle; zero size captures the full screen.
	SelectionX int `json:"selection_x"`
	SelectionY int `json:"selection_y"`
	SelectionW int `json:"selection_w"`
	SelectionH int `json:"selection_h"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:             false,
		Lens:              "front",
		SensorRotation:    0,
		Source:            "screen",
		ViewWidth:         540,
		ViewHeight:        960,
		TargetWidth:       720,
		TargetHeight:      1280,
		FrameIntervalMS:   33,
		RefreshIntervalMS: 16,
		MaxInFlight:       1,
		PerformanceMode:   "fast",
		MinScore:          0.4,
		MinRegionPx:       32,
		MinScale:          0.60,
		MaxScale:          1.40,
		ScaleStep:         0.05,
		Threshold:         0.80,
		Stride:            4,
		Refine:            true,
		StopOnScore:       0.95,
		CornerRadius:      20,
		StrokeWidth:       6,
		StrokeColor:       "#00ff00",
	}
}

// Validate clamps/normalizes values to safe ranges. It returns an error only
// for values that cannot be clamped.
func (c *Config) Validate() error {
	c.Lens = strings.ToLower(strings.TrimSpace(c.Lens))
	if c.Lens == "" {
		c.Lens = "front"
	}
	if _, err := geometry.ParseLensFacing(c.Lens); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	rot := geometry.Rotation(c.SensorRotation).Normalize()
	if !rot.Valid() {
		return fmt.Errorf("config: sensor_rotation %d is not a multiple of 90", c.SensorRotation)
	}
	c.SensorRotation = int(rot)
	c.Source = strings.ToLower(strings.TrimSpace(c.Source))
	switch c.Source {
	case "":
		c.Source = "screen"
	case "screen", "image":
	default:
		return fmt.Errorf("config: unknown source %q", c.Source)
	}
	c.PerformanceMode = strings.ToLower(strings.TrimSpace(c.PerformanceMode))
	switch c.PerformanceMode {
	case "":
		c.PerformanceMode = "fast"
	case "fast", "accurate":
	default:
		return fmt.Errorf("config: unknown performance_mode %q", c.PerformanceMode)
	}

	if c.ViewWidth <= 0 || c.ViewHeight <= 0 {
		c.ViewWidth, c.ViewHeight = 540, 960
	}
	if c.TargetWidth < 0 || c.TargetHeight < 0 {
		c.TargetWidth, c.TargetHeight = 0, 0
	}
	if c.FrameIntervalMS <= 0 {
		c.FrameIntervalMS = 33
	}
	if c.RefreshIntervalMS <= 0 {
		c.RefreshIntervalMS = 16
	}
	if c.MaxInFlight < 1 {
		c.MaxInFlight = 1
	}
	if c.MinScore <= 0 || c.MinScore > 1 {
		c.MinScore = 0.4
	}
	if c.MinRegionPx <= 0 {
		c.MinRegionPx = 32
	}
	if c.MinScale <= 0 {
		c.MinScale = 0.60
	}
	if c.MaxScale <= 0 || c.MaxScale < c.MinScale {
		c.MaxScale = c.MinScale + 0.80
	}
	if c.ScaleStep <= 0 {
		c.ScaleStep = 0.05
	}
	if c.MaxScale > c.MinScale && c.ScaleStep > (c.MaxScale-c.MinScale) {
		c.ScaleStep = (c.MaxScale - c.MinScale) / 4
	}
	if c.Threshold <= 0 || c.Threshold > 1 {
		c.Threshold = 0.80
	}
	if c.Stride <= 0 {
		c.Stride = 4
	}
	if c.StopOnScore < 0 || c.StopOnScore > 1 {
		c.StopOnScore = 0.95
	}
	if c.CornerRadius < 0 {
		c.CornerRadius = 20
	}
	if c.StrokeWidth <= 0 {
		c.StrokeWidth = 6
	}
	if _, err := colorful.Hex(c.StrokeColor); err != nil {
		c.StrokeColor = "#00ff00"
	}
	if c.SelectionW < 0 || c.SelectionH < 0 {
		c.SelectionW, c.SelectionH = 0, 0
	}
	return nil
}

// LensFacing returns the parsed lens. Call after Validate.
func (c *Config) LensFacing() geometry.LensFacing {
	l, _ := geometry.ParseLensFacing(c.Lens)
	return l
}

// Rotation returns the sensor rotation as a geometry.Rotation.
func (c *Config) Rotation() geometry.Rotation {
	return geometry.Rotation(c.SensorRotation).Normalize()
}

// ViewExtent is the size of the displayed preview.
func (c *Config) ViewExtent() geometry.Extent {
	return geometry.Extent{Width: c.ViewWidth, Height: c.ViewHeight}
}

// TargetExtent is the analysis resolution frames are scaled down to. Empty
// means frames keep their grabbed size.
func (c *Config) TargetExtent() geometry.Extent {
	return geometry.Extent{Width: c.TargetWidth, Height: c.TargetHeight}
}

// Selection returns the configured capture rectangle or nil for the full
// screen.
func (c *Config) Selection() *image.Rectangle {
	if c.SelectionW <= 0 || c.SelectionH <= 0 {
		return nil
	}
	r := image.Rect(c.SelectionX, c.SelectionY, c.SelectionX+c.SelectionW, c.SelectionY+c.SelectionH)
	return &r
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
