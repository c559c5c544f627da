package theme

// Palette and widget styling for the overlay window. The preview is a camera
// feed, so the default is dark.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// PaletteSnapshot represents resolved colors for the active mode.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Primary   string
	Danger    string
	Accent    string
	Text      string
	TextMuted string
}

var (
	dark = PaletteSnapshot{
		AppBg:     "#0f172a",
		Surface:   "#1e293b",
		Primary:   "#3b82f6",
		Danger:    "#ef4444",
		Accent:    "#10b981",
		Text:      "#f1f5f9",
		TextMuted: "#94a3b8",
	}
	light = PaletteSnapshot{
		AppBg:     "#f7f9fb",
		Surface:   "#ffffff",
		Primary:   "#2563eb",
		Danger:    "#dc2626",
		Accent:    "#10b981",
		Text:      "#1e293b",
		TextMuted: "#64748b",
	}
)

// internal flag for current mode
var darkMode = true

// CurrentPalette returns colors for the current dark/light mode.
func CurrentPalette() PaletteSnapshot {
	if darkMode {
		return dark
	}
	return light
}

// SetDark switches mode and reapplies the window background.
func SetDark(d bool) {
	darkMode = d
	InitStyles()
}

// InitStyles applies the base theme and window background.
func InitStyles() {
	_ = ActivateTheme("azure light")
	App.Configure(Background(CurrentPalette().AppBg))
}

// PrimaryButton returns options for the main action button.
func PrimaryButton() []Opt {
	p := CurrentPalette()
	return []Opt{Background(p.Primary), Foreground("white"), Borderwidth(1), Relief("ridge")}
}

// DangerButton returns options for destructive actions such as Exit.
func DangerButton() []Opt {
	p := CurrentPalette()
	return []Opt{Background(p.Danger), Foreground("white"), Borderwidth(1), Relief("ridge")}
}

// MutedLabel returns options for secondary text.
func MutedLabel() []Opt {
	p := CurrentPalette()
	return []Opt{Background(p.AppBg), Foreground(p.TextMuted)}
}

// StateLabel returns options for the running/stopped badge.
func StateLabel(running bool) []Opt {
	p := CurrentPalette()
	bg := p.Surface
	if running {
		bg = p.Accent
	}
	return []Opt{Background(bg), Foreground(p.Text), Borderwidth(1), Relief("groove")}
}
