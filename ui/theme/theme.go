package theme

// Centralized theming for the inpainting panel. InitStyles activates a base
// theme and configures the semantic widget styles in light or dark mode.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Colors holds the resolved colors of one mode.
type Colors struct {
	AppBg     string
	Surface   string
	Border    string
	Primary   string
	Danger    string
	Accent    string
	Text      string
	TextMuted string
}

var (
	// Light is the default color set.
	Light = Colors{
		AppBg:     "#f7f9fb",
		Surface:   "#ffffff",
		Border:    "#d0d7de",
		Primary:   "#2563eb",
		Danger:    "#dc2626",
		Accent:    "#10b981",
		Text:      "#1e293b",
		TextMuted: "#64748b",
	}
	// Dark is used after SetDark(true).
	Dark = Colors{
		AppBg:     "#0f172a",
		Surface:   "#1e293b",
		Border:    "#334155",
		Primary:   "#3b82f6",
		Danger:    "#ef4444",
		Accent:    "#10b981",
		Text:      "#f1f5f9",
		TextMuted: "#94a3b8",
	}
)

// Style names used with Style(...).
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleStateLabel    = "state.TLabel"
	StyleMutedLabel    = "muted.TLabel"
)

var darkMode bool

// Current returns the colors of the active mode.
func Current() Colors {
	if darkMode {
		return Dark
	}
	return Light
}

// InitStyles (re)applies styles for the current mode.
func InitStyles() { applyStyles(Current()) }

// SetDark switches mode and reapplies styles. Returns the new mode value.
func SetDark(dark bool) bool {
	darkMode = dark
	applyStyles(Current())
	return darkMode
}

// IsDark reports current mode.
func IsDark() bool { return darkMode }

func applyStyles(p Colors) {
	_ = ActivateTheme("azure light") // baseline metrics
	App.Configure(Background(p.AppBg))

	StyleConfigure(StylePrimaryButton, Background(p.Primary), Foreground("white"), Padding("4p 3p"), Borderwidth(1), Relief("ridge"))
	StyleConfigure(StyleDangerButton, Background(p.Danger), Foreground("white"), Padding("4p 3p"), Borderwidth(1), Relief("ridge"))
	StyleConfigure(StyleStateLabel, Foreground("white"), Background(p.Accent), Padding("4p 2p"), Borderwidth(1), Relief("groove"))
	StyleConfigure(StyleMutedLabel, Foreground(p.TextMuted), Background(p.Surface), Padding("2p 1p"))
}
