package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette. Hex colors degrade to the nearest ANSI color on limited terminals.
const (
	ColorLeaf     lipgloss.Color = "#7CD67C" // healthy green
	ColorSky      lipgloss.Color = "#5FC8E8"
	ColorSun      lipgloss.Color = "#F5C542"
	ColorTerra    lipgloss.Color = "#E8734A"
	ColorSoil     lipgloss.Color = "#B08968"
	ColorNight    lipgloss.Color = "#101418"
	ColorSurface  lipgloss.Color = "#1A2026"
	ColorBorder   lipgloss.Color = "#2F3B45"
	ColorWhite    lipgloss.Color = "#F2F5F7"
	ColorLavender lipgloss.Color = "#A8B3BD"
	ColorSlate    lipgloss.Color = "#66737F"
)

// Semantic colors for status indication
const (
	ColorSuccess = ColorLeaf
	ColorError   = ColorTerra
	ColorWarning = ColorSun
	ColorInfo    = ColorSky
)

// Text colors for content hierarchy
const (
	ColorPrimary   = ColorWhite
	ColorSecondary = ColorLavender
	ColorMuted     = ColorSlate
)

// GradientColors cycle through the spinner frames.
var GradientColors = []lipgloss.Color{ColorLeaf, ColorSky, ColorSun, ColorSoil}

// MetricColors gives each tracked metric its chart color, keyed by metric name.
var MetricColors = map[string]lipgloss.Color{
	"temperature":   ColorTerra,
	"humidity":      ColorSky,
	"light":         ColorSun,
	"soil_moisture": ColorSoil,
}

// SuccessStyle renders text in the success color.
func SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorSuccess)
}

// ErrorStyle renders text in the error color.
func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorError)
}

// WarningStyle renders text in the warning color.
func WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorWarning)
}

// MutedStyle renders secondary text.
func MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorMuted)
}

// BoldStyle renders emphasized primary text.
func BoldStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
}

// DisableColors switches lipgloss to plain ASCII output (--no-color).
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ConfigureColors applies the output.color setting: "never" disables colors,
// "always" forces true color even when piped, and "auto" leaves detection
// to lipgloss.
func ConfigureColors(mode string) {
	switch mode {
	case "never":
		DisableColors()
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	}
}
