package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/greenhouse-iot/sensordash/internal/notify"
	"github.com/greenhouse-iot/sensordash/internal/sensor"
	"github.com/greenhouse-iot/sensordash/internal/ui"
)

// Dashboard color palette
const (
	ColorDarkBg    = ui.ColorNight
	ColorSurfaceBg = ui.ColorSurface
	ColorBorder    = ui.ColorBorder

	ColorHealthy  = ui.ColorLeaf
	ColorWarning  = ui.ColorSun
	ColorCritical = ui.ColorTerra

	ColorTextPrimary   = ui.ColorWhite
	ColorTextSecondary = ui.ColorLavender
	ColorTextMuted     = ui.ColorSlate

	ColorAccent = ui.ColorLeaf
	ColorGraph  = ui.ColorSky
)

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1)

	CardSelectedStyle = CardStyle.
				BorderForeground(ColorAccent)

	NameStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)
)

// Band is the range a metric should stay within for healthy growth. Values
// outside [Lo, Hi] but inside [CritLo, CritHi] are a warning.
type Band struct {
	Lo, Hi         float64
	CritLo, CritHi float64
}

// OptimalBands hold daytime growing ranges for a tomato crop.
var OptimalBands = map[sensor.Metric]Band{
	sensor.Temperature:  {Lo: 20, Hi: 30, CritLo: 17.5, CritHi: 32.5},
	sensor.Humidity:     {Lo: 60, Hi: 80, CritLo: 55, CritHi: 85},
	sensor.Light:        {Lo: 2000, Hi: 10000, CritLo: 1000, CritHi: 15000},
	sensor.SoilMoisture: {Lo: 6.0, Hi: 7.0, CritLo: 5.75, CritHi: 7.25},
}

// Severity grades a reading against its band.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityOK
	SeverityWarning
	SeverityCritical
)

// String returns a short label.
func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Classify grades v for metric m. Metrics without a band are unknown.
func Classify(m sensor.Metric, v float64) Severity {
	b, ok := OptimalBands[m]
	if !ok {
		return SeverityUnknown
	}
	if v >= b.Lo && v <= b.Hi {
		return SeverityOK
	}
	if v >= b.CritLo && v <= b.CritHi {
		return SeverityWarning
	}
	return SeverityCritical
}

// SeverityColor maps a severity to its color.
func SeverityColor(s Severity) lipgloss.Color {
	switch s {
	case SeverityOK:
		return ColorHealthy
	case SeverityWarning:
		return ColorWarning
	case SeverityCritical:
		return ColorCritical
	default:
		return ColorTextSecondary
	}
}

// MetricColor returns a metric's chart color.
func MetricColor(m sensor.Metric) lipgloss.Color {
	if c, ok := ui.MetricColors[string(m)]; ok {
		return c
	}
	return ColorGraph
}

// toastStyle styles a notification by kind.
func toastStyle(kind notify.Kind) lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(ColorDarkBg)
	switch kind {
	case notify.KindSuccess:
		return base.Background(ColorHealthy)
	case notify.KindWarning:
		return base.Background(ColorWarning)
	case notify.KindError:
		return base.Background(ColorCritical)
	default:
		return base.Background(ColorGraph)
	}
}

// SectionHeader renders a section header with the title on the left and value on the right.
// Format: ╭─ Title ────────────────────────────────────── Value ╮
func SectionHeader(title, value string, width int) string {
	width = max(width, 10)

	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2
	fillWidth := max(width-leftWidth-rightWidth, 1)

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	titleStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(ColorGraph).Bold(true)

	return borderStyle.Render("╭─ ") +
		titleStyle.Render(title) +
		borderStyle.Render(" "+strings.Repeat("─", fillWidth)+" ") +
		valueStyle.Render(value) +
		borderStyle.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
func SectionFooter(width int) string {
	width = max(width, 2)
	return lipgloss.NewStyle().Foreground(ColorBorder).Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// SectionContentLine renders a content line with left and right borders, padded to width.
func SectionContentLine(content string, width int) string {
	width = max(width, 4)
	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	padding := max(width-4-lipgloss.Width(content), 0)
	return borderStyle.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + borderStyle.Render("│")
}
