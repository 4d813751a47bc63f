package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo contains information to display in the header.
type HeaderInfo struct {
	Title   string // defaults to "sensordash"
	Version string
	Tagline string
}

// HeaderWidth is the default width of the header divider
const HeaderWidth = 50

// RenderHeader renders a title line, an optional tagline, and a divider.
func RenderHeader(info HeaderInfo) string {
	title := info.Title
	if title == "" {
		title = "sensordash"
	}

	var out strings.Builder
	out.WriteString(lipgloss.NewStyle().Foreground(ColorLeaf).Bold(true).Render(title))
	if info.Version != "" {
		out.WriteString(" ")
		out.WriteString(lipgloss.NewStyle().Foreground(ColorSky).Render(info.Version))
	}
	out.WriteString("\n")

	if info.Tagline != "" {
		out.WriteString(lipgloss.NewStyle().Foreground(ColorSecondary).Render(info.Tagline))
		out.WriteString("\n")
	}

	out.WriteString(lipgloss.NewStyle().Foreground(ColorBorder).Render(strings.Repeat("━", HeaderWidth)))
	out.WriteString("\n")
	return out.String()
}
