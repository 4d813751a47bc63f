package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/greenhouse-iot/sensordash/internal/sensor"
	"github.com/greenhouse-iot/sensordash/internal/ui"
)

// Card layout constants
const (
	cardGraphHeight = 2  // braille graph rows
	cardMinWidth    = 24 // narrowest card that still fits a value line
	cardWidth       = 34
)

// truncateWithEllipsis truncates a string to maxLen runes, adding an
// ellipsis if needed.
func truncateWithEllipsis(s string, maxLen int) string {
	if maxLen <= 3 {
		return s
	}
	r := []rune(s)
	if len(r) > maxLen {
		return string(r[:maxLen-3]) + "..."
	}
	return s
}

// formatValue renders a reading's value with its metric's unit.
func formatValue(r sensor.Reading) string {
	if r.CurrentValue == sensor.DefaultValue {
		return r.CurrentValue
	}
	m, _, ok := r.Sample()
	if !ok || m.Unit() == "" {
		return r.CurrentValue
	}
	return r.CurrentValue + " " + m.Unit()
}

// valueStyle colors a reading by how it sits against its metric's band.
func valueStyle(r sensor.Reading) lipgloss.Style {
	m, v, ok := r.Sample()
	if !ok || r.CurrentValue == sensor.DefaultValue {
		return ValueStyle
	}
	return ValueStyle.Foreground(SeverityColor(Classify(m, v)))
}

// renderCard renders a single sensor card: name, where it is, its value
// with a trend arrow and a small graph of its metric's history.
func (m Model) renderCard(r sensor.Reading, width int, selected bool) string {
	style := CardStyle.Width(width)
	if selected {
		style = CardSelectedStyle.Width(width)
	}
	inner := max(width-2, 1)

	name := ui.StatusSymbol(r.Active()) + " " + NameStyle.Render(truncateWithEllipsis(r.Name, inner-2))
	where := MutedStyle.Render(truncateWithEllipsis(r.Type+" · "+r.Location, inner))

	lines := []string{name, where, ""}

	metric, _, tracked := r.Sample()
	value := valueStyle(r).Render(formatValue(r))
	if tracked {
		data := m.values(metric, inner*2)
		value += " " + LabelStyle.Render(ui.TrendArrow(data))
		lines = append(lines, value)
		if len(data) > 0 {
			lines = append(lines, RenderBrailleGraph(data, inner, cardGraphHeight, MetricColor(metric)))
		} else {
			lines = append(lines, MutedStyle.Render("no history yet"))
		}
	} else {
		lines = append(lines, value, MutedStyle.Render("not charted"))
	}

	lines = append(lines, MutedStyle.Render(fmt.Sprintf("updated %s", r.LastUpdate)))
	return style.Render(strings.Join(lines, "\n"))
}

// calculateCardWidth determines the card width based on terminal width.
func (m Model) calculateCardWidth() int {
	if m.width == 0 || m.width >= 2*(cardWidth+3) {
		return cardWidth
	}
	return max(m.width-4, cardMinWidth)
}

// layoutCards arranges cards in rows based on terminal width.
func (m Model) layoutCards(cards []string, width int) string {
	if len(cards) == 0 {
		return ""
	}

	perRow := len(cards)
	if m.width > 0 {
		// margin + border
		perRow = max(m.width/(width+3), 1)
	}

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := min(i+perRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderSensorCards renders the grid of sensor cards.
func (m Model) renderSensorCards() string {
	if len(m.sensors) == 0 {
		if m.loading || !m.attached {
			return LabelStyle.Render(m.spinner.View() + " Loading sensors...")
		}
		return LabelStyle.Render("No sensors reported")
	}

	width := m.calculateCardWidth()
	cards := make([]string, len(m.sensors))
	for i, r := range m.sensors {
		cards[i] = m.renderCard(r, width, i == m.selected)
	}
	return m.layoutCards(cards, width)
}
