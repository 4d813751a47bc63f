package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/greenhouse-iot/sensordash/internal/history"
	"github.com/greenhouse-iot/sensordash/internal/sensor"
	"github.com/greenhouse-iot/sensordash/internal/ui"
)

// Detail view styles
var (
	detailContainerStyle = lipgloss.NewStyle().
				Padding(1, 2)

	detailSectionStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorder).
				Padding(0, 1).
				MarginBottom(1)

	detailTitleStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)
)

const (
	detailGraphHeight = 8
	detailMinWidth    = 40
)

// renderDetailView renders the expanded single-sensor view.
func (m Model) renderDetailView() string {
	r, ok := m.SelectedSensor()
	if !ok {
		return LabelStyle.Render("No sensor selected")
	}

	contentWidth := max(m.width-6, detailMinWidth)

	var b strings.Builder
	b.WriteString(m.renderDetailHeader(r))
	b.WriteString("\n\n")
	b.WriteString(m.renderDetailInfo(r, contentWidth))
	b.WriteString("\n")

	if metric, _, tracked := r.Sample(); tracked {
		b.WriteString(m.renderDetailGraph(metric, contentWidth))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderDetailFooter())
	return detailContainerStyle.Render(b.String())
}

// renderDetailHeader renders the sensor name and status prominently.
func (m Model) renderDetailHeader(r sensor.Reading) string {
	status := ui.StatusSymbol(r.Active()) + " " + LabelStyle.Render(r.Status)
	return fmt.Sprintf("%s  %s", detailTitleStyle.Render(r.Name), status)
}

// renderDetailInfo renders the sensor's fields and its grade against the
// optimal band.
func (m Model) renderDetailInfo(r sensor.Reading, width int) string {
	row := func(label, value string) string {
		return LabelStyle.Render(fmt.Sprintf("  %-10s ", label)) + value
	}

	lines := []string{
		detailTitleStyle.Render("Sensor"),
		"",
		row("ID", fmt.Sprintf("%d", r.ID)),
		row("Type", r.Type),
		row("Location", r.Location),
		row("Value", valueStyle(r).Render(formatValue(r))),
		row("Updated", r.LastUpdate),
	}
	if r.CreatedAt != "" {
		lines = append(lines, row("Created", r.CreatedAt))
	}

	if metric, v, tracked := r.Sample(); tracked && r.CurrentValue != sensor.DefaultValue {
		sev := Classify(metric, v)
		grade := lipgloss.NewStyle().Foreground(SeverityColor(sev)).Render(sev.String())
		if band, ok := OptimalBands[metric]; ok {
			grade += MutedStyle.Render(fmt.Sprintf("  (optimal %g-%g %s)", band.Lo, band.Hi, metric.Unit()))
		}
		lines = append(lines, row("Range", grade))
	}

	return detailSectionStyle.Width(width).Render(strings.Join(lines, "\n"))
}

// renderDetailGraph renders the metric's history as a tall braille chart
// with min, max and latest values.
func (m Model) renderDetailGraph(metric sensor.Metric, width int) string {
	series := m.history[metric]
	title := fmt.Sprintf("%s history", metric.Label())

	lines := []string{detailTitleStyle.Render(title), ""}
	if len(series) == 0 {
		lines = append(lines, LabelStyle.Render("  Waiting for history data..."))
		return detailSectionStyle.Width(width).Render(strings.Join(lines, "\n"))
	}

	graphWidth := max(width-4, 10)
	data := m.values(metric, graphWidth*2)
	lines = append(lines, RenderBrailleGraph(data, graphWidth, detailGraphHeight, MetricColor(metric)))
	lines = append(lines, "", LabelStyle.Render(seriesSummary(metric, series, data)))

	return detailSectionStyle.Width(width).Render(strings.Join(lines, "\n"))
}

// seriesSummary describes the shown window: its bounds and the span of time
// the full series covers.
func seriesSummary(metric sensor.Metric, series []history.Sample, shown []float64) string {
	lo, hi := shown[0], shown[0]
	for _, v := range shown {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	unit := metric.Unit()
	return fmt.Sprintf("  min %.1f%s  max %.1f%s  latest %.1f%s  |  %d samples, %s to %s",
		lo, unit, hi, unit, shown[len(shown)-1], unit,
		len(series), series[0].Time, series[len(series)-1].Time)
}

// renderDetailFooter renders navigation hints for the detail view.
func (m Model) renderDetailFooter() string {
	hints := []string{"Esc back", "r refresh", "q quit"}
	return FooterStyle.Render(strings.Join(hints, " | "))
}
