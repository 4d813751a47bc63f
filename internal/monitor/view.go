package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/greenhouse-iot/sensordash/internal/sensor"
	"github.com/greenhouse-iot/sensordash/internal/ui"
)

const (
	chartHeightCompact = 4
	chartHeightWide    = 6
	summarySparkWidth  = 20
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if toasts := m.renderToasts(); toasts != "" {
		b.WriteString(toasts)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderSensorCards())

	if m.Layout() != LayoutMinimal {
		b.WriteString("\n\n")
		b.WriteString(m.renderChartPanel())
	}
	if m.Layout() == LayoutWide {
		b.WriteString("\n")
		b.WriteString(m.renderMetricSummary())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader renders the title bar with summary stats.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("sensordash")

	parts := []string{
		fmt.Sprintf("%d sensors", len(m.sensors)),
		fmt.Sprintf("%d active", m.ActiveCount()),
		"last update " + m.updateText(),
		m.autoText(),
	}
	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(" | " + strings.Join(parts, " | "))

	line := title + stats
	if m.loading {
		line += " " + m.spinner.View()
	}
	if m.attachErr != nil {
		line += " " + lipgloss.NewStyle().Foreground(ColorCritical).Render(ui.SymbolFail+" "+m.attachErr.Error())
	}
	return HeaderStyle.Render(line)
}

func (m Model) updateText() string {
	switch s := m.SecondsSinceUpdate(); s {
	case -1:
		return "never"
	case 0:
		return "just now"
	default:
		return fmt.Sprintf("%ds ago", s)
	}
}

func (m Model) autoText() string {
	if m.auto {
		return "auto " + formatInterval(m.interval)
	}
	return "auto off"
}

// formatInterval renders short durations the way the footer shows them
// ("5s", "1m").
func formatInterval(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		return fmt.Sprintf("%dm", d/time.Minute)
	}
	return fmt.Sprintf("%gs", d.Seconds())
}

// renderToasts renders active notifications, newest last.
func (m Model) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	out := make([]string, len(m.toasts))
	for i, t := range m.toasts {
		out[i] = toastStyle(t.kind).Render(t.text)
	}
	return strings.Join(out, "\n")
}

// renderChartPanel renders the history chart for the current metric.
func (m Model) renderChartPanel() string {
	width := max(m.width, BreakpointCompact)
	height := chartHeightCompact
	if m.Layout() == LayoutWide {
		height = chartHeightWide
	}

	series := m.history[m.metric]
	value := "no data"
	if n := len(series); n > 0 {
		value = fmt.Sprintf("%.1f %s", series[n-1].Value, m.metric.Unit())
	}

	lines := []string{SectionHeader(m.metric.Label(), value, width)}
	inner := width - 4
	data := m.values(m.metric, inner*2)
	if len(data) == 0 {
		lines = append(lines, SectionContentLine(MutedStyle.Render("waiting for history..."), width))
	} else {
		for _, row := range strings.Split(RenderBrailleGraph(data, inner, height, MetricColor(m.metric)), "\n") {
			lines = append(lines, SectionContentLine(row, width))
		}
	}
	lines = append(lines, SectionFooter(width))
	return strings.Join(lines, "\n")
}

// renderMetricSummary renders one sparkline row per metric.
func (m Model) renderMetricSummary() string {
	rows := make([]string, 0, len(sensor.Metrics))
	for _, mt := range sensor.Metrics {
		data := m.values(mt, summarySparkWidth)
		label := LabelStyle.Width(14).Render(mt.Label())
		if mt == m.metric {
			label = NameStyle.Width(14).Render(mt.Label())
		}
		latest := MutedStyle.Render("--")
		if len(data) > 0 {
			v := data[len(data)-1]
			latest = lipgloss.NewStyle().Foreground(SeverityColor(Classify(mt, v))).
				Render(fmt.Sprintf("%.1f %s %s", v, mt.Unit(), ui.TrendArrow(data)))
		}
		spark := ui.RenderSparkline(data, summarySparkWidth, MetricColor(mt))
		spark += strings.Repeat(" ", max(summarySparkWidth-lipgloss.Width(spark), 0))
		rows = append(rows, label+" "+spark+"  "+latest)
	}
	return strings.Join(rows, "\n")
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	hints := []string{
		"q quit",
		"r refresh",
		"a auto",
		"+/- interval",
		"tab metric",
		"↑↓ select",
		"? help",
	}
	return FooterStyle.Render(strings.Join(hints, " | "))
}
