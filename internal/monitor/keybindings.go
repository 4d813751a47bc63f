package monitor

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/greenhouse-iot/sensordash/internal/sensor"
)

// ViewMode defines the current display mode of the dashboard.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)

// Key bindings as constants for consistency.
const (
	KeyQuit        = "q"
	KeyQuitAlt     = "ctrl+c"
	KeyRefresh     = "r"
	KeyToggleAuto  = "a"
	KeyFaster      = "-"
	KeySlower      = "+"
	KeySlowerAlt   = "="
	KeyNextMetric  = "tab"
	KeyNextMetricM = "m"
	KeyPrevMetric  = "shift+tab"
	KeySelectPrev  = "up"
	KeySelectPrevK = "k"
	KeySelectNext  = "down"
	KeySelectNextJ = "j"
	KeySelectFirst = "home"
	KeySelectLast  = "end"
	KeyExpand      = "enter"
	KeyCollapse    = "esc"
	KeyToggleHelp  = "?"
)

// nextMetric returns the metric after m in display order, wrapping around.
func nextMetric(m sensor.Metric, step int) sensor.Metric {
	n := len(sensor.Metrics)
	for i, mt := range sensor.Metrics {
		if mt == m {
			return sensor.Metrics[((i+step)%n+n)%n]
		}
	}
	return sensor.Metrics[0]
}

// stepInterval moves d by step positions through IntervalSteps. A value
// between steps snaps to the nearest step in the direction of travel.
func stepInterval(d time.Duration, step int) time.Duration {
	idx := -1
	for i, s := range IntervalSteps {
		if s >= d {
			idx = i
			break
		}
	}
	switch {
	case idx < 0:
		return IntervalSteps[len(IntervalSteps)-1]
	case IntervalSteps[idx] != d && step > 0:
		return IntervalSteps[idx]
	}
	idx = max(0, min(idx+step, len(IntervalSteps)-1))
	return IntervalSteps[idx]
}

// HandleKeyMsg processes keyboard input and returns updated model state and command.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	// Help toggle takes priority
	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if m.showHelp && key == KeyCollapse {
		m.showHelp = false
		return true, nil
	}

	if m.viewMode == ViewDetail && key == KeyCollapse {
		m.viewMode = ViewList
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		return true, tea.Quit

	case KeyRefresh:
		m.loading = true
		return true, m.refreshCmd()

	case KeyToggleAuto:
		if m.auto {
			m.source.StopAutoRefresh()
		} else {
			m.source.StartAutoRefresh(m.interval)
		}
		m.auto = m.source.AutoRefreshActive()
		return true, nil

	case KeyFaster, KeySlower, KeySlowerAlt:
		step := 1
		if key == KeyFaster {
			step = -1
		}
		d := stepInterval(m.interval, step)
		if d != m.interval {
			m.interval = d
			if m.auto {
				m.source.StartAutoRefresh(d)
			}
		}
		return true, nil

	case KeyNextMetric, KeyNextMetricM:
		m.metric = nextMetric(m.metric, 1)
		return true, nil

	case KeyPrevMetric:
		m.metric = nextMetric(m.metric, -1)
		return true, nil

	case KeySelectPrev, KeySelectPrevK:
		if m.selected > 0 {
			m.selected--
		}
		return true, nil

	case KeySelectNext, KeySelectNextJ:
		if m.selected < len(m.sensors)-1 {
			m.selected++
		}
		return true, nil

	case KeySelectFirst:
		m.selected = 0
		return true, nil

	case KeySelectLast:
		if len(m.sensors) > 0 {
			m.selected = len(m.sensors) - 1
		}
		return true, nil

	case KeyExpand:
		if m.viewMode == ViewList && len(m.sensors) > 0 {
			m.viewMode = ViewDetail
		}
		return true, nil

	case KeyCollapse:
		m.viewMode = ViewList
		return true, nil
	}

	return false, nil
}
