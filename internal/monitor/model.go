package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/greenhouse-iot/sensordash/internal/history"
	"github.com/greenhouse-iot/sensordash/internal/sensor"
)

// Source is the poller as seen by the dashboard.
type Source interface {
	Attach(ctx context.Context) error
	Refresh(ctx context.Context) error
	StartAutoRefresh(interval time.Duration)
	StopAutoRefresh()
	SetOnChange(fn func())

	Sensors() []sensor.Reading
	History() history.Snapshot
	Loading() bool
	AutoRefreshActive() bool
	Interval() time.Duration
	LastUpdate() time.Time
}

// LayoutMode represents the responsive layout mode based on terminal size.
type LayoutMode int

const (
	// LayoutMinimal is for terminals < 80 columns: table only, no charts.
	LayoutMinimal LayoutMode = iota
	// LayoutCompact is for terminals 80-120 columns: table and one chart.
	LayoutCompact
	// LayoutWide is for terminals 120+ columns: table beside a chart per metric.
	LayoutWide
)

// Width breakpoints for layout modes
const (
	BreakpointCompact = 80
	BreakpointWide    = 120
)

// IntervalSteps are the refresh periods the +/- keys move between.
var IntervalSteps = []time.Duration{
	time.Second,
	2 * time.Second,
	5 * time.Second,
	10 * time.Second,
	15 * time.Second,
	30 * time.Second,
	time.Minute,
}

const (
	clockInterval = time.Second
	toastTTL      = 4 * time.Second
	maxToasts     = 3
)

// Model is the Bubble Tea model for the sensor dashboard.
type Model struct {
	ctx      context.Context
	source   Source
	notifier *Notifier
	changes  chan struct{}
	now      func() time.Time

	sensors    []sensor.Reading
	history    history.Snapshot
	lastUpdate time.Time
	loading    bool
	auto       bool
	interval   time.Duration
	attached   bool
	attachErr  error

	selected int
	metric   sensor.Metric
	viewMode ViewMode
	showHelp bool
	quitting bool
	width    int
	height   int

	toasts  []toastMsg
	spinner spinner.Model
}

// changedMsg signals that the poller's state moved.
type changedMsg struct{}

// attachedMsg reports the end of the startup sequence.
type attachedMsg struct{ err error }

// refreshDoneMsg reports the end of a manual refresh.
type refreshDoneMsg struct{ err error }

// clockMsg re-renders relative times.
type clockMsg time.Time

// expireToastMsg removes a toast once its time is up.
type expireToastMsg struct{ id int64 }

// NewModel creates a dashboard over src. Notifications sent to notifier are
// shown as toasts. ctx bounds every fetch the dashboard starts.
func NewModel(ctx context.Context, src Source, notifier *Notifier) Model {
	if notifier == nil {
		notifier = NewNotifier()
	}
	changes := make(chan struct{}, 1)
	src.SetOnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	s := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	s.Style = LabelStyle

	m := Model{
		ctx:      ctx,
		source:   src,
		notifier: notifier,
		changes:  changes,
		now:      time.Now,
		metric:   sensor.Temperature,
		interval: src.Interval(),
		spinner:  s,
	}
	m.sync()
	return m
}

// Init starts the poller and the background listeners.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.attachCmd(),
		m.waitForChange(),
		m.notifier.wait(),
		m.clockCmd(),
		m.spinner.Tick,
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case changedMsg:
		m.sync()
		return m, m.waitForChange()

	case attachedMsg:
		m.attached = true
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.attachErr = msg.err
		}
		if m.source.AutoRefreshActive() && m.source.Interval() != m.interval {
			m.source.StartAutoRefresh(m.interval)
		}
		m.sync()

	case refreshDoneMsg:
		m.sync()

	case toastMsg:
		m.toasts = append(m.toasts, msg)
		if len(m.toasts) > maxToasts {
			m.toasts = m.toasts[len(m.toasts)-maxToasts:]
		}
		id := msg.id
		return m, tea.Batch(
			m.notifier.wait(),
			tea.Tick(toastTTL, func(time.Time) tea.Msg { return expireToastMsg{id: id} }),
		)

	case expireToastMsg:
		for i, t := range m.toasts {
			if t.id == msg.id {
				m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
				break
			}
		}

	case clockMsg:
		return m, m.clockCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.viewMode == ViewDetail {
		return m.renderDetailView()
	}
	return m.renderDashboard()
}

// sync copies the poller's state into the model.
func (m *Model) sync() {
	m.sensors = m.source.Sensors()
	m.history = m.source.History()
	m.lastUpdate = m.source.LastUpdate()
	m.loading = m.source.Loading()
	m.auto = m.source.AutoRefreshActive()
	if m.selected >= len(m.sensors) {
		m.selected = max(len(m.sensors)-1, 0)
	}
}

func (m Model) attachCmd() tea.Cmd {
	ctx, src := m.ctx, m.source
	return func() tea.Msg {
		return attachedMsg{err: src.Attach(ctx)}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	ctx, src := m.ctx, m.source
	return func() tea.Msg {
		return refreshDoneMsg{err: src.Refresh(ctx)}
	}
}

func (m Model) waitForChange() tea.Cmd {
	ch := m.changes
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

func (m Model) clockCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

// Layout returns the layout mode for the current terminal width.
func (m Model) Layout() LayoutMode {
	switch {
	case m.width >= BreakpointWide:
		return LayoutWide
	case m.width >= BreakpointCompact:
		return LayoutCompact
	default:
		return LayoutMinimal
	}
}

// SelectedSensor returns the highlighted sensor.
func (m Model) SelectedSensor() (sensor.Reading, bool) {
	if m.selected < 0 || m.selected >= len(m.sensors) {
		return sensor.Reading{}, false
	}
	return m.sensors[m.selected], true
}

// ActiveCount returns the number of active sensors.
func (m Model) ActiveCount() int {
	n := 0
	for _, s := range m.sensors {
		if s.Active() {
			n++
		}
	}
	return n
}

// SecondsSinceUpdate returns whole seconds since the last applied fetch, or
// -1 if nothing has been fetched yet.
func (m Model) SecondsSinceUpdate() int {
	if m.lastUpdate.IsZero() {
		return -1
	}
	return max(int(m.now().Sub(m.lastUpdate).Seconds()), 0)
}

// values returns the newest count values of metric mt from the snapshot.
func (m Model) values(mt sensor.Metric, count int) []float64 {
	series := m.history[mt]
	if count > 0 && len(series) > count {
		series = series[len(series)-count:]
	}
	out := make([]float64, len(series))
	for i, s := range series {
		out[i] = s.Value
	}
	return out
}
