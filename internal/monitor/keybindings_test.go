package monitor

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenhouse-iot/sensordash/internal/sensor"
)

// keyMsg builds the key message whose String() is key.
func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

func TestKeyMsgHelper(t *testing.T) {
	for _, k := range []string{KeyQuit, KeyQuitAlt, KeyExpand, KeyCollapse, KeyNextMetric, KeyPrevMetric, KeySelectPrev, KeySelectNext, KeySelectFirst, KeySelectLast, KeySlower} {
		assert.Equal(t, k, keyMsg(k).String())
	}
}

func TestNextMetric(t *testing.T) {
	assert.Equal(t, sensor.Humidity, nextMetric(sensor.Temperature, 1))
	assert.Equal(t, sensor.Temperature, nextMetric(sensor.SoilMoisture, 1))
	assert.Equal(t, sensor.SoilMoisture, nextMetric(sensor.Temperature, -1))
	assert.Equal(t, sensor.Temperature, nextMetric(sensor.Metric("co2"), 1))
}

func TestStepInterval(t *testing.T) {
	tests := []struct {
		name string
		from time.Duration
		step int
		want time.Duration
	}{
		{"up from step", 5 * time.Second, 1, 10 * time.Second},
		{"down from step", 5 * time.Second, -1, 2 * time.Second},
		{"floor", time.Second, -1, time.Second},
		{"ceiling", time.Minute, 1, time.Minute},
		{"between steps up snaps", 3 * time.Second, 1, 5 * time.Second},
		{"between steps down", 3 * time.Second, -1, 2 * time.Second},
		{"below range up", 500 * time.Millisecond, 1, time.Second},
		{"above range", 5 * time.Minute, -1, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stepInterval(tt.from, tt.step))
		})
	}
}

func TestHandleKeyMsg_Quit(t *testing.T) {
	for _, k := range []string{KeyQuit, KeyQuitAlt} {
		m, _ := newTestModel(t)
		handled, cmd := m.HandleKeyMsg(keyMsg(k))

		assert.True(t, handled)
		assert.True(t, m.quitting)
		require.NotNil(t, cmd)
		assert.Equal(t, tea.QuitMsg{}, cmd())
	}
}

func TestHandleKeyMsg_Navigation(t *testing.T) {
	m, _ := newTestModel(t)

	steps := []struct {
		key  string
		want int
	}{
		{KeySelectPrev, 0},
		{KeySelectNextJ, 1},
		{KeySelectNext, 2},
		{KeySelectNext, 2},
		{KeySelectPrevK, 1},
		{KeySelectFirst, 0},
		{KeySelectLast, 2},
	}

	for _, s := range steps {
		handled, _ := m.HandleKeyMsg(keyMsg(s.key))
		assert.True(t, handled)
		assert.Equal(t, s.want, m.selected, "after %s", s.key)
	}
}

func TestHandleKeyMsg_DetailView(t *testing.T) {
	m, _ := newTestModel(t)

	m.HandleKeyMsg(keyMsg(KeyExpand))
	assert.Equal(t, ViewDetail, m.viewMode)

	m.HandleKeyMsg(keyMsg(KeyCollapse))
	assert.Equal(t, ViewList, m.viewMode)

	m.sensors = nil
	m.HandleKeyMsg(keyMsg(KeyExpand))
	assert.Equal(t, ViewList, m.viewMode, "nothing to expand")
}

func TestHandleKeyMsg_Help(t *testing.T) {
	m, _ := newTestModel(t)
	m.viewMode = ViewDetail

	m.HandleKeyMsg(keyMsg(KeyToggleHelp))
	assert.True(t, m.showHelp)

	// Esc closes help before leaving the detail view.
	m.HandleKeyMsg(keyMsg(KeyCollapse))
	assert.False(t, m.showHelp)
	assert.Equal(t, ViewDetail, m.viewMode)
}

func TestHandleKeyMsg_ToggleAuto(t *testing.T) {
	m, src := newTestModel(t)
	require.False(t, m.auto)

	m.HandleKeyMsg(keyMsg(KeyToggleAuto))
	assert.True(t, m.auto)
	assert.Equal(t, []time.Duration{5 * time.Second}, src.starts)

	m.HandleKeyMsg(keyMsg(KeyToggleAuto))
	assert.False(t, m.auto)
	assert.Equal(t, 1, src.stops)
}

func TestHandleKeyMsg_Interval(t *testing.T) {
	m, src := newTestModel(t)

	// Not running: only the model's interval moves.
	m.HandleKeyMsg(keyMsg(KeyFaster))
	assert.Equal(t, 2*time.Second, m.interval)
	assert.Empty(t, src.starts)

	m.HandleKeyMsg(keyMsg(KeyToggleAuto))
	m.HandleKeyMsg(keyMsg(KeySlowerAlt))
	assert.Equal(t, 5*time.Second, m.interval)
	assert.Equal(t, []time.Duration{2 * time.Second, 5 * time.Second}, src.starts)

	// At a bound nothing restarts.
	m.interval = time.Minute
	m.HandleKeyMsg(keyMsg(KeySlower))
	assert.Len(t, src.starts, 2)
}

func TestHandleKeyMsg_Metric(t *testing.T) {
	m, _ := newTestModel(t)

	m.HandleKeyMsg(keyMsg(KeyNextMetric))
	assert.Equal(t, sensor.Humidity, m.metric)
	m.HandleKeyMsg(keyMsg(KeyNextMetricM))
	assert.Equal(t, sensor.Light, m.metric)
	m.HandleKeyMsg(keyMsg(KeyPrevMetric))
	assert.Equal(t, sensor.Humidity, m.metric)
}

func TestHandleKeyMsg_Unhandled(t *testing.T) {
	m, _ := newTestModel(t)
	handled, cmd := m.HandleKeyMsg(keyMsg("x"))
	assert.False(t, handled)
	assert.Nil(t, cmd)
}
