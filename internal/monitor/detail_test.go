package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greenhouse-iot/sensordash/internal/history"
	"github.com/greenhouse-iot/sensordash/internal/sensor"
)

func TestModel_renderDetailView(t *testing.T) {
	m, _ := newTestModel(t)
	m.width = 140
	m.history[sensor.Temperature] = []history.Sample{
		{Time: "2026-05-01 10:00:00", Value: 22},
		{Time: "2026-05-01 10:00:05", Value: 26},
		{Time: "2026-05-01 10:00:10", Value: 24.5},
	}
	m.viewMode = ViewDetail

	view := m.View()

	assert.Contains(t, view, "Air Temperature")
	assert.Contains(t, view, "Greenhouse A")
	assert.Contains(t, view, "24.5 °C")
	assert.Contains(t, view, "ok")
	assert.Contains(t, view, "optimal 20-30 °C")
	assert.Contains(t, view, "Temperature history")
	assert.Contains(t, view, "min 22.0°C")
	assert.Contains(t, view, "max 26.0°C")
	assert.Contains(t, view, "3 samples, 2026-05-01 10:00:00 to 2026-05-01 10:00:10")
	assert.Contains(t, view, "Esc back")
}

func TestModel_renderDetailView_WaitingForHistory(t *testing.T) {
	m, _ := newTestModel(t)
	m.selected = 2
	m.viewMode = ViewDetail

	view := m.View()

	assert.Contains(t, view, "Soil pH")
	assert.Contains(t, view, "Soil pH history")
	assert.Contains(t, view, "Waiting for history data")
}

func TestModel_renderDetailView_NoSensor(t *testing.T) {
	m, _ := newTestModel(t)
	m.sensors = nil
	m.viewMode = ViewDetail

	assert.Contains(t, m.View(), "No sensor selected")
}

func TestModel_renderDetailInfo_Grades(t *testing.T) {
	m, _ := newTestModel(t)

	tests := []struct {
		name  string
		r     sensor.Reading
		grade string
	}{
		{"critical", reading(1, "T", sensor.TypeTemperature, "40", true), "critical"},
		{"warning", reading(2, "H", sensor.TypeHumidity, "55", true), "warning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, m.renderDetailInfo(tt.r, 60), tt.grade)
		})
	}
}

func TestModel_renderDetailInfo_NoGradeWithoutValue(t *testing.T) {
	m, _ := newTestModel(t)

	info := m.renderDetailInfo(reading(1, "T", sensor.TypeTemperature, sensor.DefaultValue, true), 60)

	assert.NotContains(t, info, "Range")
	assert.NotContains(t, info, "optimal")
}

func TestSeriesSummary(t *testing.T) {
	series := []history.Sample{
		{Time: "2026-05-01 10:00:00", Value: 6.2},
		{Time: "2026-05-01 10:00:05", Value: 6.8},
	}
	got := seriesSummary(sensor.SoilMoisture, series, []float64{6.2, 6.8})

	assert.Equal(t, "  min 6.2pH  max 6.8pH  latest 6.8pH  |  2 samples, 2026-05-01 10:00:00 to 2026-05-01 10:00:05", got)
}
