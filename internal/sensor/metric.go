package sensor

import (
	"fmt"
	"strings"
)

// Metric keys one of the four tracked history series.
type Metric string

const (
	Temperature  Metric = "temperature"
	Humidity     Metric = "humidity"
	Light        Metric = "light"
	SoilMoisture Metric = "soil_moisture"
)

// Metrics lists the tracked metrics in display order.
var Metrics = []Metric{Temperature, Humidity, Light, SoilMoisture}

var typeMetrics = map[string]Metric{
	TypeTemperature: Temperature,
	TypeHumidity:    Humidity,
	TypeLight:       Light,
	TypeSoil:        SoilMoisture,
}

// MetricFor maps a sensor type to its metric. The match is exact; other
// types are not tracked.
func MetricFor(sensorType string) (Metric, bool) {
	m, ok := typeMetrics[sensorType]
	return m, ok
}

// ParseMetric accepts a metric key ("soil_moisture") or a sensor type ("Soil").
func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	if m, ok := MetricFor(s); ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown metric %q (want one of temperature, humidity, light, soil_moisture)", s)
}

// MetricForDataType maps a reading's data_type as sent by devices
// ("temperature", "soil", "Soil", "soil_moisture") to its metric. Unlike
// MetricFor the match ignores case.
func MetricForDataType(dataType string) (Metric, bool) {
	dt := strings.ToLower(strings.TrimSpace(dataType))
	for _, m := range Metrics {
		if string(m) == dt {
			return m, true
		}
	}
	for typ, m := range typeMetrics {
		if strings.ToLower(typ) == dt {
			return m, true
		}
	}
	return "", false
}

// Label returns a human-readable title.
func (m Metric) Label() string {
	switch m {
	case Temperature:
		return "Temperature"
	case Humidity:
		return "Humidity"
	case Light:
		return "Light"
	case SoilMoisture:
		return "Soil pH"
	default:
		return string(m)
	}
}

// Unit returns the display unit for values of m.
func (m Metric) Unit() string {
	switch m {
	case Temperature:
		return "°C"
	case Humidity:
		return "%"
	case Light:
		return "lux"
	case SoilMoisture:
		return "pH"
	default:
		return ""
	}
}
