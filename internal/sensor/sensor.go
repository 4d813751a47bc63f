// Package sensor defines sensor readings as served by the API and the
// normalization applied before they are displayed or recorded in history.
package sensor

// Placeholders used when the API leaves a field empty.
const (
	DefaultName       = "Unnamed Sensor"
	DefaultType       = "Unknown Type"
	DefaultLocation   = "Unknown Location"
	DefaultStatus     = StatusInactive
	DefaultLastUpdate = "Unknown Time"
	DefaultValue      = "--"
)

// Sensor status values.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Sensor types the API reports for the four tracked metrics.
const (
	TypeTemperature = "Temperature"
	TypeHumidity    = "Humidity"
	TypeLight       = "Light"
	TypeSoil        = "Soil"
)

// Soil readings are pH values and always fall in this range once recorded.
const (
	SoilMin = 0.0
	SoilMax = 14.0
)

// Raw is a sensor exactly as the API returns it. Any field may be missing.
type Raw struct {
	ID           int64  `json:"id"`
	Name         string `json:"name,omitempty"`
	Type         string `json:"type,omitempty"`
	Location     string `json:"location,omitempty"`
	Status       string `json:"status,omitempty"`
	LastUpdate   string `json:"last_update,omitempty"`
	CurrentValue Value  `json:"current_value"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// Reading is a normalized sensor: every display field is filled in.
type Reading struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Location     string `json:"location"`
	Status       string `json:"status"`
	LastUpdate   string `json:"last_update"`
	CurrentValue string `json:"current_value"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// Normalize fills placeholders for every missing field of r.
func Normalize(r Raw) Reading {
	value := DefaultValue
	if r.CurrentValue.IsSet() {
		value = r.CurrentValue.String()
	}
	return Reading{
		ID:           r.ID,
		Name:         orDefault(r.Name, DefaultName),
		Type:         orDefault(r.Type, DefaultType),
		Location:     orDefault(r.Location, DefaultLocation),
		Status:       orDefault(r.Status, DefaultStatus),
		LastUpdate:   orDefault(r.LastUpdate, DefaultLastUpdate),
		CurrentValue: value,
		CreatedAt:    r.CreatedAt,
	}
}

// NormalizeAll normalizes a slice of raw sensors, preserving order.
func NormalizeAll(raws []Raw) []Reading {
	out := make([]Reading, 0, len(raws))
	for _, r := range raws {
		out = append(out, Normalize(r))
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Active reports whether the sensor status is "active".
func (r Reading) Active() bool {
	return r.Status == StatusActive
}

// NumericValue returns the current value as a number, or 0 when the value
// has no numeric prefix.
func (r Reading) NumericValue() float64 {
	f, _ := ParseLeadingFloat(r.CurrentValue)
	return f
}

// Sample returns the metric this reading feeds and the value to record for
// it. Soil values are clamped into [SoilMin, SoilMax]. ok is false for
// sensor types outside the four tracked metrics.
func (r Reading) Sample() (m Metric, value float64, ok bool) {
	m, ok = MetricFor(r.Type)
	if !ok {
		return "", 0, false
	}
	value = r.NumericValue()
	if m == SoilMoisture {
		value = ClampSoil(value)
	}
	return m, value, true
}

// ClampSoil limits v to the pH range.
func ClampSoil(v float64) float64 {
	return max(SoilMin, min(SoilMax, v))
}
