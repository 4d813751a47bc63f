package server

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/greenhouse-iot/sensordash/internal/api"
	"github.com/greenhouse-iot/sensordash/internal/history"
	"github.com/greenhouse-iot/sensordash/internal/sensor"
)

// DefaultMaxReadings bounds the number of readings kept in memory.
const DefaultMaxReadings = 10000

var (
	// ErrNotFound is returned for an unknown sensor id.
	ErrNotFound = errors.New("sensor not found")
	// ErrInvalidInput is returned when a write is missing required fields.
	ErrInvalidInput = errors.New("invalid sensor input")
)

// Reading is one recorded value.
type Reading struct {
	SensorID int64
	Metric   sensor.Metric
	Value    float64
	Time     time.Time
}

// Store is the in-memory backing store of the development backend.
// It is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	nextID      int64
	sensors     map[int64]*sensor.Raw
	readings    []Reading
	maxReadings int
	now         func() time.Time
}

// NewStore creates an empty store that keeps at most maxReadings readings.
func NewStore(maxReadings int) *Store {
	if maxReadings <= 0 {
		maxReadings = DefaultMaxReadings
	}
	return &Store{
		nextID:      1,
		sensors:     make(map[int64]*sensor.Raw),
		maxReadings: maxReadings,
		now:         time.Now,
	}
}

// defaultSensors are seeded in id order so that simulated devices 1..4 map
// to one sensor per tracked metric.
var defaultSensors = []api.SensorInput{
	{Name: "Air Temperature", Type: sensor.TypeTemperature, Location: "Greenhouse A"},
	{Name: "Air Humidity", Type: sensor.TypeHumidity, Location: "Greenhouse A"},
	{Name: "Soil pH", Type: sensor.TypeSoil, Location: "Bed 1"},
	{Name: "Light Level", Type: sensor.TypeLight, Location: "Greenhouse A"},
}

// Seed adds the default sensors.
func (s *Store) Seed() {
	for _, in := range defaultSensors {
		_, _ = s.Create(in)
	}
}

// List returns every sensor ordered by id.
func (s *Store) List() []sensor.Raw {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]sensor.Raw, 0, len(s.sensors))
	for _, raw := range s.sensors {
		out = append(out, *raw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the sensor with the given id.
func (s *Store) Get(id int64) (sensor.Raw, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.sensors[id]
	if !ok {
		return sensor.Raw{}, ErrNotFound
	}
	return *raw, nil
}

// Create adds a sensor. Name and type are required.
func (s *Store) Create(in api.SensorInput) (sensor.Raw, error) {
	if in.Name == "" || in.Type == "" {
		return sensor.Raw{}, fmt.Errorf("%w: name and type are required", ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = sensor.StatusInactive
	}
	if err := checkStatus(status); err != nil {
		return sensor.Raw{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw := &sensor.Raw{
		ID:        s.nextID,
		Name:      in.Name,
		Type:      in.Type,
		Location:  in.Location,
		Status:    status,
		CreatedAt: history.FormatTime(s.now()),
	}
	s.sensors[raw.ID] = raw
	s.nextID++
	return *raw, nil
}

// Update replaces the non-empty fields of in on the sensor.
func (s *Store) Update(id int64, in api.SensorInput) (sensor.Raw, error) {
	if in.Status != "" {
		if err := checkStatus(in.Status); err != nil {
			return sensor.Raw{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.sensors[id]
	if !ok {
		return sensor.Raw{}, ErrNotFound
	}
	if in.Name != "" {
		raw.Name = in.Name
	}
	if in.Type != "" {
		raw.Type = in.Type
	}
	if in.Location != "" {
		raw.Location = in.Location
	}
	if in.Status != "" {
		raw.Status = in.Status
	}
	return *raw, nil
}

// Delete removes a sensor. Its past readings stay in history.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sensors[id]; !ok {
		return ErrNotFound
	}
	delete(s.sensors, id)
	return nil
}

// Record stores a reading for sensorID and makes it the sensor's current
// value. dataType is matched with sensor.MetricForDataType. A zero ts means
// now.
func (s *Store) Record(sensorID int64, dataType string, value float64, ts time.Time) error {
	m, ok := sensor.MetricForDataType(dataType)
	if !ok {
		return fmt.Errorf("%w: unknown data type %q", ErrInvalidInput, dataType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ts.IsZero() {
		ts = s.now()
	}
	raw, ok := s.sensors[sensorID]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, sensorID)
	}
	raw.CurrentValue = sensor.Number(value)
	raw.LastUpdate = history.FormatTime(ts)
	raw.Status = sensor.StatusActive

	s.readings = append(s.readings, Reading{SensorID: sensorID, Metric: m, Value: value, Time: ts})
	if over := len(s.readings) - s.maxReadings; over > 0 {
		s.readings = append(s.readings[:0], s.readings[over:]...)
	}
	return nil
}

// Len returns the number of stored readings.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.readings)
}

// History groups the newest limit readings by metric, oldest first within
// each series. ok is false when no readings exist.
func (s *Store) History(limit int) (snap history.Snapshot, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.readings) == 0 {
		return nil, false
	}
	rows := s.readings
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	rows = append([]Reading(nil), rows...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Time.Before(rows[j].Time) })

	snap = history.Empty()
	for _, r := range rows {
		snap[r.Metric] = append(snap[r.Metric], history.Sample{Time: history.FormatTime(r.Time), Value: r.Value})
	}
	return snap, true
}

func checkStatus(status string) error {
	switch status {
	case sensor.StatusActive, sensor.StatusInactive:
		return nil
	default:
		return fmt.Errorf("%w: status must be %s or %s, got %s", ErrInvalidInput,
			sensor.StatusActive, sensor.StatusInactive, strconv.Quote(status))
	}
}
