package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/greenhouse-iot/sensordash/internal/history"
	"github.com/greenhouse-iot/sensordash/internal/logger"
	"github.com/greenhouse-iot/sensordash/internal/sensor"
)

// Sink receives simulated readings.
type Sink interface {
	Send(p Payload) error
}

// StoreSink records readings straight into a Store.
type StoreSink struct {
	Store *Store
}

// Send implements Sink.
func (s StoreSink) Send(p Payload) error {
	ts, err := parseTimestamp(p.Timestamp)
	if err != nil {
		return err
	}
	return s.Store.Record(p.SensorID, p.DataType, p.Value, ts)
}

// MQTTSink publishes readings to a broker. Topic may contain a "+" that is
// replaced with the sensor id.
type MQTTSink struct {
	Client mqtt.Client
	Topic  string
}

// Send implements Sink.
func (s MQTTSink) Send(p Payload) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	token := s.Client.Publish(TopicFor(s.Topic, p.SensorID), 0, false, payload)
	token.Wait()
	return token.Error()
}

type valueRange struct {
	lo, hi float64
}

// Ranges of simulated values per metric. Soil is a pH value.
var simRanges = map[sensor.Metric]valueRange{
	sensor.Temperature:  {20, 30},
	sensor.Humidity:     {50, 90},
	sensor.SoilMoisture: {6.0, 7.5},
	sensor.Light:        {1000, 5000},
}

// Device data_type names per metric.
var dataTypes = map[sensor.Metric]string{
	sensor.Temperature:  "temperature",
	sensor.Humidity:     "humidity",
	sensor.SoilMoisture: "soil",
	sensor.Light:        "light",
}

// Simulator periodically sends a random in-range reading for every sensor
// of a tracked type.
type Simulator struct {
	sink     Sink
	sensors  func() []sensor.Raw
	interval time.Duration
	log      logger.Logger
	now      func() time.Time

	mu  sync.Mutex
	rng *rand.Rand

	ticker *time.Ticker
	quit   chan struct{}
	done   chan struct{}
}

// SimulatorOption configures a Simulator.
type SimulatorOption func(*Simulator)

// WithSeed makes the generated values reproducible.
func WithSeed(seed uint64) SimulatorOption {
	return func(s *Simulator) { s.rng = rand.New(rand.NewPCG(seed, seed)) }
}

// WithSimulatorLogger sets the logger used for send failures.
func WithSimulatorLogger(l logger.Logger) SimulatorOption {
	return func(s *Simulator) { s.log = l }
}

// NewSimulator creates a Simulator that reads the sensor list from sensors
// on every tick and writes to sink.
func NewSimulator(sink Sink, sensors func() []sensor.Raw, interval time.Duration, opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		sink:     sink,
		sensors:  sensors,
		interval: interval,
		log:      logger.Noop(),
		now:      time.Now,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start sends readings every interval until Stop is called.
func (s *Simulator) Start() {
	s.ticker = time.NewTicker(s.interval)
	s.quit = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		for {
			select {
			case <-s.quit:
				return
			case <-s.ticker.C:
				if _, err := s.Step(); err != nil {
					s.log.Warn("simulator: %v", err)
				}
			}
		}
	}()
}

// Stop halts the simulator and waits for the current tick to finish.
func (s *Simulator) Stop() {
	if s.quit == nil {
		return
	}
	close(s.quit)
	s.ticker.Stop()
	<-s.done
	s.quit = nil
}

// Step sends one reading per tracked sensor and returns how many were sent.
func (s *Simulator) Step() (int, error) {
	ts := history.FormatTime(s.now())
	var errs []error
	sent := 0
	for _, raw := range s.sensors() {
		m, ok := sensor.MetricFor(raw.Type)
		if !ok {
			continue
		}
		p := Payload{SensorID: raw.ID, DataType: dataTypes[m], Value: s.generate(m), Timestamp: ts}
		if err := s.sink.Send(p); err != nil {
			errs = append(errs, fmt.Errorf("sensor %d: %w", raw.ID, err))
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}

// generate returns a value in the metric's range rounded to one decimal.
func (s *Simulator) generate(m sensor.Metric) float64 {
	r := simRanges[m]
	s.mu.Lock()
	v := r.lo + s.rng.Float64()*(r.hi-r.lo)
	s.mu.Unlock()
	return math.Round(v*10) / 10
}
