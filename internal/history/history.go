// Package history keeps the bounded per-metric sample series charted by the
// dashboard.
package history

import (
	"sync"
	"time"

	"github.com/greenhouse-iot/sensordash/internal/sensor"
)

// DefaultCapacity is the number of samples retained per metric.
const DefaultCapacity = 100

// TimeLayout formats sample times. Two samples with the same formatted time
// are the same sample.
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime formats t with TimeLayout in local time.
func FormatTime(t time.Time) string {
	return t.Local().Format(TimeLayout)
}

// Sample is one point in a metric series.
type Sample struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// Snapshot is a full copy of every series, keyed by metric. It is also the
// wire shape of the history endpoint.
type Snapshot map[sensor.Metric][]Sample

// Empty returns a snapshot with an empty series for each tracked metric.
func Empty() Snapshot {
	s := make(Snapshot, len(sensor.Metrics))
	for _, m := range sensor.Metrics {
		s[m] = []Sample{}
	}
	return s
}

// History holds one bounded series per tracked metric.
// It is safe for concurrent use.
type History struct {
	mu       sync.RWMutex
	capacity int
	series   map[sensor.Metric]*ringBuffer
}

// ringBuffer is a fixed-size circular buffer of samples.
type ringBuffer struct {
	data  []Sample
	head  int
	count int
	size  int
}

// New creates a History with the given per-metric capacity.
func New(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	h := &History{capacity: capacity}
	h.resetLocked()
	return h
}

// Capacity returns the per-metric sample limit.
func (h *History) Capacity() int {
	return h.capacity
}

// Merge records value for metric m at the formatted time t. A sample already
// stored at t is overwritten in place; otherwise the sample is appended and
// the oldest one is dropped once the series is full. Untracked metrics are
// ignored and reported as false.
func (h *History) Merge(m sensor.Metric, t string, value float64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	rb, ok := h.series[m]
	if !ok {
		return false
	}
	if idx := rb.find(t); idx >= 0 {
		rb.data[idx].Value = value
		return true
	}
	rb.push(Sample{Time: t, Value: value})
	return true
}

// Replace swaps in a whole snapshot. Metrics missing from s become empty,
// untracked keys are dropped, and series longer than the capacity keep their
// last Capacity() samples.
func (h *History) Replace(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.resetLocked()
	for _, m := range sensor.Metrics {
		rb := h.series[m]
		for _, sample := range s[m] {
			rb.push(sample)
		}
	}
}

// Reset empties every series.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resetLocked()
}

// Series returns a copy of the samples for m, oldest first.
func (h *History) Series(m sensor.Metric) []Sample {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rb, ok := h.series[m]
	if !ok {
		return nil
	}
	return rb.getAll()
}

// Values returns the last count values for m, oldest first.
func (h *History) Values(m sensor.Metric, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rb, ok := h.series[m]
	if !ok {
		return nil
	}
	samples := rb.getLast(count)
	if samples == nil {
		return nil
	}
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.Value
	}
	return values
}

// Latest returns the newest sample for m.
func (h *History) Latest(m sensor.Metric) (Sample, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rb, ok := h.series[m]
	if !ok || rb.count == 0 {
		return Sample{}, false
	}
	return rb.getLast(1)[0], true
}

// Len returns the number of samples stored for m.
func (h *History) Len(m sensor.Metric) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if rb, ok := h.series[m]; ok {
		return rb.count
	}
	return 0
}

// Snapshot returns a copy of every series.
func (h *History) Snapshot() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s := make(Snapshot, len(h.series))
	for m, rb := range h.series {
		s[m] = rb.getAll()
	}
	return s
}

// resetLocked must be called with h.mu held.
func (h *History) resetLocked() {
	h.series = make(map[sensor.Metric]*ringBuffer, len(sensor.Metrics))
	for _, m := range sensor.Metrics {
		h.series[m] = newRingBuffer(h.capacity)
	}
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]Sample, size),
		size: size,
	}
}

// push adds a sample, overwriting the oldest once full.
func (r *ringBuffer) push(s Sample) {
	r.data[r.head] = s
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// find returns the slot holding a sample at time t, or -1.
func (r *ringBuffer) find(t string) int {
	start := (r.head - r.count + r.size) % r.size
	for i := 0; i < r.count; i++ {
		idx := (start + i) % r.size
		if r.data[idx].Time == t {
			return idx
		}
	}
	return -1
}

// getLast returns the last count samples in chronological order.
func (r *ringBuffer) getLast(count int) []Sample {
	if count <= 0 || r.count == 0 {
		return nil
	}
	if count > r.count {
		count = r.count
	}

	result := make([]Sample, count)
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}

// getAll returns every stored sample; never nil.
func (r *ringBuffer) getAll() []Sample {
	if r.count == 0 {
		return []Sample{}
	}
	return r.getLast(r.count)
}
