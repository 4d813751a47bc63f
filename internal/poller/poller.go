// Package poller keeps a live view of the sensor API: it loads history once,
// then fetches current readings on a fixed interval and merges each snapshot
// into the bounded per-metric history.
//
// A Poller is driven through an explicit lifecycle. Attach loads history,
// then the first snapshot, then starts the refresh timer, strictly in that
// order. Detach stops the timer and discards any result that arrives later.
// At most one sensor fetch is in flight at a time; timer ticks that land
// while a fetch is running are dropped, not queued.
package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/greenhouse-iot/sensordash/internal/history"
	"github.com/greenhouse-iot/sensordash/internal/logger"
	"github.com/greenhouse-iot/sensordash/internal/notify"
	"github.com/greenhouse-iot/sensordash/internal/request"
	"github.com/greenhouse-iot/sensordash/internal/sensor"
)

// DefaultInterval is the auto-refresh period.
const DefaultInterval = 5 * time.Second

// Notification texts.
const (
	MsgFetchFailed   = "Failed to fetch sensor data, please try again later"
	MsgHistoryFailed = "Failed to fetch history data, showing empty history"
	MsgRefreshed     = "Data refreshed"
	MsgRefreshFailed = "Data refresh failed, please try again later"
	MsgRefreshBusy   = "A refresh is already in progress"
)

var (
	// ErrInFlight is returned when a fetch is skipped because another one is running.
	ErrInFlight = errors.New("sensor fetch already in progress")
	// ErrDetached is returned by operations on a detached Poller.
	ErrDetached = errors.New("poller is detached")
)

// Source is the part of the API client the poller reads from.
type Source interface {
	ListSensors(ctx context.Context) ([]sensor.Raw, error)
	History(ctx context.Context, limit int) (history.Snapshot, error)
}

// Option configures a Poller.
type Option func(*Poller)

// WithNotifier sets where user-facing messages go.
func WithNotifier(n notify.Notifier) Option {
	return func(p *Poller) {
		if n != nil {
			p.notifier = n
		}
	}
}

// WithLogger sets the poller logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.log = l
		}
	}
}

// WithClock overrides the time source used to stamp merged samples.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
	}
}

// WithInterval sets the auto-refresh period Attach starts with.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithHistoryLimit sets how many history rows FetchHistory requests.
func WithHistoryLimit(n int) Option {
	return func(p *Poller) {
		if n > 0 {
			p.historyLimit = n
		}
	}
}

// WithHistoryCapacity sets the per-metric sample limit.
func WithHistoryCapacity(n int) Option {
	return func(p *Poller) {
		if n > 0 {
			p.history = history.New(n)
		}
	}
}

// WithOnChange registers a callback run after every applied state change.
func WithOnChange(fn func()) Option {
	return func(p *Poller) {
		p.onChange = fn
	}
}

// Poller owns the current readings, the history and the refresh timer.
type Poller struct {
	src          Source
	notifier     notify.Notifier
	log          logger.Logger
	now          func() time.Time
	interval     time.Duration
	historyLimit int
	history      *history.History

	ctx    context.Context
	cancel context.CancelFunc

	loading atomic.Bool
	timers  atomic.Int32
	ticks   sync.WaitGroup

	mu         sync.Mutex
	sensors    []sensor.Reading
	lastUpdate time.Time
	timer      *refreshTimer
	detached   bool
	onChange   func()
}

// refreshTimer is the handle for one running auto-refresh loop.
type refreshTimer struct {
	ticker   *time.Ticker
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// New creates a Poller reading from src.
func New(src Source, opts ...Option) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Poller{
		src:          src,
		notifier:     notify.Discard(),
		log:          logger.NewEnvLogger("[poller]"),
		now:          time.Now,
		interval:     DefaultInterval,
		historyLimit: history.DefaultCapacity,
		history:      history.New(history.DefaultCapacity),
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetOnChange replaces the change callback.
func (p *Poller) SetOnChange(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = fn
}

// Attach runs the startup sequence: history, then the first snapshot, then
// auto-refresh at the configured interval. Each step waits for the previous
// one to finish, whatever its outcome. Detach aborts a running Attach.
func (p *Poller) Attach(ctx context.Context) error {
	if p.isDetached() {
		return ErrDetached
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(p.ctx, cancel)
	defer stop()

	p.FetchHistory(ctx)
	if err := p.FetchSensors(ctx); err != nil {
		p.log.Debug("initial sensor fetch failed: %v", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	p.StartAutoRefresh(p.interval)
	return nil
}

// Detach stops auto-refresh, cancels in-flight timer fetches and waits for
// them to return. Results that arrive afterwards are discarded.
func (p *Poller) Detach() {
	p.mu.Lock()
	p.stopLocked()
	p.detached = true
	p.mu.Unlock()

	p.cancel()
	p.ticks.Wait()
	p.log.Debug("detached")
}

// FetchHistory loads the history snapshot and replaces the local history
// with it. On any failure the history is reset to four empty series, and a
// warning is shown unless the server answered 404.
func (p *Poller) FetchHistory(ctx context.Context) {
	snap, err := p.src.History(ctx, p.historyLimit)

	p.mu.Lock()
	if p.detached {
		p.mu.Unlock()
		return
	}
	if err != nil {
		p.history.Reset()
	} else {
		p.history.Replace(snap)
	}
	p.mu.Unlock()

	if err != nil {
		p.log.Warn("history fetch failed: %v", err)
		if !request.IsNotFound(err) && ctx.Err() == nil {
			p.notifier.Notify(notify.KindWarning, MsgHistoryFailed)
		}
	} else {
		p.log.Debug("history loaded")
	}
	p.changed()
}

// FetchSensors fetches the current readings, normalizes them and merges each
// tracked metric into history at the current time. It returns ErrInFlight
// without side effects when another fetch is running. On failure the
// previous state is kept and an error notification is shown.
func (p *Poller) FetchSensors(ctx context.Context) error {
	return p.fetchSensors(ctx, true)
}

// Refresh is a manual FetchSensors that reports its own outcome: a success
// message, or a single failure message in place of the fetch's own.
func (p *Poller) Refresh(ctx context.Context) error {
	err := p.fetchSensors(ctx, false)
	switch {
	case err == nil:
		p.notifier.Notify(notify.KindSuccess, MsgRefreshed)
	case errors.Is(err, ErrInFlight):
		p.notifier.Notify(notify.KindInfo, MsgRefreshBusy)
	case errors.Is(err, ErrDetached), ctx.Err() != nil:
	default:
		p.log.Error("manual refresh failed: %v", err)
		p.notifier.Notify(notify.KindError, MsgRefreshFailed)
	}
	return err
}

func (p *Poller) fetchSensors(ctx context.Context, notifyErr bool) error {
	if p.isDetached() {
		return ErrDetached
	}
	if !p.loading.CompareAndSwap(false, true) {
		return ErrInFlight
	}
	p.changed()
	defer func() {
		p.loading.Store(false)
		p.changed()
	}()

	raws, err := p.src.ListSensors(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		p.log.Error("sensor fetch failed: %v", err)
		if notifyErr {
			p.notifier.Notify(notify.KindError, MsgFetchFailed)
		}
		return err
	}

	readings := sensor.NormalizeAll(raws)
	now := p.now()
	stamp := history.FormatTime(now)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.detached {
		p.log.Debug("discarding %d readings after detach", len(readings))
		return nil
	}

	p.sensors = readings
	p.lastUpdate = now
	active := 0
	for _, r := range readings {
		if r.Active() {
			active++
		}
		if m, v, ok := r.Sample(); ok {
			p.history.Merge(m, stamp, v)
		}
	}
	p.log.Debug("fetched %d sensors (%d active) at %s", len(readings), active, stamp)
	return nil
}

// StartAutoRefresh starts fetching on a fixed interval, stopping any timer
// already running first. A non-positive interval uses DefaultInterval.
func (p *Poller) StartAutoRefresh(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.detached {
		return
	}
	p.stopLocked()

	t := &refreshTimer{
		ticker:   time.NewTicker(interval),
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	p.timer = t
	p.timers.Add(1)
	go p.run(t)

	p.log.Debug("auto-refresh started, interval %s", interval)
}

// StopAutoRefresh stops the timer. It is safe to call when none is running.
// A fetch already in flight still completes and is applied.
func (p *Poller) StopAutoRefresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// stopLocked must be called with p.mu held. It returns once the timer
// goroutine has exited, so no tick fires afterwards.
func (p *Poller) stopLocked() {
	if p.timer == nil {
		return
	}
	close(p.timer.stop)
	<-p.timer.done
	p.timer = nil
	p.log.Debug("auto-refresh stopped")
}

func (p *Poller) run(t *refreshTimer) {
	defer close(t.done)
	defer p.timers.Add(-1)
	defer t.ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-t.ticker.C:
			p.ticks.Add(1)
			go func() {
				defer p.ticks.Done()
				err := p.fetchSensors(p.ctx, true)
				if errors.Is(err, ErrInFlight) {
					p.log.Debug("tick dropped, fetch in flight")
				}
			}()
		}
	}
}

func (p *Poller) changed() {
	p.mu.Lock()
	fn := p.onChange
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (p *Poller) isDetached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.detached
}

// Sensors returns a copy of the current readings.
func (p *Poller) Sensors() []sensor.Reading {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]sensor.Reading, len(p.sensors))
	copy(out, p.sensors)
	return out
}

// History returns a copy of every series.
func (p *Poller) History() history.Snapshot {
	return p.history.Snapshot()
}

// Values returns the last count values for m, oldest first.
func (p *Poller) Values(m sensor.Metric, count int) []float64 {
	return p.history.Values(m, count)
}

// Loading reports whether a sensor fetch is in flight.
func (p *Poller) Loading() bool {
	return p.loading.Load()
}

// AutoRefreshActive reports whether the refresh timer is running.
func (p *Poller) AutoRefreshActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timer != nil
}

// Interval returns the running timer's period, or the configured one.
func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		return p.timer.interval
	}
	return p.interval
}

// LastUpdate returns when readings were last applied; zero if never.
func (p *Poller) LastUpdate() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastUpdate
}
