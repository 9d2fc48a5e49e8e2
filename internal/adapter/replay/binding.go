// Package replay implements native.Binding by replaying a recorded track. It
// stands in for the device plugin when the service runs off-device.
package replay

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/background-geolocation/internal/domain"
	"github.com/couchcryptid/background-geolocation/internal/native"
	"github.com/couchcryptid/background-geolocation/internal/observability"
	"github.com/jonboulle/clockwork"
)

// DefaultInterval is the replay cadence until Configure sets an interval.
const DefaultInterval = time.Second

// Binding replays fixes to location listeners while started.
// All methods are safe for concurrent use; callbacks run without locks held.
type Binding struct {
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
	track   []domain.Location
	loop    bool

	mu        sync.Mutex
	options   domain.ConfigureOptions
	interval  time.Duration
	listeners map[domain.Event][]native.Callback
	stopCh    chan struct{}
	cursor    int
	last      *domain.Location
	lastTask  int
	openTasks map[int]struct{}
}

var _ native.Binding = (*Binding)(nil)

// New creates a Binding over track. With loop set the track restarts after
// its last fix; otherwise replay idles at the end.
func New(track []domain.Location, loop bool, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Binding {
	return &Binding{
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		track:     track,
		loop:      loop,
		interval:  DefaultInterval,
		listeners: make(map[domain.Event][]native.Callback),
		openTasks: make(map[int]struct{}),
	}
}

// Configure stores options. A positive interval sets the replay cadence from
// the next Start.
func (b *Binding) Configure(options domain.ConfigureOptions) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.options = options
	if options.Interval != nil && *options.Interval > 0 {
		b.interval = time.Duration(*options.Interval) * time.Millisecond
	}
	b.logger.Info("replay configured", "interval", b.interval, "fixes", len(b.track))
}

// Start begins replay and notifies start listeners. Starting twice is a no-op.
func (b *Binding) Start() {
	b.mu.Lock()
	if b.stopCh != nil {
		b.mu.Unlock()
		return
	}
	stopCh := make(chan struct{})
	b.stopCh = stopCh
	ticker := b.clock.NewTicker(b.interval)
	listeners := b.snapshot(domain.EventStart)
	b.mu.Unlock()

	b.metrics.ReplayRunning.Set(1)
	go b.run(ticker, stopCh)
	b.logger.Info("replay started")
	notify(listeners, nil)
}

// Stop halts replay and notifies stop listeners. Stopping when idle is a no-op.
func (b *Binding) Stop() {
	b.mu.Lock()
	if b.stopCh == nil {
		b.mu.Unlock()
		return
	}
	close(b.stopCh)
	b.stopCh = nil
	listeners := b.snapshot(domain.EventStop)
	b.mu.Unlock()

	b.metrics.ReplayRunning.Set(0)
	b.logger.Info("replay stopped")
	notify(listeners, nil)
}

// StartTask issues a new task key.
func (b *Binding) StartTask(onSuccess, _ native.Callback) {
	b.mu.Lock()
	b.lastTask++
	key := b.lastTask
	b.openTasks[key] = struct{}{}
	b.mu.Unlock()

	onSuccess(mustMarshal(key))
}

// EndTask closes a task issued by StartTask. Unknown keys fail with code 2.
func (b *Binding) EndTask(taskKey int, onSuccess, onError native.Callback) {
	b.mu.Lock()
	_, ok := b.openTasks[taskKey]
	delete(b.openTasks, taskKey)
	b.mu.Unlock()

	if !ok {
		onError(mustMarshal(domain.BackgroundGeolocationError{Code: 2, Message: "unknown task"}))
		return
	}
	onSuccess(nil)
}

// GetCurrentLocation answers with the last replayed fix. It fails with
// LOCATION_UNAVAILABLE before the first fix, and with TIMEOUT when the last
// fix is older than options.MaximumAge.
func (b *Binding) GetCurrentLocation(onSuccess, onError native.Callback, options *domain.LocationOptions) {
	b.mu.Lock()
	last := b.last
	b.mu.Unlock()

	if last == nil {
		onError(mustMarshal(domain.LocationError{Code: domain.LocationUnavailable, Message: "no location available yet"}))
		return
	}
	if options != nil && options.MaximumAge != nil {
		maxAge := time.Duration(*options.MaximumAge) * time.Millisecond
		if last.Age(b.clock.Now()) > maxAge {
			onError(mustMarshal(domain.LocationError{Code: domain.Timeout, Message: "no fix within maximumAge"}))
			return
		}
	}
	onSuccess(mustMarshal(*last))
}

// On registers callback for event. Listeners are never removed.
func (b *Binding) On(event domain.Event, callback native.Callback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[event] = append(b.listeners[event], callback)
}

func (b *Binding) run(ticker clockwork.Ticker, stopCh chan struct{}) {
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.Chan():
			b.tick(stopCh)
		}
	}
}

// tick replays the next fix, stamped with the current time. Ticks that race
// a Stop are dropped.
func (b *Binding) tick(stopCh chan struct{}) {
	b.mu.Lock()
	if b.stopCh != stopCh {
		b.mu.Unlock()
		return
	}
	if b.cursor >= len(b.track) {
		if !b.loop || len(b.track) == 0 {
			b.mu.Unlock()
			return
		}
		b.cursor = 0
	}
	loc := b.track[b.cursor]
	b.cursor++
	loc.Time = b.clock.Now().UnixMilli()
	if b.options.LocationProvider != nil {
		loc.LocationProvider = int(*b.options.LocationProvider)
	}
	b.last = &loc
	listeners := b.snapshot(domain.EventLocation)
	b.mu.Unlock()

	b.metrics.ReplayFixes.Inc()
	notify(listeners, mustMarshal(loc))
}

func (b *Binding) snapshot(event domain.Event) []native.Callback {
	return append([]native.Callback(nil), b.listeners[event]...)
}

func notify(listeners []native.Callback, payload json.RawMessage) {
	for _, cb := range listeners {
		cb(payload)
	}
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic("replay: marshal payload: " + err.Error())
	}
	return data
}
