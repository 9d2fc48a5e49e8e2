// Package geolocation exposes the native background-geolocation plugin as
// streams. Every Provider method forwards to the native binding; single-shot
// operations become streams that emit once and complete, and plugin events
// become streams that never complete.
package geolocation

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/background-geolocation/internal/domain"
	"github.com/couchcryptid/background-geolocation/internal/native"
	"github.com/couchcryptid/background-geolocation/internal/observability"
	"github.com/couchcryptid/background-geolocation/internal/stream"
)

// Native method names, used as the method label on forwarded-call metrics.
const (
	methodConfigure          = "configure"
	methodStart              = "start"
	methodStop               = "stop"
	methodStartTask          = "startTask"
	methodEndTask            = "endTask"
	methodGetCurrentLocation = "getCurrentLocation"
	methodOn                 = "on"
)

// Stream names, used as the stream label on emission and error metrics.
const (
	streamCheckStatus     = "check_status"
	streamStartTask       = "start_task"
	streamEndTask         = "end_task"
	streamCurrentLocation = "current_location"
	streamEventStart      = "event_start"
	streamEventStop       = "event_stop"
	streamEventLocation   = "event_location"
)

// Provider forwards calls to a native binding. It holds no plugin state.
type Provider struct {
	binding native.Binding
	logger  *slog.Logger
	metrics *observability.Metrics
	buffer  int
}

// Option customizes a Provider.
type Option func(*Provider)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// WithMetrics sets the metrics sink. The default is an unregistered set.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Provider) { p.metrics = m }
}

// WithStreamBuffer sets how many values each subscription buffers.
func WithStreamBuffer(n int) Option {
	return func(p *Provider) { p.buffer = n }
}

// NewProvider creates a Provider over binding. A nil binding is accepted and
// panics on first use, as calling into a missing plugin would.
func NewProvider(binding native.Binding, opts ...Option) *Provider {
	p := &Provider{
		binding: binding,
		buffer:  stream.DefaultBuffer,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.metrics == nil {
		p.metrics = observability.NewUnregisteredMetrics()
	}
	return p
}

// Configure forwards options to the plugin unchanged.
func (p *Provider) Configure(options domain.ConfigureOptions) {
	p.forward(methodConfigure)
	p.binding.Configure(options)
}

// Start starts background tracking.
func (p *Provider) Start() {
	p.forward(methodStart)
	p.binding.Start()
}

// Stop stops background tracking.
func (p *Provider) Stop() {
	p.forward(methodStop)
	p.binding.Stop()
}

// CheckStatus emits the plugin service status once.
//
// It goes through the plugin's task-registration call, not a status call,
// exactly like the binding it replaces. A plugin that answers that call with
// a bare task key makes the stream fail with a decode error.
func (p *Provider) CheckStatus() *stream.Observable[domain.ServiceStatus] {
	return single(p, streamCheckStatus, func(onSuccess, onError native.Callback) {
		p.forward(methodStartTask)
		p.binding.StartTask(onSuccess, onError)
	}, decodeJSON[domain.ServiceStatus], decodeBackgroundError)
}

// StartTask emits the key of a newly registered background task.
func (p *Provider) StartTask() *stream.Observable[int] {
	return single(p, streamStartTask, func(onSuccess, onError native.Callback) {
		p.forward(methodStartTask)
		p.binding.StartTask(onSuccess, onError)
	}, decodeJSON[int], decodeBackgroundError)
}

// EndTask ends the task identified by taskKey and emits that key.
func (p *Provider) EndTask(taskKey int) *stream.Observable[int] {
	return single(p, streamEndTask, func(onSuccess, onError native.Callback) {
		p.forward(methodEndTask)
		p.binding.EndTask(taskKey, onSuccess, onError)
	}, func(json.RawMessage) (int, error) {
		return taskKey, nil
	}, decodeBackgroundError)
}

// GetCurrentLocation emits one fix. options may be nil and is forwarded as is.
// Failures terminate the stream with a *domain.LocationError.
func (p *Provider) GetCurrentLocation(options *domain.LocationOptions) *stream.Observable[domain.Location] {
	return single(p, streamCurrentLocation, func(onSuccess, onError native.Callback) {
		p.forward(methodGetCurrentLocation)
		p.binding.GetCurrentLocation(onSuccess, onError, options)
	}, decodeJSON[domain.Location], decodeLocationError)
}

// EventStart emits each time tracking starts. Every subscription registers
// its own native listener, which is never removed.
func (p *Provider) EventStart() *stream.Observable[struct{}] {
	return listen(p, streamEventStart, domain.EventStart, ignorePayload)
}

// EventStop emits each time tracking stops. Same listener rules as EventStart.
func (p *Provider) EventStop() *stream.Observable[struct{}] {
	return listen(p, streamEventStop, domain.EventStop, ignorePayload)
}

// EventLocation emits every fix the plugin reports. Same listener rules as
// EventStart.
func (p *Provider) EventLocation() *stream.Observable[domain.Location] {
	return listen(p, streamEventLocation, domain.EventLocation, decodeJSON[domain.Location])
}

func (p *Provider) forward(method string) {
	p.logger.Debug("native call", "method", method)
	p.metrics.NativeCalls.WithLabelValues(method).Inc()
}

// single adapts a success/error callback pair: success emits once and
// completes, failure terminates the stream with the decoded plugin error.
func single[T any](
	p *Provider,
	name string,
	call func(onSuccess, onError native.Callback),
	decode func(json.RawMessage) (T, error),
	decodeErr func(json.RawMessage) error,
) *stream.Observable[T] {
	return stream.Create(func(e stream.Emitter[T]) {
		call(func(payload json.RawMessage) {
			v, err := decode(payload)
			if err != nil {
				p.fail(name, e, err)
				return
			}
			p.metrics.StreamEmissions.WithLabelValues(name).Inc()
			e.Next(v)
			e.Complete()
		}, func(payload json.RawMessage) {
			p.fail(name, e, decodeErr(payload))
		})
	}).WithBuffer(p.buffer)
}

// listen adapts a plugin event: each callback emits, nothing completes, and
// there is no error path. Undecodable payloads are logged and skipped.
func listen[T any](p *Provider, name string, event domain.Event, decode func(json.RawMessage) (T, error)) *stream.Observable[T] {
	return stream.Create(func(e stream.Emitter[T]) {
		p.forward(methodOn)
		p.binding.On(event, func(payload json.RawMessage) {
			v, err := decode(payload)
			if err != nil {
				p.logger.Warn("skipping undecodable event payload", "event", event, "error", err)
				return
			}
			p.metrics.StreamEmissions.WithLabelValues(name).Inc()
			e.Next(v)
		})
	}).WithBuffer(p.buffer)
}

func (p *Provider) fail(name string, e interface{ Error(error) }, err error) {
	p.logger.Debug("stream failed", "stream", name, "error", err)
	p.metrics.StreamErrors.WithLabelValues(name).Inc()
	e.Error(err)
}

func decodeJSON[T any](payload json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, fmt.Errorf("decode %T payload: %w", v, err)
	}
	return v, nil
}

func ignorePayload(json.RawMessage) (struct{}, error) {
	return struct{}{}, nil
}

func decodeBackgroundError(payload json.RawMessage) error {
	pluginErr, err := decodeJSON[domain.BackgroundGeolocationError](payload)
	if err != nil {
		return err
	}
	return &pluginErr
}

func decodeLocationError(payload json.RawMessage) error {
	locErr, err := decodeJSON[domain.LocationError](payload)
	if err != nil {
		return err
	}
	return &locErr
}
