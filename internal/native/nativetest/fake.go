// Package nativetest provides a scripted native.Binding for tests. Callbacks
// fire only when a test resolves a pending call or emits an event, so tests
// control callback timing exactly.
package nativetest

import (
	"encoding/json"
	"sync"

	"github.com/couchcryptid/background-geolocation/internal/domain"
	"github.com/couchcryptid/background-geolocation/internal/native"
)

// Native method names as recorded by Fake.Calls.
const (
	MethodConfigure          = "configure"
	MethodStart              = "start"
	MethodStop               = "stop"
	MethodStartTask          = "startTask"
	MethodEndTask            = "endTask"
	MethodGetCurrentLocation = "getCurrentLocation"
	MethodOn                 = "on"
)

// Pending is a callback-pair call awaiting resolution.
type Pending struct {
	Method  string
	TaskKey int
	Options *domain.LocationOptions

	onSuccess native.Callback
	onError   native.Callback
}

// Succeed invokes the success callback with v marshalled to JSON.
// A nil v delivers a nil payload.
func (p Pending) Succeed(v any) {
	p.onSuccess(mustPayload(v))
}

// Fail invokes the error callback with v marshalled to JSON.
func (p Pending) Fail(v any) {
	p.onError(mustPayload(v))
}

// Fake records every call made on it.
type Fake struct {
	mu         sync.Mutex
	calls      []string
	configured []domain.ConfigureOptions
	pending    []Pending
	listeners  map[domain.Event][]native.Callback
}

var _ native.Binding = (*Fake)(nil)

// New returns an empty Fake.
func New() *Fake {
	return &Fake{listeners: make(map[domain.Event][]native.Callback)}
}

func (f *Fake) Configure(options domain.ConfigureOptions) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, MethodConfigure)
	f.configured = append(f.configured, options)
}

func (f *Fake) Start() { f.record(MethodStart) }

func (f *Fake) Stop() { f.record(MethodStop) }

func (f *Fake) StartTask(onSuccess, onError native.Callback) {
	f.hold(Pending{Method: MethodStartTask, onSuccess: onSuccess, onError: onError})
}

func (f *Fake) EndTask(taskKey int, onSuccess, onError native.Callback) {
	f.hold(Pending{Method: MethodEndTask, TaskKey: taskKey, onSuccess: onSuccess, onError: onError})
}

func (f *Fake) GetCurrentLocation(onSuccess, onError native.Callback, options *domain.LocationOptions) {
	f.hold(Pending{Method: MethodGetCurrentLocation, Options: options, onSuccess: onSuccess, onError: onError})
}

func (f *Fake) On(event domain.Event, callback native.Callback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, MethodOn)
	f.listeners[event] = append(f.listeners[event], callback)
}

// Calls returns the native methods invoked so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Configured returns every record passed to Configure.
func (f *Fake) Configured() []domain.ConfigureOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ConfigureOptions(nil), f.configured...)
}

// Pending returns the unresolved callback-pair calls, oldest first.
// Resolving a Pending does not remove it.
func (f *Fake) Pending() []Pending {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Pending(nil), f.pending...)
}

// Last returns the most recent callback-pair call. It panics if there is none.
func (f *Fake) Last() Pending {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending[len(f.pending)-1]
}

// Listeners returns how many listeners are registered for event.
func (f *Fake) Listeners(event domain.Event) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners[event])
}

// Emit delivers v to every listener registered for event and returns how
// many were invoked.
func (f *Fake) Emit(event domain.Event, v any) int {
	f.mu.Lock()
	listeners := append([]native.Callback(nil), f.listeners[event]...)
	f.mu.Unlock()

	payload := mustPayload(v)
	for _, cb := range listeners {
		cb(payload)
	}
	return len(listeners)
}

func (f *Fake) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
}

func (f *Fake) hold(p Pending) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p.Method)
	f.pending = append(f.pending, p)
}

func mustPayload(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw
	}
	data, err := json.Marshal(v)
	if err != nil {
		panic("nativetest: marshal payload: " + err.Error())
	}
	return data
}
