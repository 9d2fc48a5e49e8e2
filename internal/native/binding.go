// Package native declares the call surface of the background-geolocation
// plugin and holds the process-wide binding the plugin installs.
package native

import (
	"encoding/json"
	"sync"

	"github.com/couchcryptid/background-geolocation/internal/domain"
)

// Callback receives the JSON payload the plugin passes to a success, error,
// or event callback. Payload-less callbacks receive nil.
type Callback func(payload json.RawMessage)

// Binding is the plugin's call surface. Implementations may invoke callbacks
// synchronously or later from any goroutine, zero or more times for On.
// Events already pending when On is called must be fired from another
// goroutine: a listener invoked synchronously more times than the event
// stream's buffer holds blocks the subscriber that registered it.
type Binding interface {
	Configure(options domain.ConfigureOptions)
	Start()
	Stop()
	StartTask(onSuccess, onError Callback)
	EndTask(taskKey int, onSuccess, onError Callback)
	GetCurrentLocation(onSuccess, onError Callback, options *domain.LocationOptions)
	// On registers a listener. The plugin offers no way to remove one.
	On(event domain.Event, callback Callback)
}

var (
	mu     sync.RWMutex
	global Binding
)

// Install sets the process-wide binding. Pass nil to clear it.
func Install(b Binding) {
	mu.Lock()
	defer mu.Unlock()
	global = b
}

// Global returns the installed binding, or nil if none has been installed.
func Global() Binding {
	mu.RLock()
	defer mu.RUnlock()
	return global
}
