package domain

import "time"

// NativeProvider names the OS provider that produced a fix.
type NativeProvider string

const (
	ProviderGPS     NativeProvider = "gps"
	ProviderNetwork NativeProvider = "network"
	ProviderPassive NativeProvider = "passive"
	ProviderFused   NativeProvider = "fused"
)

// Valid reports whether p is one of the provider tags the plugin emits.
func (p NativeProvider) Valid() bool {
	switch p {
	case ProviderGPS, ProviderNetwork, ProviderPassive, ProviderFused:
		return true
	}
	return false
}

// Location is a fix reported by the plugin.
type Location struct {
	ID               int64          `json:"id"` // row id in the plugin's store, 0 when not stored
	Provider         NativeProvider `json:"provider"`
	LocationProvider int            `json:"locationProvider"`
	Time             int64          `json:"time"` // ms since epoch, UTC
	Latitude         float64        `json:"latitude"`
	Longitude        float64        `json:"longitude"`
	Accuracy         float64        `json:"accuracy"`
	Speed            float64        `json:"speed"`
	Altitude         float64        `json:"altitude"`
	Bearing          float64        `json:"bearing"`

	// Android only, and only when enabled through postTemplate.
	IsFromMockProvider   *bool `json:"isFromMockProvider,omitempty"`
	MockLocationsEnabled *bool `json:"mockLocationsEnabled,omitempty"`
}

// FixTime returns the fix timestamp as a UTC time.
func (l Location) FixTime() time.Time {
	return time.UnixMilli(l.Time).UTC()
}

// Age is how old the fix is relative to now.
func (l Location) Age(now time.Time) time.Duration {
	return now.Sub(l.FixTime())
}
