package domain

import "time"

// Geo source values recorded on a LocationRecord.
const (
	GeoSourceReverse = "reverse"
	GeoSourceNone    = "none"
	GeoSourceFailed  = "failed"
)

// LocationRecord is a reported fix as published by the relay.
type LocationRecord struct {
	DeviceID string `json:"device_id"`
	Location

	// Reverse-geocoding enrichment fields.
	FormattedAddress string  `json:"formatted_address,omitempty"`
	PlaceName        string  `json:"place_name,omitempty"`
	GeoConfidence    float64 `json:"geo_confidence,omitempty"`
	GeoSource        string  `json:"geo_source,omitempty"` // "reverse", "none", "failed"

	ReceivedAt time.Time `json:"received_at"`
}

// NewLocationRecord wraps loc for device, stamping the receive time.
func NewLocationRecord(deviceID string, loc Location) LocationRecord {
	return LocationRecord{
		DeviceID:   deviceID,
		Location:   loc,
		ReceivedAt: clock.Now().UTC(),
	}
}
