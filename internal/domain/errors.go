package domain

import "fmt"

// LocationErrorCode is the reason a location request failed.
type LocationErrorCode int

const (
	PermissionDenied    LocationErrorCode = 1
	LocationUnavailable LocationErrorCode = 2
	Timeout             LocationErrorCode = 3
)

func (c LocationErrorCode) String() string {
	switch c {
	case PermissionDenied:
		return "PERMISSION_DENIED"
	case LocationUnavailable:
		return "LOCATION_UNAVAILABLE"
	case Timeout:
		return "TIMEOUT"
	default:
		return fmt.Sprintf("LocationErrorCode(%d)", int(c))
	}
}

// LocationError is the plugin's failure record for location requests.
type LocationError struct {
	Code    LocationErrorCode `json:"code"`
	Message string            `json:"message"`
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("location error %s: %s", e.Code, e.Message)
}

// BackgroundGeolocationError is the plugin's general failure record.
type BackgroundGeolocationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *BackgroundGeolocationError) Error() string {
	return fmt.Sprintf("background geolocation error %d: %s", e.Code, e.Message)
}
