package domain

import "encoding/json"

// LocationProvider selects the plugin's location strategy.
type LocationProvider int

const (
	DistanceFilterProvider LocationProvider = 0
	ActivityProvider       LocationProvider = 1
	RawProvider            LocationProvider = 2
)

func (p LocationProvider) String() string {
	switch p {
	case DistanceFilterProvider:
		return "DISTANCE_FILTER_PROVIDER"
	case ActivityProvider:
		return "ACTIVITY_PROVIDER"
	case RawProvider:
		return "RAW_PROVIDER"
	default:
		return "UNKNOWN_PROVIDER"
	}
}

// AccuracyLevel is a desired accuracy in meters. The named levels are the
// plugin's presets; any other non-negative value is passed through.
type AccuracyLevel int

const (
	HighAccuracy    AccuracyLevel = 0
	MediumAccuracy  AccuracyLevel = 100
	LowAccuracy     AccuracyLevel = 1000
	PassiveAccuracy AccuracyLevel = 10000
)

// IOSActivityType hints the iOS location manager about the kind of movement.
type IOSActivityType string

const (
	AutomotiveNavigation IOSActivityType = "AutomotiveNavigation"
	OtherNavigation      IOSActivityType = "OtherNavigation"
	Fitness              IOSActivityType = "Fitness"
	OtherActivity        IOSActivityType = "Other"
)

// ConfigureOptions is the plugin configuration. Every field is optional; the
// plugin applies its own default for anything left nil.
type ConfigureOptions struct {
	LocationProvider *LocationProvider `json:"locationProvider,omitempty"` // default DISTANCE_FILTER_PROVIDER
	DesiredAccuracy  *AccuracyLevel    `json:"desiredAccuracy,omitempty"`  // default MEDIUM_ACCURACY
	StationaryRadius *float64          `json:"stationaryRadius,omitempty"` // default 50
	Debug            *bool             `json:"debug,omitempty"`
	DistanceFilter   *float64          `json:"distanceFilter,omitempty"` // default 500
	StopOnTerminate  *bool             `json:"stopOnTerminate,omitempty"`
	StartOnBoot      *bool             `json:"startOnBoot,omitempty"` // Android

	// Android timing, in milliseconds.
	Interval           *int `json:"interval,omitempty"`           // default 60000
	FastestInterval    *int `json:"fastestInterval,omitempty"`    // default 120000, ACTIVITY provider
	ActivitiesInterval *int `json:"activitiesInterval,omitempty"` // default 10000, ACTIVITY provider

	// Deprecated: the plugin no longer honours it.
	StopOnStillActivity *bool `json:"stopOnStillActivity,omitempty"`

	// Android notification drawer.
	NotificationsEnabled  *bool   `json:"notificationsEnabled,omitempty"`
	StartForeground       *bool   `json:"startForeground,omitempty"`
	NotificationTitle     *string `json:"notificationTitle,omitempty"`
	NotificationText      *string `json:"notificationText,omitempty"`
	NotificationIconColor *string `json:"notificationIconColor,omitempty"` // hex triplet, e.g. "#4CAF50"
	NotificationIconLarge *string `json:"notificationIconLarge,omitempty"`
	NotificationIconSmall *string `json:"notificationIconSmall,omitempty"`

	// iOS.
	ActivityType            *IOSActivityType `json:"activityType,omitempty"`
	PauseLocationUpdates    *bool            `json:"pauseLocationUpdates,omitempty"`
	SaveBatteryOnBackground *bool            `json:"saveBatteryOnBackground,omitempty"`

	// HTTP sync of recorded locations, performed by the plugin.
	URL           *string         `json:"url,omitempty"`
	SyncURL       *string         `json:"syncUrl,omitempty"`
	SyncThreshold *string         `json:"syncThreshold,omitempty"` // the plugin declares this as a string
	HTTPHeaders   map[string]any  `json:"httpHeaders,omitempty"`
	MaxLocations  *int            `json:"maxLocations,omitempty"` // default 10000
	PostTemplate  json.RawMessage `json:"postTemplate,omitempty"`
}

// LocationOptions controls a single on-demand location request.
type LocationOptions struct {
	Timeout            *int  `json:"timeout,omitempty"`    // ms to wait for a fix
	MaximumAge         *int  `json:"maximumAge,omitempty"` // ms age of an acceptable cached fix
	EnableHighAccuracy *bool `json:"enableHighAccuracy,omitempty"`
}

// Ptr returns a pointer to v, for filling optional record fields.
func Ptr[T any](v T) *T {
	return &v
}
