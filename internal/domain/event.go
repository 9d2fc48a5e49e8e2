package domain

// Event names a plugin event channel. Only start, stop and location are
// consumed by the adapter; the rest are plugin capabilities left unexposed.
type Event string

const (
	EventLocation          Event = "location"
	EventStationary        Event = "stationary"
	EventActivity          Event = "activity"
	EventStart             Event = "start"
	EventStop              Event = "stop"
	EventError             Event = "error"
	EventAuthorization     Event = "authorization"
	EventForeground        Event = "foreground"
	EventBackground        Event = "background"
	EventAbortRequested    Event = "abort_requested"
	EventHTTPAuthorization Event = "http_authorization"
)

// HeadlessTaskEventName is an event delivered to a headless task.
type HeadlessTaskEventName string

const (
	HeadlessLocation   HeadlessTaskEventName = "location"
	HeadlessStationary HeadlessTaskEventName = "stationary"
	HeadlessActivity   HeadlessTaskEventName = "activity"
)

// ActivityType is a detected activity reported with the activity event.
type ActivityType string

const (
	InVehicle ActivityType = "IN_VEHICLE"
	OnBicycle ActivityType = "ON_BICYCLE"
	OnFoot    ActivityType = "ON_FOOT"
	Running   ActivityType = "RUNNING"
	Still     ActivityType = "STILL"
	Tilting   ActivityType = "TILTING"
	Unknown   ActivityType = "UNKNOWN"
	Walking   ActivityType = "WALKING"
)

// LogLevel filters the plugin's own log.
type LogLevel string

const (
	LogTrace LogLevel = "TRACE"
	LogDebug LogLevel = "DEBUG"
	LogInfo  LogLevel = "INFO"
	LogWarn  LogLevel = "WARN"
	LogError LogLevel = "ERROR"
)

// ServiceMode is the mode the plugin service runs in.
type ServiceMode int

const (
	BackgroundMode ServiceMode = 0
	ForegroundMode ServiceMode = 1
)
