// Package domain models the records exchanged with the native
// background-geolocation plugin.
//
// # Ownership
//
// Every record here is passive. The plugin is the source of truth for all
// runtime state (tracking on/off, stored locations, authorization); the Go
// side only hands records in and receives them back. Nothing in this package
// validates cross-field combinations of [ConfigureOptions]: the plugin does
// that, if anything does.
//
// # Plugin Conventions
//
// Units:
//
//	Durations are integer milliseconds: interval, fastestInterval,
//	activitiesInterval, timeout, maximumAge.
//	Distances are meters: stationaryRadius, distanceFilter, accuracy, altitude.
//	Speed is meters/second over ground; bearing is degrees.
//	Location.time is a UTC epoch timestamp in milliseconds.
//
// Accuracy levels:
//
//	desiredAccuracy accepts one of the named levels or any meter value:
//	  HIGH_ACCURACY=0 | MEDIUM_ACCURACY=100 | LOW_ACCURACY=1000 | PASSIVE_ACCURACY=10000
//	Lower accuracy means lower power drain.
//
// Optional fields:
//
//	Optional plugin fields are pointers (or nil maps) tagged omitempty, so a
//	record marshals to exactly the keys the caller set. [Ptr] builds literals.
//
// # Errors
//
// [LocationError] carries one of three codes (1 permission denied,
// 2 location unavailable, 3 timeout). [BackgroundGeolocationError] carries any
// plugin code. Both implement error so they can terminate a stream as-is.
//
// # Relay Records
//
// [LocationRecord] is the only record this repository creates: the relay wraps
// each reported [Location] with a device id, an optional reverse-geocoded
// place, and a receive timestamp before publishing it.
package domain
