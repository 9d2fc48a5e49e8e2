package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/background-geolocation/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers    []string
	KafkaTopic      string
	DeviceID        string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// StreamBuffer is how many values an adapter subscription holds before
	// the native callback blocks.
	StreamBuffer int

	// Replay binding.
	ReplayTrackPath string
	ReplayLoop      bool

	// Plugin options forwarded through Configure.
	LocationInterval time.Duration
	DesiredAccuracy  int
	DistanceFilter   float64
	StationaryRadius float64
	PluginDebug      bool
	SyncURL          string

	// Mapbox reverse geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	locationInterval, err := parsePositiveDuration("LOCATION_INTERVAL", "1s")
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	streamBuffer, err := parsePositiveInt("STREAM_BUFFER", 16)
	if err != nil {
		return nil, err
	}

	desiredAccuracy, err := strconv.Atoi(sharedcfg.EnvOrDefault("DESIRED_ACCURACY", "100"))
	if err != nil || desiredAccuracy < 0 {
		return nil, errors.New("invalid DESIRED_ACCURACY")
	}

	distanceFilter, err := parseNonNegativeFloat("DISTANCE_FILTER", "10")
	if err != nil {
		return nil, err
	}

	stationaryRadius, err := parseNonNegativeFloat("STATIONARY_RADIUS", "50")
	if err != nil {
		return nil, err
	}

	replayLoop, err := parseBool("REPLAY_LOOP", true)
	if err != nil {
		return nil, err
	}

	pluginDebug, err := parseBool("PLUGIN_DEBUG", false)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled, err := parseBool("MAPBOX_ENABLED", mapboxToken != "")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:         sharedcfg.EnvOrDefault("KAFKA_TOPIC", "device-locations"),
		DeviceID:           sharedcfg.EnvOrDefault("DEVICE_ID", "device-1"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		StreamBuffer:       streamBuffer,

		ReplayTrackPath: sharedcfg.EnvOrDefault("REPLAY_TRACK_PATH", "data/track.json"),
		ReplayLoop:      replayLoop,

		LocationInterval: locationInterval,
		DesiredAccuracy:  desiredAccuracy,
		DistanceFilter:   distanceFilter,
		StationaryRadius: stationaryRadius,
		PluginDebug:      pluginDebug,
		SyncURL:          os.Getenv("SYNC_URL"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}
	if cfg.DeviceID == "" {
		return nil, errors.New("DEVICE_ID is required")
	}
	if cfg.ReplayTrackPath == "" {
		return nil, errors.New("REPLAY_TRACK_PATH is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

// PluginOptions builds the record handed to the plugin's configure call.
func (c *Config) PluginOptions() domain.ConfigureOptions {
	opts := domain.ConfigureOptions{
		LocationProvider: domain.Ptr(domain.DistanceFilterProvider),
		DesiredAccuracy:  domain.Ptr(domain.AccuracyLevel(c.DesiredAccuracy)),
		DistanceFilter:   domain.Ptr(c.DistanceFilter),
		StationaryRadius: domain.Ptr(c.StationaryRadius),
		Interval:         domain.Ptr(int(c.LocationInterval / time.Millisecond)),
		Debug:            domain.Ptr(c.PluginDebug),
		StopOnTerminate:  domain.Ptr(true),
	}
	if c.SyncURL != "" {
		opts.SyncURL = domain.Ptr(c.SyncURL)
	}
	return opts
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

func parseNonNegativeFloat(key, def string) (float64, error) {
	f, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, def), 64)
	if err != nil || f < 0 {
		return 0, errors.New("invalid " + key)
	}
	return f, nil
}

// parseBool accepts the values strconv.ParseBool does; unset means def.
func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.New("invalid " + key)
	}
	return b, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
