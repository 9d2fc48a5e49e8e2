package config

import (
	"testing"
	"time"

	"github.com/couchcryptid/background-geolocation/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultBroker   = "localhost:9092"
	testMapboxToken = "pk.test-token"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "device-locations", cfg.KafkaTopic)
	assert.Equal(t, "device-1", cfg.DeviceID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.Equal(t, 16, cfg.StreamBuffer)
	assert.Equal(t, "data/track.json", cfg.ReplayTrackPath)
	assert.True(t, cfg.ReplayLoop)
	assert.Equal(t, time.Second, cfg.LocationInterval)
	assert.Equal(t, 100, cfg.DesiredAccuracy)
	assert.Equal(t, 10.0, cfg.DistanceFilter)
	assert.Equal(t, 50.0, cfg.StationaryRadius)
	assert.False(t, cfg.PluginDebug)
	assert.Empty(t, cfg.SyncURL)
	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-locations")
	t.Setenv("DEVICE_ID", "truck-7")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("STREAM_BUFFER", "64")
	t.Setenv("REPLAY_TRACK_PATH", "/tmp/track.json")
	t.Setenv("REPLAY_LOOP", "false")
	t.Setenv("LOCATION_INTERVAL", "250ms")
	t.Setenv("DESIRED_ACCURACY", "1000")
	t.Setenv("DISTANCE_FILTER", "25.5")
	t.Setenv("STATIONARY_RADIUS", "75")
	t.Setenv("PLUGIN_DEBUG", "true")
	t.Setenv("SYNC_URL", "https://example.com/sync")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-locations", cfg.KafkaTopic)
	assert.Equal(t, "truck-7", cfg.DeviceID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, 64, cfg.StreamBuffer)
	assert.Equal(t, "/tmp/track.json", cfg.ReplayTrackPath)
	assert.False(t, cfg.ReplayLoop)
	assert.Equal(t, 250*time.Millisecond, cfg.LocationInterval)
	assert.Equal(t, 1000, cfg.DesiredAccuracy)
	assert.Equal(t, 25.5, cfg.DistanceFilter)
	assert.Equal(t, 75.0, cfg.StationaryRadius)
	assert.True(t, cfg.PluginDebug)
	assert.Equal(t, "https://example.com/sync", cfg.SyncURL)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidBatchFlushInterval(t *testing.T) {
	t.Setenv("BATCH_FLUSH_INTERVAL", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_FLUSH_INTERVAL")
}

func TestLoad_InvalidLocationInterval(t *testing.T) {
	t.Setenv("LOCATION_INTERVAL", "0s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOCATION_INTERVAL")
}

func TestLoad_InvalidStreamBuffer(t *testing.T) {
	t.Setenv("STREAM_BUFFER", "-3")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STREAM_BUFFER")
}

func TestLoad_InvalidDesiredAccuracy(t *testing.T) {
	t.Setenv("DESIRED_ACCURACY", "high")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DESIRED_ACCURACY")
}

func TestLoad_NegativeDistanceFilter(t *testing.T) {
	t.Setenv("DISTANCE_FILTER", "-1")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISTANCE_FILTER")
}

func TestLoad_InvalidMapboxTimeout(t *testing.T) {
	t.Setenv("MAPBOX_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TIMEOUT")
}

func TestLoad_InvalidReplayLoop(t *testing.T) {
	t.Setenv("REPLAY_LOOP", "maybe")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPLAY_LOOP")
}

func TestLoad_BoolSpellings(t *testing.T) {
	t.Setenv("REPLAY_LOOP", "0")
	t.Setenv("PLUGIN_DEBUG", "1")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.ReplayLoop)
	assert.True(t, cfg.PluginDebug)
}

func TestLoad_InvalidMapboxEnabled(t *testing.T) {
	t.Setenv("MAPBOX_ENABLED", "on")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_ENABLED")
}

func TestLoad_MapboxEnabledWithoutToken(t *testing.T) {
	t.Setenv("MAPBOX_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}

func TestPluginOptions(t *testing.T) {
	cfg := &Config{
		LocationInterval: 2 * time.Second,
		DesiredAccuracy:  1000,
		DistanceFilter:   25,
		StationaryRadius: 50,
		PluginDebug:      true,
	}

	opts := cfg.PluginOptions()

	require.NotNil(t, opts.Interval)
	assert.Equal(t, 2000, *opts.Interval)
	assert.Equal(t, domain.LowAccuracy, *opts.DesiredAccuracy)
	assert.Equal(t, domain.DistanceFilterProvider, *opts.LocationProvider)
	assert.Equal(t, 25.0, *opts.DistanceFilter)
	assert.True(t, *opts.Debug)
	assert.Nil(t, opts.SyncURL, "unset sync url must not be forwarded")
}
