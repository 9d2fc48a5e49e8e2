package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/background-geolocation/internal/config"
	"github.com/couchcryptid/background-geolocation/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	fixTime := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	rec := domain.LocationRecord{
		DeviceID: "device-1",
		Location: domain.Location{
			ID:        42,
			Provider:  domain.ProviderGPS,
			Time:      fixTime.UnixMilli(),
			Latitude:  35.0,
			Longitude: -97.0,
		},
		GeoSource:  domain.GeoSourceNone,
		ReceivedAt: fixTime.Add(time.Second),
	}

	msg, err := serializeToMessage(rec)
	require.NoError(t, err)

	assert.Equal(t, []byte("device-1"), msg.Key)
	assert.Equal(t, fixTime, msg.Time)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "device-1", decoded["device_id"])
	assert.Equal(t, 35.0, decoded["latitude"])
	assert.Equal(t, "gps", decoded["provider"])
	assert.Equal(t, "none", decoded["geo_source"])

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, map[string]string{
		"device_id":   "device-1",
		"provider":    "gps",
		"location_id": "42",
		"recorded_at": "2024-04-26T15:10:00Z",
	}, headers)
}

func TestWriter_LoadBatch_Empty(t *testing.T) {
	w := NewWriter(&config.Config{KafkaBrokers: []string{"localhost:1"}, KafkaTopic: "device-locations"}, slog.Default())
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, w.LoadBatch(context.Background(), nil))
}

func TestNewWriter_UsesConfiguredTopic(t *testing.T) {
	w := NewWriter(&config.Config{KafkaBrokers: []string{"a:9092", "b:9092"}, KafkaTopic: "fleet-locations"}, slog.Default())
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "fleet-locations", w.writer.Topic)
	assert.Equal(t, "tcp", w.writer.Addr.Network())
}
