package relay

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/background-geolocation/internal/domain"
)

// LocationEnricher implements Enricher by stamping the device identity and
// receive time, then attaching reverse-geocoded place details.
type LocationEnricher struct {
	deviceID string
	geocoder domain.ReverseGeocoder
	logger   *slog.Logger
}

// NewEnricher creates a LocationEnricher. Pass a nil geocoder to disable
// place enrichment.
func NewEnricher(deviceID string, geocoder domain.ReverseGeocoder, logger *slog.Logger) *LocationEnricher {
	return &LocationEnricher{
		deviceID: deviceID,
		geocoder: geocoder,
		logger:   logger,
	}
}

func (e *LocationEnricher) Enrich(ctx context.Context, loc domain.Location) domain.LocationRecord {
	rec := domain.NewLocationRecord(e.deviceID, loc)
	return domain.EnrichWithPlace(ctx, rec, e.geocoder, e.logger)
}
