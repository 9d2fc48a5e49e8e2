package domain

import (
	"context"
	"log/slog"
)

// Place is what a reverse-geocoding provider knows about a coordinate.
type Place struct {
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// ReverseGeocoder resolves coordinates to place details.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (Place, error)
}

// EnrichWithPlace attempts to attach place details to a record.
// A nil geocoder leaves the record untouched; failures and empty answers are
// recorded in GeoSource and never fail the record.
func EnrichWithPlace(ctx context.Context, rec LocationRecord, geocoder ReverseGeocoder, logger *slog.Logger) LocationRecord {
	if geocoder == nil {
		return rec
	}

	if rec.Latitude == 0 && rec.Longitude == 0 {
		rec.GeoSource = GeoSourceNone
		return rec
	}

	place, err := geocoder.ReverseGeocode(ctx, rec.Latitude, rec.Longitude)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"device_id", rec.DeviceID,
			"lat", rec.Latitude,
			"lon", rec.Longitude,
			"error", err,
		)
		rec.GeoSource = GeoSourceFailed
		return rec
	}
	if place.FormattedAddress == "" {
		rec.GeoSource = GeoSourceNone
		return rec
	}

	rec.FormattedAddress = place.FormattedAddress
	rec.PlaceName = place.PlaceName
	rec.GeoConfidence = place.Confidence
	rec.GeoSource = GeoSourceReverse
	return rec
}
