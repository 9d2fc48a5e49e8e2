package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/couchcryptid/background-geolocation/internal/domain"
)

// LoadTrack reads a JSON array of locations and validates it.
func LoadTrack(path string) ([]domain.Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read track: %w", err)
	}
	var track []domain.Location
	if err := json.Unmarshal(data, &track); err != nil {
		return nil, fmt.Errorf("decode track %s: %w", path, err)
	}
	if err := ValidateTrack(track); err != nil {
		return nil, fmt.Errorf("track %s: %w", path, err)
	}
	return track, nil
}

// ValidateTrack checks every fix for plausible values and returns all
// problems joined, or nil.
func ValidateTrack(track []domain.Location) error {
	if len(track) == 0 {
		return errors.New("track is empty")
	}
	var errs []error
	for i, loc := range track {
		if loc.Latitude < -90 || loc.Latitude > 90 {
			errs = append(errs, fmt.Errorf("fix %d: latitude %v out of range", i, loc.Latitude))
		}
		if loc.Longitude < -180 || loc.Longitude > 180 {
			errs = append(errs, fmt.Errorf("fix %d: longitude %v out of range", i, loc.Longitude))
		}
		if loc.Accuracy < 0 {
			errs = append(errs, fmt.Errorf("fix %d: negative accuracy", i))
		}
		if loc.Speed < 0 {
			errs = append(errs, fmt.Errorf("fix %d: negative speed", i))
		}
		if loc.Bearing < 0 || loc.Bearing >= 360 {
			errs = append(errs, fmt.Errorf("fix %d: bearing %v out of range", i, loc.Bearing))
		}
		if loc.Provider != "" && !loc.Provider.Valid() {
			errs = append(errs, fmt.Errorf("fix %d: unknown provider %q", i, loc.Provider))
		}
		if i > 0 && loc.Time != 0 && loc.Time < track[i-1].Time {
			errs = append(errs, fmt.Errorf("fix %d: time goes backwards", i))
		}
	}
	return errors.Join(errs...)
}
