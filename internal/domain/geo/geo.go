// internal/domain/geo/geo.go

package geo

import (
	"context"
	"fmt"
)

// Coordinate is a validated point on the globe together with the
// human-readable address it resolved to.
type Coordinate struct {
	Lat     float64
	Lng     float64
	Address string
}

// Result is a single forward-geocoding match.
type Result struct {
	Lat            float64
	Lng            float64
	DisplayAddress string
}

// Geocoder is the external geocoding provider boundary.
type Geocoder interface {
	// Forward resolves free text into coordinates. A nil result with a nil
	// error means the provider found no match.
	Forward(ctx context.Context, query string) (*Result, error)

	// Reverse resolves coordinates into a display address. An empty string
	// with a nil error means the provider found no address.
	Reverse(ctx context.Context, lat, lng float64) (string, error)
}

// RangeError reports a latitude or longitude outside the valid range.
type RangeError struct {
	Lat float64
	Lng float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("coordinate out of range: lat=%v lng=%v", e.Lat, e.Lng)
}

// ValidateRange checks that a latitude/longitude pair lies within
// [-90, 90] and [-180, 180].
func ValidateRange(lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return &RangeError{Lat: lat, Lng: lng}
	}
	return nil
}

// FormatLatLng renders a coordinate pair as a display string with six
// decimal places. Used as the address fallback when no semantic address
// is known.
func FormatLatLng(lat, lng float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lng)
}
