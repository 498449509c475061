package domain

import (
	"context"
	"log/slog"
)

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves coordinates to a human-readable place.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

// LocationLabel returns the geocoded place name for lat/lon, or fallback when
// geocoding is disabled, fails, or finds nothing.
func LocationLabel(ctx context.Context, geo Geocoder, lat, lon float64, fallback string, logger *slog.Logger) string {
	if geo == nil {
		return fallback
	}
	result, err := geo.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		logger.Warn("reverse geocode failed", "lat", lat, "lon", lon, "error", err)
		return fallback
	}
	if result.PlaceName == "" {
		return fallback
	}
	return result.PlaceName
}
