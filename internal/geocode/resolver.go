package geocode

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// Geocoder is the reverse geocoding collaborator. Results are ordered most
// relevant first. Implementations return ErrServiceUnavailable for I/O
// failures and ErrInvalidCoordinates for arguments they reject.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64, maxResults int) ([]Address, error)
}

// Resolver turns coordinates into the best available Address.
type Resolver struct {
	geocoder Geocoder
	logger   zerolog.Logger
}

// NewResolver creates a new address resolver.
func NewResolver(geocoder Geocoder, logger zerolog.Logger) *Resolver {
	return &Resolver{geocoder: geocoder, logger: logger}
}

// Resolve returns the most relevant address for lat/lon. The error is one of
// ErrServiceUnavailable, ErrInvalidCoordinates or ErrNoAddressFound.
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64) (*Address, error) {
	if !ValidCoordinates(lat, lon) {
		return nil, ErrInvalidCoordinates
	}

	addresses, err := r.geocoder.ReverseGeocode(ctx, lat, lon, MaxResults)
	if err != nil {
		r.logger.Warn().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("reverse geocoding failed")
		switch {
		case errors.Is(err, ErrInvalidCoordinates):
			return nil, ErrInvalidCoordinates
		case errors.Is(err, ErrServiceUnavailable):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
		}
	}
	if len(addresses) == 0 {
		return nil, ErrNoAddressFound
	}

	best := addresses[0]
	return &best, nil
}

// ValidCoordinates reports whether lat/lon are finite and within WGS84 bounds.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
