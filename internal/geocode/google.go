// Package geocode resolves addresses and coordinates through the Google Geocoding API.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"github.com/foodlink/foodlink-api/internal/geo"
	"github.com/foodlink/foodlink-api/internal/model"
	"github.com/foodlink/foodlink-api/internal/service"
)

const zeroResults = "ZERO_RESULTS"

// mapsClient is satisfied by *maps.Client.
type mapsClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// GoogleGeocoder implements forward and reverse geocoding with a per-call timeout.
type GoogleGeocoder struct {
	client  mapsClient
	timeout time.Duration
}

// NewGoogleGeocoder creates a GoogleGeocoder. baseURL overrides the API endpoint and may be empty.
func NewGoogleGeocoder(apiKey, baseURL string, timeout time.Duration) (*GoogleGeocoder, error) {
	opts := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(baseURL))
	}

	c, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return newGoogleGeocoderWithClient(c, timeout), nil
}

func newGoogleGeocoderWithClient(c mapsClient, timeout time.Duration) *GoogleGeocoder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GoogleGeocoder{client: c, timeout: timeout}
}

// Geocode returns the location of the best match for address.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (model.Coordinate, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return model.Coordinate{}, classify(err)
	}
	if len(results) == 0 {
		return model.Coordinate{}, service.ErrAddressNotFound
	}

	loc := results[0].Geometry.Location
	c := model.Coordinate{Lat: loc.Lat, Lon: loc.Lng}
	if err := geo.Validate(c); err != nil {
		return model.Coordinate{}, fmt.Errorf("%w: %v", service.ErrGeocoderUnavailable, err)
	}
	return c, nil
}

// ReverseGeocode returns the formatted address of the best match for c.
func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, c model.Coordinate) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: c.Lat, Lng: c.Lon},
	})
	if err != nil {
		return "", classify(err)
	}
	if len(results) == 0 || results[0].FormattedAddress == "" {
		return "", service.ErrAddressNotFound
	}
	return results[0].FormattedAddress, nil
}

func classify(err error) error {
	if strings.Contains(err.Error(), zeroResults) {
		return service.ErrAddressNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: timed out", service.ErrGeocoderUnavailable)
	}
	return fmt.Errorf("%w: %v", service.ErrGeocoderUnavailable, err)
}
