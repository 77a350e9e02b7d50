package geocode

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"

	"github.com/foodlink/foodlink-api/internal/model"
	"github.com/foodlink/foodlink-api/internal/service"
)

type mockMapsClient struct {
	geocodeFn        func(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
	reverseGeocodeFn func(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

func (m *mockMapsClient) Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	return m.geocodeFn(ctx, r)
}

func (m *mockMapsClient) ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	return m.reverseGeocodeFn(ctx, r)
}

func result(lat, lng float64, formatted string) maps.GeocodingResult {
	var r maps.GeocodingResult
	r.FormattedAddress = formatted
	r.Geometry.Location = maps.LatLng{Lat: lat, Lng: lng}
	return r
}

func TestGoogleGeocoder_Geocode(t *testing.T) {
	var gotAddress string
	client := &mockMapsClient{
		geocodeFn: func(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
			gotAddress = r.Address
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			return []maps.GeocodingResult{result(32.0853, 34.7818, "Tel Aviv-Yafo, Israel")}, nil
		},
	}

	c, err := newGoogleGeocoderWithClient(client, time.Second).Geocode(context.Background(), "Tel Aviv")

	require.NoError(t, err)
	assert.Equal(t, "Tel Aviv", gotAddress)
	assert.Equal(t, model.Coordinate{Lat: 32.0853, Lon: 34.7818}, c)
}

func TestGoogleGeocoder_Geocode_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		results []maps.GeocodingResult
		err     error
		want    error
	}{
		{"empty_results", nil, nil, service.ErrAddressNotFound},
		{"zero_results_status", nil, errors.New("maps: ZERO_RESULTS - "), service.ErrAddressNotFound},
		{"deadline", nil, context.DeadlineExceeded, service.ErrGeocoderUnavailable},
		{"transport", nil, errors.New("dial tcp: connection refused"), service.ErrGeocoderUnavailable},
		{"out_of_range_result", []maps.GeocodingResult{result(123, 0, "")}, nil, service.ErrGeocoderUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := &mockMapsClient{
				geocodeFn: func(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
					return tc.results, tc.err
				},
			}

			_, err := newGoogleGeocoderWithClient(client, time.Second).Geocode(context.Background(), "x")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGoogleGeocoder_Geocode_TimesOut(t *testing.T) {
	client := &mockMapsClient{
		geocodeFn: func(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	_, err := newGoogleGeocoderWithClient(client, 20*time.Millisecond).Geocode(context.Background(), "slow")
	assert.ErrorIs(t, err, service.ErrGeocoderUnavailable)
}

func TestGoogleGeocoder_ReverseGeocode(t *testing.T) {
	client := &mockMapsClient{
		reverseGeocodeFn: func(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
			require.NotNil(t, r.LatLng)
			assert.Equal(t, 32.08, r.LatLng.Lat)
			assert.Equal(t, 34.78, r.LatLng.Lng)
			return []maps.GeocodingResult{result(32.08, 34.78, "Rothschild Blvd 1, Tel Aviv-Yafo, Israel")}, nil
		},
	}

	addr, err := newGoogleGeocoderWithClient(client, time.Second).ReverseGeocode(context.Background(), model.Coordinate{Lat: 32.08, Lon: 34.78})

	require.NoError(t, err)
	assert.Equal(t, "Rothschild Blvd 1, Tel Aviv-Yafo, Israel", addr)
}

func TestGoogleGeocoder_ReverseGeocode_NoResult(t *testing.T) {
	client := &mockMapsClient{
		reverseGeocodeFn: func(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
			return []maps.GeocodingResult{}, nil
		},
	}

	_, err := newGoogleGeocoderWithClient(client, time.Second).ReverseGeocode(context.Background(), model.Coordinate{})
	assert.ErrorIs(t, err, service.ErrAddressNotFound)
}

func TestNewGoogleGeocoder(t *testing.T) {
	_, err := NewGoogleGeocoder("", "", time.Second)
	assert.Error(t, err, "an API key is required")

	g, err := NewGoogleGeocoder("test-key", "http://127.0.0.1:1", 0)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, g.timeout)
}
