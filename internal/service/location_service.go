package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/foodlink/foodlink-api/internal/geo"
	"github.com/foodlink/foodlink-api/internal/model"
)

// LocationRepositoryInterface defines the interface for saved user locations.
type LocationRepositoryInterface interface {
	Upsert(ctx context.Context, loc *model.UserLocation) (created bool, err error)
	GetByUserID(ctx context.Context, userID int64) (*model.UserLocation, error)
}

// Geocoder resolves addresses into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (model.Coordinate, error)
}

// LocationService handles address lookup and users' saved search origins.
type LocationService struct {
	locationRepo LocationRepositoryInterface
	geocoder     Geocoder
}

// NewLocationService creates a new LocationService. A nil geocoder makes Geocode report
// ErrGeocoderUnavailable.
func NewLocationService(locationRepo LocationRepositoryInterface, geocoder Geocoder) *LocationService {
	return &LocationService{locationRepo: locationRepo, geocoder: geocoder}
}

// Geocode returns the coordinates of address.
// Returns ErrAddressNotFound when the geocoder has no match and ErrGeocoderUnavailable when it
// could not be reached in time.
func (s *LocationService) Geocode(ctx context.Context, address string) (model.Coordinate, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return model.Coordinate{}, ErrInvalidRequest
	}
	if s.geocoder == nil {
		return model.Coordinate{}, ErrGeocoderUnavailable
	}

	c, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, ErrAddressNotFound) || errors.Is(err, ErrUnavailable) {
			return model.Coordinate{}, err
		}
		return model.Coordinate{}, fmt.Errorf("%w: %v", ErrGeocoderUnavailable, err)
	}
	return c, nil
}

// SaveUserLocation creates or replaces the user's saved location. created reports which.
func (s *LocationService) SaveUserLocation(ctx context.Context, req *model.SaveLocationRequest) (*model.UserLocation, bool, error) {
	if req == nil {
		return nil, false, ErrInvalidRequest
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, false, ErrInvalidCoordinates
	}
	if req.Latitude != nil {
		if err := geo.Validate(model.Coordinate{Lat: *req.Latitude, Lon: *req.Longitude}); err != nil {
			return nil, false, ErrInvalidCoordinates
		}
	}

	loc := &model.UserLocation{
		UserID:    req.UserID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Address:   strings.TrimSpace(req.Address),
	}
	created, err := s.locationRepo.Upsert(ctx, loc)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, false, ErrUserNotFound
		}
		return nil, false, fmt.Errorf("upsert location: %w", err)
	}
	return loc, created, nil
}

// GetUserLocation returns the user's saved location or ErrLocationNotFound.
func (s *LocationService) GetUserLocation(ctx context.Context, userID int64) (*model.UserLocation, error) {
	loc, err := s.locationRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}
	if loc == nil {
		return nil, ErrLocationNotFound
	}
	return loc, nil
}
