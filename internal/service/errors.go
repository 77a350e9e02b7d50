package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every specific error below wraps exactly one of them, so callers can branch with
// errors.Is on either the kind or the specific error.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnavailable     = errors.New("unavailable")
)

var (
	// ErrDonationNotFound is returned when a donation id does not exist
	ErrDonationNotFound = fmt.Errorf("donation %w", ErrNotFound)

	// ErrUserNotFound is returned when a user id or email does not exist
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)

	// ErrLocationNotFound is returned when a user has no saved location
	ErrLocationNotFound = fmt.Errorf("location %w", ErrNotFound)

	// ErrAddressNotFound is returned when geocoding yields no result
	ErrAddressNotFound = fmt.Errorf("address %w", ErrNotFound)

	// ErrDonationUnavailable is returned when claiming a donation that is used up or withdrawn
	ErrDonationUnavailable = fmt.Errorf("%w: already claimed or unavailable", ErrConflict)

	// ErrInsufficientAmount is returned when a claim asks for more than remains
	ErrInsufficientAmount = fmt.Errorf("%w: not enough amount available", ErrConflict)

	// ErrEmailTaken is returned on signup with an email that already has an account
	ErrEmailTaken = fmt.Errorf("%w: email is already in use", ErrConflict)

	// ErrInvalidAmount is returned for non-positive claim amounts
	ErrInvalidAmount = fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)

	// ErrInvalidCoordinates is returned for out-of-range or half-specified coordinates
	ErrInvalidCoordinates = fmt.Errorf("%w: coordinates out of range", ErrInvalidArgument)

	// ErrInvalidQuery is returned for malformed search queries
	ErrInvalidQuery = fmt.Errorf("%w: malformed search query", ErrInvalidArgument)

	// ErrInvalidCategory is returned for categories outside the fixed set
	ErrInvalidCategory = fmt.Errorf("%w: unknown category", ErrInvalidArgument)

	// ErrInvalidPickupHours is returned for pickup windows outside the fixed set
	ErrInvalidPickupHours = fmt.Errorf("%w: unknown pickup hours", ErrInvalidArgument)

	// ErrInvalidCredentials is returned when login fails for any reason the caller should not learn
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrInvalidArgument)

	// ErrInvalidToken is returned when a third-party identity token fails verification
	ErrInvalidToken = fmt.Errorf("%w: invalid identity token", ErrInvalidArgument)

	// ErrInvalidRequest is returned when request data is nil or incomplete
	ErrInvalidRequest = fmt.Errorf("%w: invalid request", ErrInvalidArgument)

	// ErrGeocoderUnavailable is returned when the geocoding backend times out or fails
	ErrGeocoderUnavailable = fmt.Errorf("geocoder %w", ErrUnavailable)

	// ErrStorageUnavailable is returned when an image upload fails
	ErrStorageUnavailable = fmt.Errorf("image storage %w", ErrUnavailable)
)
