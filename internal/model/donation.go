package model

import (
	"strings"
	"time"
)

// Donation status values.
const (
	StatusAvailable   = "available"
	StatusClaimed     = "claimed"
	StatusUnavailable = "unavailable"
)

// Pickup hour windows.
const (
	PickupMorning     = "morning"
	PickupAfternoon   = "afternoon"
	PickupEvening     = "evening"
	PickupUnspecified = "unspecified"
)

// Categories is the fixed set of normalized donation categories.
var Categories = map[string]struct{}{
	"fruits": {}, "vegetables": {}, "dairy": {}, "grains": {}, "protein": {}, "other": {},
	"prepared_meals": {}, "fresh_produce": {}, "canned_goods": {}, "bakery": {}, "meat": {},
	"snacks": {}, "frozen_foods": {}, "beverages": {}, "pasta": {}, "baking_ingredients": {},
	"sauces": {}, "spices": {}, "condiments": {}, "nuts_&_seeds": {}, "breakfast_cereals": {},
	"baby_food": {}, "plant-based_alternatives": {},
}

// PickupHours is the set of accepted pickup windows.
var PickupHours = map[string]struct{}{
	PickupMorning: {}, PickupAfternoon: {}, PickupEvening: {}, PickupUnspecified: {},
}

// NormalizeCategory lowercases s and collapses every whitespace run into a single underscore,
// so "Fresh  Produce" and "fresh_produce" compare equal.
func NormalizeCategory(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}

// IsCategory reports whether s normalizes to a known category.
func IsCategory(s string) bool {
	_, ok := Categories[NormalizeCategory(s)]
	return ok
}

// Donation is a posted offer of surplus food.
type Donation struct {
	ID             int64     `json:"id" db:"id"`
	ProductName    string    `json:"productName" db:"product_name"`
	Category       string    `json:"category" db:"category"`
	Amount         int       `json:"amount" db:"amount"`
	Description    string    `json:"description" db:"description"`
	PickupDate     time.Time `json:"pickupDate" db:"pickup_date"`
	ExpirationDate time.Time `json:"expirationDate" db:"expiration_date"`
	PickupHours    string    `json:"pickupHours" db:"pickup_hours"`
	Latitude       *float64  `json:"latitude" db:"latitude"`
	Longitude      *float64  `json:"longitude" db:"longitude"`
	ImageURL       *string   `json:"image_url" db:"image_url"`
	Status         string    `json:"status" db:"status"`
	UserID         int64     `json:"userId" db:"user_id"`
	ClaimedBy      *int64    `json:"claimed_by" db:"claimed_by"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`

	// DistanceKm is set by search when an origin is supplied and the donation is located.
	DistanceKm *float64 `json:"distance,omitempty" db:"-"`
}

// Location returns the donation's coordinate, or false when it was never geocoded.
func (d *Donation) Location() (Coordinate, bool) {
	if d.Latitude == nil || d.Longitude == nil {
		return Coordinate{}, false
	}
	return Coordinate{Lat: *d.Latitude, Lon: *d.Longitude}, true
}

// DonationDetails is the API response for GET /food-donations/:id.
type DonationDetails struct {
	Donation
	Address string `json:"address"`
}

// Address fallbacks returned instead of failing the details response.
const (
	AddressNotFound      = "Address not found"
	AddressLookupFailed  = "Error fetching address"
	AddressNoCoordinates = "Coordinates not available"
)

// CreateDonationRequest is the DTO for POST /food-donation (multipart form fields).
type CreateDonationRequest struct {
	ProductName    string   `form:"productName" validate:"required,notblank,max=255"`
	Category       string   `form:"category" validate:"required,category"`
	Amount         *int     `form:"amount" validate:"required,gte=1"`
	Description    string   `form:"description" validate:"max=2000"`
	PickupDate     string   `form:"pickupDate" validate:"required,datetime=2006-01-02"`
	ExpirationDate string   `form:"expirationDate" validate:"required,datetime=2006-01-02"`
	PickupHours    string   `form:"pickupHours" validate:"omitempty,pickuphours"`
	UserID         int64    `form:"userId" validate:"required,gte=1"`
	Latitude       *float64 `form:"latitude"`
	Longitude      *float64 `form:"longitude"`
}

// ClaimDonationRequest is the DTO for POST /api/claim-donation/:id.
// Amount is deliberately not range-checked here; the claim transaction owns the check order.
type ClaimDonationRequest struct {
	UserID int64 `json:"userId" validate:"required,gte=1"`
	Amount *int  `json:"amount" validate:"required"`
}

// ClaimResult describes the donation state after a successful claim.
type ClaimResult struct {
	DonationID      int64  `json:"donationId"`
	ClaimedAmount   int    `json:"claimedAmount"`
	RemainingAmount int    `json:"remainingAmount"`
	Status          string `json:"status"`
}
