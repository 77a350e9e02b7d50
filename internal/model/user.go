package model

import "time"

// User is a FoodLink account. Credit counts claims made on the user's donations.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash *string   `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	PhoneNumber  string    `json:"phoneNumber" db:"phone_number"`
	Credit       int       `json:"credit" db:"credit"`
	ImageURL     *string   `json:"image_url" db:"image_url"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// UserLocation is a user's saved search origin.
type UserLocation struct {
	ID        int64    `json:"id" db:"id"`
	UserID    int64    `json:"user_id" db:"user_id"`
	Latitude  *float64 `json:"latitude" db:"latitude"`
	Longitude *float64 `json:"longitude" db:"longitude"`
	Address   string   `json:"address" db:"address"`
}

// SignupRequest is the DTO for POST /users.
type SignupRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	Name        string `json:"name" validate:"required,notblank,max=255"`
	PhoneNumber string `json:"phoneNumber" validate:"max=32"`
}

// UpdateUserRequest is the DTO for PUT /users/:id. Nil fields are left untouched.
type UpdateUserRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=255"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=32"`
}

// LoginRequest is the DTO for POST /login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleLoginRequest is the DTO for POST /login/google. The field carries a Google ID token.
type GoogleLoginRequest struct {
	AccessToken string `json:"access_token" validate:"required,notblank"`
}

// LoginResponse is returned by both login flows.
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}

// SaveLocationRequest is the DTO for POST /user-location.
type SaveLocationRequest struct {
	UserID    int64    `json:"userId" validate:"required,gte=1"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address" validate:"max=512"`
}

// GeolocationRequest is the DTO for POST /api/geolocation.
type GeolocationRequest struct {
	Address string `json:"address" validate:"required,notblank,max=512"`
}
