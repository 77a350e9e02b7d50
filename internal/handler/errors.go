package handler

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/foodlink/foodlink-api/internal/model"
	"github.com/foodlink/foodlink-api/internal/service"
)

// messages holds the client-facing text for each domain error. Errors not listed fall back to
// their kind's message.
var messages = []struct {
	err error
	msg string
}{
	{service.ErrDonationNotFound, "Donation not found"},
	{service.ErrUserNotFound, "User not found"},
	{service.ErrLocationNotFound, "Location not found"},
	{service.ErrAddressNotFound, "Address not found"},
	{service.ErrDonationUnavailable, "Donation is already claimed or unavailable"},
	{service.ErrInsufficientAmount, "Not enough amount available"},
	{service.ErrEmailTaken, "Email is already in use"},
	{service.ErrInvalidAmount, "Amount must be a positive number"},
	{service.ErrInvalidCoordinates, "Latitude must be within [-90, 90] and longitude within [-180, 180]"},
	{service.ErrInvalidQuery, "Invalid search query"},
	{service.ErrInvalidCategory, "Unknown category"},
	{service.ErrInvalidPickupHours, "Pickup hours must be morning, afternoon, evening or unspecified"},
	{service.ErrInvalidCredentials, "Invalid email or password"},
	{service.ErrInvalidToken, "Invalid Google token"},
	{service.ErrGeocoderUnavailable, "Geocoding service unavailable"},
	{service.ErrStorageUnavailable, "Image storage unavailable"},
}

func publicMessage(err error) string {
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	switch {
	case errors.Is(err, service.ErrNotFound):
		return "not found"
	case errors.Is(err, service.ErrConflict):
		return "conflict"
	case errors.Is(err, service.ErrUnavailable):
		return "service unavailable"
	}
	return "invalid request"
}

// statusFor returns the default HTTP status for a domain error, or 0 for unexpected errors.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrInvalidArgument):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrUnavailable):
		return fiber.StatusServiceUnavailable
	}
	return 0
}

// errorResponse writes {"error": ...} with status, or 500 when status is 0. Unexpected errors
// are logged with the request context and never leak their text.
func errorResponse(c *fiber.Ctx, status int, err error, msg string) error {
	if status == 0 {
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg(msg)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": publicMessage(err)})
}

// respondError maps err with the default kind table.
func respondError(c *fiber.Ctx, err error, msg string) error {
	return errorResponse(c, statusFor(err), err, msg)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// formatValidationError converts the first validator error into a client message using the
// field's wire name.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request"
	}

	fe := ve[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return "invalid request: " + field + " is required"
	case "notblank":
		return "invalid request: " + field + " cannot be whitespace only"
	case "max":
		return "invalid request: " + field + " exceeds maximum length of " + fe.Param()
	case "min":
		return "invalid request: " + field + " must be at least " + fe.Param() + " characters"
	case "gte":
		return "invalid request: " + field + " must be at least " + fe.Param()
	case "email":
		return "invalid request: " + field + " must be a valid email address"
	case "datetime":
		return "invalid request: " + field + " must use the YYYY-MM-DD format"
	case "category":
		return "invalid request: " + field + " must be one of " + strings.Join(categoryList(), ", ")
	case "pickuphours":
		return "invalid request: " + field + " must be morning, afternoon, evening or unspecified"
	case "nefield":
		return "invalid request: cannot send a message to yourself"
	}
	return "invalid request: " + field + " is invalid"
}

func categoryList() []string {
	names := make([]string, 0, len(model.Categories))
	for name := range model.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
