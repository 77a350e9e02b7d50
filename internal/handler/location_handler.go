package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/foodlink/foodlink-api/internal/model"
)

// LocationServiceInterface defines the interface for geocoding and saved locations.
type LocationServiceInterface interface {
	Geocode(ctx context.Context, address string) (model.Coordinate, error)
	SaveUserLocation(ctx context.Context, req *model.SaveLocationRequest) (*model.UserLocation, bool, error)
	GetUserLocation(ctx context.Context, userID int64) (*model.UserLocation, error)
}

// LocationHandler handles geocoding and saved-location requests.
type LocationHandler struct {
	service   LocationServiceInterface
	validator *validator.Validate
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(svc LocationServiceInterface, v *validator.Validate) *LocationHandler {
	return &LocationHandler{service: svc, validator: v}
}

// Geocode handles POST /api/geolocation.
func (h *LocationHandler) Geocode(c *fiber.Ctx) error {
	var req model.GeolocationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	coord, err := h.service.Geocode(c.Context(), req.Address)
	if err != nil {
		return respondError(c, err, "failed to geocode address")
	}
	return c.JSON(coord)
}

// SaveUserLocation handles POST /user-location: 201 when created, 200 when replaced.
func (h *LocationHandler) SaveUserLocation(c *fiber.Ctx) error {
	var req model.SaveLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	loc, created, err := h.service.SaveUserLocation(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "failed to save user location")
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(loc)
}

// GetUserLocation handles GET /user-location/:userId.
func (h *LocationHandler) GetUserLocation(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil || userID < 1 {
		return badRequest(c, "invalid request: userId must be a positive integer")
	}

	loc, err := h.service.GetUserLocation(c.Context(), int64(userID))
	if err != nil {
		return respondError(c, err, "failed to get user location")
	}
	return c.JSON(loc)
}
