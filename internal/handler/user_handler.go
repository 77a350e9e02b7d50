package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/foodlink/foodlink-api/internal/auth"
	"github.com/foodlink/foodlink-api/internal/model"
	"github.com/foodlink/foodlink-api/internal/service"
)

// UserServiceInterface defines the interface for account and session logic.
type UserServiceInterface interface {
	Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	GoogleLogin(ctx context.Context, idToken string) (*model.LoginResponse, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, id int64, req *model.UpdateUserRequest) (*model.User, error)
	SetProfileImage(ctx context.Context, id int64, img *service.ImageUpload) (*model.User, error)
}

// UserHandler handles signup, login and profile requests.
type UserHandler struct {
	service   UserServiceInterface
	validator *validator.Validate
}

// NewUserHandler creates a new UserHandler with the given service and validator.
func NewUserHandler(svc UserServiceInterface, v *validator.Validate) *UserHandler {
	return &UserHandler{service: svc, validator: v}
}

// Signup handles POST /users.
func (h *UserHandler) Signup(c *fiber.Ctx) error {
	var req model.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	user, err := h.service.Signup(c.Context(), &req)
	if err != nil {
		// Duplicate emails are a plain 400 for existing clients.
		if errors.Is(err, service.ErrEmailTaken) {
			return errorResponse(c, fiber.StatusBadRequest, err, "")
		}
		return respondError(c, err, "failed to create user")
	}

	log.Info().Int64("user_id", user.ID).Msg("user signed up")
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login handles POST /login.
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req model.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	resp, err := h.service.Login(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return errorResponse(c, fiber.StatusUnauthorized, err, "")
		}
		return respondError(c, err, "failed to log in")
	}
	return c.JSON(resp)
}

// GoogleLogin handles POST /login/google.
func (h *UserHandler) GoogleLogin(c *fiber.Ctx) error {
	var req model.GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	resp, err := h.service.GoogleLogin(c.Context(), req.AccessToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			return errorResponse(c, fiber.StatusUnauthorized, err, "")
		}
		return respondError(c, err, "failed to log in with google")
	}
	return c.JSON(resp)
}

// GetUser handles GET /users/:id.
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return badRequest(c, "invalid request: id must be a positive integer")
	}

	user, err := h.service.Get(c.Context(), int64(id))
	if err != nil {
		return respondError(c, err, "failed to get user")
	}
	return c.JSON(user)
}

// UpdateUser handles PUT /users/:id. The route is guarded by auth.RequireToken bound to :id.
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, ok := auth.UserIDFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
	}

	var req model.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	user, err := h.service.Update(c.Context(), id, &req)
	if err != nil {
		return respondError(c, err, "failed to update user")
	}
	return c.JSON(user)
}

// UploadProfileImage handles POST /upload-profile-image for the token's user.
func (h *UserHandler) UploadProfileImage(c *fiber.Ctx) error {
	id, ok := auth.UserIDFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
	}

	image, closeImage, err := imageFromForm(c, "image")
	if err != nil {
		return badRequest(c, err.Error())
	}
	defer closeImage()
	if image == nil {
		return badRequest(c, "No image file provided")
	}

	user, err := h.service.SetProfileImage(c.Context(), id, image)
	if err != nil {
		return respondError(c, err, "failed to upload profile image")
	}

	var imageURL string
	if user.ImageURL != nil {
		imageURL = *user.ImageURL
	}
	return c.JSON(fiber.Map{
		"message":  "Profile image uploaded successfully",
		"imageUrl": imageURL,
		"user":     user,
	})
}
