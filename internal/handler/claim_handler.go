package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/foodlink/foodlink-api/internal/model"
	"github.com/foodlink/foodlink-api/internal/service"
)

// ClaimServiceInterface defines the interface for claim business logic.
type ClaimServiceInterface interface {
	Claim(ctx context.Context, donationID, userID int64, amount int) (*model.ClaimResult, error)
}

// ClaimHandler handles HTTP requests for claim operations.
type ClaimHandler struct {
	service   ClaimServiceInterface
	validator *validator.Validate
}

// NewClaimHandler creates a new ClaimHandler with the given service and validator.
func NewClaimHandler(svc ClaimServiceInterface, v *validator.Validate) *ClaimHandler {
	return &ClaimHandler{service: svc, validator: v}
}

// claimStatus keeps the wire contract of the claim endpoint: every rejected claim is a 400,
// whether it conflicts with the donation state or carries a bad amount.
func claimStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrInvalidArgument):
		return fiber.StatusBadRequest
	}
	return 0
}

// ClaimDonation handles POST /api/claim-donation/:id requests to claim part of a donation.
func (h *ClaimHandler) ClaimDonation(c *fiber.Ctx) error {
	donationID, err := c.ParamsInt("id")
	if err != nil || donationID < 1 {
		return badRequest(c, "invalid request: id must be a positive integer")
	}

	var req model.ClaimDonationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	result, err := h.service.Claim(c.Context(), int64(donationID), req.UserID, *req.Amount)
	if err != nil {
		return errorResponse(c, claimStatus(err), err, "failed to claim donation")
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int64("donation_id", result.DonationID).
		Int64("user_id", req.UserID).
		Int("claimed_amount", result.ClaimedAmount).
		Int("remaining_amount", result.RemainingAmount).
		Msg("donation claimed successfully")

	return c.JSON(fiber.Map{
		"message":         "Donation claimed successfully!",
		"donationId":      result.DonationID,
		"claimedAmount":   result.ClaimedAmount,
		"remainingAmount": result.RemainingAmount,
		"status":          result.Status,
	})
}
