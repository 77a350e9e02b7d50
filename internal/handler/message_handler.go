package handler

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/foodlink/foodlink-api/internal/model"
)

// MessageServiceInterface defines the interface for chat logic.
type MessageServiceInterface interface {
	Send(ctx context.Context, req *model.SendMessageRequest) (*model.Message, error)
	Conversation(ctx context.Context, donationID, userID int64) ([]model.Message, error)
	Chats(ctx context.Context, userID int64) ([]model.ChatSummary, error)
}

// MessageHandler handles chat requests.
type MessageHandler struct {
	service   MessageServiceInterface
	validator *validator.Validate
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(svc MessageServiceInterface, v *validator.Validate) *MessageHandler {
	return &MessageHandler{service: svc, validator: v}
}

// SendMessage handles POST /messages.
func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	var req model.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	msg, err := h.service.Send(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "failed to send message")
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetConversation handles GET /messages/:donationId?userId=.
func (h *MessageHandler) GetConversation(c *fiber.Ctx) error {
	donationID, err := c.ParamsInt("donationId")
	if err != nil || donationID < 1 {
		return badRequest(c, "invalid request: donationId must be a positive integer")
	}

	raw := c.Query("userId")
	if raw == "" {
		return badRequest(c, "Missing userId")
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID < 1 {
		return badRequest(c, "invalid request: userId must be a positive integer")
	}

	msgs, err := h.service.Conversation(c.Context(), int64(donationID), userID)
	if err != nil {
		return respondError(c, err, "failed to fetch messages")
	}
	return c.JSON(msgs)
}

// GetChats handles GET /user-chats/:userId.
func (h *MessageHandler) GetChats(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil || userID < 1 {
		return badRequest(c, "invalid request: userId must be a positive integer")
	}

	chats, err := h.service.Chats(c.Context(), int64(userID))
	if err != nil {
		return respondError(c, err, "failed to load chats")
	}
	return c.JSON(chats)
}
