package handlers

import (
	"warbler/internal/middleware"
	"warbler/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// MessageHandler handles HTTP requests for messages and likes.
type MessageHandler struct {
	messages *services.MessageService
	likes    *services.LikeService
	validate *validator.Validate
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messages *services.MessageService, likes *services.LikeService) *MessageHandler {
	return &MessageHandler{
		messages: messages,
		likes:    likes,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the message routes with the Fiber app.
func (h *MessageHandler) RegisterRoutes(router fiber.Router) {
	messageRoutes := router.Group("/messages")
	messageRoutes.Post("/", middleware.AuthRequired(), h.HandlePost)
	messageRoutes.Get("/:id", h.HandleShow)
	messageRoutes.Delete("/:id", middleware.AuthRequired(), h.HandleDelete)
	messageRoutes.Post("/:id/like", middleware.AuthRequired(), h.HandleToggleLike)
	messageRoutes.Get("/:id/likes", h.HandleLikers)
}

// PostMessageRequest represents the request body for a new message.
type PostMessageRequest struct {
	Text string `json:"text" validate:"required,max=140"`
}

// HandlePost stores a message by the caller.
func (h *MessageHandler) HandlePost(c *fiber.Ctx) error {
	var req PostMessageRequest
	if errBody := bindBody(c, h.validate, &req); errBody != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errBody)
	}

	message, err := h.messages.Post(c.UserContext(), middleware.CurrentUser(c), req.Text)
	if err != nil {
		return respondError(c, err, "Could not post message")
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// HandleShow returns a message with its like count.
func (h *MessageHandler) HandleShow(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "Message not found")
	}
	message, err := h.messages.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Message not found")
	}
	count, err := h.likes.LikeCount(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Could not count likes")
	}
	return c.JSON(fiber.Map{
		"message": message,
		"likes":   count,
	})
}

// HandleDelete removes one of the caller's messages.
func (h *MessageHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "Message not found")
	}
	if err := h.messages.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return respondError(c, err, "Could not delete message")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleToggleLike likes or unlikes a message for the caller.
func (h *MessageHandler) HandleToggleLike(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "Message not found")
	}
	ctx := c.UserContext()
	state, err := h.likes.ToggleLike(ctx, middleware.CurrentUser(c).ID, id)
	if err != nil {
		return respondError(c, err, "Could not toggle like")
	}
	count, err := h.likes.LikeCount(ctx, id)
	if err != nil {
		return respondError(c, err, "Could not count likes")
	}
	return c.JSON(fiber.Map{
		"state": state.String(),
		"likes": count,
	})
}

// HandleLikers lists the users who like a message.
func (h *MessageHandler) HandleLikers(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "Message not found")
	}
	users, err := h.likes.Likers(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Could not list likes")
	}
	return c.JSON(users)
}
