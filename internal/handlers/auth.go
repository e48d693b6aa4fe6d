package handlers

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/runclub/runlog-api/internal/middleware"
	"github.com/runclub/runlog-api/internal/models"
)

type tokenRequest struct {
	APIKey   string `json:"apiKey"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// IssueToken mints a user-scoped JWT for the conversational gateway. The
// gateway authenticates itself with the shared API key; user identity is
// whatever the transport vouched for.
func (h *Handler) IssueToken(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if h.cfg.BotAPIKey == "" ||
		subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.cfg.BotAPIKey)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid API key",
		})
	}

	if req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "userId is required",
		})
	}

	user, err := h.users.Ensure(c.Context(), req.UserID, req.Username)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to resolve user",
		})
	}

	token, err := middleware.GenerateToken(user.UserID, user.Username, h.cfg.JWTSecret)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.JSON(tokenResponse{Token: token, User: user})
}
