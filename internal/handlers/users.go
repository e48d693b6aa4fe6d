package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/runclub/runlog-api/internal/middleware"
	"github.com/runclub/runlog-api/internal/models"
	"github.com/runclub/runlog-api/internal/users"
)

// GetMe returns the caller's user row.
func (h *Handler) GetMe(c *fiber.Ctx) error {
	user, err := h.users.Get(c.Context(), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load user",
		})
	}
	return c.JSON(user)
}

// UpdateProfile changes the caller's display name, default yearly goal or
// grouping context.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var req models.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.GoalKm != nil && *req.GoalKm < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Goal must not be negative",
		})
	}

	user, err := h.users.UpdateProfile(c.Context(), middleware.GetUserID(c), middleware.GetUsername(c), req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update profile",
		})
	}
	return c.JSON(user)
}
