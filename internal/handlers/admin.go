package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/runclub/runlog-api/internal/middleware"
)

// DeleteRunsByRange hard-deletes every entry in the inclusive date range,
// across all users. Admin-only correction path; the count comes back for the
// caller's confirmation display.
func (h *Handler) DeleteRunsByRange(c *fiber.Ctx) error {
	start, err := parseDate(c.Query("start"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid start date, expected YYYY-MM-DD",
		})
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid end date, expected YYYY-MM-DD",
		})
	}
	if end.Before(start) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "End date before start date",
		})
	}

	count, err := h.ledger.DeleteByDateRange(c.Context(), start, end)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete entries",
		})
	}

	h.log.Info("admin purge", "admin_id", middleware.GetUserID(c), "deleted", count)
	return c.JSON(fiber.Map{"deleted": count})
}
