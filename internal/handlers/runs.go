package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/runclub/runlog-api/internal/ledger"
	"github.com/runclub/runlog-api/internal/middleware"
	"github.com/runclub/runlog-api/internal/models"
)

// SubmitRun appends one activity entry for the authenticated user.
func (h *Handler) SubmitRun(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.SubmitRunRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	date := h.now()
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid date, expected YYYY-MM-DD",
			})
		}
		date = parsed
	}

	entryID, err := h.ledger.Append(c.Context(), ledger.AppendInput{
		UserID:    userID,
		Username:  middleware.GetUsername(c),
		Km:        req.Km,
		Date:      date,
		Notes:     req.Notes,
		GroupID:   req.GroupID,
		GroupKind: req.GroupKind,
	})
	if err != nil {
		if errors.Is(err, ledger.ErrDistanceOutOfRange) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save run entry",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id": entryID,
	})
}

// RecentRuns returns the user's newest entries for the edit/delete UI.
func (h *Handler) RecentRuns(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	limit, _ := strconv.Atoi(c.Query("limit", "5"))
	if limit < 1 || limit > 50 {
		limit = 5
	}

	entries, err := h.ledger.ListRecent(c.Context(), userID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list runs",
		})
	}
	return c.JSON(entries)
}

// DeleteRun hard-deletes one of the caller's own entries.
func (h *Handler) DeleteRun(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	entryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid run ID",
		})
	}

	if err := h.ledger.DeleteEntry(c.Context(), userID, entryID); err != nil {
		if errors.Is(err, ledger.ErrEntryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Run entry not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete run entry",
		})
	}
	return c.JSON(fiber.Map{"deleted": true})
}
