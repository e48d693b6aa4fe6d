package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/runclub/runlog-api/internal/middleware"
)

// MyStats returns the caller's period totals for a year or one month of it.
func (h *Handler) MyStats(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	period, err := h.stats.UserTotal(c.Context(), userID, h.queryYear(c), queryMonth(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute stats",
		})
	}
	return c.JSON(period)
}

// MyBest returns the caller's all-time highlights.
func (h *Handler) MyBest(c *fiber.Ctx) error {
	best, err := h.stats.UserBestStats(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute stats",
		})
	}
	return c.JSON(best)
}

// MyMonthly returns the caller's zero-filled 12-month breakdown.
func (h *Handler) MyMonthly(c *fiber.Ctx) error {
	months, err := h.stats.UserMonthlyBreakdown(c.Context(), middleware.GetUserID(c), h.queryYear(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute breakdown",
		})
	}
	return c.JSON(months)
}

// MyRank returns the caller's leaderboard position for a year.
func (h *Handler) MyRank(c *fiber.Ctx) error {
	result, err := h.rank.Rank(c.Context(), middleware.GetUserID(c), h.queryYear(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute rank",
		})
	}
	return c.JSON(result)
}

// Top returns the global or group-scoped yearly leaderboard.
func (h *Handler) Top(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}

	runners, err := h.stats.TopRunners(c.Context(), h.queryYear(c), limit, c.Query("group_id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute leaderboard",
		})
	}
	return c.JSON(runners)
}

// GroupsSummary returns per-group totals for the year.
func (h *Handler) GroupsSummary(c *fiber.Ctx) error {
	groups, err := h.stats.AllGroupsSummary(c.Context(), h.queryYear(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute summary",
		})
	}
	return c.JSON(groups)
}

// GroupStats returns one group's totals for a year or month.
func (h *Handler) GroupStats(c *fiber.Ctx) error {
	gs, err := h.stats.GroupStats(c.Context(), c.Params("id"), h.queryYear(c), queryMonth(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute group stats",
		})
	}
	return c.JSON(gs)
}

// GroupMonthly returns one group's zero-filled 12-month breakdown.
func (h *Handler) GroupMonthly(c *fiber.Ctx) error {
	months, err := h.stats.GroupMonthlyBreakdown(c.Context(), c.Params("id"), h.queryYear(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute breakdown",
		})
	}
	return c.JSON(months)
}

// GroupStatsUntil returns a group's cumulative totals up to an inclusive
// date, for same-day-last-year comparisons. Month and day default to today.
func (h *Handler) GroupStatsUntil(c *fiber.Ctx) error {
	today := h.now()
	month, _ := strconv.Atoi(c.Query("month", strconv.Itoa(int(today.Month()))))
	day, _ := strconv.Atoi(c.Query("day", strconv.Itoa(today.Day())))
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid month or day",
		})
	}

	gs, err := h.stats.GroupStatsUntilDate(c.Context(), c.Params("id"), h.queryYear(c), month, day)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute group stats",
		})
	}
	return c.JSON(gs)
}
