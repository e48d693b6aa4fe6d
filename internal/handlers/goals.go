package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/runclub/runlog-api/internal/challenge"
	"github.com/runclub/runlog-api/internal/forecast"
	"github.com/runclub/runlog-api/internal/middleware"
	"github.com/runclub/runlog-api/internal/models"
)

// GoalView is the full picture the gateway renders for one challenge:
// the row itself, derived state, live progress and the linear projection.
type GoalView struct {
	Challenge    models.Challenge    `json:"challenge"`
	State        challenge.State     `json:"state"`
	Progress     models.GoalProgress `json:"progress"`
	Participants int64               `json:"participants"`
	Projection   forecast.Projection `json:"projection"`
}

// SetPersonalGoal creates or retargets the caller's yearly challenge.
func (h *Handler) SetPersonalGoal(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.SetGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Year <= 0 {
		req.Year = h.now().Year()
	}
	if req.TargetKm < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Target must not be negative",
		})
	}

	if _, err := h.users.Ensure(c.Context(), userID, middleware.GetUsername(c)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to resolve user",
		})
	}

	goal, err := h.challenges.SetPersonalGoal(c.Context(), userID, req.Year, req.TargetKm)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to set goal",
		})
	}
	return c.JSON(goal)
}

// GetPersonalGoal returns the caller's challenge for a year with progress
// and projection attached. Absence is 404 with a "no goal" body, which the
// gateway treats as a normal state.
func (h *Handler) GetPersonalGoal(c *fiber.Ctx) error {
	goal, err := h.challenges.PersonalGoal(c.Context(), middleware.GetUserID(c), h.queryYear(c))
	if err != nil {
		if errors.Is(err, challenge.ErrGoalNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No goal configured for this year",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load goal",
		})
	}
	return h.renderGoal(c, goal)
}

// SetGroupGoal creates or retargets a group's yearly challenge. Raw
// supergroup ids are accepted.
func (h *Handler) SetGroupGoal(c *fiber.Ctx) error {
	var req models.SetGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Year <= 0 {
		req.Year = h.now().Year()
	}
	if req.TargetKm < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Target must not be negative",
		})
	}

	goal, err := h.challenges.SetGroupGoal(c.Context(), c.Params("id"), req.Year, req.TargetKm, false)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to set goal",
		})
	}
	return c.JSON(goal)
}

// GetGroupGoal returns a group's challenge for a year with progress,
// participant count and projection attached.
func (h *Handler) GetGroupGoal(c *fiber.Ctx) error {
	goal, err := h.challenges.GroupGoal(c.Context(), c.Params("id"), h.queryYear(c))
	if err != nil {
		if errors.Is(err, challenge.ErrGoalNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No goal configured for this year",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load goal",
		})
	}
	return h.renderGoal(c, goal)
}

// ClearPersonalGoals removes every personal challenge of the caller.
func (h *Handler) ClearPersonalGoals(c *fiber.Ctx) error {
	removed, err := h.challenges.ClearPersonalGoals(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to clear goals",
		})
	}
	return c.JSON(fiber.Map{"removed": removed})
}

func (h *Handler) renderGoal(c *fiber.Ctx, goal models.Challenge) error {
	progress, err := h.challenges.GoalProgress(c.Context(), goal)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute progress",
		})
	}
	participants, err := h.challenges.ParticipantCount(c.Context(), goal)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute participants",
		})
	}

	return c.JSON(GoalView{
		Challenge:    goal,
		State:        challenge.ChallengeState(goal, h.now()),
		Progress:     progress,
		Participants: participants,
		Projection:   forecast.Project(goal.TargetKm, progress.CoveredKm, goal.StartDate, goal.EndDate, h.now()),
	})
}
