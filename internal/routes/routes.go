package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/runclub/runlog-api/internal/config"
	"github.com/runclub/runlog-api/internal/handlers"
	"github.com/runclub/runlog-api/internal/middleware"
)

func Setup(app *fiber.App, cfg *config.Config, h *handlers.Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/token", h.IssueToken)

	protected := api.Group("/", middleware.Protected(cfg.JWTSecret))

	protected.Get("/me", h.GetMe)
	protected.Put("/users/me", h.UpdateProfile)

	runs := protected.Group("/runs")
	runs.Post("/", h.SubmitRun)
	runs.Get("/recent", h.RecentRuns)
	runs.Delete("/:id", h.DeleteRun)

	stats := protected.Group("/stats")
	stats.Get("/me", h.MyStats)
	stats.Get("/me/best", h.MyBest)
	stats.Get("/me/monthly", h.MyMonthly)
	stats.Get("/me/rank", h.MyRank)
	stats.Get("/top", h.Top)
	stats.Get("/groups", h.GroupsSummary)

	goals := protected.Group("/goals")
	goals.Put("/personal", h.SetPersonalGoal)
	goals.Get("/personal", h.GetPersonalGoal)
	goals.Delete("/personal", h.ClearPersonalGoals)

	groups := protected.Group("/groups")
	groups.Get("/:id/stats", h.GroupStats)
	groups.Get("/:id/stats/until", h.GroupStatsUntil)
	groups.Get("/:id/monthly", h.GroupMonthly)
	groups.Put("/:id/goal", h.SetGroupGoal)
	groups.Get("/:id/goal", h.GetGroupGoal)

	admin := protected.Group("/admin", middleware.AdminOnly(cfg.IsAdmin))
	admin.Delete("/runs", h.DeleteRunsByRange)
}
