package handler

import (
	"github.com/gofiber/fiber/v2"

	"quizzed/internal/http/middleware"
	"quizzed/internal/model"
	"quizzed/internal/service"
)

type goalsRequest struct {
	Goals []model.Goal `json:"goals"`
}

// DashboardOverview godoc
// @Summary  Dashboard home
// @Tags     dashboard
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} map[string]any
// @Router   /api/dashboard [get]
func DashboardOverview(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := svc.Overview(c.UserContext(), middleware.CurrentUser(c).ID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "data": data})
	}
}

// DashboardAnalytics reports on ?timeframe=7d|30d|90d (default 30d).
func DashboardAnalytics(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Analytics(c.UserContext(), middleware.CurrentUser(c).ID, c.Query("timeframe"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":    true,
			"analytics":  res.Analytics,
			"timeframe":  res.Timeframe,
			"dataPoints": res.DataPoints,
		})
	}
}

func DashboardLeaderboard(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Leaderboard(c.UserContext(), middleware.CurrentUser(c).ID, c.Query("topicId"), c.Query("timeframe"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":           true,
			"leaderboard":       res.Entries,
			"userRank":          res.UserRank,
			"totalParticipants": res.TotalParticipants,
			"timeframe":         res.Timeframe,
		})
	}
}

func ListGoals(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		goals, err := svc.Goals(c.UserContext(), middleware.CurrentUser(c).ID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "goals": goals})
	}
}

// SetGoals replaces the caller's learning goals.
func SetGoals(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req goalsRequest
		if !parseBody(c, &req) {
			return invalidBody(c)
		}
		goals, err := svc.SetGoals(c.UserContext(), middleware.CurrentUser(c).ID, req.Goals)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Goals updated successfully",
			"goals":   goals,
		})
	}
}
