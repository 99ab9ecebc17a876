package handler

import (
	"github.com/gofiber/fiber/v2"

	"quizzed/internal/http/middleware"
	"quizzed/internal/service"
)

type explanationRequest struct {
	QuestionID string `json:"questionId"`
	UserAnswer *int   `json:"userAnswer"`
	IsCorrect  bool   `json:"isCorrect"`
	TimeSpent  int    `json:"timeSpent"`
}

type hintRequest struct {
	QuestionID     string `json:"questionId"`
	CurrentAttempt int    `json:"currentAttempt"`
}

type studyPlanRequest struct {
	Topics        []string `json:"topics"`
	TimeAvailable float64  `json:"timeAvailable"`
	Goals         []string `json:"goals"`
}

// Explanation godoc
// @Summary  Personalized explanation of an answer
// @Tags     ai
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body explanationRequest true "answer"
// @Success  200 {object} map[string]any
// @Failure  404 {object} errorPayload
// @Router   /api/ai/explanation [post]
func Explanation(svc service.TutorService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req explanationRequest
		if !parseBody(c, &req) {
			return invalidBody(c)
		}
		res, err := svc.Explain(c.UserContext(), middleware.CurrentUser(c).ID, service.ExplanationInput{
			QuestionID: req.QuestionID,
			UserAnswer: req.UserAnswer,
			IsCorrect:  req.IsCorrect,
			TimeSpent:  req.TimeSpent,
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":     true,
			"explanation": res.Text,
			"metadata":    res.Metadata,
		})
	}
}

func Hint(svc service.TutorService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req hintRequest
		if !parseBody(c, &req) {
			return invalidBody(c)
		}
		h, err := svc.Hint(c.UserContext(), req.QuestionID, req.CurrentAttempt)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":   true,
			"hint":      h.Hint,
			"hintLevel": h.HintLevel,
			"maxHints":  h.MaxHints,
		})
	}
}

func StudyPlan(svc service.TutorService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req studyPlanRequest
		if !parseBody(c, &req) {
			return invalidBody(c)
		}
		res, err := svc.StudyPlan(c.UserContext(), middleware.CurrentUser(c).ID, service.StudyPlanInput{
			Topics:        req.Topics,
			TimeAvailable: req.TimeAvailable,
			Goals:         req.Goals,
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":         true,
			"studyPlan":       res.StudyPlan,
			"learningProfile": res.LearningProfile,
		})
	}
}

// QuestionSuggestions picks practice questions for ?topicId, ?count (default 5).
func QuestionSuggestions(svc service.TutorService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.QuestionSuggestions(c.UserContext(), middleware.CurrentUser(c).ID, c.Query("topicId"), c.QueryInt("count", 5))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":           true,
			"suggestions":       res.Suggestions,
			"targetedWeakAreas": res.TargetedWeakAreas,
		})
	}
}
