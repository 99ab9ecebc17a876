package handler

import (
	"github.com/gofiber/fiber/v2"

	"quizzed/internal/http/middleware"
	"quizzed/internal/service"
)

type startQuizRequest struct {
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"questionCount"`
}

type submitAnswerRequest struct {
	QuizAttemptID string `json:"quizAttemptId"`
	QuestionID    string `json:"questionId"`
	SelectedIndex int    `json:"selectedIndex"`
	TimeSpent     int    `json:"timeSpent"`
}

type completeQuizRequest struct {
	QuizAttemptID string `json:"quizAttemptId"`
}

// ListTopics godoc
// @Summary  Topic catalog
// @Tags     quiz
// @Produce  json
// @Success  200 {object} map[string]any
// @Router   /api/quiz/topics [get]
func ListTopics(svc service.QuizService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		topics, err := svc.Topics(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":     true,
			"topics":      topics,
			"totalTopics": len(topics),
		})
	}
}

// StartQuiz godoc
// @Summary  Start a quiz on a topic
// @Tags     quiz
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    topicId path string true "topic slug"
// @Param    body body startQuizRequest false "options"
// @Success  200 {object} map[string]any
// @Failure  404 {object} errorPayload
// @Router   /api/quiz/start/{topicId} [post]
func StartQuiz(svc service.QuizService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req startQuizRequest
		if !parseBody(c, &req) {
			return invalidBody(c)
		}
		quiz, err := svc.Start(c.UserContext(), middleware.CurrentUser(c).ID, service.StartInput{
			TopicID:       c.Params("topicId"),
			Difficulty:    req.Difficulty,
			QuestionCount: req.QuestionCount,
			DeviceInfo:    c.Get(fiber.HeaderUserAgent),
			IPAddress:     c.IP(),
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "quiz": quiz})
	}
}

// SubmitAnswer godoc
// @Summary  Answer one question of an in-progress quiz
// @Tags     quiz
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body submitAnswerRequest true "answer"
// @Success  200 {object} map[string]any
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /api/quiz/submit-answer [post]
func SubmitAnswer(svc service.QuizService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req submitAnswerRequest
		if !parseBody(c, &req) {
			return invalidBody(c)
		}
		res, err := svc.SubmitAnswer(c.UserContext(), middleware.CurrentUser(c).ID, service.AnswerInput{
			AttemptID:     req.QuizAttemptID,
			QuestionID:    req.QuestionID,
			SelectedIndex: req.SelectedIndex,
			TimeSpent:     req.TimeSpent,
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":       true,
			"isCorrect":     res.IsCorrect,
			"correctAnswer": res.CorrectAnswer,
			"explanation":   res.Explanation,
			"questionAnalytics": fiber.Map{
				"successRate": res.SuccessRate,
			},
		})
	}
}

func CompleteQuiz(svc service.QuizService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req completeQuizRequest
		if !parseBody(c, &req) {
			return invalidBody(c)
		}
		res, err := svc.Complete(c.UserContext(), middleware.CurrentUser(c).ID, req.QuizAttemptID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":   true,
			"results":   res.Results,
			"userStats": res.UserStats,
		})
	}
}

// QuizHistory lists completed quizzes, newest first.
// Query: page (default 1), limit (default 10), topicId.
func QuizHistory(svc service.QuizService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := c.QueryInt("page", 1)
		limit := c.QueryInt("limit", 10)
		res, err := svc.History(c.UserContext(), middleware.CurrentUser(c).ID, c.Query("topicId"), page, limit)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":    true,
			"quizzes":    res.Quizzes,
			"pagination": res.Pagination,
		})
	}
}

func QuizRecommendations(svc service.QuizService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Recommendations(c.UserContext(), middleware.CurrentUser(c).ID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":          true,
			"recommendations":  res.Recommendations,
			"topicPerformance": res.TopicPerformance,
		})
	}
}
