package handler

import (
	"github.com/gofiber/fiber/v2"

	"quizzed/internal/http/middleware"
	"quizzed/internal/model"
	"quizzed/internal/repository"
	"quizzed/internal/service"
)

type questionStatusRequest struct {
	Status string `json:"status"`
}

// CreateQuestion godoc
// @Summary  Add a question to the bank
// @Tags     questions
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body model.Question true "question"
// @Success  201 {object} map[string]any
// @Failure  400 {object} errorPayload
// @Failure  403 {object} errorPayload
// @Router   /api/questions [post]
func CreateQuestion(svc service.QuestionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q model.Question
		if !parseBody(c, &q) {
			return invalidBody(c)
		}
		created, err := svc.Create(c.UserContext(), middleware.CurrentUser(c).ID, q)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "question": created})
	}
}

// ListQuestions filters by ?topic, ?difficulty, ?status with ?page and ?limit.
func ListQuestions(svc service.QuestionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := repository.QuestionFilter{
			Topic:      c.Query("topic"),
			Difficulty: c.Query("difficulty"),
			Status:     c.Query("status"),
		}
		res, err := svc.List(c.UserContext(), f, c.QueryInt("page", 1), c.QueryInt("limit", 20))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":    true,
			"questions":  res.Questions,
			"pagination": res.Pagination,
		})
	}
}

func UpdateQuestionStatus(svc service.QuestionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req questionStatusRequest
		if !parseBody(c, &req) {
			return invalidBody(c)
		}
		if err := svc.UpdateStatus(c.UserContext(), c.Params("id"), req.Status); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "message": "Question status updated"})
	}
}
