package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"quizzed/internal/http/middleware"
	"quizzed/internal/model"
	"quizzed/internal/service"
)

// Services groups everything the HTTP layer depends on.
type Services struct {
	DB        *sql.DB
	Auth      service.AuthService
	Quiz      service.QuizService
	Dashboard service.DashboardService
	Tutor     service.TutorService
	Questions service.QuestionService
}

// Options are process-level settings for the platform routes.
type Options struct {
	Health      HealthInfo
	FrontendDir string
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, s Services, opt Options) {
	requireAuth := middleware.RequireAuth(s.Auth)
	optionalAuth := middleware.OptionalAuth(s.Auth)

	api := app.Group("/api")
	api.Get("/test", APITest())
	api.Get("/health", HealthCheck(s.DB, opt.Health))
	api.Get("/topics", optionalAuth, ListTopics(s.Quiz))

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", Signup(s.Auth))
	authGroup.Post("/login", Login(s.Auth))
	authGroup.Post("/verify", requireAuth, Verify())
	authGroup.Put("/profile", requireAuth, UpdateProfile(s.Auth))
	authGroup.Post("/change-password", requireAuth, ChangePassword(s.Auth))
	authGroup.Post("/avatar", requireAuth, UploadAvatar(s.Auth))
	authGroup.Get("/avatar/:userId", GetAvatar(s.Auth))

	quiz := api.Group("/quiz")
	quiz.Get("/topics", optionalAuth, ListTopics(s.Quiz))
	quiz.Post("/start/:topicId", requireAuth, StartQuiz(s.Quiz))
	quiz.Post("/submit-answer", requireAuth, SubmitAnswer(s.Quiz))
	quiz.Post("/complete", requireAuth, CompleteQuiz(s.Quiz))
	quiz.Get("/history", requireAuth, QuizHistory(s.Quiz))
	quiz.Get("/recommendations", requireAuth, QuizRecommendations(s.Quiz))

	dash := api.Group("/dashboard", requireAuth)
	dash.Get("/", DashboardOverview(s.Dashboard))
	dash.Get("/analytics", DashboardAnalytics(s.Dashboard))
	dash.Get("/leaderboard", DashboardLeaderboard(s.Dashboard))
	dash.Get("/goals", ListGoals(s.Dashboard))
	dash.Post("/goals", SetGoals(s.Dashboard))

	ai := api.Group("/ai", requireAuth)
	ai.Post("/explanation", Explanation(s.Tutor))
	ai.Post("/hint", Hint(s.Tutor))
	ai.Post("/study-plan", StudyPlan(s.Tutor))
	ai.Get("/question-suggestions", QuestionSuggestions(s.Tutor))

	questions := api.Group("/questions", requireAuth, middleware.RequireRole(model.RoleTeacher, model.RoleAdmin))
	questions.Post("/", CreateQuestion(s.Questions))
	questions.Get("/", ListQuestions(s.Questions))
	questions.Patch("/:id/status", UpdateQuestionStatus(s.Questions))

	app.Get("/healthz", LivenessProbe())

	api.Use(APINotFound())
	if opt.FrontendDir != "" {
		app.Static("/", opt.FrontendDir)
	}
}

// RegisterFallback must run after every other route, including /metrics and /swagger.
func RegisterFallback(app *fiber.App, frontendDir string) {
	app.Use(SPAFallback(frontendDir))
}
