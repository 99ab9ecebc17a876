package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"quizzed/docs"
	"quizzed/internal/auth"
	"quizzed/internal/config"
	"quizzed/internal/database"
	"quizzed/internal/database/migration"
	handlers "quizzed/internal/http/handler"
	"quizzed/internal/http/middleware"
	"quizzed/internal/jobs"
	"quizzed/internal/llm"
	"quizzed/internal/logger"
	"quizzed/internal/metrics"
	"quizzed/internal/otel"
	"quizzed/internal/repository/postgres"
	"quizzed/internal/service"
	"quizzed/internal/storage"
)

// @title Quizzed API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	started := time.Now()

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	// Avatar uploads are optional; without MinIO the avatar endpoints answer 503.
	var store storage.Storage
	if cfg.MinIO.Enabled() {
		store, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			log.Fatal("failed to initialize object storage", zap.Error(err))
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	domainMetrics, err := metrics.NewDomain(reg)
	if err != nil {
		log.Fatal("failed to register metrics", zap.Error(err))
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal("failed to register http metrics", zap.Error(err))
	}

	if cfg.Auth.JWTSecret == config.DefaultJWTSecret {
		log.Warn("JWT_SECRET not set, using the insecure default")
	}
	if !cfg.AI.Enabled() {
		log.Warn("OPENAI_API_KEY not set, AI features will use fallbacks")
	}

	// Initialize repositories and services
	users := postgres.NewUserPostgres(db)
	questions := postgres.NewQuestionPostgres(db)
	attempts := postgres.NewAttemptPostgres(db)

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.JWTTTLHours)*time.Hour)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	quizSvc := service.NewQuizService(users, questions, attempts, postgres.NewTransactor(db), domainMetrics)
	svcs := handlers.Services{
		DB:        db,
		Auth:      service.NewAuthService(users, tokens, hasher, store),
		Quiz:      quizSvc,
		Dashboard: service.NewDashboardService(users, attempts),
		Tutor:     service.NewTutorService(users, questions, attempts, llm.NewClient(cfg.AI), domainMetrics, log),
		Questions: service.NewQuestionService(questions),
	}

	sweeper, err := jobs.NewSweeper(quizSvc, cfg.Jobs.AbandonSweepSpec, time.Duration(cfg.Jobs.AbandonGraceMin)*time.Minute, log)
	if err != nil {
		log.Fatal("failed to configure sweeper", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    10 * 1024 * 1024,
	})

	// Register global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.CORSOrigins, ","),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		AllowCredentials: true,
	}))
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(httpMetrics.Handler())

	handlers.RegisterRoutes(app, svcs, handlers.Options{
		Health: handlers.HealthInfo{
			Environment:  cfg.Env,
			AIConfigured: cfg.AI.Enabled(),
			StartedAt:    started,
		},
		FrontendDir: cfg.FrontendDir,
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterFallback(app, cfg.FrontendDir)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("server_starting", zap.String("addr", addr), zap.String("environment", cfg.Env))
		serveErr <- app.Listen(addr)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("server stopped", zap.Error(err))
		}
		stop()
	case <-ctx.Done():
		log.Info("shutdown_started")
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	wg.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Error("tracer shutdown failed", zap.Error(err))
	}
	log.Info("shutdown_complete")
}
