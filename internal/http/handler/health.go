package handler

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"quizzed/internal/database"
)

// APIVersion is reported by /api/test.
const APIVersion = "1.0.0"

// HealthInfo is static process information reported by /api/health.
type HealthInfo struct {
	Environment  string
	AIConfigured bool
	StartedAt    time.Time
}

// APITest godoc
// @Summary  API smoke test
// @Tags     platform
// @Produce  json
// @Success  200 {object} map[string]any
// @Router   /api/test [get]
func APITest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":   "Quizzed API is working!",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   APIVersion,
		})
	}
}

// HealthCheck godoc
// @Summary  Health check
// @Tags     platform
// @Produce  json
// @Success  200 {object} map[string]any
// @Failure  503 {object} map[string]any
// @Router   /api/health [get]
func HealthCheck(db *sql.DB, info HealthInfo) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, dbState, code := "OK", "Connected", fiber.StatusOK
		if err := database.Ping(c.UserContext(), db); err != nil {
			status, dbState, code = "ERROR", "Disconnected", fiber.StatusServiceUnavailable
		}

		ai := "Not configured"
		if info.AIConfigured {
			ai = "Configured"
		}

		return c.Status(code).JSON(fiber.Map{
			"status":      status,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"database":    dbState,
			"uptime":      time.Since(info.StartedAt).Seconds(),
			"environment": info.Environment,
			"ai":          ai,
		})
	}
}

// LivenessProbe answers 200 as long as the process serves requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// APINotFound answers unknown /api routes.
func APINotFound() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(errorPayload{
			RequestID: requestID(c),
			Error:     errorEnvelope{Code: "NOT_FOUND", Message: "API endpoint not found"},
			Path:      c.Path(),
		})
	}
}

// SPAFallback serves index.html from dir for any non-API path so client-side
// routing works. Without a frontend directory it behaves like APINotFound.
func SPAFallback(dir string) fiber.Handler {
	index := filepath.Join(dir, "index.html")
	return func(c *fiber.Ctx) error {
		if dir == "" || strings.HasPrefix(c.Path(), "/api/") {
			return APINotFound()(c)
		}
		if _, err := os.Stat(index); err != nil {
			return APINotFound()(c)
		}
		return c.SendFile(index)
	}
}
