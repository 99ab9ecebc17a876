package middleware

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"quizzed/internal/auth"
	"quizzed/internal/model"
	"quizzed/internal/service"
)

type fakeAuthenticator map[string]error

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (*model.User, error) {
	if err, ok := f[token]; ok && err != nil {
		return nil, err
	}
	role := model.RoleStudent
	if token == "admin" {
		role = model.RoleAdmin
	}
	return &model.User{ID: "u-" + token, Role: role}, nil
}

func newAuthApp(a Authenticator) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).SendString(fe.Message)
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	who := func(c *fiber.Ctx) error {
		if u := CurrentUser(c); u != nil {
			return c.SendString(u.ID)
		}
		return c.SendString("anonymous")
	}
	app.Get("/private", RequireAuth(a), who)
	app.Get("/optional", OptionalAuth(a), who)
	app.Get("/admin", RequireAuth(a), RequireRole(model.RoleTeacher, model.RoleAdmin), who)
	return app
}

func do(t *testing.T, app *fiber.App, path, authz string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestRequireAuth(t *testing.T) {
	app := newAuthApp(fakeAuthenticator{
		"expired": auth.ErrExpiredToken,
		"bad":     auth.ErrInvalidToken,
		"gone":    service.ErrUserGone,
		"broken":  errors.New("db down"),
	})

	tests := []struct {
		name       string
		authz      string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", 401, "Access denied. No valid token provided."},
		{"wrong scheme", "Basic abc", 401, "Access denied. No valid token provided."},
		{"expired", "Bearer expired", 401, "Token has expired. Please login again."},
		{"invalid", "Bearer bad", 401, "Invalid token."},
		{"deleted user", "Bearer gone", 401, "Token is valid but user no longer exists."},
		{"lookup failure", "Bearer broken", 500, "Server error during authentication."},
		{"valid", "Bearer ok", 200, "u-ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, "/private", tt.authz)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	app := newAuthApp(fakeAuthenticator{"bad": auth.ErrInvalidToken})

	_, body := do(t, app, "/optional", "")
	assert.Equal(t, "anonymous", body)

	_, body = do(t, app, "/optional", "Bearer bad")
	assert.Equal(t, "anonymous", body)

	_, body = do(t, app, "/optional", "Bearer ok")
	assert.Equal(t, "u-ok", body)
}

func TestRequireRole(t *testing.T) {
	app := newAuthApp(fakeAuthenticator{})

	status, body := do(t, app, "/admin", "Bearer student")
	assert.Equal(t, 403, status)
	assert.Equal(t, "Access denied. Admin privileges required.", body)

	status, body = do(t, app, "/admin", "Bearer admin")
	assert.Equal(t, 200, status)
	assert.Equal(t, "u-admin", body)
}
