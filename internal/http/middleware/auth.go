package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"quizzed/internal/auth"
	"quizzed/internal/model"
	"quizzed/internal/service"
)

// UserLocalKey is where the authenticated user is stored in Fiber locals.
const UserLocalKey = "user"

const (
	msgNoToken     = "Access denied. No valid token provided."
	msgBadToken    = "Invalid token."
	msgExpired     = "Token has expired. Please login again."
	msgAuthFailed  = "Server error during authentication."
	msgNotAllowed  = "Access denied. Admin privileges required."
	msgAuthMissing = "Authentication required."
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// RequireAuth rejects requests without a valid bearer token with 401.
func RequireAuth(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, msgNoToken)
		}

		u, err := a.Authenticate(c.UserContext(), token)
		switch {
		case err == nil:
		case errors.Is(err, auth.ErrExpiredToken):
			return fiber.NewError(fiber.StatusUnauthorized, msgExpired)
		case errors.Is(err, auth.ErrInvalidToken):
			return fiber.NewError(fiber.StatusUnauthorized, msgBadToken)
		case errors.Is(err, service.ErrUserGone):
			return fiber.NewError(fiber.StatusUnauthorized, service.ErrUserGone.Error())
		default:
			c.Locals(ErrorLocalKey, err)
			return fiber.NewError(fiber.StatusInternalServerError, msgAuthFailed)
		}

		c.Locals(UserLocalKey, u)
		return c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and never fails.
func OptionalAuth(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if u, err := a.Authenticate(c.UserContext(), token); err == nil {
				c.Locals(UserLocalKey, u)
			}
		}
		return c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil {
			return fiber.NewError(fiber.StatusUnauthorized, msgAuthMissing)
		}
		for _, r := range roles {
			if u.Role == r {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, msgNotAllowed)
	}
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(UserLocalKey).(*model.User)
	return u
}
