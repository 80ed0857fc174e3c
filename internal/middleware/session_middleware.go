package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie names the cookie that carries the session token.
const SessionCookie = "warbler_session"

const userKey = "user"

// SessionResolver turns a session token into the user it belongs to.
// services.AuthService satisfies it.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*models.User, error)
}

// SessionToken extracts the session token from the cookie or, failing that,
// an "Authorization: Bearer <token>" header.
func SessionToken(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookie); token != "" {
		return token
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// LoadSession resolves an optional session into the request. A missing or
// dead token leaves the request anonymous.
func LoadSession(sessions SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := SessionToken(c)
		if token == "" {
			return c.Next()
		}

		user, err := sessions.ResolveSession(c.UserContext(), token)
		if err != nil {
			if !errors.Is(err, models.ErrAuthMismatch) {
				slog.Error("failed to resolve session", "error", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Could not resolve session",
				})
			}
			slog.Debug("ignoring dead session", "error", err)
			return c.Next()
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// AuthRequired rejects anonymous requests. It must run after LoadSession.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Access unauthorized",
				"error":   models.ErrAuthMismatch.Error(),
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the session user, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
