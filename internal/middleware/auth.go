package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/google/uuid"

	"cetracker/internal/db"
	"cetracker/internal/models"
)

// SessionUserKey is the session key holding the signed-in user's ID.
const SessionUserKey = "user_id"

// UserStore loads users for authenticated requests.
type UserStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthMiddleware handles user authentication via sessions.
type AuthMiddleware struct {
	users UserStore
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(users UserStore) *AuthMiddleware {
	return &AuthMiddleware{users: users}
}

// RequireAuth ensures the request carries a valid session and stores the
// user in c.Locals("user").
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return unauthorized(c)
	}

	raw, ok := sess.Get(SessionUserKey).(string)
	if !ok || raw == "" {
		return unauthorized(c)
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		sess.Destroy()
		return unauthorized(c)
	}

	user, err := m.users.GetUserByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			sess.Destroy()
			return unauthorized(c)
		}
		slog.Error("failed to load session user", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": "error",
			"error":  "Database error",
		})
	}

	c.Locals("user", user)
	return c.Next()
}

func unauthorized(c fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status": "error",
		"error":  "Not logged in",
	})
}
