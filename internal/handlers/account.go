package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"golang.org/x/crypto/bcrypt"

	"cetracker/internal/db"
	"cetracker/internal/middleware"
	"cetracker/internal/models"
	"cetracker/internal/validation"
)

// AccountStore persists local accounts.
type AccountStore interface {
	CreateUser(ctx context.Context, user *models.User, states []models.UserState) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AccountHandler handles registration and password login.
type AccountHandler struct {
	store     AccountStore
	cost      int
	dummyHash []byte
}

// NewAccountHandler creates a new account handler. cost is the bcrypt cost;
// zero means bcrypt.DefaultCost.
func NewAccountHandler(store AccountStore, cost int) *AccountHandler {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	// Compared against when the username is unknown, so both failure paths
	// take the same time.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	return &AccountHandler{store: store, cost: cost, dummyHash: dummy}
}

type hourRequirement struct {
	Completed int    `json:"completed" validate:"gte=0"`
	Due       string `json:"due" validate:"required,datetime=2006-01-02"`
}

type registerRequest struct {
	Username string                     `json:"username" validate:"required,min=3,max=64,username"`
	Password string                     `json:"password" validate:"required,min=8,max=72"`
	FullName string                     `json:"fullname" validate:"required,max=200"`
	States   map[string]hourRequirement `json:"states" validate:"required,min=1,dive,keys,statecode,endkeys,required"`
}

// Register creates a local account linked to the user's licensing states.
func (h *AccountHandler) Register(c fiber.Ctx) error {
	var body registerRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if ok, msg := validation.Struct(body); !ok {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	states := make([]models.UserState, 0, len(body.States))
	for code, req := range body.States {
		due, err := time.Parse(time.DateOnly, req.Due)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "due must be a date in YYYY-MM-DD format")
		}
		states = append(states, models.UserState{
			StateCode:     validation.NormalizeStateCode(code),
			HoursComplete: req.Completed,
			RenewalDate:   &due,
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), h.cost)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to create user")
	}

	user := &models.User{
		Username:     body.Username,
		PasswordHash: string(hash),
		FullName:     body.FullName,
	}
	if err := h.store.CreateUser(c.Context(), user, states); err != nil {
		switch {
		case errors.Is(err, db.ErrUsernameTaken):
			return jsonError(c, fiber.StatusConflict, "Username already exists")
		case errors.Is(err, db.ErrUnknownState):
			return jsonError(c, fiber.StatusBadRequest, "Unknown state code")
		default:
			slog.Error("failed to create user", "username", body.Username, "error", err)
			return jsonError(c, fiber.StatusInternalServerError, "Failed to create user")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user_id": user.ID,
	})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login verifies a password and starts a session.
func (h *AccountHandler) Login(c fiber.Ctx) error {
	var body loginRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if ok, _ := validation.Struct(body); !ok {
		return jsonError(c, fiber.StatusForbidden, "Login failed")
	}

	user, err := h.store.GetUserByUsername(c.Context(), body.Username)
	if err != nil && !errors.Is(err, db.ErrUserNotFound) {
		slog.Error("failed to load user for login", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Database error")
	}

	hash := h.dummyHash
	if user != nil && user.HasPassword() {
		hash = []byte(user.PasswordHash)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(body.Password)) != nil || user == nil || !user.HasPassword() {
		return jsonError(c, fiber.StatusForbidden, "Login failed")
	}

	sess := session.FromContext(c)
	if sess == nil {
		return jsonError(c, fiber.StatusInternalServerError, "Session not available")
	}
	// New session ID on privilege change.
	if err := sess.Regenerate(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Session not available")
	}
	sess.Set(middleware.SessionUserKey, user.ID.String())

	return c.JSON(fiber.Map{
		"token": sess.ID(),
	})
}

// Logout ends the current session.
func (h *AccountHandler) Logout(c fiber.Ctx) error {
	if sess := session.FromContext(c); sess != nil {
		if err := sess.Destroy(); err != nil {
			slog.Error("failed to destroy session", "error", err)
		}
	}
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
