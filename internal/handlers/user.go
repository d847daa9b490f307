package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"cetracker/internal/db"
	"cetracker/internal/models"
	"cetracker/internal/validation"
)

// StateStore reads and updates a user's per-state progress.
type StateStore interface {
	GetUserStates(ctx context.Context, userID uuid.UUID) ([]models.UserState, error)
	UpdateHours(ctx context.Context, userID uuid.UUID, stateCode string, hours int) (int, error)
}

// UserHandler serves the signed-in user's CE progress.
type UserHandler struct {
	states StateStore
}

// NewUserHandler creates a new user handler.
func NewUserHandler(states StateStore) *UserHandler {
	return &UserHandler{states: states}
}

type stateDetail struct {
	models.UserState
	Outstanding int `json:"outstanding"`
}

type userDetails struct {
	FullName         string        `json:"fullname"`
	Username         string        `json:"username,omitempty"`
	Email            string        `json:"email,omitempty"`
	States           []stateDetail `json:"states"`
	HoursOutstanding int           `json:"hours_outstanding"`
}

// Details returns the user's profile and progress in every linked state.
func (h *UserHandler) Details(c fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "Not logged in")
	}

	states, err := h.states.GetUserStates(c.Context(), user.ID)
	if err != nil {
		slog.Error("failed to load user states", "user_id", user.ID, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Database error")
	}

	details := userDetails{
		FullName:         user.FullName,
		Username:         user.Username,
		Email:            user.Email,
		States:           make([]stateDetail, 0, len(states)),
		HoursOutstanding: models.TotalOutstanding(states),
	}
	for _, s := range states {
		details.States = append(details.States, stateDetail{UserState: s, Outstanding: s.Outstanding()})
	}

	return c.JSON(details)
}

type updateHoursRequest struct {
	StateCode string `json:"state_code" validate:"required,statecode"`
	// StateID is the older name for state_code; state_code wins when both are sent.
	StateID string `json:"state_id"`
	Hours   int    `json:"hours" validate:"gte=0"`
}

// UpdateHours sets the completed hours for one of the user's states.
func (h *UserHandler) UpdateHours(c fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "Not logged in")
	}

	var body updateHoursRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if body.StateCode == "" {
		body.StateCode = body.StateID
	}
	if ok, msg := validation.Struct(body); !ok {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	code := validation.NormalizeStateCode(body.StateCode)
	updated, err := h.states.UpdateHours(c.Context(), user.ID, code, body.Hours)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrUnknownState):
			return jsonError(c, fiber.StatusNotFound, "State code not found")
		case errors.Is(err, db.ErrUserStateNotFound):
			return jsonError(c, fiber.StatusNotFound, "State not found for user")
		default:
			slog.Error("failed to update hours", "user_id", user.ID, "state", code, "error", err)
			return jsonError(c, fiber.StatusInternalServerError, "Database error")
		}
	}

	return c.JSON(fiber.Map{
		"state_code":     code,
		"hours_complete": updated,
	})
}
