package handlers

import (
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"

	"cetracker/internal/models"
	"cetracker/internal/recommend"
)

// RecommendationHandler serves course recommendations.
type RecommendationHandler struct {
	states      StateStore
	recommender *recommend.Recommender
}

// NewRecommendationHandler creates a new recommendation handler.
func NewRecommendationHandler(states StateStore, recommender *recommend.Recommender) *RecommendationHandler {
	return &RecommendationHandler{states: states, recommender: recommender}
}

type recommendationRequest struct {
	Interests string `json:"interests"`
}

// Recommend returns four courses for the user's stated interests. It only
// fails on authentication or storage errors; enrichment problems fall back
// to the curated list.
func (h *RecommendationHandler) Recommend(c fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "Not logged in")
	}

	var body recommendationRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}

	states, err := h.states.GetUserStates(c.Context(), user.ID)
	if err != nil {
		slog.Error("failed to load user states", "user_id", user.ID, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Database error")
	}

	recs := h.recommender.Recommend(c.Context(), recommend.Request{
		RequesterName:    user.DisplayName(),
		HoursOutstanding: models.TotalOutstanding(states),
		RawInterests:     body.Interests,
	})

	return c.JSON(fiber.Map{
		"recommendations": recs,
	})
}
