package server

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cetracker/internal/db"
	"cetracker/internal/handlers"
	"cetracker/internal/middleware"
	"cetracker/internal/recommend"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, database *db.DB, recommender *recommend.Recommender) error {
	authMiddleware := middleware.NewAuthMiddleware(database)

	probeHandler := handlers.NewProbeHandler(database)
	accountHandler := handlers.NewAccountHandler(database, 0)
	userHandler := handlers.NewUserHandler(database)
	recommendationHandler := handlers.NewRecommendationHandler(database, recommender)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Local accounts
	s.App.Post("/register", accountHandler.Register)
	s.App.Post("/login", accountHandler.Login)
	s.App.Post("/logout", accountHandler.Logout)

	// Single sign-on is optional; local accounts always work.
	if s.Cfg.IsOIDCEnabled() {
		oidcHandler, err := handlers.NewOIDCHandler(ctx, s.Cfg, database)
		if err != nil {
			return err
		}
		s.App.Get("/auth/oidc/login", oidcHandler.Login)
		s.App.Get("/auth/oidc/callback", oidcHandler.Callback)
		log.Printf("OIDC sign-on enabled (issuer %s)", s.Cfg.OIDCIssuer)
	}

	// Authenticated API
	s.App.Get("/user/details", authMiddleware.RequireAuth, userHandler.Details)
	s.App.Post("/user/hours", authMiddleware.RequireAuth, userHandler.UpdateHours)
	s.App.Post("/recommendations", authMiddleware.RequireAuth, recommendationHandler.Recommend)

	if !recommender.Enabled() {
		log.Println("GEMINI_API_KEY not set; recommendations use the curated fallback list")
	}

	return nil
}
