package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cetracker/internal/config"
	"cetracker/internal/db"
	"cetracker/internal/email"
	"cetracker/internal/gemini"
	"cetracker/internal/jobs"
	"cetracker/internal/metrics"
	"cetracker/internal/recommend"
	"cetracker/internal/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	// Optional per-state requirement overrides
	reqs, err := config.LoadRequirements(cfg.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load requirements file %s: %v", cfg.ConfigFile, err)
	}
	if reqs != nil {
		if err := database.ApplyStateRequirements(ctx, reqs.Hours()); err != nil {
			log.Fatalf("Failed to apply state requirements: %v", err)
		}
		log.Printf("Applied %d state requirement overrides from %s", len(reqs.States), cfg.ConfigFile)
	}

	metrics.Init(database)

	// A nil enricher keeps every request on the fallback list.
	var recommender *recommend.Recommender
	if cfg.IsEnrichmentEnabled() {
		recommender = recommend.New(gemini.NewClient(gemini.Config{
			APIKey:          cfg.GeminiAPIKey,
			Model:           cfg.GeminiModel,
			BaseURL:         cfg.GeminiBaseURL,
			Timeout:         cfg.GeminiTimeout,
			BreakerFailures: cfg.GeminiBreakerFailures,
			BreakerCooldown: cfg.GeminiBreakerCooldown,
		}))
		log.Printf("Course enrichment enabled (model: %s)", cfg.GeminiModel)
	} else {
		recommender = recommend.New(nil)
	}

	// Renewal reminders
	mailer := email.NewService(cfg)
	if mailer.IsEnabled() {
		reminder := jobs.NewRenewalReminder(
			database,
			mailer,
			email.NewTemplates(cfg),
			cfg.ReminderInterval,
			cfg.ReminderWindowDays,
			cfg.ReminderCooldown,
		)
		go reminder.Start(ctx)
	}

	srv := server.New(cfg)
	if err := srv.RegisterRoutes(ctx, database, recommender); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
