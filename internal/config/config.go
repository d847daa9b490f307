package config

import (
	"math"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string

	// Database
	DatabaseURL string

	// TLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string
	TLSCAFile   string // Client CA for mTLS

	// CORS: the single frontend origin allowed to send credentialed requests.
	FrontendURL string

	// Session
	SessionSecret string // Used for cookie encryption (min 32 chars)
	RedisURL      string // Optional session storage; in-memory when empty

	// Rate limiting
	RateLimitMax int // Requests per minute per IP

	// OIDC single sign-on (optional)
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Gemini enrichment. An empty key is a valid configuration: every
	// recommendation is served from the fallback set.
	GeminiAPIKey          string
	GeminiModel           string
	GeminiBaseURL         string
	GeminiTimeout         time.Duration
	GeminiBreakerFailures uint32
	GeminiBreakerCooldown time.Duration

	// Path to the optional YAML requirements file
	ConfigFile string

	// SMTP settings for renewal reminders
	SMTPEnabled  bool
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // "none", "starttls", or "tls"

	// Renewal reminders
	ReminderInterval   time.Duration // How often to scan for upcoming renewals
	ReminderWindowDays int           // Remind this many days before a renewal date
	ReminderCooldown   time.Duration // Minimum gap between reminders for one state
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:              getEnv("ENV", "development"),
		ServerAddr:       getEnv("SERVER_ADDR", ":3000"),
		DatabaseURL:      getEnv("DATABASE_URL", "postgres://localhost:5432/cetracker?sslmode=disable"),
		TLSEnabled:       getEnv("TLS_ENABLED", "") != "",
		TLSCertFile:      getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:       getEnv("TLS_KEY_FILE", ""),
		TLSCAFile:        getEnv("TLS_CA_FILE", ""),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:5173"),
		SessionSecret:    getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		RedisURL:         getEnv("REDIS_URL", ""),
		RateLimitMax:     getEnvInt("RATE_LIMIT_MAX", 100),
		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/oidc/callback"),

		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:         getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiTimeout:         getEnvDuration("GEMINI_TIMEOUT", 8*time.Second),
		GeminiBreakerFailures: getEnvCount("GEMINI_BREAKER_FAILURES", 5),
		GeminiBreakerCooldown: getEnvDuration("GEMINI_BREAKER_COOLDOWN", 30*time.Second),

		ConfigFile: getEnv("CONFIG_FILE", "requirements.yaml"),

		SMTPEnabled:  getEnv("SMTP_ENABLED", "") == "true",
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "CE Tracker"),
		SMTPTLS:      getEnv("SMTP_TLS", "starttls"),

		ReminderInterval:   getEnvDuration("REMINDER_INTERVAL", 24*time.Hour),
		ReminderWindowDays: getEnvInt("REMINDER_WINDOW_DAYS", 60),
		ReminderCooldown:   getEnvDuration("REMINDER_COOLDOWN", 7*24*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// getEnvCount reads a count that must be at least 1 and fit in a uint32.
func getEnvCount(key string, fallback uint32) uint32 {
	n := getEnvInt(key, int(fallback))
	if n <= 0 || int64(n) > math.MaxUint32 {
		return fallback
	}
	return uint32(n)
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEnrichmentEnabled returns true if a Gemini credential is configured.
func (c *Config) IsEnrichmentEnabled() bool {
	return c.GeminiAPIKey != ""
}

// IsOIDCEnabled returns true if single sign-on is configured.
func (c *Config) IsOIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}

// IsEmailEnabled returns true if SMTP is configured for renewal reminders.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPEnabled && c.SMTPHost != "" && c.SMTPFrom != ""
}
