package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"golang.org/x/oauth2"

	"cetracker/internal/config"
	"cetracker/internal/middleware"
	"cetracker/internal/models"
)

// SSOStore persists users that sign in through an identity provider.
type SSOStore interface {
	UpsertUserBySub(ctx context.Context, user *models.User) error
}

// OIDCHandler handles single sign-on through an OIDC provider.
type OIDCHandler struct {
	provider     *oidc.Provider
	oauth2Config oauth2.Config
	verifier     *oidc.IDTokenVerifier
	store        SSOStore
	cfg          *config.Config
}

// NewOIDCHandler discovers the provider and builds the OAuth2 configuration.
func NewOIDCHandler(ctx context.Context, cfg *config.Config, store SSOStore) (*OIDCHandler, error) {
	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, err
	}

	oauth2Config := oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return &OIDCHandler{
		provider:     provider,
		oauth2Config: oauth2Config,
		verifier:     provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID}),
		store:        store,
		cfg:          cfg,
	}, nil
}

// Login redirects to the provider's authorization endpoint.
func (h *OIDCHandler) Login(c fiber.Ctx) error {
	state, err := generateState()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to start login")
	}

	sess := session.FromContext(c)
	if sess == nil {
		return jsonError(c, fiber.StatusInternalServerError, "Session not available")
	}
	sess.Set("oauth_state", state)

	return c.Redirect().To(h.oauth2Config.AuthCodeURL(state))
}

// Callback completes the code exchange, upserts the user and starts a session.
func (h *OIDCHandler) Callback(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return jsonError(c, fiber.StatusInternalServerError, "Session not available")
	}

	savedState, _ := sess.Get("oauth_state").(string)
	if savedState == "" || savedState != c.Query("state") {
		return jsonError(c, fiber.StatusBadRequest, "Invalid state")
	}
	sess.Delete("oauth_state")

	oauth2Token, err := h.oauth2Config.Exchange(c.Context(), c.Query("code"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Failed to exchange code")
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "Missing id_token")
	}

	idToken, err := h.verifier.Verify(c.Context(), rawIDToken)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid id_token")
	}

	var claims struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid claims")
	}

	// Some providers only put the subject in the ID token.
	if claims.Name == "" || claims.Email == "" {
		userInfo, err := h.provider.UserInfo(c.Context(), oauth2.StaticTokenSource(oauth2Token))
		if err != nil {
			log.Printf("Warning: Failed to fetch userinfo: %v", err)
		} else {
			var extra struct {
				Email string `json:"email"`
				Name  string `json:"name"`
			}
			if err := userInfo.Claims(&extra); err == nil {
				if claims.Name == "" {
					claims.Name = extra.Name
				}
				if claims.Email == "" {
					claims.Email = extra.Email
				}
			}
		}
	}

	if h.cfg.IsDev() {
		log.Printf("OIDC login: sub=%s email=%s", claims.Sub, claims.Email)
	}

	user := &models.User{
		Sub:      claims.Sub,
		Email:    claims.Email,
		FullName: claims.Name,
	}
	if err := h.store.UpsertUserBySub(c.Context(), user); err != nil {
		log.Printf("Error upserting SSO user: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Database error")
	}

	if err := sess.Regenerate(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Session not available")
	}
	sess.Set(middleware.SessionUserKey, user.ID.String())

	return c.Redirect().To(h.cfg.FrontendURL)
}

func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
