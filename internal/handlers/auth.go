// Package handlers provides HTTP request handlers for the application
// endpoints. Handlers coordinate between the HTTP layer and the
// service layer, handling request parsing, validation, and response
// formatting.
//
// This package includes handlers for:
//   - The Google OAuth login flow (start, callback, logout)
//   - The exercise library
//   - Workout logging
//   - Body measurements
//   - The current user's profile
//   - Health checks and readiness probes
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iancarlosortega/gym-tracker/internal/middleware"
	"github.com/iancarlosortega/gym-tracker/internal/models"
	"github.com/iancarlosortega/gym-tracker/internal/services"
	"github.com/iancarlosortega/gym-tracker/pkg/utils"
)

// Cookie names for the in-flight login attempt. Both are short-lived
// and cleared on callback.
const (
	stateCookie    = "oauth_state"
	verifierCookie = "oauth_verifier"
)

// loginAttemptTTL bounds how long a consent screen visit stays valid.
const loginAttemptTTL = 600 // seconds

// providerTimeout bounds the code exchange plus userinfo fetch.
const providerTimeout = 10 * time.Second

// OAuthFlow defines the OAuth operations the auth handler needs.
// Abstracts the Google client for testing and dependency injection.
type OAuthFlow interface {
	BeginAuth() (authURL, state, verifier string)
	CompleteAuth(ctx context.Context, code, state, storedState, verifier string) (*services.GoogleUser, error)
}

// Resolver defines the identity resolution operation.
type Resolver interface {
	Resolve(ctx context.Context, profile *services.GoogleUser) (*models.User, error)
}

// AuthHandler handles the login and logout endpoints. It coordinates
// the OAuth client, identity resolution, and the session store:
// start a login attempt, complete it on callback, issue the session
// cookie, and clear it on logout.
type AuthHandler struct {
	oauth        OAuthFlow
	resolver     Resolver
	sessions     *services.SessionStore
	isProduction bool // Affects the Secure flag on login cookies
}

// NewAuthHandler creates a new authentication handler.
//
// Example:
//
//	authHandler := handlers.NewAuthHandler(oauthClient, resolver, sessions, cfg.Server.IsProduction())
//	r.Get("/login/start", authHandler.LoginStart)
//	r.Get("/login/callback", authHandler.LoginCallback)
//	r.Get("/logout", authHandler.Logout)
func NewAuthHandler(oauth OAuthFlow, resolver Resolver, sessions *services.SessionStore, isProduction bool) *AuthHandler {
	return &AuthHandler{
		oauth:        oauth,
		resolver:     resolver,
		sessions:     sessions,
		isProduction: isProduction,
	}
}

// LoginStart begins a Google login attempt.
//
// Flow:
//  1. Generate a random state (CSRF protection) and PKCE verifier
//  2. Store both in short-lived HttpOnly cookies (10 minutes)
//  3. Redirect to Google's consent screen
//
// Each visit generates fresh values, so an abandoned attempt can
// simply be restarted.
func (h *AuthHandler) LoginStart(w http.ResponseWriter, r *http.Request) {
	authURL, state, verifier := h.oauth.BeginAuth()

	utils.SetShortLivedCookie(w, stateCookie, state, loginAttemptTTL, h.isProduction)
	utils.SetShortLivedCookie(w, verifierCookie, verifier, loginAttemptTTL, h.isProduction)

	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// LoginCallback completes the login attempt after Google redirects
// back.
//
// Flow:
//  1. Read the state and verifier cookies, then clear them; the
//     attempt is single-use whatever the outcome
//  2. Validate the callback and exchange the code (PKCE)
//  3. Resolve the Google profile to a local user
//  4. Issue the session cookie and redirect home
//
// Error mapping:
//   - Local validation failures (missing code, state mismatch): 400
//   - Provider rejected the code: 400
//   - Provider unreachable or database failure: 500
func (h *AuthHandler) LoginCallback(w http.ResponseWriter, r *http.Request) {
	storedState := readCookie(r, stateCookie)
	verifier := readCookie(r, verifierCookie)
	utils.ClearCookies(w, stateCookie, verifierCookie)

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	ctx, cancel := context.WithTimeout(r.Context(), providerTimeout)
	defer cancel()

	profile, err := h.oauth.CompleteAuth(ctx, code, state, storedState, verifier)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRequest):
			log.Warn().Err(err).Msg("Invalid OAuth callback")
			middleware.IncrementAuthAttempts("invalid_state")
			utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid authorization request")
		case errors.Is(err, services.ErrProviderRejected):
			middleware.IncrementAuthAttempts("provider_rejected")
			utils.RespondWithError(w, r, http.StatusBadRequest, "Authorization was rejected")
		default:
			log.Error().Err(err).Msg("OAuth callback failed")
			middleware.IncrementAuthAttempts("upstream_error")
			utils.RespondWithError(w, r, http.StatusInternalServerError, "Authentication failed")
		}
		return
	}

	user, err := h.resolver.Resolve(r.Context(), profile)
	if err != nil {
		log.Error().Err(err).Str("google_id", profile.Sub).Msg("Identity resolution failed")
		middleware.IncrementAuthAttempts("resolution_failed")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Authentication failed")
		return
	}

	if err := h.sessions.Create(w, user); err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to create session")
		middleware.IncrementAuthAttempts("session_failed")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Authentication failed")
		return
	}

	middleware.IncrementAuthAttempts("success")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout clears the session cookie and redirects to the login page.
// Idempotent: logging out without a session is not an error.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := h.sessions.Read(r); ok {
		log.Info().Str("user_id", claims.UserID.String()).Msg("User logged out")
	}
	h.sessions.Delete(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func readCookie(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
