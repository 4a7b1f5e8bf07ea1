// Package services provides business logic and application services.
// Services coordinate between handlers, middleware, and the database
// layer, implementing the Google OAuth login flow, session token
// lifecycle, and identity resolution.
package services

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/iancarlosortega/gym-tracker/internal/models"
	"github.com/iancarlosortega/gym-tracker/pkg/config"
	"github.com/iancarlosortega/gym-tracker/pkg/utils"
)

// SessionStore binds the token codec to the session cookie. It owns
// everything about how a session travels with a request: cookie name,
// flags, and the sliding expiration window.
//
// Sessions are stateless: the cookie itself is the session record, so
// there is no server-side lookup and logout is purely client-side
// cookie removal.
type SessionStore struct {
	codec        *TokenCodec
	cookieName   string
	isProduction bool // Controls the Secure cookie flag
}

// NewSessionStore creates a session store from the session and server
// configuration.
func NewSessionStore(codec *TokenCodec, cfg *config.SessionConfig, isProduction bool) *SessionStore {
	return &SessionStore{
		codec:        codec,
		cookieName:   cfg.CookieName,
		isProduction: isProduction,
	}
}

// CookieName returns the name of the session cookie.
func (s *SessionStore) CookieName() string {
	return s.cookieName
}

// Create issues a fresh session for the user and writes it as an
// HttpOnly cookie on the response.
//
// Example:
//
//	if err := sessions.Create(w, user); err != nil {
//	    utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create session")
//	    return
//	}
func (s *SessionStore) Create(w http.ResponseWriter, user *models.User) error {
	token, expiresAt, err := s.codec.Encode(user.ID, user.Role, user.IsActive)
	if err != nil {
		return err
	}

	utils.SetSessionCookie(w, s.cookieName, token, expiresAt, s.isProduction)

	log.Info().
		Str("user_id", user.ID.String()).
		Time("expires_at", expiresAt).
		Msg("Session created")

	return nil
}

// Read extracts and verifies the session from the request cookie.
// A missing cookie and an invalid token both report ok == false; the
// two cases are indistinguishable to callers on purpose.
func (s *SessionStore) Read(r *http.Request) (*SessionClaims, bool) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	return s.codec.Decode(cookie.Value)
}

// Refresh re-issues the session cookie with a new expiration based on
// the current time, implementing the sliding window: as long as the
// user stays active, the session never expires.
//
// Refresh failures are logged and swallowed; the existing cookie
// remains valid until its original expiry.
func (s *SessionStore) Refresh(w http.ResponseWriter, claims *SessionClaims) {
	token, expiresAt, err := s.codec.Encode(claims.UserID, claims.Role, claims.IsActive)
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID.String()).Msg("Failed to refresh session")
		return
	}
	utils.SetSessionCookie(w, s.cookieName, token, expiresAt, s.isProduction)
}

// Delete clears the session cookie. Idempotent: deleting an absent
// session is not an error.
func (s *SessionStore) Delete(w http.ResponseWriter) {
	utils.ClearCookie(w, s.cookieName)
}
