// Package middleware provides HTTP middleware components for the
// application. Middleware functions wrap HTTP handlers to provide
// cross-cutting concerns like session-based access control, logging,
// metrics, and rate limiting.
//
// All middleware is designed to be composable with Chi router.
package middleware

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/iancarlosortega/gym-tracker/internal/models"
	"github.com/iancarlosortega/gym-tracker/internal/services"
	"github.com/iancarlosortega/gym-tracker/pkg/utils"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// SessionKey is the context key for the verified session claims.
// Set by AccessControl and RequireSession after cookie verification.
const SessionKey contextKey = "session"

// Route classes for page navigation. Matching is prefix-based except
// for the root path, which matches exactly.
var (
	// authRoutes are only for anonymous visitors; a logged-in user is
	// sent home.
	authRoutes = []string{"/login"}

	// protectedRoutes require a session; anonymous visitors are sent
	// to the login page with a redirect back.
	protectedRoutes = []string{"/profile", "/exercises", "/measurements", "/progress", "/workout", "/workouts"}

	// adminRoutes additionally require the ADMIN role; other roles are
	// sent home.
	adminRoutes = []string{"/dashboard"}
)

// staticAssetRe matches request paths for static files, which skip
// session processing entirely.
var staticAssetRe = regexp.MustCompile(`\.(html?|css|js|map|ico|png|jpe?g|gif|svg|webp|woff2?|ttf|txt|csv|docx?|xlsx?|zip|webmanifest)$`)

// AccessControl enforces session-based access for page routes.
//
// For every request it reads the session cookie, verifies it, and on
// success re-issues the cookie with a fresh expiration (sliding
// window) and stores the claims in the request context. An invalid or
// tampered cookie is treated exactly like an absent one.
//
// Route handling:
//   - Static assets pass through untouched.
//   - Auth routes (login page) redirect authenticated users to "/".
//   - Protected routes redirect anonymous users to "/login" with the
//     original path and query preserved in a redirect parameter.
//   - Admin routes additionally redirect non-admin users to "/".
//   - Anything else passes through, with claims in context if present.
//
// An inactive user's session is cleared and the request proceeds as
// anonymous.
//
// Usage:
//
//	r.Use(middleware.AccessControl(sessions))
func AccessControl(sessions *services.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if staticAssetRe.MatchString(path) {
				next.ServeHTTP(w, r)
				return
			}

			claims, ok := sessions.Read(r)
			if ok && !claims.IsActive {
				log.Warn().Str("user_id", claims.UserID.String()).Msg("Inactive user session rejected")
				sessions.Delete(w)
				claims, ok = nil, false
			}
			if ok {
				sessions.Refresh(w, claims)
				r = r.WithContext(context.WithValue(r.Context(), SessionKey, claims))
			}

			switch {
			case matchesRoute(path, authRoutes):
				if ok {
					http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
					return
				}
			case matchesRoute(path, adminRoutes):
				if !ok {
					redirectToLogin(w, r)
					return
				}
				if claims.Role != models.RoleAdmin {
					http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
					return
				}
			case path == "/" || matchesRoute(path, protectedRoutes):
				if !ok {
					redirectToLogin(w, r)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession enforces a valid session for API routes. Unlike page
// routes, an unauthenticated API request gets a 401 JSON response
// instead of a redirect. Valid sessions are refreshed in place.
//
// Usage:
//
//	r.Route("/api/v1", func(r chi.Router) {
//	    r.Use(middleware.RequireSession(sessions))
//	    ...
//	})
func RequireSession(sessions *services.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := sessions.Read(r)
			if !ok {
				utils.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !claims.IsActive {
				sessions.Delete(w)
				utils.RespondWithError(w, r, http.StatusUnauthorized, "Account is inactive")
				return
			}

			sessions.Refresh(w, claims)
			ctx := context.WithValue(r.Context(), SessionKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin enforces the ADMIN role on API routes. Must run after
// RequireSession.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetSession(r.Context())
			if !ok || claims.Role != models.RoleAdmin {
				utils.RespondWithError(w, r, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSession extracts the verified session claims from the request
// context. Returns false when the request is anonymous.
//
// Example:
//
//	claims, ok := middleware.GetSession(r.Context())
//	if !ok {
//	    utils.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
//	    return
//	}
func GetSession(ctx context.Context) (*services.SessionClaims, bool) {
	claims, ok := ctx.Value(SessionKey).(*services.SessionClaims)
	return claims, ok
}

func matchesRoute(path string, routes []string) bool {
	for _, route := range routes {
		if path == route || strings.HasPrefix(path, route+"/") {
			return true
		}
	}
	return false
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, "/login?redirect="+url.QueryEscape(target), http.StatusTemporaryRedirect)
}
