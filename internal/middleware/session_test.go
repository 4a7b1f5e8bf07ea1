package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iancarlosortega/gym-tracker/internal/models"
	"github.com/iancarlosortega/gym-tracker/internal/services"
	"github.com/iancarlosortega/gym-tracker/internal/testutil"
)

func setupSessions(t *testing.T) *services.SessionStore {
	t.Helper()
	cfg := testutil.TestSessionConfig()
	return services.NewSessionStore(services.NewTokenCodec(cfg), cfg, false)
}

func loginAs(t *testing.T, sessions *services.SessionStore, role models.Role, active bool) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, sessions.Create(rec, &models.User{
		ID:       uuid.New(),
		Role:     role,
		IsActive: active,
	}))
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessions.CookieName() {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

// okHandler records whether the request made it through the middleware
// and what session claims it carried.
func okHandler(reached *bool, claims **services.SessionClaims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*reached = true
		if c, ok := GetSession(r.Context()); ok {
			*claims = c
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAccessControlRouteMatrix(t *testing.T) {
	sessions := setupSessions(t)

	tests := []struct {
		name         string
		path         string
		cookie       *http.Cookie
		wantStatus   int
		wantLocation string
		wantReached  bool
	}{
		{
			name:        "anonymous on login page passes",
			path:        "/login",
			wantStatus:  http.StatusOK,
			wantReached: true,
		},
		{
			name:         "authenticated on login page goes home",
			path:         "/login",
			cookie:       loginAs(t, sessions, models.RoleUser, true),
			wantStatus:   http.StatusTemporaryRedirect,
			wantLocation: "/",
		},
		{
			name:         "anonymous on protected page goes to login",
			path:         "/workouts",
			wantStatus:   http.StatusTemporaryRedirect,
			wantLocation: "/login?redirect=%2Fworkouts",
		},
		{
			name:         "anonymous on root goes to login",
			path:         "/",
			wantStatus:   http.StatusTemporaryRedirect,
			wantLocation: "/login?redirect=%2F",
		},
		{
			name:        "authenticated on protected page passes",
			path:        "/workouts",
			cookie:      loginAs(t, sessions, models.RoleUser, true),
			wantStatus:  http.StatusOK,
			wantReached: true,
		},
		{
			name:        "protected subpath matches by prefix",
			path:        "/workouts/" + uuid.NewString(),
			cookie:      loginAs(t, sessions, models.RoleUser, true),
			wantStatus:  http.StatusOK,
			wantReached: true,
		},
		{
			name:         "anonymous on admin page goes to login",
			path:         "/dashboard",
			wantStatus:   http.StatusTemporaryRedirect,
			wantLocation: "/login?redirect=%2Fdashboard",
		},
		{
			name:         "regular user on admin page goes home",
			path:         "/dashboard",
			cookie:       loginAs(t, sessions, models.RoleUser, true),
			wantStatus:   http.StatusTemporaryRedirect,
			wantLocation: "/",
		},
		{
			name:        "admin on admin page passes",
			path:        "/dashboard",
			cookie:      loginAs(t, sessions, models.RoleAdmin, true),
			wantStatus:  http.StatusOK,
			wantReached: true,
		},
		{
			name:        "static asset passes without a session",
			path:        "/assets/app.css",
			wantStatus:  http.StatusOK,
			wantReached: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reached bool
			var claims *services.SessionClaims
			handler := AccessControl(sessions)(okHandler(&reached, &claims))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantReached, reached)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			}
		})
	}
}

func TestAccessControlStaticAssetsSkipAuth(t *testing.T) {
	sessions := setupSessions(t)

	// Anonymous requests for file-like paths pass through even under
	// protected prefixes.
	paths := []string{
		"/workouts/report.html",
		"/progress/export.csv",
		"/measurements/history.xlsx",
		"/profile/card.docx",
		"/workouts/backup.zip",
		"/app.webmanifest",
		"/favicon.ico",
		"/fonts/inter.woff2",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			var reached bool
			var claims *services.SessionClaims
			handler := AccessControl(sessions)(okHandler(&reached, &claims))

			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.True(t, reached)
		})
	}

	// A protected page path without a file extension still redirects.
	var reached bool
	var claims *services.SessionClaims
	handler := AccessControl(sessions)(okHandler(&reached, &claims))
	req := httptest.NewRequest(http.MethodGet, "/workouts/report", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.False(t, reached)
}

func TestAccessControlPreservesQueryInRedirect(t *testing.T) {
	sessions := setupSessions(t)
	var reached bool
	var claims *services.SessionClaims
	handler := AccessControl(sessions)(okHandler(&reached, &claims))

	req := httptest.NewRequest(http.MethodGet, "/exercises?type=strength", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/login?redirect=%2Fexercises%3Ftype%3Dstrength", rec.Header().Get("Location"))
}

func TestAccessControlRefreshesSession(t *testing.T) {
	sessions := setupSessions(t)
	cookie := loginAs(t, sessions, models.RoleUser, true)

	var reached bool
	var claims *services.SessionClaims
	handler := AccessControl(sessions)(okHandler(&reached, &claims))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.True(t, reached)
	require.NotNil(t, claims, "claims should be in the request context")

	var refreshed *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessions.CookieName() {
			refreshed = c
		}
	}
	require.NotNil(t, refreshed, "a fresh session cookie should be issued")
	assert.NotEmpty(t, refreshed.Value)
}

func TestAccessControlInactiveUserTreatedAsAnonymous(t *testing.T) {
	sessions := setupSessions(t)
	cookie := loginAs(t, sessions, models.RoleUser, false)

	var reached bool
	var claims *services.SessionClaims
	handler := AccessControl(sessions)(okHandler(&reached, &claims))

	req := httptest.NewRequest(http.MethodGet, "/workouts", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.False(t, reached)

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessions.CookieName() {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestAccessControlTamperedCookieTreatedAsAnonymous(t *testing.T) {
	sessions := setupSessions(t)

	var reached bool
	var claims *services.SessionClaims
	handler := AccessControl(sessions)(okHandler(&reached, &claims))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: sessions.CookieName(), Value: "tampered"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.False(t, reached)
}

func TestRequireSession(t *testing.T) {
	sessions := setupSessions(t)

	t.Run("missing session gets 401", func(t *testing.T) {
		var reached bool
		var claims *services.SessionClaims
		handler := RequireSession(sessions)(okHandler(&reached, &claims))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, reached)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	})

	t.Run("inactive user gets 401 and cookie cleared", func(t *testing.T) {
		var reached bool
		var claims *services.SessionClaims
		handler := RequireSession(sessions)(okHandler(&reached, &claims))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.AddCookie(loginAs(t, sessions, models.RoleUser, false))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, reached)
	})

	t.Run("valid session passes with claims in context", func(t *testing.T) {
		var reached bool
		var claims *services.SessionClaims
		handler := RequireSession(sessions)(okHandler(&reached, &claims))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.AddCookie(loginAs(t, sessions, models.RoleUser, true))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, reached)
		require.NotNil(t, claims)
		assert.Equal(t, models.RoleUser, claims.Role)
	})
}

func TestRequireAdmin(t *testing.T) {
	sessions := setupSessions(t)

	t.Run("regular user gets 403", func(t *testing.T) {
		var reached bool
		var claims *services.SessionClaims
		handler := RequireSession(sessions)(RequireAdmin()(okHandler(&reached, &claims)))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
		req.AddCookie(loginAs(t, sessions, models.RoleUser, true))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, reached)
	})

	t.Run("admin passes", func(t *testing.T) {
		var reached bool
		var claims *services.SessionClaims
		handler := RequireSession(sessions)(RequireAdmin()(okHandler(&reached, &claims)))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
		req.AddCookie(loginAs(t, sessions, models.RoleAdmin, true))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, reached)
	})
}

func TestMatchesRoute(t *testing.T) {
	routes := []string{"/workouts", "/profile"}

	assert.True(t, matchesRoute("/workouts", routes))
	assert.True(t, matchesRoute("/workouts/abc", routes))
	assert.False(t, matchesRoute("/workoutsabc", routes))
	assert.False(t, matchesRoute("/", routes))
}
