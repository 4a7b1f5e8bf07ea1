package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iancarlosortega/gym-tracker/internal/models"
	"github.com/iancarlosortega/gym-tracker/internal/services"
	"github.com/iancarlosortega/gym-tracker/internal/testutil"
)

// MockOAuthFlow is a mock implementation of OAuthFlow.
type MockOAuthFlow struct {
	mock.Mock
}

func (m *MockOAuthFlow) BeginAuth() (string, string, string) {
	args := m.Called()
	return args.String(0), args.String(1), args.String(2)
}

func (m *MockOAuthFlow) CompleteAuth(ctx context.Context, code, state, storedState, verifier string) (*services.GoogleUser, error) {
	args := m.Called(ctx, code, state, storedState, verifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.GoogleUser), args.Error(1)
}

// MockResolver is a mock implementation of Resolver.
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, profile *services.GoogleUser) (*models.User, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func setupAuthHandler(t *testing.T) (*AuthHandler, *MockOAuthFlow, *MockResolver, *services.SessionStore) {
	t.Helper()

	cfg := testutil.TestSessionConfig()
	sessions := services.NewSessionStore(services.NewTokenCodec(cfg), cfg, false)

	oauth := new(MockOAuthFlow)
	resolver := new(MockResolver)
	handler := NewAuthHandler(oauth, resolver, sessions, false)
	return handler, oauth, resolver, sessions
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginStart(t *testing.T) {
	handler, oauth, _, _ := setupAuthHandler(t)

	oauth.On("BeginAuth").Return("https://accounts.google.com/consent?state=abc", "state-abc", "verifier-xyz")

	req := httptest.NewRequest(http.MethodGet, "/login/start", nil)
	rec := httptest.NewRecorder()
	handler.LoginStart(rec, req)

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "https://accounts.google.com/consent?state=abc", rec.Header().Get("Location"))

	state := responseCookie(rec, "oauth_state")
	require.NotNil(t, state)
	assert.Equal(t, "state-abc", state.Value)
	assert.True(t, state.HttpOnly)
	assert.Equal(t, 600, state.MaxAge)

	verifier := responseCookie(rec, "oauth_verifier")
	require.NotNil(t, verifier)
	assert.Equal(t, "verifier-xyz", verifier.Value)
	assert.True(t, verifier.HttpOnly)

	oauth.AssertExpectations(t)
}

func TestLoginCallbackSuccess(t *testing.T) {
	handler, oauth, resolver, sessions := setupAuthHandler(t)

	profile := testutil.TestGoogleUser()
	user := testutil.TestUser()

	oauth.On("CompleteAuth", mock.Anything, "auth-code", "state-abc", "state-abc", "verifier-xyz").
		Return(profile, nil)
	resolver.On("Resolve", mock.Anything, profile).Return(user, nil)

	req := httptest.NewRequest(http.MethodGet, "/login/callback?code=auth-code&state=state-abc", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-abc"})
	req.AddCookie(&http.Cookie{Name: "oauth_verifier", Value: "verifier-xyz"})
	rec := httptest.NewRecorder()
	handler.LoginCallback(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	session := responseCookie(rec, sessions.CookieName())
	require.NotNil(t, session, "a session cookie should be issued")
	claims, ok := services.NewTokenCodec(testutil.TestSessionConfig()).Decode(session.Value)
	require.True(t, ok)
	assert.Equal(t, user.ID, claims.UserID)

	// The attempt cookies are single-use and get cleared
	state := responseCookie(rec, "oauth_state")
	require.NotNil(t, state)
	assert.Empty(t, state.Value)
	assert.Equal(t, -1, state.MaxAge)

	oauth.AssertExpectations(t)
	resolver.AssertExpectations(t)
}

func TestLoginCallbackInvalidRequest(t *testing.T) {
	handler, oauth, resolver, sessions := setupAuthHandler(t)

	oauth.On("CompleteAuth", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, services.ErrInvalidRequest)

	req := httptest.NewRequest(http.MethodGet, "/login/callback?code=auth-code&state=wrong", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-abc"})
	req.AddCookie(&http.Cookie{Name: "oauth_verifier", Value: "verifier-xyz"})
	rec := httptest.NewRecorder()
	handler.LoginCallback(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, responseCookie(rec, sessions.CookieName()), "no session on failure")
	resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestLoginCallbackProviderRejected(t *testing.T) {
	handler, oauth, _, _ := setupAuthHandler(t)

	oauth.On("CompleteAuth", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, services.ErrProviderRejected)

	req := httptest.NewRequest(http.MethodGet, "/login/callback?code=used-code&state=state-abc", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-abc"})
	req.AddCookie(&http.Cookie{Name: "oauth_verifier", Value: "verifier-xyz"})
	rec := httptest.NewRecorder()
	handler.LoginCallback(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginCallbackUpstreamFailure(t *testing.T) {
	handler, oauth, _, _ := setupAuthHandler(t)

	oauth.On("CompleteAuth", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, services.ErrUpstream)

	req := httptest.NewRequest(http.MethodGet, "/login/callback?code=auth-code&state=state-abc", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-abc"})
	req.AddCookie(&http.Cookie{Name: "oauth_verifier", Value: "verifier-xyz"})
	rec := httptest.NewRecorder()
	handler.LoginCallback(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLoginCallbackResolutionFailure(t *testing.T) {
	handler, oauth, resolver, sessions := setupAuthHandler(t)

	profile := &services.GoogleUser{Sub: "google-sub-123"}
	oauth.On("CompleteAuth", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(profile, nil)
	resolver.On("Resolve", mock.Anything, profile).Return(nil, assert.AnError)

	req := httptest.NewRequest(http.MethodGet, "/login/callback?code=auth-code&state=state-abc", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-abc"})
	req.AddCookie(&http.Cookie{Name: "oauth_verifier", Value: "verifier-xyz"})
	rec := httptest.NewRecorder()
	handler.LoginCallback(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Nil(t, responseCookie(rec, sessions.CookieName()))
}

func TestLoginCallbackMissingCookies(t *testing.T) {
	handler, oauth, _, _ := setupAuthHandler(t)

	// With no cookies the flow passes empty stored values through
	oauth.On("CompleteAuth", mock.Anything, "auth-code", "state-abc", "", "").
		Return(nil, services.ErrInvalidRequest)

	req := httptest.NewRequest(http.MethodGet, "/login/callback?code=auth-code&state=state-abc", nil)
	rec := httptest.NewRecorder()
	handler.LoginCallback(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	oauth.AssertExpectations(t)
}

func TestLogout(t *testing.T) {
	handler, _, _, sessions := setupAuthHandler(t)

	createRec := httptest.NewRecorder()
	require.NoError(t, sessions.Create(createRec, &models.User{ID: uuid.New(), Role: models.RoleUser, IsActive: true}))
	cookie := responseCookie(createRec, sessions.CookieName())
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.Logout(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	cleared := responseCookie(rec, sessions.CookieName())
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestLogoutWithoutSession(t *testing.T) {
	handler, _, _, _ := setupAuthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	rec := httptest.NewRecorder()
	handler.Logout(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}
