package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/iancarlosortega/gym-tracker/pkg/config"
)

// mockProvider stands in for Google's token and userinfo endpoints so
// the exchange path can be exercised without the real provider.
type mockProvider struct {
	tokenCalls atomic.Int64

	tokenStatus  int
	tokenError   string
	userinfoBody map[string]any
}

func newMockProvider(t *testing.T) (*mockProvider, *httptest.Server) {
	t.Helper()

	provider := &mockProvider{
		tokenStatus: http.StatusOK,
		userinfoBody: map[string]any{
			"sub":            "google-sub-123",
			"name":           "Jane Lifter",
			"given_name":     "Jane",
			"picture":        "https://lh3.googleusercontent.com/photo.jpg",
			"email":          "jane@example.com",
			"email_verified": true,
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		provider.tokenCalls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		assert.NotEmpty(t, r.FormValue("code_verifier"), "exchange should carry the PKCE verifier")

		w.Header().Set("Content-Type", "application/json")
		if provider.tokenStatus != http.StatusOK {
			w.WriteHeader(provider.tokenStatus)
			json.NewEncoder(w).Encode(map[string]string{"error": provider.tokenError})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "mock-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer mock-access-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(provider.userinfoBody)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return provider, server
}

func newTestOAuthClient(server *httptest.Server) *OAuthClient {
	return &OAuthClient{
		config: &oauth2.Config{
			ClientID:     "test-client-id",
			ClientSecret: "test-client-secret",
			RedirectURL:  "http://localhost:8080/login/callback",
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   server.URL + "/auth",
				TokenURL:  server.URL + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: server.URL + "/userinfo",
	}
}

func TestBeginAuth(t *testing.T) {
	_, server := newMockProvider(t)
	client := newTestOAuthClient(server)

	authURL, state, verifier := client.BeginAuth()
	require.NotEmpty(t, state)
	require.NotEmpty(t, verifier)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	query := parsed.Query()
	assert.Equal(t, state, query.Get("state"))
	assert.Equal(t, "test-client-id", query.Get("client_id"))
	assert.Equal(t, "S256", query.Get("code_challenge_method"))
	assert.NotEmpty(t, query.Get("code_challenge"))
	assert.NotEqual(t, verifier, query.Get("code_challenge"), "challenge must be derived, not the raw verifier")
}

func TestBeginAuthUniquePerAttempt(t *testing.T) {
	_, server := newMockProvider(t)
	client := newTestOAuthClient(server)

	_, state1, verifier1 := client.BeginAuth()
	_, state2, verifier2 := client.BeginAuth()
	assert.NotEqual(t, state1, state2)
	assert.NotEqual(t, verifier1, verifier2)
}

func TestCompleteAuthSuccess(t *testing.T) {
	_, server := newMockProvider(t)
	client := newTestOAuthClient(server)

	profile, err := client.CompleteAuth(context.Background(), "auth-code", "state-1", "state-1", "verifier-1")
	require.NoError(t, err)
	assert.Equal(t, "google-sub-123", profile.Sub)
	assert.Equal(t, "jane@example.com", profile.Email)
	assert.True(t, profile.EmailVerified)
	assert.Equal(t, "Jane Lifter", profile.Name)
}

func TestCompleteAuthValidatesBeforeNetwork(t *testing.T) {
	provider, server := newMockProvider(t)
	client := newTestOAuthClient(server)
	ctx := context.Background()

	tests := []struct {
		name        string
		code        string
		state       string
		storedState string
		verifier    string
	}{
		{"missing code", "", "state-1", "state-1", "verifier-1"},
		{"missing state", "auth-code", "", "state-1", "verifier-1"},
		{"missing stored state", "auth-code", "state-1", "", "verifier-1"},
		{"state mismatch", "auth-code", "state-1", "state-2", "verifier-1"},
		{"missing verifier", "auth-code", "state-1", "state-1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CompleteAuth(ctx, tt.code, tt.state, tt.storedState, tt.verifier)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}

	assert.Equal(t, int64(0), provider.tokenCalls.Load(), "invalid callbacks must not reach the provider")
}

func TestCompleteAuthProviderRejection(t *testing.T) {
	provider, server := newMockProvider(t)
	provider.tokenStatus = http.StatusBadRequest
	provider.tokenError = "invalid_grant"
	client := newTestOAuthClient(server)

	_, err := client.CompleteAuth(context.Background(), "expired-code", "state-1", "state-1", "verifier-1")
	assert.ErrorIs(t, err, ErrProviderRejected)
	assert.Equal(t, int64(1), provider.tokenCalls.Load())
}

func TestCompleteAuthUpstreamFailure(t *testing.T) {
	_, server := newMockProvider(t)
	client := newTestOAuthClient(server)
	server.Close()

	_, err := client.CompleteAuth(context.Background(), "auth-code", "state-1", "state-1", "verifier-1")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestCompleteAuthRejectsUserinfoWithoutSubject(t *testing.T) {
	provider, server := newMockProvider(t)
	provider.userinfoBody = map[string]any{"email": "jane@example.com"}
	client := newTestOAuthClient(server)

	_, err := client.CompleteAuth(context.Background(), "auth-code", "state-1", "state-1", "verifier-1")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestGenerateState(t *testing.T) {
	state := GenerateState()
	assert.NotEmpty(t, state)
	assert.NotEqual(t, state, GenerateState())
}

func TestNewOAuthClientDefaults(t *testing.T) {
	client := NewOAuthClient(&config.OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/login/callback",
		UserInfoURL:  "https://openidconnect.googleapis.com/v1/userinfo",
	})

	assert.Equal(t, "client-id", client.config.ClientID)
	assert.Contains(t, client.config.Scopes, "openid")
	assert.Contains(t, client.config.Scopes, "email")
}
