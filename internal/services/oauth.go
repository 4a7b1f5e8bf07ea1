package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/iancarlosortega/gym-tracker/pkg/config"
)

// Sentinel errors classifying OAuth callback failures. Handlers map
// these to HTTP status codes: invalid request and provider rejection
// are client errors, everything else is an upstream failure.
var (
	// ErrInvalidRequest marks a callback that fails local validation:
	// missing code, missing or mismatched state, or a lost verifier
	// cookie. No network call is made for these.
	ErrInvalidRequest = errors.New("invalid authorization request")

	// ErrProviderRejected marks a code exchange the provider refused,
	// for example an expired or already-used authorization code.
	ErrProviderRejected = errors.New("provider rejected authorization")

	// ErrUpstream marks network failures and malformed provider
	// responses.
	ErrUpstream = errors.New("upstream provider error")
)

// GoogleUser is the profile returned by Google's OpenID Connect
// userinfo endpoint.
//
// JSON response example:
//
//	{
//	  "sub": "1234567890",
//	  "name": "John Doe",
//	  "given_name": "John",
//	  "family_name": "Doe",
//	  "picture": "https://lh3.googleusercontent.com/...",
//	  "email": "user@example.com",
//	  "email_verified": true,
//	  "locale": "en"
//	}
type GoogleUser struct {
	Sub           string `json:"sub"` // Stable Google account identifier
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Locale        string `json:"locale"`
}

// OAuthClient runs the Google OAuth 2.0 authorization code flow with
// PKCE. Each login attempt generates a fresh state (CSRF protection)
// and code verifier (PKCE); both are round-tripped through short-lived
// HttpOnly cookies and validated before any network call.
type OAuthClient struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewOAuthClient creates an OAuth client configured for Google with
// OpenID Connect scopes.
//
// Parameters:
//   - cfg: OAuth configuration including client credentials, the
//     callback URL, and the userinfo endpoint
func NewOAuthClient(cfg *config.OAuthConfig) *OAuthClient {
	return &OAuthClient{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: cfg.UserInfoURL,
	}
}

// BeginAuth starts a login attempt. It generates a random state and a
// PKCE code verifier, and builds the Google consent URL carrying the
// state and the S256 code challenge.
//
// The caller must persist state and verifier (in short-lived cookies)
// so CompleteAuth can validate the callback.
//
// Example:
//
//	authURL, state, verifier := oauthClient.BeginAuth()
//	utils.SetShortLivedCookie(w, "oauth_state", state, 600, isProd)
//	utils.SetShortLivedCookie(w, "oauth_verifier", verifier, 600, isProd)
//	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
func (c *OAuthClient) BeginAuth() (authURL, state, verifier string) {
	state = GenerateState()
	verifier = oauth2.GenerateVerifier()
	authURL = c.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	return authURL, state, verifier
}

// CompleteAuth finishes a login attempt from callback parameters.
//
// Validation happens strictly before any network call: a missing code,
// missing or mismatched state, or missing verifier fails immediately
// with ErrInvalidRequest and the provider is never contacted.
//
// On success it exchanges the code (proving possession of the PKCE
// verifier) and fetches the user's profile from the userinfo endpoint.
//
// Parameters:
//   - ctx: Context for timeout and cancellation
//   - code: Authorization code from the callback query
//   - state: State from the callback query
//   - storedState: State previously set in the login cookie
//   - verifier: PKCE verifier previously set in the login cookie
//
// Returns the Google profile, or an error wrapping one of the
// sentinel errors above.
func (c *OAuthClient) CompleteAuth(ctx context.Context, code, state, storedState, verifier string) (*GoogleUser, error) {
	switch {
	case code == "":
		return nil, fmt.Errorf("%w: missing authorization code", ErrInvalidRequest)
	case state == "" || storedState == "":
		return nil, fmt.Errorf("%w: missing state", ErrInvalidRequest)
	case state != storedState:
		return nil, fmt.Errorf("%w: state mismatch", ErrInvalidRequest)
	case verifier == "":
		return nil, fmt.Errorf("%w: missing code verifier", ErrInvalidRequest)
	}

	token, err := c.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			log.Warn().
				Int("status", retrieveErr.Response.StatusCode).
				Str("error_code", retrieveErr.ErrorCode).
				Msg("Provider rejected code exchange")
			return nil, fmt.Errorf("%w: %s", ErrProviderRejected, retrieveErr.ErrorCode)
		}
		log.Error().Err(err).Msg("Code exchange failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return c.fetchUserInfo(ctx, token)
}

// fetchUserInfo retrieves the user's profile using the access token.
func (c *OAuthClient) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUser, error) {
	client := c.config.Client(ctx, token)

	resp, err := client.Get(c.userInfoURL)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch user info from Google")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo status %d", ErrUpstream, resp.StatusCode)
	}

	var profile GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		log.Error().Err(err).Msg("Failed to decode user info")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if profile.Sub == "" {
		return nil, fmt.Errorf("%w: userinfo response missing subject", ErrUpstream)
	}

	return &profile, nil
}

// GenerateState generates a random state string for OAuth CSRF
// protection. Returns a URL-safe base64-encoded string of 16 random
// bytes.
func GenerateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
