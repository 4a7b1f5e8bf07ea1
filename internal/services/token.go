package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iancarlosortega/gym-tracker/internal/models"
	"github.com/iancarlosortega/gym-tracker/pkg/config"
)

// SessionClaims is the payload embedded in the session cookie token.
// It carries just enough identity to authorize requests without a
// database round trip: the user's ID, role, and active flag.
type SessionClaims struct {
	UserID               uuid.UUID   `json:"user_id"`
	Role                 models.Role `json:"role"`
	IsActive             bool        `json:"is_active"`
	jwt.RegisteredClaims             // Standard JWT claims (exp, iat, nbf)
}

// TokenCodec signs and verifies session tokens. Tokens use HS256
// signing with a shared secret and a fixed lifetime; the sliding
// session window is implemented by re-encoding a fresh token on every
// authenticated request.
type TokenCodec struct {
	secret []byte        // Secret key for signing (HS256, min 32 bytes)
	ttl    time.Duration // Token lifetime (default: 7 days)
}

// NewTokenCodec creates a codec from the session configuration.
//
// Example:
//
//	codec := services.NewTokenCodec(&config.SessionConfig{
//	    Secret: []byte("your-secret-key-min-32-bytes!!!!"),
//	    TTL:    7 * 24 * time.Hour,
//	})
func NewTokenCodec(cfg *config.SessionConfig) *TokenCodec {
	return &TokenCodec{
		secret: cfg.Secret,
		ttl:    cfg.TTL,
	}
}

// Encode signs a session token for the user. The expiration is always
// now + TTL, so encoding an existing session's claims extends it.
//
// Returns the signed token string and its expiration time.
func (c *TokenCodec) Encode(userID uuid.UUID, role models.Role, active bool) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(c.ttl)

	claims := SessionClaims{
		UserID:   userID,
		Role:     role,
		IsActive: active,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Decode verifies a session token and returns its claims. Any defect
// (bad signature, expired, malformed, wrong algorithm, unknown role)
// reports ok == false; callers treat that the same as no token at all.
//
// Example:
//
//	claims, ok := codec.Decode(cookie.Value)
//	if !ok {
//	    // anonymous request
//	}
func (c *TokenCodec) Decode(tokenString string) (*SessionClaims, bool) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, false
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, false
	}
	if claims.UserID == uuid.Nil || !claims.Role.Valid() {
		return nil, false
	}

	return claims, true
}
