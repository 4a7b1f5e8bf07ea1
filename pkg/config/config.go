// Package config provides application configuration management with
// environment variable loading, validation, and sensible defaults. It
// supports .env files for local development and validates all required
// settings on startup to prevent runtime configuration errors.
//
// Configuration is loaded from environment variables with the Load()
// function, which returns a validated Config struct or an error if
// required variables are missing or invalid.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal().Err(err).Msg("Failed to load configuration")
//	}
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	OAuth     OAuthConfig
	Session   SessionConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
}

// ServerConfig holds server-specific configuration including port,
// environment, and the externally-reachable host name used to build
// the OAuth callback URL.
type ServerConfig struct {
	Port        string
	Environment string
	HostName    string // e.g. "https://gym.example.com"
}

// IsProduction reports whether the server runs in production mode.
// Affects cookie Secure flags and log formatting.
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// DatabaseConfig holds PostgreSQL configuration. The connection string
// is taken whole from DATABASE_URL rather than assembled from parts.
type DatabaseConfig struct {
	URL      string
	MaxConns int
}

// RedisConfig holds Redis configuration for rate limiting and the
// exercise library cache.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
}

// OAuthConfig holds Google OAuth 2.0 configuration including client
// credentials and endpoint URLs.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	UserInfoURL  string
}

// SessionConfig holds session token configuration: the HMAC signing
// secret, the cookie name, and the sliding-window lifetime.
type SessionConfig struct {
	Secret     []byte
	CookieName string
	TTL        time.Duration // Sliding window, re-based on every request
}

// CORSConfig holds Cross-Origin Resource Sharing configuration.
type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig holds rate limiting configuration for the auth
// endpoints.
type RateLimitConfig struct {
	RequestsPerMinute int
	WindowDuration    time.Duration
}

// CacheConfig holds cache configuration for the shared exercise
// library.
type CacheConfig struct {
	ExerciseTTL time.Duration
	Enabled     bool
}

// Load reads and validates configuration from environment variables.
// It attempts to load a .env file if present (for local development)
// but doesn't fail if the file is missing.
//
// Required environment variables (the process refuses to start
// without them):
//   - SESSION_SECRET: HMAC secret for session tokens (>=32 bytes)
//   - HOST_NAME: externally-reachable origin, used for the OAuth
//     callback URL
//   - GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET: OAuth credentials
//   - DATABASE_URL: Postgres connection string
//
// Everything else has a default. Returns an error describing the
// first missing or invalid value.
func Load() (*Config, error) {
	_ = godotenv.Load()

	sessionSecret, err := getEnvRequired("SESSION_SECRET")
	if err != nil {
		return nil, err
	}

	hostName, err := getEnvRequired("HOST_NAME")
	if err != nil {
		return nil, err
	}

	googleClientID, err := getEnvRequired("GOOGLE_CLIENT_ID")
	if err != nil {
		return nil, err
	}

	googleClientSecret, err := getEnvRequired("GOOGLE_CLIENT_SECRET")
	if err != nil {
		return nil, err
	}

	databaseURL, err := getEnvRequired("DATABASE_URL")
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENV", "development"),
			HostName:    strings.TrimRight(hostName, "/"),
		},
		Database: DatabaseConfig{
			URL:      databaseURL,
			MaxConns: getEnvAsInt("POSTGRES_MAX_CONNS", 25),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			PoolSize: getEnvAsInt("REDIS_POOL_SIZE", 100),
		},
		OAuth: OAuthConfig{
			ClientID:     googleClientID,
			ClientSecret: googleClientSecret,
			RedirectURL:  strings.TrimRight(hostName, "/") + "/login/callback",
			UserInfoURL:  getEnv("GOOGLE_USER_INFO", "https://openidconnect.googleapis.com/v1/userinfo"),
		},
		Session: SessionConfig{
			Secret:     []byte(sessionSecret),
			CookieName: getEnv("SESSION_COOKIE_NAME", "gym_session"),
			TTL:        getEnvAsDuration("SESSION_TTL", 168*time.Hour), // 7 days
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{strings.TrimRight(hostName, "/")}),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS", 60),
			WindowDuration:    getEnvAsDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
		},
		Cache: CacheConfig{
			ExerciseTTL: getEnvAsDuration("CACHE_EXERCISE_TTL", 15*time.Minute),
			Enabled:     getEnv("CACHE_ENABLED", "true") == "true",
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks if all required configuration is present and valid:
// ports parse as integers, URLs are well formed, the session secret
// meets the minimum length, and the session TTL is positive.
//
// Called automatically by Load() but usable independently in tests.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server port must be a valid integer: %w", err)
	}

	if _, err := url.ParseRequestURI(c.Server.HostName); err != nil {
		return fmt.Errorf("invalid host name: %w", err)
	}

	if _, err := strconv.Atoi(c.Redis.Port); err != nil {
		return fmt.Errorf("redis port must be a valid integer: %w", err)
	}

	if c.OAuth.ClientID == "" {
		return fmt.Errorf("google OAuth client ID is required")
	}
	if c.OAuth.ClientSecret == "" {
		return fmt.Errorf("google OAuth client secret is required")
	}
	if _, err := url.ParseRequestURI(c.OAuth.RedirectURL); err != nil {
		return fmt.Errorf("invalid OAuth redirect URL: %w", err)
	}
	if _, err := url.ParseRequestURI(c.OAuth.UserInfoURL); err != nil {
		return fmt.Errorf("invalid OAuth user info URL: %w", err)
	}

	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("session secret must be at least 32 bytes")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("database URL is required")
	}

	return nil
}

// Address returns the Redis server address in "host:port" format.
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions for environment variable parsing

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvRequired retrieves a required environment variable.
// Returns an error if the variable is not set or is empty.
func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return value, nil
}

// getEnvAsInt retrieves an environment variable as an integer with a
// default fallback.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration retrieves an environment variable as a
// time.Duration with a default fallback. Supports Go duration format:
// "300ms", "1.5h", "2h45m", etc.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice retrieves an environment variable as a comma-separated
// string slice with a default fallback.
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
