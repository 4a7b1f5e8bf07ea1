// Package utils provides common utility functions for HTTP response
// handling, request ID management, cookie operations, and retry logic.
// Response helpers use a standardized JSON format with automatic
// request ID injection for tracing.
package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// requestIDKey is the context key for request ID
const requestIDKey contextKey = "request_id"

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if the context is nil or no request ID is present.
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRequestID adds a request ID to the context for tracing.
// Typically called by the logging middleware for each request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// ErrorResponse represents a standard error response structure.
// It includes the HTTP status text, a custom message, optional
// per-field validation errors, and a request ID for tracing.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Message   string            `json:"message,omitempty"`
	Details   map[string]string `json:"details,omitempty"` // Field -> validation message
	RequestID string            `json:"request_id,omitempty"`
}

// RespondWithError sends a JSON error response with automatic request
// ID extraction from the request context.
//
// Example:
//
//	if workout == nil {
//	    utils.RespondWithError(w, r, http.StatusNotFound, "Workout not found")
//	    return
//	}
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		RequestID: GetRequestID(r.Context()),
	})
}

// RespondWithValidationError sends a 400 response carrying per-field
// validation messages. The top-level message stays generic; the field
// map tells the client what to fix.
func RespondWithValidationError(w http.ResponseWriter, r *http.Request, details map[string]string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:     http.StatusText(http.StatusBadRequest),
		Message:   "Invalid data",
		Details:   details,
		RequestID: GetRequestID(r.Context()),
	})
}

// RespondWithJSON sends a JSON response with the given status code and data.
//
// Example:
//
//	utils.RespondWithJSON(w, r, http.StatusOK, workouts)
func RespondWithJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	writeJSON(w, statusCode, data)
}

// RespondWithMessage sends a simple message response with the given
// status code. Useful for endpoints that only confirm an action.
func RespondWithMessage(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	response := map[string]string{"message": message}
	if requestID := GetRequestID(r.Context()); requestID != "" {
		response["request_id"] = requestID
	}
	writeJSON(w, statusCode, response)
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// SetSessionCookie sets a session cookie with the security settings
// the session design requires: HttpOnly, SameSite=Lax, path "/", and
// Secure in production. Expires and MaxAge both track the expiry so
// the browser drops the cookie when the token inside it dies.
//
// Example:
//
//	utils.SetSessionCookie(w, "gym_session", token, expiresAt, true)
func SetSessionCookie(w http.ResponseWriter, name, value string, expires time.Time, isProduction bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
	})
}

// SetShortLivedCookie sets an HTTP-only cookie with MaxAge in seconds.
// Used for the OAuth state and PKCE verifier cookies (10 minutes).
func SetShortLivedCookie(w http.ResponseWriter, name, value string, maxAge int, isProduction bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// ClearCookie removes a cookie by setting MaxAge to -1. Clearing a
// cookie that was never set is a no-op, so callers may clear
// unconditionally.
func ClearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// ClearCookies removes multiple cookies at once. Used after the OAuth
// callback to drop the state and verifier cookies.
func ClearCookies(w http.ResponseWriter, names ...string) {
	for _, name := range names {
		ClearCookie(w, name)
	}
}
