package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// brokenWriter simulates a client that went away mid-response.
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (b *brokenWriter) Write([]byte) (int, error) {
	return 0, errBrokenPipe
}

var errBrokenPipe = errors.New("broken pipe")

func TestPagesServe(t *testing.T) {
	handler := NewPagesHandler()

	t.Run("known page renders the shell", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/workouts", nil)
		rec := httptest.NewRecorder()
		handler.Serve(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "<title>Workouts</title>")
		assert.Contains(t, rec.Body.String(), `data-page="/workouts"`)
		assert.NotContains(t, rec.Body.String(), "data-authenticated")
	})

	t.Run("authenticated request marks the shell", func(t *testing.T) {
		req := withSession(httptest.NewRequest(http.MethodGet, "/profile", nil), uuid.New())
		rec := httptest.NewRecorder()
		handler.Serve(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `data-authenticated="true"`)
	})

	t.Run("workout detail pages match by prefix", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/workouts/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		handler.Serve(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<title>Workout Detail</title>")
	})

	t.Run("client write failure is tolerated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/workouts", nil)
		rec := &brokenWriter{ResponseRecorder: httptest.NewRecorder()}
		handler.Serve(rec, req)

		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	})

	t.Run("unknown path gets 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/no-such-page", nil)
		rec := httptest.NewRecorder()
		handler.Serve(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
