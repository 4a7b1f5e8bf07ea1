// Package testutil provides common testing utilities, fixtures, and
// helpers for use across all test files in the project.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/iancarlosortega/gym-tracker/internal/models"
	"github.com/iancarlosortega/gym-tracker/internal/services"
	"github.com/iancarlosortega/gym-tracker/pkg/config"
)

// TestSessionSecret is a deterministic signing secret used in tests.
// 32 bytes, matching the production minimum.
var TestSessionSecret = []byte("test-session-secret-0123456789ab")

// TestSessionConfig creates a session configuration with test defaults
func TestSessionConfig() *config.SessionConfig {
	return &config.SessionConfig{
		Secret:     TestSessionSecret,
		CookieName: "gym_session",
		TTL:        7 * 24 * time.Hour,
	}
}

// TestUser creates an active test user with the USER role
func TestUser() *models.User {
	return &models.User{
		ID:       uuid.New(),
		Email:    StringPtr("test@example.com"),
		IsActive: true,
		Role:     models.RoleUser,
	}
}

// TestGoogleUser creates a Google profile as returned by the userinfo
// endpoint
func TestGoogleUser() *services.GoogleUser {
	return &services.GoogleUser{
		Sub:           "google-sub-1234567890",
		Name:          "Test User",
		GivenName:     "Test",
		FamilyName:    "User",
		Picture:       "https://lh3.googleusercontent.com/test.jpg",
		Email:         "test@example.com",
		EmailVerified: true,
		Locale:        "en",
	}
}

// TestExercise creates a shared library exercise
func TestExercise(name string) models.Exercise {
	return models.Exercise{
		ID:                 uuid.New(),
		Name:               name,
		Type:               models.ExerciseStrength,
		Equipment:          models.EquipmentBarbell,
		PrimaryMuscleGroup: models.MuscleChest,
		IsCustom:           0,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
}

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}

// Float64Ptr returns a pointer to the given float64
func Float64Ptr(f float64) *float64 {
	return &f
}
