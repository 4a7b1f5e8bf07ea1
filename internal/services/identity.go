package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/iancarlosortega/gym-tracker/internal/database"
	"github.com/iancarlosortega/gym-tracker/internal/models"
)

// IdentityStore defines the database operations identity resolution
// needs. This interface abstracts the database layer for testing and
// dependency injection.
type IdentityStore interface {
	GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, email string, verified bool) (*models.User, error)
	LinkGoogleAccount(ctx context.Context, userID uuid.UUID, googleID string) error
	CreateProfile(ctx context.Context, userID uuid.UUID, displayName, image *string) error
}

// IdentityResolver maps an external Google profile onto a local user.
// Resolution is idempotent: a returning user gets the same local user
// row on every login, a Google account seen for the first time on an
// existing email gets linked to that user, and a brand new identity
// gets a user, account, and profile created.
type IdentityResolver struct {
	store IdentityStore
}

// NewIdentityResolver creates a resolver backed by the given store.
func NewIdentityResolver(store IdentityStore) *IdentityResolver {
	return &IdentityResolver{store: store}
}

// Resolve finds or creates the local user for a Google profile.
//
// The lookup order:
//  1. By Google ID. A hit means a returning user; done.
//  2. By email. A hit means this email signed up before (possibly via
//     another method); the Google account is linked to it.
//  3. Otherwise a new user is created from the profile.
//
// Account linkage and profile creation use idempotent inserts, so a
// retried callback or a concurrent login cannot duplicate rows.
//
// Returns an error only on storage failures; an inactive user still
// resolves (access control happens at the middleware layer, where the
// is_active flag in the session claims gates every request).
func (r *IdentityResolver) Resolve(ctx context.Context, profile *GoogleUser) (*models.User, error) {
	user, err := r.store.GetUserByGoogleID(ctx, profile.Sub)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	user, err = r.findOrCreateByEmail(ctx, profile)
	if err != nil {
		return nil, err
	}

	if err := r.store.LinkGoogleAccount(ctx, user.ID, profile.Sub); err != nil {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	displayName := optional(profile.Name)
	image := optional(profile.Picture)
	if err := r.store.CreateProfile(ctx, user.ID, displayName, image); err != nil {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("google_id", profile.Sub).
		Bool("is_new_user", user.IsNewUser).
		Msg("Google identity resolved")

	return user, nil
}

func (r *IdentityResolver) findOrCreateByEmail(ctx context.Context, profile *GoogleUser) (*models.User, error) {
	if profile.Email != "" {
		user, err := r.store.GetUserByEmail(ctx, profile.Email)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("failed to resolve identity: %w", err)
		}
	}

	user, err := r.store.CreateUser(ctx, profile.Email, profile.EmailVerified)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}
	return user, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
