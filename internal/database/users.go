package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/iancarlosortega/gym-tracker/internal/models"
)

// GetUserByID retrieves a user by their unique UUID.
//
// Parameters:
//   - ctx: Context for timeout and cancellation
//   - userID: The user's UUID
//
// Returns ErrNotFound when no user exists with that ID.
func (p *PostgresDB) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, email, email_verified_at, is_active, is_new_user, role
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := p.db.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.Email,
		&user.EmailVerifiedAt,
		&user.IsActive,
		&user.IsNewUser,
		&user.Role,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetUserByGoogleID retrieves the user linked to a Google account ID.
// The lookup goes through the users_accounts table, which carries a
// unique constraint on google_id.
//
// Parameters:
//   - ctx: Context for timeout and cancellation
//   - googleID: The Google account's stable subject identifier
//
// Returns ErrNotFound when no account links that Google ID.
//
// Example:
//
//	user, err := db.GetUserByGoogleID(ctx, "1234567890")
//	if errors.Is(err, database.ErrNotFound) {
//	    // first login for this Google account
//	}
func (p *PostgresDB) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	query := `
		SELECT u.id, u.email, u.email_verified_at, u.is_active, u.is_new_user, u.role
		FROM users u
		JOIN users_accounts a ON a.user_id = u.id
		WHERE a.account_type = 'google' AND a.google_id = $1
	`

	var user models.User
	err := p.db.QueryRowContext(ctx, query, googleID).Scan(
		&user.ID,
		&user.Email,
		&user.EmailVerifiedAt,
		&user.IsActive,
		&user.IsNewUser,
		&user.Role,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by google id: %w", err)
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by their email address.
//
// Returns ErrNotFound when no user has that email.
func (p *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, email_verified_at, is_active, is_new_user, role
		FROM users
		WHERE email = $1
	`

	var user models.User
	err := p.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.EmailVerifiedAt,
		&user.IsActive,
		&user.IsNewUser,
		&user.Role,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// CreateUser inserts a new user row. The email_verified_at timestamp
// should be set when the identity provider reported the address as
// verified, nil otherwise. New users start with the USER role and
// is_new_user = true.
//
// An empty email is stored as NULL so the unique constraint on
// users.email never collides for provider profiles without an email.
//
// Parameters:
//   - ctx: Context for timeout and cancellation
//   - email: Email address from the provider profile, may be empty
//   - verified: Whether the provider reported the email as verified
//
// Returns the created user model.
func (p *PostgresDB) CreateUser(ctx context.Context, email string, verified bool) (*models.User, error) {
	query := `
		INSERT INTO users (email, email_verified_at)
		VALUES (NULLIF($1, ''), CASE WHEN $2 THEN now() ELSE NULL END)
		RETURNING id, email, email_verified_at, is_active, is_new_user, role
	`

	var user models.User
	err := p.db.QueryRowContext(ctx, query, email, verified).Scan(
		&user.ID,
		&user.Email,
		&user.EmailVerifiedAt,
		&user.IsActive,
		&user.IsNewUser,
		&user.Role,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("email", email).
		Msg("User created")

	return &user, nil
}

// LinkGoogleAccount inserts a google account row for the user. The
// insert is idempotent: if the google_id is already linked, the
// conflict is ignored and no error is returned. Safe to call on every
// login.
//
// Parameters:
//   - ctx: Context for timeout and cancellation
//   - userID: The local user to link the account to
//   - googleID: The Google account's stable subject identifier
func (p *PostgresDB) LinkGoogleAccount(ctx context.Context, userID uuid.UUID, googleID string) error {
	query := `
		INSERT INTO users_accounts (user_id, account_type, google_id)
		VALUES ($1, 'google', $2)
		ON CONFLICT (google_id) DO NOTHING
	`

	_, err := p.db.ExecContext(ctx, query, userID, googleID)
	if err != nil {
		return fmt.Errorf("failed to link google account: %w", err)
	}

	return nil
}

// CreateProfile inserts the user's profile row with the display name
// and picture from the provider profile. Idempotent: a user that
// already has a profile keeps it unchanged.
func (p *PostgresDB) CreateProfile(ctx context.Context, userID uuid.UUID, displayName, image *string) error {
	query := `
		INSERT INTO users_profiles (user_id, display_name, image)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`

	_, err := p.db.ExecContext(ctx, query, userID, displayName, image)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// GetProfileByUserID retrieves the profile row for a user.
//
// Returns ErrNotFound when the user has no profile yet.
func (p *PostgresDB) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	query := `
		SELECT id, user_id, display_name, image_id, image, phone,
		       identification_card, ruc, created_at, updated_at
		FROM users_profiles
		WHERE user_id = $1
	`

	var profile models.Profile
	err := p.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.DisplayName,
		&profile.ImageID,
		&profile.Image,
		&profile.Phone,
		&profile.IdentificationCard,
		&profile.RUC,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

// MarkUserSeen clears the is_new_user flag after the user's first
// authenticated request completes onboarding.
func (p *PostgresDB) MarkUserSeen(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE users
		SET is_new_user = FALSE
		WHERE id = $1
	`

	_, err := p.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to mark user seen: %w", err)
	}

	return nil
}
