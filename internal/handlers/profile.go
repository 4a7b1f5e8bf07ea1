package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/iancarlosortega/gym-tracker/internal/database"
	"github.com/iancarlosortega/gym-tracker/internal/middleware"
	"github.com/iancarlosortega/gym-tracker/internal/models"
	"github.com/iancarlosortega/gym-tracker/pkg/utils"
)

// ProfileDB defines the database operations for the current user
// endpoint.
type ProfileDB interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	MarkUserSeen(ctx context.Context, userID uuid.UUID) error
}

// ProfileHandler serves the current user's identity and profile.
type ProfileHandler struct {
	db ProfileDB
}

// NewProfileHandler creates the profile handler.
func NewProfileHandler(db ProfileDB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// meResponse combines the user row with their profile.
type meResponse struct {
	User    *models.User    `json:"user"`
	Profile *models.Profile `json:"profile,omitempty"`
}

// Me returns the current user and their profile. The session cookie
// only carries the user ID and role, so this is the endpoint the
// frontend calls to hydrate the account view.
//
// A first request from a new user also clears their is_new_user flag,
// so onboarding UI shows exactly once.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetSession(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.db.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Session references a deleted user
			utils.RespondWithError(w, r, http.StatusUnauthorized, "Account no longer exists")
			return
		}
		log.Error().Err(err).Msg("Failed to get user")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to load account")
		return
	}

	resp := meResponse{User: user}

	profile, err := h.db.GetProfileByUserID(r.Context(), claims.UserID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		log.Error().Err(err).Msg("Failed to get profile")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to load account")
		return
	}
	if err == nil {
		resp.Profile = profile
	}

	if user.IsNewUser {
		if err := h.db.MarkUserSeen(r.Context(), user.ID); err != nil {
			log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("Failed to clear new user flag")
		}
	}

	utils.RespondWithJSON(w, r, http.StatusOK, resp)
}
