package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/iancarlosortega/gym-tracker/internal/database"
	"github.com/iancarlosortega/gym-tracker/internal/middleware"
	"github.com/iancarlosortega/gym-tracker/internal/models"
	"github.com/iancarlosortega/gym-tracker/pkg/utils"
)

// ExerciseDB defines the database operations for the exercise library.
type ExerciseDB interface {
	ListExercises(ctx context.Context, userID uuid.UUID, filter database.ExerciseFilter) ([]models.Exercise, error)
	ListCustomExercises(ctx context.Context, userID uuid.UUID) ([]models.Exercise, error)
	CreateExercise(ctx context.Context, userID uuid.UUID, ex *models.Exercise) (*models.Exercise, error)
}

// SharedLibrary abstracts the cached shared exercise library. The
// bool reports whether the result came from cache.
type SharedLibrary interface {
	GetShared(ctx context.Context) ([]models.Exercise, bool, error)
}

// ExercisesHandler serves the exercise library: the shared catalog
// plus each user's custom exercises.
type ExercisesHandler struct {
	db     ExerciseDB
	shared SharedLibrary // nil when caching is disabled
}

// NewExercisesHandler creates the exercise library handler. Pass a nil
// shared library to always read from the database.
func NewExercisesHandler(db ExerciseDB, shared SharedLibrary) *ExercisesHandler {
	return &ExercisesHandler{
		db:     db,
		shared: shared,
	}
}

// createExerciseRequest is the payload for creating a custom exercise.
type createExerciseRequest struct {
	Name                  string               `json:"name"`
	Description           *string              `json:"description"`
	Type                  models.ExerciseType  `json:"type"`
	Equipment             models.Equipment     `json:"equipment"`
	PrimaryMuscleGroup    models.MuscleGroup   `json:"primaryMuscleGroup"`
	SecondaryMuscleGroups []models.MuscleGroup `json:"secondaryMuscleGroups"`
	Instructions          *string              `json:"instructions"`
	VideoURL              *string              `json:"videoUrl"`
	ImageURL              *string              `json:"imageUrl"`
}

func (req *createExerciseRequest) validate() map[string]string {
	details := make(map[string]string)
	if req.Name == "" {
		details["name"] = "name is required"
	}
	if !req.Type.Valid() {
		details["type"] = "unknown exercise type"
	}
	if !req.Equipment.Valid() {
		details["equipment"] = "unknown equipment"
	}
	if !req.PrimaryMuscleGroup.Valid() {
		details["primaryMuscleGroup"] = "unknown muscle group"
	}
	for _, g := range req.SecondaryMuscleGroups {
		if !g.Valid() {
			details["secondaryMuscleGroups"] = "unknown muscle group"
			break
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// List returns the exercises visible to the current user, optionally
// filtered.
//
// Query parameters:
//   - search: Case-insensitive name substring
//   - type: Exercise type (strength, cardio, flexibility, balance)
//   - muscleGroup: Matches the primary or any secondary muscle group
//
// The unfiltered listing merges the cached shared library with the
// user's custom exercises; filtered listings query the database
// directly.
func (h *ExercisesHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetSession(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	filter := database.ExerciseFilter{
		Search:      r.URL.Query().Get("search"),
		Type:        models.ExerciseType(r.URL.Query().Get("type")),
		MuscleGroup: models.MuscleGroup(r.URL.Query().Get("muscleGroup")),
	}

	details := make(map[string]string)
	if filter.Type != "" && !filter.Type.Valid() {
		details["type"] = "unknown exercise type"
	}
	if filter.MuscleGroup != "" && !filter.MuscleGroup.Valid() {
		details["muscleGroup"] = "unknown muscle group"
	}
	if len(details) > 0 {
		utils.RespondWithValidationError(w, r, details)
		return
	}

	unfiltered := filter.Search == "" && filter.Type == "" && filter.MuscleGroup == ""
	if unfiltered && h.shared != nil {
		exercises, err := h.listWithCache(r.Context(), claims.UserID)
		if err == nil {
			utils.RespondWithJSON(w, r, http.StatusOK, exercises)
			return
		}
		log.Warn().Err(err).Msg("Cached exercise listing failed, falling back to database")
	}

	exercises, err := h.db.ListExercises(r.Context(), claims.UserID, filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list exercises")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to list exercises")
		return
	}

	utils.RespondWithJSON(w, r, http.StatusOK, exercises)
}

// listWithCache merges the cached shared library with the user's own
// custom exercises, keeping the name ordering of the plain listing.
func (h *ExercisesHandler) listWithCache(ctx context.Context, userID uuid.UUID) ([]models.Exercise, error) {
	shared, hit, err := h.shared.GetShared(ctx)
	if err != nil {
		middleware.IncrementCacheRequests("error")
		return nil, err
	}
	if hit {
		middleware.IncrementCacheRequests("hit")
	} else {
		middleware.IncrementCacheRequests("miss")
	}

	custom, err := h.db.ListCustomExercises(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := make([]models.Exercise, 0, len(shared)+len(custom))
	merged = append(merged, shared...)
	merged = append(merged, custom...)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Name < merged[j].Name
	})
	return merged, nil
}

// Create adds a custom exercise to the current user's library.
// Responds 201 with the created exercise.
func (h *ExercisesHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetSession(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req createExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := req.validate(); details != nil {
		utils.RespondWithValidationError(w, r, details)
		return
	}

	exercise, err := h.db.CreateExercise(r.Context(), claims.UserID, &models.Exercise{
		Name:                  req.Name,
		Description:           req.Description,
		Type:                  req.Type,
		Equipment:             req.Equipment,
		PrimaryMuscleGroup:    req.PrimaryMuscleGroup,
		SecondaryMuscleGroups: req.SecondaryMuscleGroups,
		Instructions:          req.Instructions,
		VideoURL:              req.VideoURL,
		ImageURL:              req.ImageURL,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create exercise")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create exercise")
		return
	}

	utils.RespondWithJSON(w, r, http.StatusCreated, exercise)
}
