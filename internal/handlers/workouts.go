package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/iancarlosortega/gym-tracker/internal/database"
	"github.com/iancarlosortega/gym-tracker/internal/middleware"
	"github.com/iancarlosortega/gym-tracker/internal/models"
	"github.com/iancarlosortega/gym-tracker/pkg/utils"
)

// WorkoutDB defines the database operations for workout logging.
type WorkoutDB interface {
	ListWorkouts(ctx context.Context, userID uuid.UUID) ([]models.Workout, error)
	CreateWorkout(ctx context.Context, userID uuid.UUID, input database.WorkoutInput) (*models.Workout, error)
	GetWorkoutDetail(ctx context.Context, userID, workoutID uuid.UUID) (*models.WorkoutDetail, error)
	GetExerciseByID(ctx context.Context, userID, exerciseID uuid.UUID) (*models.Exercise, error)
}

// WorkoutsHandler serves workout logging endpoints. Every operation is
// scoped to the current user; another user's workout is
// indistinguishable from a missing one.
type WorkoutsHandler struct {
	db WorkoutDB
}

// NewWorkoutsHandler creates the workouts handler.
func NewWorkoutsHandler(db WorkoutDB) *WorkoutsHandler {
	return &WorkoutsHandler{db: db}
}

// createWorkoutRequest is the payload for logging a workout, with
// optional nested exercise slots and sets.
type createWorkoutRequest struct {
	Name      string                   `json:"name"`
	Notes     *string                  `json:"notes"`
	Duration  *int                     `json:"duration"`
	Exercises []workoutExerciseRequest `json:"exercises"`
}

type workoutExerciseRequest struct {
	ExerciseID uuid.UUID    `json:"exerciseId"`
	Order      int          `json:"order"`
	Notes      *string      `json:"notes"`
	Sets       []setRequest `json:"sets"`
}

type setRequest struct {
	SetNumber int      `json:"setNumber"`
	Reps      *int     `json:"reps"`
	Weight    *float64 `json:"weight"`
	Duration  *int     `json:"duration"`
	Distance  *float64 `json:"distance"`
	RestTime  *int     `json:"restTime"`
	Completed int      `json:"completed"`
}

func (req *createWorkoutRequest) validate() map[string]string {
	details := make(map[string]string)
	if req.Name == "" {
		details["name"] = "name is required"
	}
	if req.Duration != nil && *req.Duration < 0 {
		details["duration"] = "duration must not be negative"
	}
	for i, ex := range req.Exercises {
		if ex.ExerciseID == uuid.Nil {
			details[fmt.Sprintf("exercises[%d].exerciseId", i)] = "exerciseId is required"
		}
		for j, s := range ex.Sets {
			if s.SetNumber < 1 {
				details[fmt.Sprintf("exercises[%d].sets[%d].setNumber", i, j)] = "setNumber must be at least 1"
			}
			if s.Completed != 0 && s.Completed != 1 {
				details[fmt.Sprintf("exercises[%d].sets[%d].completed", i, j)] = "completed must be 0 or 1"
			}
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// List returns the current user's workouts, newest first.
func (h *WorkoutsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetSession(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	workouts, err := h.db.ListWorkouts(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list workouts")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to list workouts")
		return
	}

	utils.RespondWithJSON(w, r, http.StatusOK, workouts)
}

// Create logs a workout for the current user. Nested exercises and
// sets are written atomically with the workout.
//
// A reference to an exercise outside the user's visible library fails
// the whole request with 400.
func (h *WorkoutsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetSession(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req createWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := req.validate(); details != nil {
		utils.RespondWithValidationError(w, r, details)
		return
	}

	// Every referenced exercise must exist in the user's visible
	// library before anything is written.
	for i, ex := range req.Exercises {
		if _, err := h.db.GetExerciseByID(r.Context(), claims.UserID, ex.ExerciseID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				utils.RespondWithValidationError(w, r, map[string]string{
					fmt.Sprintf("exercises[%d].exerciseId", i): "exercise not found",
				})
				return
			}
			log.Error().Err(err).Msg("Failed to look up exercise")
			utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create workout")
			return
		}
	}

	input := database.WorkoutInput{
		Name:     req.Name,
		Notes:    req.Notes,
		Duration: req.Duration,
	}
	for _, ex := range req.Exercises {
		exInput := database.WorkoutExerciseInput{
			ExerciseID: ex.ExerciseID,
			Order:      ex.Order,
			Notes:      ex.Notes,
		}
		for _, s := range ex.Sets {
			exInput.Sets = append(exInput.Sets, database.SetInput{
				SetNumber: s.SetNumber,
				Reps:      s.Reps,
				Weight:    s.Weight,
				Duration:  s.Duration,
				Distance:  s.Distance,
				RestTime:  s.RestTime,
				Completed: s.Completed,
			})
		}
		input.Exercises = append(input.Exercises, exInput)
	}

	workout, err := h.db.CreateWorkout(r.Context(), claims.UserID, input)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create workout")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create workout")
		return
	}

	utils.RespondWithJSON(w, r, http.StatusCreated, workout)
}

// Detail returns one workout with its ordered exercises and sets.
// Responds 404 when the workout does not exist or belongs to another
// user.
func (h *WorkoutsHandler) Detail(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetSession(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	workoutID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid workout ID")
		return
	}

	detail, err := h.db.GetWorkoutDetail(r.Context(), claims.UserID, workoutID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.RespondWithError(w, r, http.StatusNotFound, "Workout not found")
			return
		}
		log.Error().Err(err).Msg("Failed to get workout")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to get workout")
		return
	}

	utils.RespondWithJSON(w, r, http.StatusOK, detail)
}
