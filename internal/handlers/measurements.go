package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/iancarlosortega/gym-tracker/internal/database"
	"github.com/iancarlosortega/gym-tracker/internal/middleware"
	"github.com/iancarlosortega/gym-tracker/internal/models"
	"github.com/iancarlosortega/gym-tracker/pkg/utils"
)

// MeasurementDB defines the database operations for body measurements.
type MeasurementDB interface {
	ListMeasurements(ctx context.Context, userID uuid.UUID) ([]models.BodyMeasurement, error)
	CreateMeasurement(ctx context.Context, userID uuid.UUID, input database.MeasurementInput) (*models.BodyMeasurement, error)
}

// MeasurementsHandler serves body measurement tracking endpoints.
type MeasurementsHandler struct {
	db MeasurementDB
}

// NewMeasurementsHandler creates the measurements handler.
func NewMeasurementsHandler(db MeasurementDB) *MeasurementsHandler {
	return &MeasurementsHandler{db: db}
}

// createMeasurementRequest is the payload for recording a body
// measurement. All metric fields are optional but at least one must be
// present.
type createMeasurementRequest struct {
	Weight     *float64   `json:"weight"`
	BodyFat    *float64   `json:"bodyFat"`
	MuscleMass *float64   `json:"muscleMass"`
	Height     *float64   `json:"height"`
	Chest      *float64   `json:"chest"`
	Waist      *float64   `json:"waist"`
	Hips       *float64   `json:"hips"`
	Bicep      *float64   `json:"bicep"`
	Thigh      *float64   `json:"thigh"`
	RecordedAt *time.Time `json:"recordedAt"`
}

func (req *createMeasurementRequest) validate() map[string]string {
	details := make(map[string]string)

	fields := map[string]*float64{
		"weight":     req.Weight,
		"bodyFat":    req.BodyFat,
		"muscleMass": req.MuscleMass,
		"height":     req.Height,
		"chest":      req.Chest,
		"waist":      req.Waist,
		"hips":       req.Hips,
		"bicep":      req.Bicep,
		"thigh":      req.Thigh,
	}

	present := false
	for name, value := range fields {
		if value == nil {
			continue
		}
		present = true
		if *value <= 0 {
			details[name] = "must be positive"
		}
	}
	if !present {
		details["measurement"] = "at least one measurement field is required"
	}

	if len(details) == 0 {
		return nil
	}
	return details
}

// List returns the current user's measurements, newest first.
func (h *MeasurementsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetSession(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	measurements, err := h.db.ListMeasurements(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list measurements")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to list measurements")
		return
	}

	utils.RespondWithJSON(w, r, http.StatusOK, measurements)
}

// Create records a body measurement for the current user. RecordedAt
// defaults to now when omitted, supporting backdated entries.
func (h *MeasurementsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetSession(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req createMeasurementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := req.validate(); details != nil {
		utils.RespondWithValidationError(w, r, details)
		return
	}

	measurement, err := h.db.CreateMeasurement(r.Context(), claims.UserID, database.MeasurementInput{
		Weight:     req.Weight,
		BodyFat:    req.BodyFat,
		MuscleMass: req.MuscleMass,
		Height:     req.Height,
		Chest:      req.Chest,
		Waist:      req.Waist,
		Hips:       req.Hips,
		Bicep:      req.Bicep,
		Thigh:      req.Thigh,
		RecordedAt: req.RecordedAt,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create measurement")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to record measurement")
		return
	}

	utils.RespondWithJSON(w, r, http.StatusCreated, measurement)
}
