package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/iancarlosortega/gym-tracker/internal/models"
)

// MeasurementInput is the payload for recording a body measurement.
// All fields are optional; RecordedAt defaults to now when nil.
type MeasurementInput struct {
	Weight     *float64
	BodyFat    *float64
	MuscleMass *float64
	Height     *float64
	Chest      *float64
	Waist      *float64
	Hips       *float64
	Bicep      *float64
	Thigh      *float64
	RecordedAt *time.Time
}

// ListMeasurements returns the user's body measurements, newest first
// by recorded_at.
func (p *PostgresDB) ListMeasurements(ctx context.Context, userID uuid.UUID) ([]models.BodyMeasurement, error) {
	query := `
		SELECT id, user_id, weight, body_fat, muscle_mass, height,
		       chest, waist, hips, bicep, thigh, recorded_at, created_at
		FROM body_measurements
		WHERE user_id = $1
		ORDER BY recorded_at DESC
	`

	rows, err := p.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	defer rows.Close()

	measurements := []models.BodyMeasurement{}
	for rows.Next() {
		var m models.BodyMeasurement
		err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.Weight,
			&m.BodyFat,
			&m.MuscleMass,
			&m.Height,
			&m.Chest,
			&m.Waist,
			&m.Hips,
			&m.Bicep,
			&m.Thigh,
			&m.RecordedAt,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		measurements = append(measurements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate measurements: %w", err)
	}

	return measurements, nil
}

// CreateMeasurement records a body measurement for the user.
func (p *PostgresDB) CreateMeasurement(ctx context.Context, userID uuid.UUID, input MeasurementInput) (*models.BodyMeasurement, error) {
	query := `
		INSERT INTO body_measurements (
			user_id, weight, body_fat, muscle_mass, height,
			chest, waist, hips, bicep, thigh, recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, now()))
		RETURNING id, user_id, weight, body_fat, muscle_mass, height,
		          chest, waist, hips, bicep, thigh, recorded_at, created_at
	`

	var m models.BodyMeasurement
	err := p.db.QueryRowContext(ctx, query,
		userID,
		input.Weight,
		input.BodyFat,
		input.MuscleMass,
		input.Height,
		input.Chest,
		input.Waist,
		input.Hips,
		input.Bicep,
		input.Thigh,
		input.RecordedAt,
	).Scan(
		&m.ID,
		&m.UserID,
		&m.Weight,
		&m.BodyFat,
		&m.MuscleMass,
		&m.Height,
		&m.Chest,
		&m.Waist,
		&m.Hips,
		&m.Bicep,
		&m.Thigh,
		&m.RecordedAt,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create measurement: %w", err)
	}

	log.Info().
		Str("measurement_id", m.ID.String()).
		Str("user_id", userID.String()).
		Msg("Body measurement recorded")

	return &m, nil
}
