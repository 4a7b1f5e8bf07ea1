package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/iancarlosortega/gym-tracker/internal/models"
)

// SetInput is one set to record when creating a workout.
type SetInput struct {
	SetNumber int
	Reps      *int
	Weight    *float64
	Duration  *int
	Distance  *float64
	RestTime  *int
	Completed int
}

// WorkoutExerciseInput is one exercise slot to record when creating a
// workout, with its sets.
type WorkoutExerciseInput struct {
	ExerciseID uuid.UUID
	Order      int
	Notes      *string
	Sets       []SetInput
}

// WorkoutInput is the payload for creating a workout. Exercises may be
// empty; when present, the workout and all nested rows are written in
// a single transaction.
type WorkoutInput struct {
	Name      string
	Notes     *string
	Duration  *int
	Exercises []WorkoutExerciseInput
}

// ListWorkouts returns the user's workouts, newest first.
func (p *PostgresDB) ListWorkouts(ctx context.Context, userID uuid.UUID) ([]models.Workout, error) {
	query := `
		SELECT id, user_id, name, notes, duration, created_at, updated_at
		FROM workouts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := p.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	defer rows.Close()

	workouts := []models.Workout{}
	for rows.Next() {
		var w models.Workout
		err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Notes, &w.Duration, &w.CreatedAt, &w.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workout: %w", err)
		}
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workouts: %w", err)
	}

	return workouts, nil
}

// CreateWorkout inserts a workout and its nested exercise slots and
// sets in one transaction. If any nested insert fails (for example a
// foreign key violation on an unknown exercise), the whole workout is
// rolled back.
//
// Parameters:
//   - ctx: Context for timeout and cancellation
//   - userID: The owning user
//   - input: The workout payload, optionally with nested exercises
//
// Returns the created workout row (without nested detail).
func (p *PostgresDB) CreateWorkout(ctx context.Context, userID uuid.UUID, input WorkoutInput) (*models.Workout, error) {
	var workout models.Workout

	err := p.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO workouts (user_id, name, notes, duration)
			VALUES ($1, $2, $3, $4)
			RETURNING id, user_id, name, notes, duration, created_at, updated_at
		`
		err := tx.QueryRowContext(ctx, query, userID, input.Name, input.Notes, input.Duration).Scan(
			&workout.ID,
			&workout.UserID,
			&workout.Name,
			&workout.Notes,
			&workout.Duration,
			&workout.CreatedAt,
			&workout.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert workout: %w", err)
		}

		for _, ex := range input.Exercises {
			var weID uuid.UUID
			err := tx.QueryRowContext(ctx, `
				INSERT INTO workout_exercises (workout_id, exercise_id, "order", notes)
				VALUES ($1, $2, $3, $4)
				RETURNING id
			`, workout.ID, ex.ExerciseID, ex.Order, ex.Notes).Scan(&weID)
			if err != nil {
				return fmt.Errorf("failed to insert workout exercise: %w", err)
			}

			for _, s := range ex.Sets {
				_, err := tx.ExecContext(ctx, `
					INSERT INTO sets (workout_exercise_id, set_number, reps, weight, duration, distance, rest_time, completed)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				`, weID, s.SetNumber, s.Reps, s.Weight, s.Duration, s.Distance, s.RestTime, s.Completed)
				if err != nil {
					return fmt.Errorf("failed to insert set: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("workout_id", workout.ID.String()).
		Str("user_id", userID.String()).
		Int("exercises", len(input.Exercises)).
		Msg("Workout created")

	return &workout, nil
}

// GetWorkoutDetail retrieves a workout with its ordered exercises and
// their sets. Ownership is enforced at the query level, so a workout
// belonging to another user is indistinguishable from a missing one.
//
// Returns ErrNotFound when the workout does not exist or is not owned
// by userID.
func (p *PostgresDB) GetWorkoutDetail(ctx context.Context, userID, workoutID uuid.UUID) (*models.WorkoutDetail, error) {
	var detail models.WorkoutDetail
	err := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, notes, duration, created_at, updated_at
		FROM workouts
		WHERE id = $1 AND user_id = $2
	`, workoutID, userID).Scan(
		&detail.ID,
		&detail.UserID,
		&detail.Name,
		&detail.Notes,
		&detail.Duration,
		&detail.CreatedAt,
		&detail.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workout: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT we.id, we."order", we.notes,
		       e.id, e.name, e.description, e.type, e.equipment,
		       e.primary_muscle_group, e.secondary_muscle_groups,
		       e.instructions, e.video_url, e.image_url,
		       e.is_custom, e.created_by, e.created_at, e.updated_at
		FROM workout_exercises we
		JOIN exercises e ON e.id = we.exercise_id
		WHERE we.workout_id = $1
		ORDER BY we."order"
	`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workout exercises: %w", err)
	}
	defer rows.Close()

	detail.Exercises = []models.WorkoutExerciseDetail{}
	slotIndex := map[uuid.UUID]int{}
	for rows.Next() {
		var wed models.WorkoutExerciseDetail
		var secondary pq.StringArray
		err := rows.Scan(
			&wed.ID,
			&wed.Order,
			&wed.Notes,
			&wed.Exercise.ID,
			&wed.Exercise.Name,
			&wed.Exercise.Description,
			&wed.Exercise.Type,
			&wed.Exercise.Equipment,
			&wed.Exercise.PrimaryMuscleGroup,
			&secondary,
			&wed.Exercise.Instructions,
			&wed.Exercise.VideoURL,
			&wed.Exercise.ImageURL,
			&wed.Exercise.IsCustom,
			&wed.Exercise.CreatedBy,
			&wed.Exercise.CreatedAt,
			&wed.Exercise.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workout exercise: %w", err)
		}
		wed.Exercise.SecondaryMuscleGroups = toMuscleGroups(secondary)
		wed.Sets = []models.Set{}
		slotIndex[wed.ID] = len(detail.Exercises)
		detail.Exercises = append(detail.Exercises, wed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workout exercises: %w", err)
	}

	setRows, err := p.db.QueryContext(ctx, `
		SELECT s.id, s.workout_exercise_id, s.set_number, s.reps, s.weight,
		       s.duration, s.distance, s.rest_time, s.completed, s.created_at
		FROM sets s
		JOIN workout_exercises we ON we.id = s.workout_exercise_id
		WHERE we.workout_id = $1
		ORDER BY s.set_number
	`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var s models.Set
		err := setRows.Scan(
			&s.ID,
			&s.WorkoutExerciseID,
			&s.SetNumber,
			&s.Reps,
			&s.Weight,
			&s.Duration,
			&s.Distance,
			&s.RestTime,
			&s.Completed,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan set: %w", err)
		}
		if idx, ok := slotIndex[s.WorkoutExerciseID]; ok {
			detail.Exercises[idx].Sets = append(detail.Exercises[idx].Sets, s)
		}
	}
	if err := setRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sets: %w", err)
	}

	return &detail, nil
}
