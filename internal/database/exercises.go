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

// ExerciseFilter narrows the exercise library listing. Zero values
// mean "no filter" for that dimension.
type ExerciseFilter struct {
	Search      string
	Type        models.ExerciseType
	MuscleGroup models.MuscleGroup
}

// ListExercises returns the exercises visible to a user: the shared
// library plus the user's own custom exercises, filtered by the given
// criteria and ordered by name.
//
// Parameters:
//   - ctx: Context for timeout and cancellation
//   - userID: The requesting user, for custom exercise visibility
//   - filter: Optional search / type / muscle group filters
func (p *PostgresDB) ListExercises(ctx context.Context, userID uuid.UUID, filter ExerciseFilter) ([]models.Exercise, error) {
	query := `
		SELECT id, name, description, type, equipment, primary_muscle_group,
		       secondary_muscle_groups, instructions, video_url, image_url,
		       is_custom, created_by, created_at, updated_at
		FROM exercises
		WHERE (is_custom = 0 OR created_by = $1)
	`
	args := []any{userID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.MuscleGroup != "" {
		args = append(args, filter.MuscleGroup)
		query += fmt.Sprintf(" AND (primary_muscle_group = $%d OR $%d = ANY(secondary_muscle_groups))", len(args), len(args))
	}

	query += " ORDER BY name"

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	defer rows.Close()

	return scanExercises(rows)
}

// ListSharedExercises returns the shared library only (is_custom = 0),
// with no filters. Used to populate the library cache.
func (p *PostgresDB) ListSharedExercises(ctx context.Context) ([]models.Exercise, error) {
	query := `
		SELECT id, name, description, type, equipment, primary_muscle_group,
		       secondary_muscle_groups, instructions, video_url, image_url,
		       is_custom, created_by, created_at, updated_at
		FROM exercises
		WHERE is_custom = 0
		ORDER BY name
	`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared exercises: %w", err)
	}
	defer rows.Close()

	return scanExercises(rows)
}

// ListCustomExercises returns only the user's own custom exercises
// (is_custom = 1), ordered by name. Used alongside the shared library
// cache to assemble the unfiltered listing.
func (p *PostgresDB) ListCustomExercises(ctx context.Context, userID uuid.UUID) ([]models.Exercise, error) {
	query := `
		SELECT id, name, description, type, equipment, primary_muscle_group,
		       secondary_muscle_groups, instructions, video_url, image_url,
		       is_custom, created_by, created_at, updated_at
		FROM exercises
		WHERE is_custom = 1 AND created_by = $1
		ORDER BY name
	`

	rows, err := p.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom exercises: %w", err)
	}
	defer rows.Close()

	return scanExercises(rows)
}

// CreateExercise inserts a custom exercise owned by the given user.
// is_custom is always forced to 1 for rows created through this path;
// shared library rows only enter through migrations.
func (p *PostgresDB) CreateExercise(ctx context.Context, userID uuid.UUID, ex *models.Exercise) (*models.Exercise, error) {
	query := `
		INSERT INTO exercises (
			name, description, type, equipment, primary_muscle_group,
			secondary_muscle_groups, instructions, video_url, image_url,
			is_custom, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, $10)
		RETURNING id, name, description, type, equipment, primary_muscle_group,
		          secondary_muscle_groups, instructions, video_url, image_url,
		          is_custom, created_by, created_at, updated_at
	`

	var secondary any
	if len(ex.SecondaryMuscleGroups) > 0 {
		groups := make([]string, len(ex.SecondaryMuscleGroups))
		for i, g := range ex.SecondaryMuscleGroups {
			groups[i] = string(g)
		}
		secondary = pq.Array(groups)
	}

	var created models.Exercise
	var secondaryOut pq.StringArray
	err := p.db.QueryRowContext(ctx, query,
		ex.Name,
		ex.Description,
		ex.Type,
		ex.Equipment,
		ex.PrimaryMuscleGroup,
		secondary,
		ex.Instructions,
		ex.VideoURL,
		ex.ImageURL,
		userID,
	).Scan(
		&created.ID,
		&created.Name,
		&created.Description,
		&created.Type,
		&created.Equipment,
		&created.PrimaryMuscleGroup,
		&secondaryOut,
		&created.Instructions,
		&created.VideoURL,
		&created.ImageURL,
		&created.IsCustom,
		&created.CreatedBy,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create exercise: %w", err)
	}
	created.SecondaryMuscleGroups = toMuscleGroups(secondaryOut)

	log.Info().
		Str("exercise_id", created.ID.String()).
		Str("user_id", userID.String()).
		Str("name", created.Name).
		Msg("Custom exercise created")

	return &created, nil
}

// GetExerciseByID retrieves one exercise visible to the user.
//
// Returns ErrNotFound when the exercise does not exist or belongs to
// another user's private library.
func (p *PostgresDB) GetExerciseByID(ctx context.Context, userID, exerciseID uuid.UUID) (*models.Exercise, error) {
	query := `
		SELECT id, name, description, type, equipment, primary_muscle_group,
		       secondary_muscle_groups, instructions, video_url, image_url,
		       is_custom, created_by, created_at, updated_at
		FROM exercises
		WHERE id = $1 AND (is_custom = 0 OR created_by = $2)
	`

	rows, err := p.db.QueryContext(ctx, query, exerciseID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exercise: %w", err)
	}
	defer rows.Close()

	exercises, err := scanExercises(rows)
	if err != nil {
		return nil, err
	}
	if len(exercises) == 0 {
		return nil, ErrNotFound
	}
	return &exercises[0], nil
}

func scanExercises(rows *sql.Rows) ([]models.Exercise, error) {
	exercises := []models.Exercise{}
	for rows.Next() {
		var ex models.Exercise
		var secondary pq.StringArray
		err := rows.Scan(
			&ex.ID,
			&ex.Name,
			&ex.Description,
			&ex.Type,
			&ex.Equipment,
			&ex.PrimaryMuscleGroup,
			&secondary,
			&ex.Instructions,
			&ex.VideoURL,
			&ex.ImageURL,
			&ex.IsCustom,
			&ex.CreatedBy,
			&ex.CreatedAt,
			&ex.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exercise: %w", err)
		}
		ex.SecondaryMuscleGroups = toMuscleGroups(secondary)
		exercises = append(exercises, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exercises: %w", err)
	}
	return exercises, nil
}

func toMuscleGroups(arr pq.StringArray) []models.MuscleGroup {
	if len(arr) == 0 {
		return nil
	}
	groups := make([]models.MuscleGroup, len(arr))
	for i, s := range arr {
		groups[i] = models.MuscleGroup(s)
	}
	return groups
}
