package models

import (
	"time"

	"github.com/google/uuid"
)

// ExerciseType classifies an exercise by its training modality.
type ExerciseType string

const (
	ExerciseStrength    ExerciseType = "strength"
	ExerciseCardio      ExerciseType = "cardio"
	ExerciseFlexibility ExerciseType = "flexibility"
	ExerciseBalance     ExerciseType = "balance"
)

// Valid reports whether t is a known exercise type.
func (t ExerciseType) Valid() bool {
	switch t {
	case ExerciseStrength, ExerciseCardio, ExerciseFlexibility, ExerciseBalance:
		return true
	}
	return false
}

// Equipment identifies the apparatus an exercise is performed with.
type Equipment string

const (
	EquipmentBarbell        Equipment = "barbell"
	EquipmentDumbbell       Equipment = "dumbbell"
	EquipmentMachine        Equipment = "machine"
	EquipmentCable          Equipment = "cable"
	EquipmentBodyweight     Equipment = "bodyweight"
	EquipmentResistanceBand Equipment = "resistance_band"
	EquipmentKettlebell     Equipment = "kettlebell"
	EquipmentMedicineBall   Equipment = "medicine_ball"
	EquipmentTreadmill      Equipment = "treadmill"
	EquipmentBike           Equipment = "bike"
	EquipmentRowingMachine  Equipment = "rowing_machine"
	EquipmentOther          Equipment = "other"
)

// Valid reports whether e is a known equipment value.
func (e Equipment) Valid() bool {
	switch e {
	case EquipmentBarbell, EquipmentDumbbell, EquipmentMachine, EquipmentCable,
		EquipmentBodyweight, EquipmentResistanceBand, EquipmentKettlebell,
		EquipmentMedicineBall, EquipmentTreadmill, EquipmentBike,
		EquipmentRowingMachine, EquipmentOther:
		return true
	}
	return false
}

// MuscleGroup names a primary or secondary muscle group.
type MuscleGroup string

const (
	MuscleChest      MuscleGroup = "chest"
	MuscleBack       MuscleGroup = "back"
	MuscleShoulders  MuscleGroup = "shoulders"
	MuscleBiceps     MuscleGroup = "biceps"
	MuscleTriceps    MuscleGroup = "triceps"
	MuscleForearms   MuscleGroup = "forearms"
	MuscleCore       MuscleGroup = "core"
	MuscleGlutes     MuscleGroup = "glutes"
	MuscleQuadriceps MuscleGroup = "quadriceps"
	MuscleHamstrings MuscleGroup = "hamstrings"
	MuscleCalves     MuscleGroup = "calves"
	MuscleFullBody   MuscleGroup = "full_body"
)

// Valid reports whether m is a known muscle group.
func (m MuscleGroup) Valid() bool {
	switch m {
	case MuscleChest, MuscleBack, MuscleShoulders, MuscleBiceps, MuscleTriceps,
		MuscleForearms, MuscleCore, MuscleGlutes, MuscleQuadriceps,
		MuscleHamstrings, MuscleCalves, MuscleFullBody:
		return true
	}
	return false
}

// Exercise is an entry in the exercise library. Shared exercises have
// IsCustom == 0 and a nil CreatedBy; user-created exercises have
// IsCustom == 1 and are only visible to their creator.
type Exercise struct {
	ID                    uuid.UUID     `json:"id" db:"id"`
	Name                  string        `json:"name" db:"name"`
	Description           *string       `json:"description,omitempty" db:"description"`
	Type                  ExerciseType  `json:"type" db:"type"`
	Equipment             Equipment     `json:"equipment" db:"equipment"`
	PrimaryMuscleGroup    MuscleGroup   `json:"primaryMuscleGroup" db:"primary_muscle_group"`
	SecondaryMuscleGroups []MuscleGroup `json:"secondaryMuscleGroups,omitempty" db:"secondary_muscle_groups"`
	Instructions          *string       `json:"instructions,omitempty" db:"instructions"`
	VideoURL              *string       `json:"videoUrl,omitempty" db:"video_url"`
	ImageURL              *string       `json:"imageUrl,omitempty" db:"image_url"`
	IsCustom              int           `json:"isCustom" db:"is_custom"` // 0 = shared, 1 = user custom
	CreatedBy             *uuid.UUID    `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt             time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time     `json:"updatedAt" db:"updated_at"`
}

// Workout is a logged training session owned by a user.
type Workout struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	Duration  *int      `json:"duration,omitempty" db:"duration"` // Minutes
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// WorkoutExercise is one exercise slot within a workout, ordered by
// the Order column.
type WorkoutExercise struct {
	ID         uuid.UUID `json:"id" db:"id"`
	WorkoutID  uuid.UUID `json:"workoutId" db:"workout_id"`
	ExerciseID uuid.UUID `json:"exerciseId" db:"exercise_id"`
	Order      int       `json:"order" db:"order"`
	Notes      *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// Set is one set performed for a workout exercise. Strength sets use
// Reps/Weight; cardio sets use Duration/Distance.
type Set struct {
	ID                uuid.UUID `json:"id" db:"id"`
	WorkoutExerciseID uuid.UUID `json:"workoutExerciseId" db:"workout_exercise_id"`
	SetNumber         int       `json:"setNumber" db:"set_number"`
	Reps              *int      `json:"reps,omitempty" db:"reps"`
	Weight            *float64  `json:"weight,omitempty" db:"weight"`
	Duration          *int      `json:"duration,omitempty" db:"duration"` // Seconds
	Distance          *float64  `json:"distance,omitempty" db:"distance"`
	RestTime          *int      `json:"restTime,omitempty" db:"rest_time"` // Seconds
	Completed         int       `json:"completed" db:"completed"`          // 0 or 1
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

// BodyMeasurement is a point-in-time body composition record.
// Weights are kilograms, lengths centimeters, body fat a percentage.
type BodyMeasurement struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"userId" db:"user_id"`
	Weight     *float64  `json:"weight,omitempty" db:"weight"`
	BodyFat    *float64  `json:"bodyFat,omitempty" db:"body_fat"`
	MuscleMass *float64  `json:"muscleMass,omitempty" db:"muscle_mass"`
	Height     *float64  `json:"height,omitempty" db:"height"`
	Chest      *float64  `json:"chest,omitempty" db:"chest"`
	Waist      *float64  `json:"waist,omitempty" db:"waist"`
	Hips       *float64  `json:"hips,omitempty" db:"hips"`
	Bicep      *float64  `json:"bicep,omitempty" db:"bicep"`
	Thigh      *float64  `json:"thigh,omitempty" db:"thigh"`
	RecordedAt time.Time `json:"recordedAt" db:"recorded_at"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// WorkoutDetail is the expanded view of a workout returned by the
// workout detail endpoint: the workout plus its ordered exercises,
// each with its sets.
type WorkoutDetail struct {
	Workout
	Exercises []WorkoutExerciseDetail `json:"exercises"`
}

// WorkoutExerciseDetail pairs a workout exercise slot with the library
// exercise it references and the sets performed.
type WorkoutExerciseDetail struct {
	ID       uuid.UUID `json:"id"`
	Order    int       `json:"order"`
	Notes    *string   `json:"notes,omitempty"`
	Exercise Exercise  `json:"exercise"`
	Sets     []Set     `json:"sets"`
}
