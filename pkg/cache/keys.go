package cache

import "fmt"

// Key prefixes for different cache types. All keys follow the pattern
// "prefix:identifier".
const (
	ExercisePrefix = "exercises:"
)

// SharedExercisesKey is the cache key for the shared exercise library.
// The whole library is cached as one entry because it is small, read
// on every exercise listing, and changes only through migrations.
//
// Example: "exercises:shared"
func SharedExercisesKey() string {
	return ExercisePrefix + "shared"
}

// ExerciseAllPattern returns a glob pattern matching all exercise
// cache keys. Use with DeletePattern to force a reload of the library.
//
// Example: "exercises:*"
func ExerciseAllPattern() string {
	return fmt.Sprintf("%s*", ExercisePrefix)
}
