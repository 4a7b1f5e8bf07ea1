package cache

import (
	"context"
	"time"

	"github.com/iancarlosortega/gym-tracker/internal/models"
)

// ExerciseDatabase defines the database operations the exercise cache
// falls back to on a miss.
type ExerciseDatabase interface {
	ListSharedExercises(ctx context.Context) ([]models.Exercise, error)
}

// ExerciseCache caches the shared exercise library. Custom exercises
// are never cached; they are per-user and cheap to query by index.
type ExerciseCache struct {
	cache *Cache
	db    ExerciseDatabase
	ttl   time.Duration
}

// NewExerciseCache creates a new exercise library cache.
func NewExerciseCache(cache *Cache, db ExerciseDatabase, ttl time.Duration) *ExerciseCache {
	return &ExerciseCache{
		cache: cache,
		db:    db,
		ttl:   ttl,
	}
}

// GetShared returns the shared exercise library, from cache when
// possible. The second return reports whether this was a cache hit.
func (ec *ExerciseCache) GetShared(ctx context.Context) ([]models.Exercise, bool, error) {
	var exercises []models.Exercise
	hit, err := ec.cache.GetOrSet(ctx, SharedExercisesKey(), ec.ttl, &exercises, func() (interface{}, error) {
		return ec.db.ListSharedExercises(ctx)
	})
	if err != nil {
		return nil, false, err
	}
	return exercises, hit, nil
}

// Invalidate drops all cached exercise data, forcing the next read to
// reload from the database. Called after migrations that touch the
// shared library.
func (ec *ExerciseCache) Invalidate(ctx context.Context) error {
	return ec.cache.DeletePattern(ctx, ExerciseAllPattern())
}
