package repository

import (
	"alcyxob/plan-compiler/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("already exists")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// WorkoutRepository defines the interface for interacting with compiled workouts.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByName(ctx context.Context, name string) (*domain.Workout, error)
	// List returns workouts whose names start with prefix, sorted by name.
	// An empty prefix returns everything.
	List(ctx context.Context, prefix string) ([]domain.Workout, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByName(ctx context.Context, name string) error
}

// CalendarRepository defines the interface for interacting with scheduled
// workout entries.
type CalendarRepository interface {
	Schedule(ctx context.Context, entry *domain.ScheduledWorkout) (primitive.ObjectID, error)
	// Unschedule removes the calendar entry for the named workout. Removing
	// an entry that does not exist is not an error.
	Unschedule(ctx context.Context, name string) error
	ListScheduled(ctx context.Context, from, to time.Time) ([]domain.ScheduledWorkout, error)
	GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) (*domain.ScheduledWorkout, error)
}
