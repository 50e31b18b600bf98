package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduledWorkout is a calendar placement of a workout: one workout on one
// date. Removing and re-adding placements is how rescheduling works; a
// workout has at most one placement per run of the scheduler.
type ScheduledWorkout struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutID primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	Name      string             `bson:"name" json:"name"` // denormalized for listing and filtering
	Date      time.Time          `bson:"date" json:"date"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
