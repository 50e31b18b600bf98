// internal/repository/mongo/calendar_repo.go
package mongo

import (
	"alcyxob/plan-compiler/internal/domain"
	"alcyxob/plan-compiler/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const calendarCollectionName = "calendar"

// mongoCalendarRepository implements repository.CalendarRepository
type mongoCalendarRepository struct {
	collection *mongo.Collection
}

// NewMongoCalendarRepository creates a new calendar repository.
func NewMongoCalendarRepository(db *mongo.Database) repository.CalendarRepository {
	return &mongoCalendarRepository{
		collection: db.Collection(calendarCollectionName),
	}
}

// Schedule inserts a calendar entry for a workout. A workout holds at most
// one entry; scheduling it again replaces the previous date.
func (r *mongoCalendarRepository) Schedule(ctx context.Context, entry *domain.ScheduledWorkout) (primitive.ObjectID, error) {
	if entry.Name == "" || entry.WorkoutID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("calendar entry requires a workout ID and name")
	}
	if entry.ID == primitive.NilObjectID {
		entry.ID = primitive.NewObjectID()
	}
	entry.CreatedAt = time.Now().UTC()

	filter := bson.M{"workoutId": entry.WorkoutID}
	update := bson.M{"$set": entry}
	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return primitive.NilObjectID, err
	}
	return entry.ID, nil
}

// Unschedule removes the calendar entry for the named workout. Missing
// entries are ignored so the operation stays idempotent.
func (r *mongoCalendarRepository) Unschedule(ctx context.Context, name string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"name": name})
	return err
}

// ListScheduled returns entries with from <= date < to, sorted by date.
func (r *mongoCalendarRepository) ListScheduled(ctx context.Context, from, to time.Time) ([]domain.ScheduledWorkout, error) {
	filter := bson.M{"date": bson.M{"$gte": from, "$lt": to}}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.ScheduledWorkout
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetByWorkoutID retrieves the calendar entry for a workout, if any.
func (r *mongoCalendarRepository) GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) (*domain.ScheduledWorkout, error) {
	var entry domain.ScheduledWorkout
	err := r.collection.FindOne(ctx, bson.M{"workoutId": workoutID}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// EnsureCalendarIndexes creates necessary indexes. Call during startup.
func EnsureCalendarIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "date", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
