package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workout is a compiled, schedulable workout: a named, ordered sequence of
// steps with resolved targets. Name is unique within the account once the
// plan prefix has been applied.
type Workout struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	// PinnedDate is set when the plan source carried a leading "date:"
	// pseudo-step; the scheduler uses it verbatim after validation.
	PinnedDate *time.Time `bson:"pinnedDate,omitempty" json:"pinnedDate,omitempty"`

	Steps []Step `bson:"steps" json:"steps"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PlanIndexKey orders a workout inside its plan. It is derived from the
// workout name, which must match "[PREFIX] W<ww>S<ss> <description>".
// (Prefix, Week, Session) is unique within one plan.
type PlanIndexKey struct {
	Prefix  string `json:"prefix"`
	Week    int    `json:"week"`
	Session int    `json:"session"`
}

// Less orders keys lexicographically on (week, session).
func (k PlanIndexKey) Less(other PlanIndexKey) bool {
	if k.Week != other.Week {
		return k.Week < other.Week
	}
	return k.Session < other.Session
}

func (k PlanIndexKey) String() string {
	return fmt.Sprintf("W%02dS%02d", k.Week, k.Session)
}
