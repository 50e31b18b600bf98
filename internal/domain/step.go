package domain

// StepKind identifies the role of a step within a workout.
type StepKind string

const (
	StepWarmup   StepKind = "warmup"
	StepCooldown StepKind = "cooldown"
	StepInterval StepKind = "interval"
	StepRecovery StepKind = "recovery"
	StepRest     StepKind = "rest"
	StepRepeat   StepKind = "repeat"
	StepOther    StepKind = "other"
)

// KnownStepKinds lists every kind the step parser accepts verbatim.
// Anything else is mapped to StepOther with a warning.
var KnownStepKinds = map[StepKind]bool{
	StepWarmup:   true,
	StepCooldown: true,
	StepInterval: true,
	StepRecovery: true,
	StepRest:     true,
	StepRepeat:   true,
	StepOther:    true,
}

// EndCondition describes how a step ends.
type EndCondition string

const (
	EndLapButton  EndCondition = "lap.button"
	EndTime       EndCondition = "time"
	EndDistance   EndCondition = "distance"
	EndIterations EndCondition = "iterations"
)

// TargetType describes the kind of intensity target attached to a step.
type TargetType string

const (
	TargetNone      TargetType = "no.target"
	TargetPace      TargetType = "pace.zone"
	TargetHeartRate TargetType = "heart.rate.zone"
)

// Target is a resolved, concrete intensity range.
// For pace targets Low/High are seconds per kilometer (Low is the faster bound).
// For heart rate targets Low/High are beats per minute.
type Target struct {
	Type TargetType `bson:"type" json:"type"`
	Low  float64    `bson:"low" json:"low"`
	High float64    `bson:"high" json:"high"`
}

// Step is one unit of a workout. A step either executes (timed, distance
// based or ended by the lap button) or, for Kind == StepRepeat, groups an
// ordered list of child steps repeated Repeat times. Repeats may nest.
type Step struct {
	Kind            StepKind     `bson:"kind" json:"kind"`
	EndCondition    EndCondition `bson:"endCondition" json:"endCondition"`
	DurationSeconds int          `bson:"durationSeconds,omitempty" json:"durationSeconds,omitempty"` // EndCondition == time
	DistanceMeters  float64      `bson:"distanceMeters,omitempty" json:"distanceMeters,omitempty"`   // EndCondition == distance
	Repeat          int          `bson:"repeat,omitempty" json:"repeat,omitempty"`                   // Kind == repeat

	// TargetRef is the symbolic zone expression as written in the plan
	// (e.g. "Z2", "90% marathon", "5:10-4:50"). Empty when the step has no
	// target. HeartRate marks refs written with the @hr tag.
	TargetRef string  `bson:"targetRef,omitempty" json:"targetRef,omitempty"`
	HeartRate bool    `bson:"heartRate,omitempty" json:"heartRate,omitempty"`
	Target    *Target `bson:"target,omitempty" json:"target,omitempty"`

	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Steps       []Step `bson:"steps,omitempty" json:"steps,omitempty"`
}
