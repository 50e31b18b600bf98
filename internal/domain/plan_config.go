package domain

// Margins widen a resolved single-value zone into a tolerance range.
// Faster/Slower are pace deltas in "m:ss" form; HRUp/HRDown are percentage
// points applied to heart rate values.
type Margins struct {
	Faster string `bson:"faster,omitempty" json:"faster,omitempty" yaml:"faster,omitempty"`
	Slower string `bson:"slower,omitempty" json:"slower,omitempty" yaml:"slower,omitempty"`
	HRUp   int    `bson:"hrUp,omitempty" json:"hrUp,omitempty" yaml:"hr_up,omitempty"`
	HRDown int    `bson:"hrDown,omitempty" json:"hrDown,omitempty" yaml:"hr_down,omitempty"`
}

// PlanConfig is the plan-level configuration shared by every workout of one
// imported plan. It is immutable once a plan has been compiled.
type PlanConfig struct {
	// NamePrefix is prepended to every workout name at compile time and
	// doubles as the plan identity when indexing and scheduling.
	NamePrefix string `bson:"namePrefix,omitempty" json:"namePrefix,omitempty" yaml:"name_prefix,omitempty"`

	// Paces and HeartRates map zone identifiers to zone expressions:
	// a fixed value ("5:30", "175"), an explicit range ("5:10-4:50",
	// "140-150"), a percentage of another zone ("90% marathon",
	// "62-76% max_hr") or, for paces, a distance in a time
	// ("10km in 45:00").
	Paces      map[string]string `bson:"paces,omitempty" json:"paces,omitempty" yaml:"paces,omitempty"`
	HeartRates map[string]string `bson:"heartRates,omitempty" json:"heartRates,omitempty" yaml:"heart_rates,omitempty"`

	Margins Margins `bson:"margins,omitempty" json:"margins,omitempty" yaml:"margins,omitempty"`
}
