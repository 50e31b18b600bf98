package plan

import (
	"fmt"
	"strings"
	"time"

	"alcyxob/plan-compiler/internal/domain"
)

// MalformedZoneExpressionError reports a zone expression that does not match
// any supported syntax.
type MalformedZoneExpressionError struct {
	Expr string
}

func (e *MalformedZoneExpressionError) Error() string {
	return fmt.Sprintf("malformed zone expression %q", e.Expr)
}

// UnresolvedZoneError reports a zone whose base reference is undefined or
// part of a reference cycle. Chain holds the resolution path that led here.
type UnresolvedZoneError struct {
	Zone  string
	Chain []string
	Cycle bool
}

func (e *UnresolvedZoneError) Error() string {
	what := "undefined"
	if e.Cycle {
		what = "cyclic"
	}
	if len(e.Chain) > 0 {
		return fmt.Sprintf("%s zone reference %q (via %s)", what, e.Zone, strings.Join(e.Chain, " -> "))
	}
	return fmt.Sprintf("%s zone reference %q", what, e.Zone)
}

// UnknownZoneReferenceError reports a step target identifier that is absent
// from the plan's zone tables.
type UnknownZoneReferenceError struct {
	Ref       string
	HeartRate bool
}

func (e *UnknownZoneReferenceError) Error() string {
	table := "paces"
	if e.HeartRate {
		table = "heart_rates"
	}
	return fmt.Sprintf("unknown zone reference %q: not found in %s", e.Ref, table)
}

// StepSyntaxError reports an unparsable step line, keeping the offending
// text and its position for diagnostics.
type StepSyntaxError struct {
	Line   string
	Number int
	Reason string
}

func (e *StepSyntaxError) Error() string {
	return fmt.Sprintf("invalid step at line %d: %q: %s", e.Number, e.Line, e.Reason)
}

// DuplicateSessionError reports two workouts of the same plan claiming the
// same (week, session) slot.
type DuplicateSessionError struct {
	Key          domain.PlanIndexKey
	First, Other string
}

func (e *DuplicateSessionError) Error() string {
	return fmt.Sprintf("duplicate session %s: %q and %q", e.Key, e.First, e.Other)
}

// InvalidScheduleDateError reports a pinned workout date violating the
// scheduling constraints.
type InvalidScheduleDateError struct {
	Workout string
	Date    time.Time
	Reason  string
}

func (e *InvalidScheduleDateError) Error() string {
	return fmt.Sprintf("invalid date %s for workout %q: %s", e.Date.Format("2006-01-02"), e.Workout, e.Reason)
}

// InsufficientScheduleWindowError reports that the walk reached race day
// with workouts still unassigned.
type InsufficientScheduleWindowError struct {
	Unassigned int
	RaceDay    time.Time
}

func (e *InsufficientScheduleWindowError) Error() string {
	return fmt.Sprintf("schedule window before race day %s too small: %d workouts unassigned",
		e.RaceDay.Format("2006-01-02"), e.Unassigned)
}
