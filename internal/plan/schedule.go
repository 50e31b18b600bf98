package plan

import (
	"errors"
	"time"

	"alcyxob/plan-compiler/internal/domain"
)

// ErrNoWorkoutDays is returned when scheduling is attempted with an empty
// preferred-weekday set.
var ErrNoWorkoutDays = errors.New("no preferred workout days given")

// defaultWorkoutDays maps a sessions-per-week count to a sensible
// preferred-day spread for runners who did not state one.
var defaultWorkoutDays = map[int][]time.Weekday{
	1: {time.Saturday},
	2: {time.Tuesday, time.Saturday},
	3: {time.Tuesday, time.Thursday, time.Saturday},
	4: {time.Tuesday, time.Thursday, time.Saturday, time.Sunday},
	5: {time.Monday, time.Tuesday, time.Thursday, time.Saturday, time.Sunday},
	6: {time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Saturday, time.Sunday},
	7: {time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday},
}

// DefaultWeekdays suggests preferred workout days for a plan running
// sessionsPerWeek sessions per week. Counts outside 1..7 get the full week.
func DefaultWeekdays(sessionsPerWeek int) []time.Weekday {
	if days, ok := defaultWorkoutDays[sessionsPerWeek]; ok {
		return days
	}
	return defaultWorkoutDays[7]
}

// SessionsPerWeek reports the largest number of sessions any single week of
// the ordered plan carries.
func SessionsPerWeek(ordered []IndexedWorkout) int {
	perWeek := map[int]int{}
	max := 0
	for _, iw := range ordered {
		perWeek[iw.Key.Week]++
		if perWeek[iw.Key.Week] > max {
			max = perWeek[iw.Key.Week]
		}
	}
	return max
}

// Assignment places one workout on one calendar date.
type Assignment struct {
	Key     domain.PlanIndexKey
	Workout domain.Workout
	Date    time.Time
}

// Schedule assigns one calendar date to every workout in ordered, walking
// forward day by day from the day after today. A candidate date is accepted
// when its weekday is preferred, it lies strictly between today and raceDay,
// and it has not been assigned yet in this run; accepted dates are handed
// out in plan order, so assignments are strictly increasing.
//
// A workout with a pinned date uses that date directly; the pin is still
// validated against the same constraints (plus plan ordering) and the walk
// resumes after it. Schedule is a pure computation: callers apply the
// returned assignments to the calendar afterwards, which also makes a
// dry run the same code path.
func Schedule(ordered []IndexedWorkout, raceDay time.Time, preferred []time.Weekday, today time.Time) ([]Assignment, error) {
	if len(preferred) == 0 {
		return nil, ErrNoWorkoutDays
	}
	preferredSet := make(map[time.Weekday]bool, len(preferred))
	for _, d := range preferred {
		preferredSet[d] = true
	}

	today = midnight(today)
	raceDay = midnight(raceDay)

	assignments := make([]Assignment, 0, len(ordered))
	used := make(map[time.Time]bool)
	cursor := today

	for i, iw := range ordered {
		if iw.Workout.PinnedDate != nil {
			pin := midnight(*iw.Workout.PinnedDate)
			if err := validatePin(iw.Workout.Name, pin, today, raceDay, cursor, preferredSet, used); err != nil {
				return nil, err
			}
			assignments = append(assignments, Assignment{Key: iw.Key, Workout: iw.Workout, Date: pin})
			used[pin] = true
			cursor = pin
			continue
		}

		date, ok := nextSlot(cursor, raceDay, preferredSet, used)
		if !ok {
			return nil, &InsufficientScheduleWindowError{Unassigned: len(ordered) - i, RaceDay: raceDay}
		}
		assignments = append(assignments, Assignment{Key: iw.Key, Workout: iw.Workout, Date: date})
		used[date] = true
		cursor = date
	}
	return assignments, nil
}

// nextSlot finds the first acceptable date strictly after cursor and
// strictly before raceDay.
func nextSlot(cursor, raceDay time.Time, preferred map[time.Weekday]bool, used map[time.Time]bool) (time.Time, bool) {
	for d := cursor.AddDate(0, 0, 1); d.Before(raceDay); d = d.AddDate(0, 0, 1) {
		if preferred[d.Weekday()] && !used[d] {
			return d, true
		}
	}
	return time.Time{}, false
}

// validatePin checks a pinned date against the scheduling constraints
// rather than silently adjusting it.
func validatePin(name string, pin, today, raceDay, cursor time.Time, preferred map[time.Weekday]bool, used map[time.Time]bool) error {
	switch {
	case !pin.After(today):
		return &InvalidScheduleDateError{Workout: name, Date: pin, Reason: "date is not after today"}
	case !pin.Before(raceDay):
		return &InvalidScheduleDateError{Workout: name, Date: pin, Reason: "date is not before race day"}
	case used[pin]:
		return &InvalidScheduleDateError{Workout: name, Date: pin, Reason: "date already assigned to an earlier workout"}
	case !pin.After(cursor):
		return &InvalidScheduleDateError{Workout: name, Date: pin, Reason: "date precedes an earlier workout in plan order"}
	case !preferred[pin.Weekday()]:
		return &InvalidScheduleDateError{Workout: name, Date: pin, Reason: "weekday is not a preferred workout day"}
	}
	return nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
