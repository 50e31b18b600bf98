package plan

import (
	"errors"
	"testing"
	"time"

	"alcyxob/plan-compiler/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func indexedPlan(count int, pins map[int]time.Time) []IndexedWorkout {
	ordered := make([]IndexedWorkout, count)
	for i := 0; i < count; i++ {
		key := domain.PlanIndexKey{Prefix: "P ", Week: i/3 + 1, Session: i%3 + 1}
		workout := domain.Workout{Name: "P " + key.String()}
		if pin, ok := pins[i]; ok {
			p := pin
			workout.PinnedDate = &p
		}
		ordered[i] = IndexedWorkout{Key: key, Workout: workout}
	}
	return ordered
}

func TestScheduleAssignsPreferredWeekdaysInOrder(t *testing.T) {
	today := date(2025, time.February, 1) // a Saturday
	raceDay := date(2025, time.April, 21)
	preferred := []time.Weekday{time.Monday, time.Wednesday, time.Friday}

	assignments, err := Schedule(indexedPlan(3, nil), raceDay, preferred, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assignments) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(assignments))
	}

	want := []time.Time{
		date(2025, time.February, 3), // Mon
		date(2025, time.February, 5), // Wed
		date(2025, time.February, 7), // Fri
	}
	for i, a := range assignments {
		if !a.Date.Equal(want[i]) {
			t.Errorf("assignment %d: expected %s, got %s", i, want[i].Format(DateLayout), a.Date.Format(DateLayout))
		}
	}
}

func TestScheduleInvariants(t *testing.T) {
	today := date(2025, time.February, 1)
	raceDay := date(2025, time.April, 21)
	preferred := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	preferredSet := map[time.Weekday]bool{time.Monday: true, time.Wednesday: true, time.Friday: true}

	assignments, err := Schedule(indexedPlan(30, nil), raceDay, preferred, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var prev time.Time
	for i, a := range assignments {
		if !a.Date.After(today) {
			t.Errorf("assignment %d not after today: %s", i, a.Date)
		}
		if !a.Date.Before(raceDay) {
			t.Errorf("assignment %d not before race day: %s", i, a.Date)
		}
		if !preferredSet[a.Date.Weekday()] {
			t.Errorf("assignment %d on non-preferred weekday %s", i, a.Date.Weekday())
		}
		if i > 0 && !a.Date.After(prev) {
			t.Errorf("assignment %d not strictly after previous (%s vs %s)", i, a.Date, prev)
		}
		prev = a.Date
	}
}

func TestSchedulePinnedDate(t *testing.T) {
	today := date(2025, time.February, 1)
	raceDay := date(2025, time.April, 21)
	preferred := []time.Weekday{time.Monday, time.Wednesday, time.Friday}

	pin := date(2025, time.February, 12) // a Wednesday
	assignments, err := Schedule(indexedPlan(3, map[int]time.Time{1: pin}), raceDay, preferred, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !assignments[1].Date.Equal(pin) {
		t.Errorf("expected pinned date %s, got %s", pin.Format(DateLayout), assignments[1].Date.Format(DateLayout))
	}
	// The walk resumes after the pin.
	if !assignments[2].Date.After(pin) {
		t.Errorf("expected third assignment after the pin, got %s", assignments[2].Date.Format(DateLayout))
	}
}

func TestSchedulePinnedDateValidation(t *testing.T) {
	today := date(2025, time.February, 1)
	raceDay := date(2025, time.April, 21)
	preferred := []time.Weekday{time.Monday, time.Wednesday, time.Friday}

	tests := []struct {
		name string
		pin  time.Time
	}{
		{name: "in the past", pin: date(2025, time.January, 6)},
		{name: "on race day", pin: raceDay},
		{name: "after race day", pin: date(2025, time.April, 28)},
		{name: "non-preferred weekday", pin: date(2025, time.February, 11)}, // a Tuesday
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Schedule(indexedPlan(2, map[int]time.Time{0: tt.pin}), raceDay, preferred, today)
			var invalid *InvalidScheduleDateError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidScheduleDateError, got %v", err)
			}
		})
	}
}

func TestSchedulePinnedDateBeforeEarlierWorkout(t *testing.T) {
	today := date(2025, time.February, 1)
	raceDay := date(2025, time.April, 21)
	preferred := []time.Weekday{time.Monday, time.Wednesday, time.Friday}

	// First workout walks to Mon Feb 3; pinning the second before that
	// would break plan ordering.
	pin := date(2025, time.February, 3)
	_, err := Schedule(indexedPlan(2, map[int]time.Time{1: pin}), raceDay, preferred, today)
	var invalid *InvalidScheduleDateError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidScheduleDateError, got %v", err)
	}
}

func TestScheduleInsufficientWindow(t *testing.T) {
	today := date(2025, time.February, 1)
	raceDay := date(2025, time.February, 15) // two weeks out
	preferred := []time.Weekday{time.Monday}

	_, err := Schedule(indexedPlan(50, nil), raceDay, preferred, today)
	var insufficient *InsufficientScheduleWindowError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientScheduleWindowError, got %v", err)
	}
	if insufficient.Unassigned != 48 {
		t.Errorf("expected 48 unassigned (2 Mondays fit), got %d", insufficient.Unassigned)
	}
}

func TestScheduleEmptyWeekdaySet(t *testing.T) {
	_, err := Schedule(indexedPlan(1, nil), date(2025, time.April, 21), nil, date(2025, time.February, 1))
	if !errors.Is(err, ErrNoWorkoutDays) {
		t.Fatalf("expected ErrNoWorkoutDays, got %v", err)
	}
}

func TestSessionsPerWeek(t *testing.T) {
	// indexedPlan groups workouts three to a week.
	if got := SessionsPerWeek(indexedPlan(7, nil)); got != 3 {
		t.Errorf("SessionsPerWeek() = %d, want 3", got)
	}
	if got := SessionsPerWeek(nil); got != 0 {
		t.Errorf("SessionsPerWeek(nil) = %d, want 0", got)
	}
}

func TestDefaultWeekdays(t *testing.T) {
	if got := DefaultWeekdays(2); len(got) != 2 || got[0] != time.Tuesday || got[1] != time.Saturday {
		t.Errorf("DefaultWeekdays(2) = %v", got)
	}
	// Out-of-range counts fall back to the full week.
	if got := DefaultWeekdays(0); len(got) != 7 {
		t.Errorf("DefaultWeekdays(0) = %v", got)
	}
	if got := DefaultWeekdays(9); len(got) != 7 {
		t.Errorf("DefaultWeekdays(9) = %v", got)
	}
}
