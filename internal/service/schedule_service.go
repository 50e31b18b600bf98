package service

import (
	"context"
	"errors"
	"log"
	"time"

	"alcyxob/plan-compiler/internal/domain"
	"alcyxob/plan-compiler/internal/plan"
	"alcyxob/plan-compiler/internal/repository"
)

var ErrNoWorkoutsToSchedule = errors.New("no workouts match the plan prefix")

// ScheduleRequest describes one scheduling run.
type ScheduleRequest struct {
	// Prefix selects the plan whose workouts get dates.
	Prefix string
	// RaceDay bounds the schedule; every date lands strictly before it.
	RaceDay time.Time
	// Weekdays are the preferred workout days in priority order. Empty
	// falls back to the configured default.
	Weekdays []time.Weekday
	// DryRun computes the assignments without touching the calendar.
	DryRun bool
}

// ScheduleFailure records one workout whose calendar write failed.
type ScheduleFailure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ScheduleResult reports the dates given to each workout.
type ScheduleResult struct {
	Assignments []ScheduledAssignment `json:"assignments"`
	Failures    []ScheduleFailure     `json:"failures,omitempty"`
	DryRun      bool                  `json:"dryRun"`
}

// ScheduledAssignment is one workout/date pair of a schedule run.
type ScheduledAssignment struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// ScheduleService places compiled workouts on the calendar.
type ScheduleService interface {
	Schedule(ctx context.Context, req ScheduleRequest) (*ScheduleResult, error)
	// Unschedule removes the calendar entries of a plan and reports how
	// many were cleared.
	Unschedule(ctx context.Context, prefix string) (int, error)
	ListScheduled(ctx context.Context, from, to time.Time) ([]domain.ScheduledWorkout, error)
}

// scheduleService implements the ScheduleService interface.
type scheduleService struct {
	workoutRepo     repository.WorkoutRepository
	calendarRepo    repository.CalendarRepository
	defaultWeekdays []time.Weekday
	// now is swappable for tests; schedule windows start the day after it.
	now func() time.Time
}

// NewScheduleService creates a new instance of scheduleService.
func NewScheduleService(workoutRepo repository.WorkoutRepository, calendarRepo repository.CalendarRepository, defaultWeekdays []time.Weekday) ScheduleService {
	return &scheduleService{
		workoutRepo:     workoutRepo,
		calendarRepo:    calendarRepo,
		defaultWeekdays: defaultWeekdays,
		now:             time.Now,
	}
}

// Schedule orders the plan's workouts by week and session, walks the
// calendar from tomorrow to race day over the preferred weekdays, and
// stores one calendar entry per workout. Date computation failures abort
// the run; per-entry storage failures are collected so the rest of the
// plan still lands.
func (s *scheduleService) Schedule(ctx context.Context, req ScheduleRequest) (*ScheduleResult, error) {
	workouts, err := s.workoutRepo.List(ctx, req.Prefix)
	if err != nil {
		return nil, err
	}

	ordered, err := plan.IndexPlan(workouts, req.Prefix)
	if err != nil {
		return nil, err
	}
	if len(ordered) == 0 {
		return nil, ErrNoWorkoutsToSchedule
	}

	weekdays := req.Weekdays
	if len(weekdays) == 0 {
		weekdays = s.defaultWeekdays
	}
	if len(weekdays) == 0 {
		// Nothing requested or configured: derive a spread from how many
		// sessions the plan packs into a week.
		weekdays = plan.DefaultWeekdays(plan.SessionsPerWeek(ordered))
	}

	assignments, err := plan.Schedule(ordered, req.RaceDay, weekdays, s.now().UTC())
	if err != nil {
		return nil, err
	}

	result := &ScheduleResult{DryRun: req.DryRun}
	for _, a := range assignments {
		result.Assignments = append(result.Assignments, ScheduledAssignment{Name: a.Workout.Name, Date: a.Date})
	}
	if req.DryRun {
		return result, nil
	}

	for _, a := range assignments {
		entry := &domain.ScheduledWorkout{
			WorkoutID: a.Workout.ID,
			Name:      a.Workout.Name,
			Date:      a.Date,
		}
		if _, err := s.calendarRepo.Schedule(ctx, entry); err != nil {
			log.Printf("WARN: failed to schedule workout %q on %s: %v", a.Workout.Name, a.Date.Format(plan.DateLayout), err)
			result.Failures = append(result.Failures, ScheduleFailure{Name: a.Workout.Name, Reason: err.Error()})
		}
	}
	return result, nil
}

// Unschedule clears the calendar entries of every workout in the plan.
// Workouts that were never scheduled are skipped silently.
func (s *scheduleService) Unschedule(ctx context.Context, prefix string) (int, error) {
	workouts, err := s.workoutRepo.List(ctx, prefix)
	if err != nil {
		return 0, err
	}
	cleared := 0
	for _, workout := range workouts {
		if _, err := s.calendarRepo.GetByWorkoutID(ctx, workout.ID); errors.Is(err, repository.ErrNotFound) {
			continue
		} else if err != nil {
			return cleared, err
		}
		if err := s.calendarRepo.Unschedule(ctx, workout.Name); err != nil {
			return cleared, err
		}
		cleared++
	}
	return cleared, nil
}

// ListScheduled returns the calendar entries with from <= date < to.
func (s *scheduleService) ListScheduled(ctx context.Context, from, to time.Time) ([]domain.ScheduledWorkout, error) {
	return s.calendarRepo.ListScheduled(ctx, from, to)
}
