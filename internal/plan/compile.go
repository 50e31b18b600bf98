package plan

import (
	"fmt"
	"math"
	"strings"
	"time"

	"alcyxob/plan-compiler/internal/domain"
)

// TreadmillSuffix on a workout name forces the distance-to-time transform
// for that workout regardless of the compile options.
const TreadmillSuffix = "(T)"

// CompileOptions tune a single compile pass.
type CompileOptions struct {
	// Treadmill converts distance steps with a pace target into duration
	// steps, useful when distance is hard to measure on a treadmill.
	Treadmill bool
}

// Compile assembles parsed steps and the plan config into a complete,
// validated workout: the plan prefix is prepended to the name and every
// symbolic target is resolved to a concrete range. Compile is a pure
// transform; persisting the result is the caller's concern.
func Compile(name string, steps []domain.Step, pinned *time.Time, cfg *domain.PlanConfig, opts CompileOptions) (*domain.Workout, error) {
	fullName := cfg.NamePrefix + name
	resolver := NewResolver(cfg)

	compiled := make([]domain.Step, len(steps))
	copy(compiled, steps)
	if err := resolveSteps(compiled, resolver); err != nil {
		return nil, fmt.Errorf("workout %q: %w", fullName, err)
	}

	if opts.Treadmill || strings.HasSuffix(strings.TrimSpace(fullName), TreadmillSuffix) {
		distToTime(compiled)
	}

	return &domain.Workout{
		Name:       fullName,
		PinnedDate: pinned,
		Steps:      compiled,
	}, nil
}

// resolveSteps attaches a resolved target to every step carrying a symbolic
// reference, recursing into repeat children in place.
func resolveSteps(steps []domain.Step, resolver *Resolver) error {
	for i := range steps {
		step := &steps[i]
		if len(step.Steps) > 0 {
			children := make([]domain.Step, len(step.Steps))
			copy(children, step.Steps)
			if err := resolveSteps(children, resolver); err != nil {
				return err
			}
			step.Steps = children
		}
		if step.TargetRef == "" {
			continue
		}
		var (
			target domain.Target
			err    error
		)
		if step.HeartRate {
			target, err = resolver.HeartRate(step.TargetRef)
		} else {
			target, err = resolver.Pace(step.TargetRef)
		}
		if err != nil {
			return err
		}
		step.Target = &target
	}
	return nil
}

// distToTime rewrites distance steps with a resolved pace target into
// duration steps, using the midpoint of the pace range and rounding to the
// nearest 10 seconds. The equivalent speed is appended to the description
// so the converted step stays readable.
func distToTime(steps []domain.Step) {
	for i := range steps {
		step := &steps[i]
		if len(step.Steps) > 0 {
			distToTime(step.Steps)
		}
		if step.EndCondition != domain.EndDistance || step.Target == nil || step.Target.Type != domain.TargetPace {
			continue
		}
		midPace := (step.Target.Low + step.Target.High) / 2
		if midPace <= 0 {
			continue
		}
		seconds := int(math.Round(step.DistanceMeters/1000*midPace/10) * 10)

		step.EndCondition = domain.EndTime
		step.DurationSeconds = seconds
		step.DistanceMeters = 0

		kmph := fmt.Sprintf("%.1f kmph", PaceToKmph(midPace))
		if step.Description != "" {
			step.Description += "\n" + kmph
		} else {
			step.Description = kmph
		}
	}
}
