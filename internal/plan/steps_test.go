package plan

import (
	"errors"
	"testing"

	"alcyxob/plan-compiler/internal/domain"

	"github.com/google/go-cmp/cmp"
)

func TestParseStepLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    domain.Step
		wantErr bool
	}{
		{
			name: "timed step with pace target",
			line: "warmup: 10min @ Z2",
			want: domain.Step{
				Kind:            domain.StepWarmup,
				EndCondition:    domain.EndTime,
				DurationSeconds: 600,
				TargetRef:       "Z2",
			},
		},
		{
			name: "distance step with raw pace",
			line: "interval: 5km @ 5:00",
			want: domain.Step{
				Kind:           domain.StepInterval,
				EndCondition:   domain.EndDistance,
				DistanceMeters: 5000,
				TargetRef:      "5:00",
			},
		},
		{
			name: "heart rate target",
			line: "recovery: 2min @hr Z1_HR",
			want: domain.Step{
				Kind:            domain.StepRecovery,
				EndCondition:    domain.EndTime,
				DurationSeconds: 120,
				TargetRef:       "Z1_HR",
				HeartRate:       true,
			},
		},
		{
			name: "description",
			line: "cooldown: 5min -- shake it out",
			want: domain.Step{
				Kind:            domain.StepCooldown,
				EndCondition:    domain.EndTime,
				DurationSeconds: 300,
				Description:     "shake it out",
			},
		},
		{
			name: "rest without quantity defaults to lap trigger",
			line: "rest:",
			want: domain.Step{
				Kind:         domain.StepRest,
				EndCondition: domain.EndLapButton,
			},
		},
		{
			name: "explicit lap trigger",
			line: "other: lap-button",
			want: domain.Step{
				Kind:         domain.StepOther,
				EndCondition: domain.EndLapButton,
			},
		},
		{
			name: "distance in time shorthand",
			line: "interval: 10km in 45:00",
			want: domain.Step{
				Kind:           domain.StepInterval,
				EndCondition:   domain.EndDistance,
				DistanceMeters: 10000,
				TargetRef:      "10km in 45:00",
			},
		},
		{
			name: "unknown kind degrades to other",
			line: "jog: 10min",
			want: domain.Step{
				Kind:            domain.StepOther,
				EndCondition:    domain.EndTime,
				DurationSeconds: 600,
			},
		},
		{
			name: "steady normalized to interval",
			line: "steady: 20min @ Z2",
			want: domain.Step{
				Kind:            domain.StepInterval,
				EndCondition:    domain.EndTime,
				DurationSeconds: 1200,
				TargetRef:       "Z2",
			},
		},
		{
			name:    "missing separator",
			line:    "no colon here",
			wantErr: true,
		},
		{
			name:    "unparsable quantity",
			line:    "interval: fast",
			wantErr: true,
		},
		{
			name:    "missing quantity on non-rest step",
			line:    "warmup:",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStepLine(tt.line, 1)
			if tt.wantErr {
				var syntaxErr *StepSyntaxError
				if !errors.As(err, &syntaxErr) {
					t.Fatalf("expected StepSyntaxError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("step mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseStepsRepeatBlock(t *testing.T) {
	text := "warmup: 10min @ Z2\n" +
		"repeat 3:\n" +
		"  interval: 1km @ 4:30\n" +
		"  recovery: 2min @ Z1\n" +
		"cooldown: 5min"

	steps, err := ParseSteps(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(steps) != 3 {
		t.Fatalf("expected 3 top-level steps, got %d", len(steps))
	}

	repeat := steps[1]
	if repeat.Kind != domain.StepRepeat || repeat.Repeat != 3 {
		t.Fatalf("expected repeat x3, got %+v", repeat)
	}
	if repeat.EndCondition != domain.EndIterations {
		t.Errorf("expected iterations end condition, got %s", repeat.EndCondition)
	}
	if len(repeat.Steps) != 2 {
		t.Fatalf("expected 2 child steps, got %d", len(repeat.Steps))
	}
	if repeat.Steps[0].Kind != domain.StepInterval || repeat.Steps[1].Kind != domain.StepRecovery {
		t.Errorf("unexpected child kinds: %+v", repeat.Steps)
	}
	if steps[2].Kind != domain.StepCooldown {
		t.Errorf("expected trailing cooldown, got %+v", steps[2])
	}
}

func TestParseStepsNestedRepeat(t *testing.T) {
	text := "repeat 2:\n" +
		"  repeat 4:\n" +
		"    interval: 200m @ 4:00\n" +
		"  recovery: 3min"

	steps, err := ParseSteps(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("expected 1 top-level step, got %d", len(steps))
	}
	outer := steps[0]
	if outer.Repeat != 2 || len(outer.Steps) != 2 {
		t.Fatalf("unexpected outer repeat: %+v", outer)
	}
	inner := outer.Steps[0]
	if inner.Kind != domain.StepRepeat || inner.Repeat != 4 || len(inner.Steps) != 1 {
		t.Fatalf("unexpected inner repeat: %+v", inner)
	}
}

func TestParseStepsSemicolonSeparator(t *testing.T) {
	steps, err := ParseSteps("warmup: 10min; cooldown: 5min")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
}

func TestParseStepsEmptyRepeat(t *testing.T) {
	_, err := ParseSteps("repeat 3:\ncooldown: 5min")
	var syntaxErr *StepSyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected StepSyntaxError for empty repeat block, got %v", err)
	}
}

func TestParseStepsErrorCarriesLineNumber(t *testing.T) {
	_, err := ParseSteps("warmup: 10min\ninterval: nonsense quantity")
	var syntaxErr *StepSyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected StepSyntaxError, got %v", err)
	}
	if syntaxErr.Number != 2 {
		t.Errorf("expected line 2, got %d", syntaxErr.Number)
	}
}
