package plan

import (
	"strings"
	"testing"

	"alcyxob/plan-compiler/internal/domain"
)

func TestCompilePrefixesNameAndResolvesTargets(t *testing.T) {
	cfg := testConfig()
	cfg.NamePrefix = "MYRUN "

	steps, err := ParseSteps("warmup: 10min @ Z2\nrepeat 2:\n  interval: 1km @ marathon\n  recovery: 2min @hr Z1_HR\ncooldown: 5min")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	workout, err := Compile("W01S01 easy run", steps, nil, cfg, CompileOptions{})
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	if workout.Name != "MYRUN W01S01 easy run" {
		t.Errorf("expected prefixed name, got %q", workout.Name)
	}
	if workout.Steps[0].Target == nil || workout.Steps[0].Target.Type != domain.TargetPace {
		t.Errorf("warmup target not resolved: %+v", workout.Steps[0])
	}
	repeat := workout.Steps[1]
	if repeat.Steps[0].Target == nil || repeat.Steps[0].Target.Low != 330 {
		t.Errorf("repeat child pace not resolved: %+v", repeat.Steps[0])
	}
	if repeat.Steps[1].Target == nil || repeat.Steps[1].Target.Type != domain.TargetHeartRate {
		t.Errorf("repeat child heart rate not resolved: %+v", repeat.Steps[1])
	}
	if workout.Steps[2].Target != nil {
		t.Errorf("cooldown has no target ref, expected nil target: %+v", workout.Steps[2])
	}
}

func TestCompileDoesNotMutateInput(t *testing.T) {
	cfg := testConfig()
	steps, err := ParseSteps("repeat 2:\n  interval: 1km @ marathon")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if _, err := Compile("x", steps, nil, cfg, CompileOptions{}); err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	if steps[0].Steps[0].Target != nil {
		t.Error("compile mutated the input step tree")
	}
}

func TestCompileTreadmillConversion(t *testing.T) {
	cfg := &domain.PlanConfig{Paces: map[string]string{"pace": "5:00"}}

	steps, err := ParseSteps("interval: 5km @ pace")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	workout, err := Compile("treadmill run", steps, nil, cfg, CompileOptions{Treadmill: true})
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	step := workout.Steps[0]
	if step.EndCondition != domain.EndTime {
		t.Fatalf("expected time end condition, got %s", step.EndCondition)
	}
	if step.DurationSeconds != 1500 {
		t.Errorf("expected 25min (1500s), got %ds", step.DurationSeconds)
	}
	if step.DistanceMeters != 0 {
		t.Errorf("expected distance cleared, got %v", step.DistanceMeters)
	}
	if !strings.Contains(step.Description, "12.0 kmph") {
		t.Errorf("expected description to contain \"12.0 kmph\", got %q", step.Description)
	}
}

func TestCompileTreadmillSuffixForcesConversion(t *testing.T) {
	cfg := &domain.PlanConfig{Paces: map[string]string{"pace": "5:00"}}

	steps, err := ParseSteps("interval: 5km @ pace")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	workout, err := Compile("W01S01 intervals (T)", steps, nil, cfg, CompileOptions{})
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	if workout.Steps[0].EndCondition != domain.EndTime {
		t.Errorf("expected the (T) suffix to force conversion, got %+v", workout.Steps[0])
	}
}

func TestCompileTreadmillLeavesTimedAndLapStepsAlone(t *testing.T) {
	cfg := &domain.PlanConfig{Paces: map[string]string{"pace": "5:00"}}

	steps, err := ParseSteps("warmup: 10min @ pace\nrest:")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	workout, err := Compile("x", steps, nil, cfg, CompileOptions{Treadmill: true})
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	if workout.Steps[0].EndCondition != domain.EndTime || workout.Steps[0].DurationSeconds != 600 {
		t.Errorf("timed step should be untouched: %+v", workout.Steps[0])
	}
	if workout.Steps[1].EndCondition != domain.EndLapButton {
		t.Errorf("lap step should be untouched: %+v", workout.Steps[1])
	}
}

func TestCompileErrorCarriesWorkoutName(t *testing.T) {
	cfg := testConfig()

	steps, err := ParseSteps("interval: 5km @ undefined_zone")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	_, err = Compile("W02S01 tempo", steps, nil, cfg, CompileOptions{})
	if err == nil {
		t.Fatal("expected compile error")
	}
	if !strings.Contains(err.Error(), "W02S01 tempo") {
		t.Errorf("expected error to name the workout, got %v", err)
	}
}
