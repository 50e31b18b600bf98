package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"alcyxob/plan-compiler/internal/domain"
	"alcyxob/plan-compiler/internal/plan"
	"alcyxob/plan-compiler/internal/repository"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeWorkoutRepo is an in-memory repository.WorkoutRepository.
type fakeWorkoutRepo struct {
	workouts map[string]*domain.Workout // keyed by name
	failOn   map[string]error           // names whose Create fails
}

func newFakeWorkoutRepo() *fakeWorkoutRepo {
	return &fakeWorkoutRepo{
		workouts: map[string]*domain.Workout{},
		failOn:   map[string]error{},
	}
}

func (r *fakeWorkoutRepo) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if err, ok := r.failOn[workout.Name]; ok {
		return primitive.NilObjectID, err
	}
	if _, exists := r.workouts[workout.Name]; exists {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	workout.ID = primitive.NewObjectID()
	stored := *workout
	r.workouts[workout.Name] = &stored
	return workout.ID, nil
}

func (r *fakeWorkoutRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	for _, w := range r.workouts {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeWorkoutRepo) GetByName(ctx context.Context, name string) (*domain.Workout, error) {
	if w, ok := r.workouts[name]; ok {
		return w, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeWorkoutRepo) List(ctx context.Context, prefix string) ([]domain.Workout, error) {
	var names []string
	for name := range r.workouts {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	var out []domain.Workout
	for _, name := range names {
		out = append(out, *r.workouts[name])
	}
	return out, nil
}

func (r *fakeWorkoutRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	for name, w := range r.workouts {
		if w.ID == id {
			delete(r.workouts, name)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeWorkoutRepo) DeleteByName(ctx context.Context, name string) error {
	if _, ok := r.workouts[name]; !ok {
		return repository.ErrNotFound
	}
	delete(r.workouts, name)
	return nil
}

func testDocument(t *testing.T) *plan.Document {
	t.Helper()
	intervals, err := plan.ParseSteps("warmup: 10min @ Z2\ninterval: 5km @ Z4\ncooldown: 5min")
	if err != nil {
		t.Fatalf("parse steps: %v", err)
	}
	easy, err := plan.ParseSteps("interval: 40min @ Z2")
	if err != nil {
		t.Fatalf("parse steps: %v", err)
	}
	return &plan.Document{
		Config: domain.PlanConfig{
			NamePrefix: "MAR ",
			Paces: map[string]string{
				"Z2": "6:00-6:30",
				"Z4": "4:40",
			},
		},
		Workouts: []plan.DocumentWorkout{
			{Name: "W01S01 Intervals", Steps: intervals},
			{Name: "W01S02 Easy run", Steps: easy},
		},
	}
}

func TestImportDocumentStoresCompiledWorkouts(t *testing.T) {
	repo := newFakeWorkoutRepo()
	svc := NewPlanService(repo, nil)

	summary, err := svc.ImportDocument(context.Background(), testDocument(t), ImportOptions{})
	if err != nil {
		t.Fatalf("ImportDocument() error = %v", err)
	}

	want := []string{"MAR W01S01 Intervals", "MAR W01S02 Easy run"}
	if diff := cmp.Diff(want, summary.Imported); diff != "" {
		t.Errorf("imported names mismatch (-want +got):\n%s", diff)
	}
	if len(summary.Skipped) != 0 || len(summary.Failures) != 0 {
		t.Errorf("unexpected skips %v or failures %v", summary.Skipped, summary.Failures)
	}

	stored, err := repo.GetByName(context.Background(), "MAR W01S01 Intervals")
	if err != nil {
		t.Fatalf("stored workout missing: %v", err)
	}
	if stored.Steps[0].Target == nil || stored.Steps[0].Target.Type != domain.TargetPace {
		t.Errorf("stored workout steps were not resolved: %+v", stored.Steps[0])
	}
}

func TestImportDocumentSkipsDuplicatesWithoutReplace(t *testing.T) {
	repo := newFakeWorkoutRepo()
	svc := NewPlanService(repo, nil)
	ctx := context.Background()

	if _, err := svc.ImportDocument(ctx, testDocument(t), ImportOptions{}); err != nil {
		t.Fatalf("first import: %v", err)
	}
	summary, err := svc.ImportDocument(ctx, testDocument(t), ImportOptions{})
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if len(summary.Imported) != 0 {
		t.Errorf("expected nothing imported, got %v", summary.Imported)
	}
	if len(summary.Skipped) != 2 {
		t.Errorf("expected both workouts skipped, got %v", summary.Skipped)
	}
}

func TestImportDocumentReplaceOverwrites(t *testing.T) {
	repo := newFakeWorkoutRepo()
	svc := NewPlanService(repo, nil)
	ctx := context.Background()

	if _, err := svc.ImportDocument(ctx, testDocument(t), ImportOptions{}); err != nil {
		t.Fatalf("first import: %v", err)
	}
	firstID := repo.workouts["MAR W01S01 Intervals"].ID

	summary, err := svc.ImportDocument(ctx, testDocument(t), ImportOptions{Replace: true})
	if err != nil {
		t.Fatalf("replace import: %v", err)
	}
	if len(summary.Imported) != 2 {
		t.Errorf("expected both workouts re-imported, got %v", summary.Imported)
	}
	if repo.workouts["MAR W01S01 Intervals"].ID == firstID {
		t.Error("expected replace to store a fresh workout")
	}
}

func TestImportDocumentNameFilter(t *testing.T) {
	repo := newFakeWorkoutRepo()
	svc := NewPlanService(repo, nil)

	summary, err := svc.ImportDocument(context.Background(), testDocument(t), ImportOptions{NameFilter: `S01\b`})
	if err != nil {
		t.Fatalf("ImportDocument() error = %v", err)
	}
	if diff := cmp.Diff([]string{"MAR W01S01 Intervals"}, summary.Imported); diff != "" {
		t.Errorf("imported names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"MAR W01S02 Easy run"}, summary.Skipped); diff != "" {
		t.Errorf("skipped names mismatch (-want +got):\n%s", diff)
	}
}

func TestImportDocumentRejectsBadNameFilter(t *testing.T) {
	svc := NewPlanService(newFakeWorkoutRepo(), nil)
	_, err := svc.ImportDocument(context.Background(), testDocument(t), ImportOptions{NameFilter: "("})
	if !errors.Is(err, ErrInvalidNameFilter) {
		t.Errorf("expected ErrInvalidNameFilter, got %v", err)
	}
}

func TestImportDocumentDryRunStoresNothing(t *testing.T) {
	repo := newFakeWorkoutRepo()
	svc := NewPlanService(repo, nil)

	summary, err := svc.ImportDocument(context.Background(), testDocument(t), ImportOptions{DryRun: true})
	if err != nil {
		t.Fatalf("ImportDocument() error = %v", err)
	}
	if !summary.DryRun || len(summary.Imported) != 2 {
		t.Errorf("unexpected dry-run summary: %+v", summary)
	}
	if len(repo.workouts) != 0 {
		t.Errorf("dry run stored %d workouts", len(repo.workouts))
	}
}

func TestImportDocumentCollectsStorageFailures(t *testing.T) {
	repo := newFakeWorkoutRepo()
	repo.failOn["MAR W01S01 Intervals"] = errors.New("write timeout")
	svc := NewPlanService(repo, nil)

	summary, err := svc.ImportDocument(context.Background(), testDocument(t), ImportOptions{})
	if err != nil {
		t.Fatalf("ImportDocument() error = %v", err)
	}
	if len(summary.Failures) != 1 || summary.Failures[0].Name != "MAR W01S01 Intervals" {
		t.Fatalf("expected one failure for the first workout, got %+v", summary.Failures)
	}
	// The rest of the batch still lands.
	if diff := cmp.Diff([]string{"MAR W01S02 Easy run"}, summary.Imported); diff != "" {
		t.Errorf("imported names mismatch (-want +got):\n%s", diff)
	}
}

func TestImportDocumentCompileErrorAborts(t *testing.T) {
	repo := newFakeWorkoutRepo()
	svc := NewPlanService(repo, nil)

	doc := testDocument(t)
	doc.Config.Paces = map[string]string{} // break zone resolution

	_, err := svc.ImportDocument(context.Background(), doc, ImportOptions{})
	if err == nil {
		t.Fatal("expected compile error")
	}
	if len(repo.workouts) != 0 {
		t.Errorf("failed import stored %d workouts", len(repo.workouts))
	}
}

func TestExportDocumentCleanStripsTargets(t *testing.T) {
	repo := newFakeWorkoutRepo()
	svc := NewPlanService(repo, nil)
	ctx := context.Background()

	if _, err := svc.ImportDocument(ctx, testDocument(t), ImportOptions{}); err != nil {
		t.Fatalf("import: %v", err)
	}

	doc, err := svc.ExportDocument(ctx, ExportOptions{Prefix: "MAR ", Clean: true})
	if err != nil {
		t.Fatalf("ExportDocument() error = %v", err)
	}
	if len(doc.Workouts) != 2 {
		t.Fatalf("expected 2 workouts, got %d", len(doc.Workouts))
	}
	if doc.Workouts[0].Name != "W01S01 Intervals" {
		t.Errorf("expected prefix stripped, got %q", doc.Workouts[0].Name)
	}
	var check func(steps []domain.Step)
	check = func(steps []domain.Step) {
		for _, step := range steps {
			if step.Target != nil {
				t.Errorf("step %q still carries a resolved target", step.Kind)
			}
			check(step.Steps)
		}
	}
	for _, w := range doc.Workouts {
		check(w.Steps)
	}

	// Symbolic references survive cleaning.
	if doc.Workouts[0].Steps[0].TargetRef != "Z2" {
		t.Errorf("expected TargetRef preserved, got %q", doc.Workouts[0].Steps[0].TargetRef)
	}
}

func TestDeleteWorkoutsByPrefix(t *testing.T) {
	repo := newFakeWorkoutRepo()
	svc := NewPlanService(repo, nil)
	ctx := context.Background()

	if _, err := svc.ImportDocument(ctx, testDocument(t), ImportOptions{}); err != nil {
		t.Fatalf("import: %v", err)
	}

	deleted, err := svc.DeleteWorkouts(ctx, "MAR ", "")
	if err != nil {
		t.Fatalf("DeleteWorkouts() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}
	if len(repo.workouts) != 0 {
		t.Errorf("%d workouts left behind", len(repo.workouts))
	}
}

func TestDeleteWorkoutsNameFilter(t *testing.T) {
	repo := newFakeWorkoutRepo()
	svc := NewPlanService(repo, nil)
	ctx := context.Background()

	if _, err := svc.ImportDocument(ctx, testDocument(t), ImportOptions{}); err != nil {
		t.Fatalf("import: %v", err)
	}

	deleted, err := svc.DeleteWorkouts(ctx, "MAR ", `S02\b`)
	if err != nil {
		t.Fatalf("DeleteWorkouts() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if _, err := repo.GetByName(ctx, "MAR W01S01 Intervals"); err != nil {
		t.Error("expected the unmatched workout to survive")
	}

	if _, err := svc.DeleteWorkouts(ctx, "MAR ", "("); !errors.Is(err, ErrInvalidNameFilter) {
		t.Errorf("expected ErrInvalidNameFilter, got %v", err)
	}
}

func TestArchiveExportWithoutStorage(t *testing.T) {
	svc := NewPlanService(newFakeWorkoutRepo(), nil)
	_, err := svc.ArchiveExport(context.Background(), &plan.Document{})
	if !errors.Is(err, ErrArchiveDisabled) {
		t.Errorf("expected ErrArchiveDisabled, got %v", err)
	}
}
