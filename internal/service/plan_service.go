package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"alcyxob/plan-compiler/internal/domain"
	"alcyxob/plan-compiler/internal/excel"
	"alcyxob/plan-compiler/internal/plan"
	"alcyxob/plan-compiler/internal/repository"
	"alcyxob/plan-compiler/internal/storage"

	"github.com/google/uuid"
)

var (
	ErrInvalidNameFilter = errors.New("invalid name filter expression")
	ErrArchiveDisabled   = errors.New("export archiving is not configured")
)

// ImportOptions tune a single plan import.
type ImportOptions struct {
	// NameFilter is an optional regular expression; only workouts whose
	// full name matches it are imported.
	NameFilter string
	// Replace overwrites stored workouts that collide on name instead of
	// skipping them.
	Replace bool
	// Treadmill converts distance steps with pace targets into timed steps.
	Treadmill bool
	// DryRun compiles everything but stores nothing.
	DryRun bool
}

// ImportFailure records one workout the import could not store.
type ImportFailure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ImportSummary reports the outcome of a plan import.
type ImportSummary struct {
	Imported []string        `json:"imported"`
	Skipped  []string        `json:"skipped"`
	Failures []ImportFailure `json:"failures"`
	DryRun   bool            `json:"dryRun"`
}

// ExportOptions tune a plan export.
type ExportOptions struct {
	// Prefix selects the plan; empty exports everything.
	Prefix string
	// Clean strips resolved targets so the document can be re-edited and
	// re-imported against a different zone table.
	Clean bool
}

// PlanService compiles plan documents into stored workouts and back.
type PlanService interface {
	ImportDocument(ctx context.Context, doc *plan.Document, opts ImportOptions) (*ImportSummary, error)
	ExportDocument(ctx context.Context, opts ExportOptions) (*plan.Document, error)
	// ArchiveExport renders the document as a workbook, uploads it to
	// object storage, and returns a presigned download URL.
	ArchiveExport(ctx context.Context, doc *plan.Document) (string, error)
	// DeleteWorkouts removes workouts by name prefix; nameFilter optionally
	// narrows the selection with a regular expression.
	DeleteWorkouts(ctx context.Context, prefix, nameFilter string) (int, error)
	GetWorkout(ctx context.Context, name string) (*domain.Workout, error)
	ListWorkouts(ctx context.Context, prefix string) ([]domain.Workout, error)
}

// planService implements the PlanService interface.
type planService struct {
	workoutRepo repository.WorkoutRepository
	fileStorage storage.FileStorage // nil when archiving is disabled
}

// NewPlanService creates a new instance of planService.
func NewPlanService(workoutRepo repository.WorkoutRepository, fileStorage storage.FileStorage) PlanService {
	return &planService{
		workoutRepo: workoutRepo,
		fileStorage: fileStorage,
	}
}

// ImportDocument compiles every workout in the document and stores the
// results. Compilation errors abort the import before anything is written;
// storage errors are collected per workout so one bad write does not waste
// the rest of the batch.
func (s *planService) ImportDocument(ctx context.Context, doc *plan.Document, opts ImportOptions) (*ImportSummary, error) {
	var filter *regexp.Regexp
	if opts.NameFilter != "" {
		var err error
		filter, err = regexp.Compile(opts.NameFilter)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidNameFilter, err)
		}
	}

	compileOpts := plan.CompileOptions{Treadmill: opts.Treadmill}
	summary := &ImportSummary{DryRun: opts.DryRun}

	var compiled []*domain.Workout
	for _, w := range doc.Workouts {
		workout, err := plan.Compile(w.Name, w.Steps, w.Date, &doc.Config, compileOpts)
		if err != nil {
			return nil, err
		}
		if filter != nil && !filter.MatchString(workout.Name) {
			summary.Skipped = append(summary.Skipped, workout.Name)
			continue
		}
		compiled = append(compiled, workout)
	}

	if opts.DryRun {
		for _, workout := range compiled {
			summary.Imported = append(summary.Imported, workout.Name)
		}
		return summary, nil
	}

	for _, workout := range compiled {
		if opts.Replace {
			if err := s.workoutRepo.DeleteByName(ctx, workout.Name); err != nil && !errors.Is(err, repository.ErrNotFound) {
				summary.Failures = append(summary.Failures, ImportFailure{Name: workout.Name, Reason: err.Error()})
				continue
			}
		}
		_, err := s.workoutRepo.Create(ctx, workout)
		if errors.Is(err, repository.ErrDuplicate) {
			summary.Skipped = append(summary.Skipped, workout.Name)
			continue
		}
		if err != nil {
			summary.Failures = append(summary.Failures, ImportFailure{Name: workout.Name, Reason: err.Error()})
			continue
		}
		summary.Imported = append(summary.Imported, workout.Name)
	}
	return summary, nil
}

// ExportDocument rebuilds a plan document from stored workouts.
func (s *planService) ExportDocument(ctx context.Context, opts ExportOptions) (*plan.Document, error) {
	workouts, err := s.workoutRepo.List(ctx, opts.Prefix)
	if err != nil {
		return nil, err
	}

	doc := &plan.Document{
		Config: domain.PlanConfig{
			NamePrefix: opts.Prefix,
			Paces:      map[string]string{},
			HeartRates: map[string]string{},
		},
	}
	for _, workout := range workouts {
		name := strings.TrimPrefix(workout.Name, opts.Prefix)
		steps := workout.Steps
		if opts.Clean {
			steps = cleanSteps(steps)
		}
		doc.Workouts = append(doc.Workouts, plan.DocumentWorkout{
			Name:  name,
			Date:  workout.PinnedDate,
			Steps: steps,
		})
	}
	return doc, nil
}

// cleanSteps drops the resolved numeric targets, keeping the symbolic zone
// references, so the exported document compiles against whatever zone table
// it is next imported with.
func cleanSteps(steps []domain.Step) []domain.Step {
	cleaned := make([]domain.Step, len(steps))
	copy(cleaned, steps)
	for i := range cleaned {
		cleaned[i].Target = nil
		if len(cleaned[i].Steps) > 0 {
			cleaned[i].Steps = cleanSteps(cleaned[i].Steps)
		}
	}
	return cleaned
}

// ArchiveExport uploads the document as a workbook and returns a download URL.
func (s *planService) ArchiveExport(ctx context.Context, doc *plan.Document) (string, error) {
	if s.fileStorage == nil {
		return "", ErrArchiveDisabled
	}

	var buf bytes.Buffer
	if err := excel.WritePlan(&buf, doc); err != nil {
		return "", fmt.Errorf("render export workbook: %w", err)
	}

	objectKey := fmt.Sprintf("exports/%s/%s.xlsx", time.Now().UTC().Format("2006-01-02"), uuid.NewString())
	const contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if err := s.fileStorage.PutObject(ctx, objectKey, contentType, &buf); err != nil {
		return "", err
	}
	log.Printf("INFO: Archived plan export as %s", objectKey)

	return s.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, storage.DefaultPresignedURLExpiry)
}

// DeleteWorkouts removes every stored workout whose name starts with prefix
// (optionally narrowed by a regex) and reports how many went away.
func (s *planService) DeleteWorkouts(ctx context.Context, prefix, nameFilter string) (int, error) {
	var filter *regexp.Regexp
	if nameFilter != "" {
		var err error
		filter, err = regexp.Compile(nameFilter)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidNameFilter, err)
		}
	}

	workouts, err := s.workoutRepo.List(ctx, prefix)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, workout := range workouts {
		if filter != nil && !filter.MatchString(workout.Name) {
			continue
		}
		if err := s.workoutRepo.Delete(ctx, workout.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// GetWorkout fetches one stored workout by full name.
func (s *planService) GetWorkout(ctx context.Context, name string) (*domain.Workout, error) {
	return s.workoutRepo.GetByName(ctx, name)
}

// ListWorkouts fetches stored workouts by name prefix.
func (s *planService) ListWorkouts(ctx context.Context, prefix string) ([]domain.Workout, error) {
	return s.workoutRepo.List(ctx, prefix)
}
