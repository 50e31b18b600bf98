package plan

import (
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"alcyxob/plan-compiler/internal/domain"
)

// sessionPattern is the documented naming contract tying a workout to its
// plan: after stripping the plan prefix, a schedulable workout is named
// "W<ww>S<ss> <description>".
var sessionPattern = regexp.MustCompile(`^W(\d{2})S(\d{2})\b\s*(.*)$`)

// IndexedWorkout pairs a workout with its derived ordering key.
type IndexedWorkout struct {
	Key     domain.PlanIndexKey
	Workout domain.Workout
}

// IndexPlan selects the workouts belonging to the plan identified by prefix
// and orders them by (week, session). Workouts whose names do not match the
// naming contract are skipped with a diagnostic; they remain valid for
// import and export but cannot be scheduled. Two workouts claiming the same
// (week, session) slot fail with DuplicateSessionError.
func IndexPlan(workouts []domain.Workout, prefix string) ([]IndexedWorkout, error) {
	indexed := make([]IndexedWorkout, 0, len(workouts))
	seen := make(map[domain.PlanIndexKey]string)

	for _, workout := range workouts {
		if !strings.HasPrefix(workout.Name, prefix) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(workout.Name, prefix))
		m := sessionPattern.FindStringSubmatch(rest)
		if m == nil {
			log.Printf("WARN: workout %q does not match the W<ww>S<ss> naming contract, excluded from scheduling", workout.Name)
			continue
		}
		week, _ := strconv.Atoi(m[1])
		session, _ := strconv.Atoi(m[2])
		key := domain.PlanIndexKey{Prefix: prefix, Week: week, Session: session}

		if first, dup := seen[key]; dup {
			return nil, &DuplicateSessionError{Key: key, First: first, Other: workout.Name}
		}
		seen[key] = workout.Name
		indexed = append(indexed, IndexedWorkout{Key: key, Workout: workout})
	}

	sort.Slice(indexed, func(i, j int) bool {
		return indexed[i].Key.Less(indexed[j].Key)
	})
	return indexed, nil
}
