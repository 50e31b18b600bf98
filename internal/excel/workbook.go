// Package excel reads and writes the four-sheet training plan workbook
// (Config, Paces, HeartRates, Workouts). The workbook is structurally
// equivalent to the YAML plan document and compiles to the identical
// internal representation.
package excel

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"alcyxob/plan-compiler/internal/domain"
	"alcyxob/plan-compiler/internal/plan"

	"github.com/xuri/excelize/v2"
)

const (
	SheetConfig     = "Config"
	SheetPaces      = "Paces"
	SheetHeartRates = "HeartRates"
	SheetWorkouts   = "Workouts"
)

// workoutColumns are required in the Workouts sheet header; Date is optional.
var workoutColumns = []string{"Week", "Session", "Description", "Steps"}

// ReadPlan decodes a plan workbook into a document.
func ReadPlan(r io.Reader) (*plan.Document, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return readPlan(f)
}

// ReadPlanFile decodes a plan workbook from disk.
func ReadPlanFile(path string) (*plan.Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return readPlan(f)
}

func readPlan(f *excelize.File) (*plan.Document, error) {
	doc := &plan.Document{
		Config: domain.PlanConfig{
			Paces:      map[string]string{},
			HeartRates: map[string]string{},
		},
	}

	if err := readConfigSheet(f, &doc.Config); err != nil {
		return nil, err
	}
	readZoneSheet(f, SheetPaces, doc.Config.Paces)
	readZoneSheet(f, SheetHeartRates, doc.Config.HeartRates)

	if err := readWorkoutsSheet(f, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// readConfigSheet reads name_prefix and margins from the Config sheet
// (Parameter | Value | Slower | HR Up | HR Down). The sheet is optional.
func readConfigSheet(f *excelize.File, cfg *domain.PlanConfig) error {
	rows, err := f.GetRows(SheetConfig)
	if err != nil {
		return nil // sheet absent, keep defaults
	}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		switch strings.TrimSpace(strings.ToLower(cell(row, 0))) {
		case "name_prefix":
			prefix := strings.TrimSpace(cell(row, 1))
			if prefix != "" && !strings.HasSuffix(prefix, " ") {
				prefix += " "
			}
			cfg.NamePrefix = prefix
		case "margins":
			cfg.Margins.Faster = strings.TrimSpace(cell(row, 1))
			cfg.Margins.Slower = strings.TrimSpace(cell(row, 2))
			if v, err := strconv.Atoi(strings.TrimSpace(cell(row, 3))); err == nil {
				cfg.Margins.HRUp = v
			}
			if v, err := strconv.Atoi(strings.TrimSpace(cell(row, 4))); err == nil {
				cfg.Margins.HRDown = v
			}
		}
	}
	return nil
}

// readZoneSheet reads a Name | Value zone table. Missing sheets are fine.
func readZoneSheet(f *excelize.File, sheet string, table map[string]string) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return
	}
	for i, row := range rows {
		name := strings.TrimSpace(cell(row, 0))
		value := strings.TrimSpace(cell(row, 1))
		if name == "" || value == "" {
			continue
		}
		if i == 0 && strings.EqualFold(name, "name") {
			continue // header row
		}
		table[name] = value
	}
}

func readWorkoutsSheet(f *excelize.File, doc *plan.Document) error {
	rows, err := f.GetRows(SheetWorkouts)
	if err != nil {
		return fmt.Errorf("workbook has no %q sheet", SheetWorkouts)
	}

	// The header may sit in the first or the second row (a title row above
	// it is common in shared plan templates).
	headerIdx, columns := findHeader(rows)
	if columns == nil {
		return fmt.Errorf("%q sheet is missing required columns %v", SheetWorkouts, workoutColumns)
	}

	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		week := strings.TrimSpace(cell(row, columns["week"]))
		session := strings.TrimSpace(cell(row, columns["session"]))
		description := strings.TrimSpace(cell(row, columns["description"]))
		stepsText := strings.TrimSpace(cell(row, columns["steps"]))
		if week == "" || session == "" || description == "" || stepsText == "" {
			continue
		}

		weekNum, err := strconv.Atoi(week)
		if err != nil {
			return fmt.Errorf("%q sheet row %d: invalid week %q", SheetWorkouts, i+1, week)
		}
		sessionNum, err := strconv.Atoi(session)
		if err != nil {
			return fmt.Errorf("%q sheet row %d: invalid session %q", SheetWorkouts, i+1, session)
		}

		name := fmt.Sprintf("W%02dS%02d %s", weekNum, sessionNum, description)
		steps, err := plan.ParseSteps(stepsText)
		if err != nil {
			return fmt.Errorf("workout %q: %w", name, err)
		}

		workout := plan.DocumentWorkout{Name: name, Steps: steps}
		if dateCol, ok := columns["date"]; ok {
			if raw := strings.TrimSpace(cell(row, dateCol)); raw != "" {
				date, err := parseCellDate(raw)
				if err != nil {
					return fmt.Errorf("workout %q: %w", name, err)
				}
				workout.Date = &date
			}
		}
		doc.Workouts = append(doc.Workouts, workout)
	}
	return nil
}

// findHeader locates the header row among the first two rows and maps the
// lowercased column names to indexes.
func findHeader(rows [][]string) (int, map[string]int) {
	for idx := 0; idx < len(rows) && idx < 2; idx++ {
		columns := make(map[string]int)
		for col, name := range rows[idx] {
			columns[strings.TrimSpace(strings.ToLower(name))] = col
		}
		ok := true
		for _, required := range workoutColumns {
			if _, found := columns[strings.ToLower(required)]; !found {
				ok = false
				break
			}
		}
		if ok {
			return idx, columns
		}
	}
	return 0, nil
}

func parseCellDate(raw string) (time.Time, error) {
	for _, layout := range []string{plan.DateLayout, "01-02-06", "2006/01/02", "02.01.2006"} {
		if date, err := time.Parse(layout, raw); err == nil {
			return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// WritePlan renders a document as a plan workbook.
func WritePlan(w io.Writer, doc *plan.Document) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", SheetConfig)
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	writeRow(f, SheetConfig, 1, "Parameter", "Value", "Slower", "HR Up", "HR Down")
	writeRow(f, SheetConfig, 2, "name_prefix", strings.TrimSpace(doc.Config.NamePrefix))
	writeRow(f, SheetConfig, 3, "margins",
		doc.Config.Margins.Faster, doc.Config.Margins.Slower,
		strconv.Itoa(doc.Config.Margins.HRUp), strconv.Itoa(doc.Config.Margins.HRDown))
	f.SetCellStyle(SheetConfig, "A1", "E1", headerStyle)

	writeZoneSheet(f, SheetPaces, doc.Config.Paces, headerStyle)
	writeZoneSheet(f, SheetHeartRates, doc.Config.HeartRates, headerStyle)

	f.NewSheet(SheetWorkouts)
	writeRow(f, SheetWorkouts, 1, "Week", "Date", "Session", "Description", "Steps")
	f.SetCellStyle(SheetWorkouts, "A1", "E1", headerStyle)
	for i, workout := range doc.Workouts {
		week, session, description := splitSessionName(workout.Name)
		date := ""
		if workout.Date != nil {
			date = workout.Date.Format(plan.DateLayout)
		}
		writeRow(f, SheetWorkouts, i+2, week, date, session, description, stepsText(workout.Steps, 0))
	}

	_, err := f.WriteTo(w)
	return err
}

func writeZoneSheet(f *excelize.File, sheet string, table map[string]string, headerStyle int) {
	f.NewSheet(sheet)
	writeRow(f, sheet, 1, "Name", "Value")
	f.SetCellStyle(sheet, "A1", "B1", headerStyle)
	row := 2
	for _, name := range sortedKeys(table) {
		writeRow(f, sheet, row, name, table[name])
		row++
	}
}

func writeRow(f *excelize.File, sheet string, row int, values ...string) {
	for i, v := range values {
		cellName, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			continue
		}
		f.SetCellValue(sheet, cellName, v)
	}
}

var sessionNamePattern = regexp.MustCompile(`^W(\d{2})S(\d{2})\s*(.*)$`)

// splitSessionName takes a "W<ww>S<ss> <description>" name apart for the
// Week/Session/Description columns; names outside the contract land whole
// in the description column.
func splitSessionName(name string) (week, session, description string) {
	m := sessionNamePattern.FindStringSubmatch(name)
	if m == nil {
		return "", "", name
	}
	w, _ := strconv.Atoi(m[1])
	s, _ := strconv.Atoi(m[2])
	return strconv.Itoa(w), strconv.Itoa(s), m[3]
}

// stepsText renders steps back to the newline-delimited spreadsheet form.
func stepsText(steps []domain.Step, indent int) string {
	var lines []string
	pad := strings.Repeat("  ", indent)
	for _, step := range steps {
		if step.Kind == domain.StepRepeat {
			lines = append(lines, fmt.Sprintf("%srepeat %d:", pad, step.Repeat))
			lines = append(lines, stepsText(step.Steps, indent+1))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s%s: %s", pad, step.Kind, plan.FormatStepExpr(step)))
	}
	return strings.Join(lines, "\n")
}

func sortedKeys(table map[string]string) []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
