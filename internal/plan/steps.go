package plan

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"alcyxob/plan-compiler/internal/domain"
)

var (
	repeatHeaderPattern = regexp.MustCompile(`^repeat\s+(\d+)$`)
	timeQtyPattern      = regexp.MustCompile(`^(\d+)(min|h|s)$`)
	distQtyPattern      = regexp.MustCompile(`^(\d+(?:\.\d+)?)(km|m)$`)
)

// LapTriggerToken is the literal quantity marking a step that ends on the
// lap button rather than after a fixed time or distance.
const LapTriggerToken = "lap-button"

// ParseStepExpr builds a step from a kind token and its expression, the
// single-key form used by the YAML document ("warmup" -> "10min @ Z2").
// Unknown kinds degrade to "other" with a warning; "steady" is normalized
// to "interval".
func ParseStepExpr(kind, expr string) (domain.Step, error) {
	return parseStepExpr(kind, expr, expr, 0)
}

// ParseStepLine parses one textual step line of the form
// "kind: quantity [@ target | @hr target] [-- description]".
func ParseStepLine(line string, number int) (domain.Step, error) {
	trimmed := strings.TrimSpace(line)
	idx := strings.Index(trimmed, ":")
	if idx < 0 {
		return domain.Step{}, &StepSyntaxError{Line: trimmed, Number: number, Reason: "missing ':' separator"}
	}
	kind := strings.ToLower(strings.TrimSpace(trimmed[:idx]))
	expr := strings.TrimSpace(trimmed[idx+1:])
	return parseStepExpr(kind, expr, trimmed, number)
}

func parseStepExpr(kind, expr, line string, number int) (domain.Step, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	step := domain.Step{Kind: domain.StepKind(kind)}

	switch {
	case kind == "steady":
		log.Printf("WARN: step kind \"steady\" is not supported, treating as \"interval\" (line %d)", number)
		step.Kind = domain.StepInterval
	case kind == string(domain.StepRepeat):
		return domain.Step{}, &StepSyntaxError{Line: line, Number: number, Reason: "repeat requires an iteration count (\"repeat N:\")"}
	case !domain.KnownStepKinds[step.Kind]:
		log.Printf("WARN: unknown step kind %q, treating as \"other\" (line %d)", kind, number)
		step.Kind = domain.StepOther
	}

	// Split off the free-text description first; everything inside it is
	// opaque.
	if idx := strings.Index(expr, " -- "); idx >= 0 {
		step.Description = strings.TrimSpace(expr[idx+4:])
		expr = strings.TrimSpace(expr[:idx])
	} else if strings.HasPrefix(expr, "-- ") {
		step.Description = strings.TrimSpace(expr[3:])
		expr = ""
	}

	// Then the target.
	if idx := strings.Index(expr, "@hr"); idx >= 0 {
		step.TargetRef = strings.TrimSpace(expr[idx+3:])
		step.HeartRate = true
		expr = strings.TrimSpace(expr[:idx])
	} else if idx := strings.Index(expr, "@"); idx >= 0 {
		step.TargetRef = strings.TrimSpace(expr[idx+1:])
		expr = strings.TrimSpace(expr[:idx])
	}
	if step.HeartRate && step.TargetRef == "" {
		return domain.Step{}, &StepSyntaxError{Line: line, Number: number, Reason: "empty @hr target"}
	}

	// What remains is the quantity. A "<distance> in <time>" quantity is a
	// shorthand for a distance step paced to cover it in that time.
	quantity := strings.TrimSpace(expr)
	if step.TargetRef == "" && strings.Contains(quantity, " in ") {
		step.TargetRef = quantity
		quantity = strings.TrimSpace(quantity[:strings.Index(quantity, " in ")])
	}

	switch {
	case quantity == "" || quantity == LapTriggerToken || quantity == "lap":
		if quantity == "" && step.Kind != domain.StepRest {
			return domain.Step{}, &StepSyntaxError{Line: line, Number: number, Reason: "missing quantity"}
		}
		step.EndCondition = domain.EndLapButton
	default:
		if m := timeQtyPattern.FindStringSubmatch(quantity); m != nil {
			n, _ := strconv.Atoi(m[1])
			switch m[2] {
			case "h":
				n *= 3600
			case "min":
				n *= 60
			}
			step.EndCondition = domain.EndTime
			step.DurationSeconds = n
			break
		}
		if m := distQtyPattern.FindStringSubmatch(quantity); m != nil {
			meters, err := ParseDistance(quantity)
			if err != nil {
				return domain.Step{}, &StepSyntaxError{Line: line, Number: number, Reason: err.Error()}
			}
			step.EndCondition = domain.EndDistance
			step.DistanceMeters = meters
			break
		}
		return domain.Step{}, &StepSyntaxError{Line: line, Number: number, Reason: "unparsable quantity " + strconv.Quote(quantity)}
	}

	return step, nil
}

// ParseSteps parses newline-delimited step text, the form used by the
// spreadsheet Workouts table. Semicolons are accepted as separators too.
// A "repeat N:" line opens a block whose more-indented following lines are
// the repeated children; dedenting closes the block. Blocks may nest.
func ParseSteps(text string) ([]domain.Step, error) {
	lines := strings.Split(strings.ReplaceAll(text, ";", "\n"), "\n")
	steps, rest, err := parseBlock(lines, 1, -1)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		// A dedent below the first line's level; cannot happen with
		// parentIndent == -1.
		return nil, &StepSyntaxError{Line: rest[0], Number: len(lines) - len(rest) + 1, Reason: "unexpected indentation"}
	}
	return steps, nil
}

// parseBlock consumes lines more indented than parentIndent, returning the
// parsed steps and the unconsumed tail. offset is the 1-based number of the
// first line for diagnostics.
func parseBlock(lines []string, offset, parentIndent int) ([]domain.Step, []string, error) {
	var steps []domain.Step

	for len(lines) > 0 {
		line := lines[0]
		if strings.TrimSpace(line) == "" {
			lines = lines[1:]
			offset++
			continue
		}
		indent := indentOf(line)
		if indent <= parentIndent {
			return steps, lines, nil
		}
		number := offset

		trimmed := strings.TrimSpace(line)
		head, tail, hasColon := strings.Cut(trimmed, ":")
		if hasColon && repeatHeaderPattern.MatchString(strings.TrimSpace(head)) && strings.TrimSpace(tail) == "" {
			count, _ := strconv.Atoi(repeatHeaderPattern.FindStringSubmatch(strings.TrimSpace(head))[1])
			if count <= 0 {
				return nil, nil, &StepSyntaxError{Line: trimmed, Number: number, Reason: "repeat count must be positive"}
			}
			children, rest, err := parseBlock(lines[1:], offset+1, indent)
			if err != nil {
				return nil, nil, err
			}
			if len(children) == 0 {
				return nil, nil, &StepSyntaxError{Line: trimmed, Number: number, Reason: "repeat block has no steps"}
			}
			steps = append(steps, domain.Step{
				Kind:         domain.StepRepeat,
				EndCondition: domain.EndIterations,
				Repeat:       count,
				Steps:        children,
			})
			offset += 1 + (len(lines) - 1 - len(rest))
			lines = rest
			continue
		}

		step, err := ParseStepLine(trimmed, number)
		if err != nil {
			return nil, nil, err
		}
		steps = append(steps, step)
		lines = lines[1:]
		offset++
	}
	return steps, nil, nil
}

func indentOf(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}
