package plan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"alcyxob/plan-compiler/internal/domain"

	"gopkg.in/yaml.v3"
)

// DateLayout is the calendar date form used throughout plan documents.
const DateLayout = "2006-01-02"

var repeatKeyPattern = regexp.MustCompile(`^repeat\s+(\d+)$`)

// Document is the in-memory form of a plan document: plan-level config plus
// named workouts in source order.
type Document struct {
	Config   domain.PlanConfig
	Workouts []DocumentWorkout
}

// DocumentWorkout is one workout of a plan document, before compilation.
type DocumentWorkout struct {
	Name  string
	Date  *time.Time // from a leading "date:" pseudo-step
	Steps []domain.Step
}

// ParseDocument decodes a YAML plan document: a mapping from workout name to
// a sequence of step definitions, with an optional top-level "config" key.
// Each step definition is a single-key mapping (kind -> expression), the
// inline "repeat N:" form with a nested step sequence, or the normalized
// {repeat: N, steps: [...]} pair.
func ParseDocument(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("plan document: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("plan document: empty document")
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("plan document: top level must be a mapping of workout names")
	}

	doc := &Document{}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode, valueNode := mapping.Content[i], mapping.Content[i+1]
		name := keyNode.Value

		if name == "config" {
			cfg, err := decodeConfig(valueNode)
			if err != nil {
				return nil, err
			}
			doc.Config = cfg
			continue
		}

		workout, err := decodeWorkout(name, valueNode)
		if err != nil {
			return nil, err
		}
		doc.Workouts = append(doc.Workouts, workout)
	}
	return doc, nil
}

// decodeConfig decodes the top-level config block. Zone values may be YAML
// integers (fixed heart rates), so they are decoded loosely and normalized
// to strings for the resolver.
func decodeConfig(node *yaml.Node) (domain.PlanConfig, error) {
	var raw struct {
		NamePrefix string         `yaml:"name_prefix"`
		Paces      map[string]any `yaml:"paces"`
		HeartRates map[string]any `yaml:"heart_rates"`
		Margins    domain.Margins `yaml:"margins"`
	}
	if err := node.Decode(&raw); err != nil {
		return domain.PlanConfig{}, fmt.Errorf("plan config: %w", err)
	}
	return domain.PlanConfig{
		NamePrefix: raw.NamePrefix,
		Paces:      stringifyZoneTable(raw.Paces),
		HeartRates: stringifyZoneTable(raw.HeartRates),
		Margins:    raw.Margins,
	}, nil
}

func stringifyZoneTable(raw map[string]any) map[string]string {
	if raw == nil {
		return nil
	}
	table := make(map[string]string, len(raw))
	for k, v := range raw {
		table[k] = strings.TrimSpace(fmt.Sprintf("%v", v))
	}
	return table
}

func decodeWorkout(name string, node *yaml.Node) (DocumentWorkout, error) {
	if node.Kind != yaml.SequenceNode {
		return DocumentWorkout{}, fmt.Errorf("workout %q: steps must be a sequence", name)
	}
	workout := DocumentWorkout{Name: name}

	for i, item := range node.Content {
		entries, err := mappingEntries(item)
		if err != nil {
			return DocumentWorkout{}, fmt.Errorf("workout %q, step %d: %w", name, i+1, err)
		}

		// A leading date pseudo-step pins the workout's calendar date.
		if i == 0 && len(entries) == 1 && entries[0].key == "date" {
			date, err := time.Parse(DateLayout, strings.TrimSpace(entries[0].value.Value))
			if err != nil {
				return DocumentWorkout{}, fmt.Errorf("workout %q: invalid date %q", name, entries[0].value.Value)
			}
			workout.Date = &date
			continue
		}

		step, err := decodeStep(entries, item.Line)
		if err != nil {
			return DocumentWorkout{}, fmt.Errorf("workout %q: %w", name, err)
		}
		workout.Steps = append(workout.Steps, step)
	}
	return workout, nil
}

type mappingEntry struct {
	key   string
	value *yaml.Node
}

func mappingEntries(node *yaml.Node) ([]mappingEntry, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("step definition must be a mapping")
	}
	entries := make([]mappingEntry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		entries = append(entries, mappingEntry{key: node.Content[i].Value, value: node.Content[i+1]})
	}
	return entries, nil
}

func decodeStep(entries []mappingEntry, line int) (domain.Step, error) {
	// Inline repeat form: "repeat 3": [steps...]
	if len(entries) == 1 {
		if m := repeatKeyPattern.FindStringSubmatch(strings.TrimSpace(entries[0].key)); m != nil {
			count, _ := strconv.Atoi(m[1])
			return decodeRepeat(count, entries[0].value, line)
		}
	}

	// Normalized repeat form: {repeat: N, steps: [...]}
	if repeat, steps, ok := normalizedRepeat(entries); ok {
		count, err := strconv.Atoi(strings.TrimSpace(repeat.Value))
		if err != nil {
			return domain.Step{}, &StepSyntaxError{Line: "repeat: " + repeat.Value, Number: line, Reason: "repeat count must be an integer"}
		}
		return decodeRepeat(count, steps, line)
	}

	if len(entries) != 1 {
		return domain.Step{}, &StepSyntaxError{Number: line, Reason: "step definition must have exactly one kind key"}
	}
	return ParseStepExpr(entries[0].key, entries[0].value.Value)
}

func normalizedRepeat(entries []mappingEntry) (repeat, steps *yaml.Node, ok bool) {
	if len(entries) != 2 {
		return nil, nil, false
	}
	for _, e := range entries {
		switch e.key {
		case "repeat":
			repeat = e.value
		case "steps":
			steps = e.value
		}
	}
	return repeat, steps, repeat != nil && steps != nil
}

func decodeRepeat(count int, stepsNode *yaml.Node, line int) (domain.Step, error) {
	if count <= 0 {
		return domain.Step{}, &StepSyntaxError{Number: line, Reason: "repeat count must be positive"}
	}
	if stepsNode.Kind != yaml.SequenceNode {
		return domain.Step{}, &StepSyntaxError{Number: line, Reason: "repeat steps must be a sequence"}
	}
	step := domain.Step{
		Kind:         domain.StepRepeat,
		EndCondition: domain.EndIterations,
		Repeat:       count,
	}
	for _, item := range stepsNode.Content {
		entries, err := mappingEntries(item)
		if err != nil {
			return domain.Step{}, err
		}
		child, err := decodeStep(entries, item.Line)
		if err != nil {
			return domain.Step{}, err
		}
		step.Steps = append(step.Steps, child)
	}
	if len(step.Steps) == 0 {
		return domain.Step{}, &StepSyntaxError{Number: line, Reason: "repeat block has no steps"}
	}
	return step, nil
}

// EncodeDocument serializes a document back to its YAML form. Re-parsing
// and recompiling the output yields workouts identical to the input's.
func EncodeDocument(doc *Document) ([]byte, error) {
	out := &yaml.Node{Kind: yaml.MappingNode}

	if hasConfig(doc.Config) {
		out.Content = append(out.Content,
			scalarNode("config"),
			encodeConfig(doc.Config),
		)
	}

	for _, workout := range doc.Workouts {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		if workout.Date != nil {
			seq.Content = append(seq.Content, singlePairNode("date", workout.Date.Format(DateLayout)))
		}
		for _, step := range workout.Steps {
			seq.Content = append(seq.Content, encodeStep(step))
		}
		out.Content = append(out.Content, scalarNode(workout.Name), seq)
	}

	return yaml.Marshal(out)
}

func hasConfig(cfg domain.PlanConfig) bool {
	return cfg.NamePrefix != "" || len(cfg.Paces) > 0 || len(cfg.HeartRates) > 0 || cfg.Margins != (domain.Margins{})
}

func encodeConfig(cfg domain.PlanConfig) *yaml.Node {
	node := &yaml.Node{}
	// PlanConfig carries yaml tags matching the document shape.
	if err := node.Encode(cfg); err != nil {
		return &yaml.Node{Kind: yaml.MappingNode}
	}
	return node
}

func encodeStep(step domain.Step) *yaml.Node {
	if step.Kind == domain.StepRepeat {
		steps := &yaml.Node{Kind: yaml.SequenceNode}
		for _, child := range step.Steps {
			steps.Content = append(steps.Content, encodeStep(child))
		}
		return &yaml.Node{
			Kind: yaml.MappingNode,
			Content: []*yaml.Node{
				scalarNode("repeat"), scalarNode(strconv.Itoa(step.Repeat)),
				scalarNode("steps"), steps,
			},
		}
	}
	return singlePairNode(string(step.Kind), FormatStepExpr(step))
}

// FormatStepExpr renders a step back to its textual expression
// ("10min @ Z2 -- easy").
func FormatStepExpr(step domain.Step) string {
	var b strings.Builder

	// A distance step whose target is its own "<distance> in <time>"
	// shorthand round-trips as that shorthand.
	if step.EndCondition == domain.EndDistance && strings.Contains(step.TargetRef, " in ") {
		b.WriteString(step.TargetRef)
		if step.Description != "" {
			b.WriteString(" -- ")
			b.WriteString(step.Description)
		}
		return b.String()
	}

	switch step.EndCondition {
	case domain.EndTime:
		if step.DurationSeconds%60 == 0 {
			fmt.Fprintf(&b, "%dmin", step.DurationSeconds/60)
		} else {
			fmt.Fprintf(&b, "%ds", step.DurationSeconds)
		}
	case domain.EndDistance:
		meters := step.DistanceMeters
		if meters >= 1000 && int(meters)%1000 == 0 {
			fmt.Fprintf(&b, "%dkm", int(meters)/1000)
		} else if meters == float64(int(meters)) {
			fmt.Fprintf(&b, "%dm", int(meters))
		} else {
			fmt.Fprintf(&b, "%gkm", meters/1000)
		}
	case domain.EndLapButton:
		if step.Kind != domain.StepRest {
			b.WriteString(LapTriggerToken)
		}
	}

	if step.TargetRef != "" {
		if step.HeartRate {
			b.WriteString(" @hr ")
		} else {
			b.WriteString(" @ ")
		}
		b.WriteString(step.TargetRef)
	}

	if step.Description != "" {
		b.WriteString(" -- ")
		b.WriteString(step.Description)
	}
	return strings.TrimSpace(b.String())
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: value}
}

func singlePairNode(key, value string) *yaml.Node {
	return &yaml.Node{
		Kind:    yaml.MappingNode,
		Content: []*yaml.Node{scalarNode(key), scalarNode(value)},
	}
}
