package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a progression scenario.
// Scenarios drive the engine through a sequence of operations against a
// deterministic clock and assert on the resulting trace and final state.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Rules is an optional CUE rules file replacing the built-in table.
	// Relative paths are resolved against the scenario file location.
	Rules string `yaml:"rules,omitempty"`

	// Start is the RFC 3339 wall time the scenario begins at. Empty means
	// testutil.Epoch.
	Start string `yaml:"start,omitempty"`

	// Setup contains operations run before the main flow. A setup step that
	// does not complete with "ok" aborts the scenario.
	Setup []ActionStep `yaml:"setup,omitempty"`

	// Flow contains the main operations with optional expectations.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace and state.
	// Supported types: trace_contains, trace_order, trace_count, final_state, events
	Assertions []Assertion `yaml:"assertions"`
}

// ActionStep represents a single operation in the setup section.
type ActionStep struct {
	// Action is the operation name (e.g., "create", "add_skill").
	Action string `yaml:"action"`

	// Args contains the operation arguments.
	Args map[string]interface{} `yaml:"args,omitempty"`
}

// FlowStep represents a step in the main flow.
type FlowStep struct {
	// Invoke is the operation name.
	Invoke string `yaml:"invoke"`

	// Args contains the operation arguments.
	Args map[string]interface{} `yaml:"args,omitempty"`

	// Expect specifies the expected outcome. If nil, nothing is checked.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Case is the expected outcome: "ok", "rejected" or "error".
	Case string `yaml:"case"`

	// Result contains expected result field values.
	// This is a subset match - only specified fields are validated.
	Result map[string]interface{} `yaml:"result,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": Check an operation appears in trace with args
	// - "trace_order": Check operations appear in order
	// - "trace_count": Check an operation appears exactly N times
	// - "final_state": Look up a state row and verify expected values
	// - "events": Check the recorded event kinds, in order
	Type string `yaml:"type"`

	// Action is the operation name (used by trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Args are the expected operation arguments (used by trace_contains).
	// Subset match - only specified fields are validated.
	Args map[string]interface{} `yaml:"args,omitempty"`

	// Table is the state table (used by final_state): character, skills,
	// attributes or graph.
	Table string `yaml:"table,omitempty"`

	// Where selects one row by exact field values (used by final_state on
	// skills and attributes).
	Where map[string]interface{} `yaml:"where,omitempty"`

	// Expect contains expected field values (used by final_state).
	// Subset match - only specified fields are validated.
	Expect map[string]interface{} `yaml:"expect,omitempty"`

	// Count is the expected number of occurrences (used by trace_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected operation order (used by trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Kinds is the exact sequence of recorded event kinds (used by events).
	Kinds []string `yaml:"kinds,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
	AssertEvents        = "events"
)

// Operation names understood by the harness.
const (
	OpCreate         = "create"
	OpAddSkill       = "add_skill"
	OpAdvanceTime    = "advance_time"
	OpSetSkills      = "set_skills"
	OpAwardAttribute = "award_attribute"
	OpRecompute      = "recompute"
	OpProgress       = "progress"
	OpAllSkills      = "all_skills"
	OpClear          = "clear"
	OpIngest         = "ingest"
)

// Outcome cases reported in the trace.
const (
	CaseOK       = "ok"
	CaseRejected = "rejected"
	CaseError    = "error"
)

var knownOps = map[string]bool{
	OpCreate: true, OpAddSkill: true, OpAdvanceTime: true, OpSetSkills: true,
	OpAwardAttribute: true, OpRecompute: true, OpProgress: true,
	OpAllSkills: true, OpClear: true, OpIngest: true,
}

// State tables addressable by final_state.
var knownTables = map[string]bool{
	"character": true, "skills": true, "attributes": true, "graph": true,
}

// LoadScenario reads and parses a scenario YAML file, resolving the rules
// path against the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving a relative rules path against basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Rules != "" && !filepath.IsAbs(scenario.Rules) && basePath != "" {
		scenario.Rules = filepath.Join(basePath, scenario.Rules)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns every .yaml/.yml file under dir whose base name
// (without extension) matches the glob filter. An empty filter matches all.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// startTime returns the scenario's start, zero when unset.
func (s *Scenario) startTime() (time.Time, error) {
	if s.Start == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("start: %w", err)
	}
	return t, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if _, err := s.startTime(); err != nil {
		return err
	}

	if s.Rules != "" {
		if _, err := os.Stat(s.Rules); os.IsNotExist(err) {
			return fmt.Errorf("rules file not found: %s", s.Rules)
		}
	}

	for i, step := range s.Setup {
		if step.Action == "" {
			return fmt.Errorf("setup[%d]: action is required", i)
		}
		if !knownOps[step.Action] {
			return fmt.Errorf("setup[%d]: unknown operation %q", i, step.Action)
		}
	}

	for i, step := range s.Flow {
		if step.Invoke == "" {
			return fmt.Errorf("flow[%d]: invoke is required", i)
		}
		if !knownOps[step.Invoke] {
			return fmt.Errorf("flow[%d]: unknown operation %q", i, step.Invoke)
		}
		if step.Expect != nil {
			switch step.Expect.Case {
			case CaseOK, CaseRejected, CaseError:
			case "":
				return fmt.Errorf("flow[%d].expect: case is required", i)
			default:
				return fmt.Errorf("flow[%d].expect: unknown case %q", i, step.Expect.Case)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if !knownTables[a.Table] {
			return fmt.Errorf("assertions[%d]: unknown table %q", index, a.Table)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertEvents:
		if a.Kinds == nil {
			return fmt.Errorf("assertions[%d]: kinds list is required for events", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
