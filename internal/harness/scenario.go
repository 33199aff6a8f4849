package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a binding flow with assertions on the resulting model.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is an optional CUE catalog path. Empty uses the embedded
	// catalog.
	Catalog string `yaml:"catalog,omitempty"`

	// Steps run in order against one model.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the final model.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operation. Which fields apply depends on Op.
type Step struct {
	Op string `yaml:"op"`

	// Name names the object created by new_schedule and new_constraint.
	Name string `yaml:"name,omitempty"`

	// Schedule refers to a schedule by name.
	Schedule string `yaml:"schedule,omitempty"`

	// Constraint refers to a constraint by alias.
	Constraint string `yaml:"constraint,omitempty"`

	// Kind and Role select a catalog role.
	Kind string `yaml:"kind,omitempty"`
	Role string `yaml:"role,omitempty"`

	// As records the resulting constraint under an alias.
	As string `yaml:"as,omitempty"`

	// Values are schedule values for new_schedule.
	Values []float64 `yaml:"values,omitempty"`

	// Limits for new_constraint. Absent bounds stay open.
	Lower       *float64 `yaml:"lower,omitempty"`
	Upper       *float64 `yaml:"upper,omitempty"`
	NumericType string   `yaml:"numeric_type,omitempty"`
	UnitType    string   `yaml:"unit_type,omitempty"`

	// Expect is checked against the step's trace event.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes the expected outcome of a step. Unset fields are not
// checked.
type Expect struct {
	Transition     string `yaml:"transition,omitempty"`
	Created        *bool  `yaml:"created,omitempty"`
	ConstraintName string `yaml:"constraint_name,omitempty"`
	// Error is "not_found", "incompatible", or "none".
	Error string `yaml:"error,omitempty"`
}

// Step operations.
const (
	OpNewSchedule      = "new_schedule"
	OpNewConstraint    = "new_constraint"
	OpBind             = "bind"
	OpGetOrCreate      = "get_or_create"
	OpSetConstraint    = "set_constraint"
	OpRemoveConstraint = "remove_constraint"
	OpValidate         = "validate"
	OpReload           = "reload"
)

// Assertion checks the final model.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Count is used by constraint_count and violation_count.
	Count int `yaml:"count,omitempty"`

	// Schedules lists schedule names for same_constraint and
	// distinct_constraint.
	Schedules []string `yaml:"schedules,omitempty"`

	// Schedule and Constraint are used by bound_to. An empty Constraint
	// asserts the schedule is unbound.
	Schedule   string `yaml:"schedule,omitempty"`
	Constraint string `yaml:"constraint,omitempty"`
}

// Assertion type constants.
const (
	AssertConstraintCount    = "constraint_count"
	AssertSameConstraint     = "same_constraint"
	AssertDistinctConstraint = "distinct_constraint"
	AssertBoundTo            = "bound_to"
	AssertViolationCount     = "violation_count"
)

// LoadScenario reads and parses a scenario YAML file. A relative catalog
// path is resolved against the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps must contain at least one step")
	}

	for i, step := range s.Steps {
		if err := validateStep(step, i); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a, i); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(step Step, index int) error {
	need := func(field, value string) error {
		if value == "" {
			return fmt.Errorf("steps[%d]: %s is required for %s", index, field, step.Op)
		}
		return nil
	}

	var errs []error
	switch step.Op {
	case OpNewSchedule, OpNewConstraint:
		errs = append(errs, need("name", step.Name))
	case OpBind, OpValidate:
		errs = append(errs, need("schedule", step.Schedule), need("kind", step.Kind), need("role", step.Role))
	case OpGetOrCreate:
		errs = append(errs, need("kind", step.Kind), need("role", step.Role))
	case OpSetConstraint:
		errs = append(errs, need("schedule", step.Schedule), need("constraint", step.Constraint))
	case OpRemoveConstraint:
		errs = append(errs, need("constraint", step.Constraint))
	case OpReload:
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	if step.Expect != nil {
		switch step.Expect.Error {
		case "", errNone, errNotFound, errIncompatible:
		default:
			return fmt.Errorf("steps[%d]: unknown expected error %q", index, step.Expect.Error)
		}
	}
	return nil
}

func validateAssertion(a Assertion, index int) error {
	switch a.Type {
	case AssertConstraintCount, AssertViolationCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertSameConstraint, AssertDistinctConstraint:
		if len(a.Schedules) < 2 {
			return fmt.Errorf("assertions[%d]: at least two schedules are required for %s", index, a.Type)
		}
	case AssertBoundTo:
		if a.Schedule == "" {
			return fmt.Errorf("assertions[%d]: schedule is required for bound_to", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
