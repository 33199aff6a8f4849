package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/schedreg/internal/model"
	"github.com/roach88/schedreg/internal/validity"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against m and returns the
// failure messages. aliases maps constraint aliases to handles.
func EvaluateAssertions(m *model.Model, aliases map[string]model.Handle, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(m, aliases, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(m *model.Model, aliases map[string]model.Handle, a Assertion) error {
	switch a.Type {
	case AssertConstraintCount:
		return assertCount(a.Type, a.Count, len(m.Constraints()))
	case AssertViolationCount:
		return assertCount(a.Type, a.Count, len(validity.Check(m)))
	case AssertSameConstraint:
		return assertSameConstraint(m, a)
	case AssertDistinctConstraint:
		return assertDistinctConstraint(m, a)
	case AssertBoundTo:
		return assertBoundTo(m, aliases, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertCount(kind string, want, got int) error {
	if want == got {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%d", want),
		Actual:   fmt.Sprintf("%d", got),
	}
}

// boundConstraints resolves each schedule's constraint. Unbound schedules
// are an assertion failure.
func boundConstraints(m *model.Model, kind string, names []string) ([]*model.Constraint, error) {
	out := make([]*model.Constraint, len(names))
	for i, name := range names {
		s, ok := m.ScheduleByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown schedule %q", name)
		}
		c := s.CurrentConstraint()
		if c == nil {
			return nil, &AssertionError{
				Type:     kind,
				Expected: fmt.Sprintf("schedule %q bound", name),
				Actual:   "unbound",
			}
		}
		out[i] = c
	}
	return out, nil
}

func assertSameConstraint(m *model.Model, a Assertion) error {
	cs, err := boundConstraints(m, a.Type, a.Schedules)
	if err != nil {
		return err
	}
	for i := 1; i < len(cs); i++ {
		if cs[i] != cs[0] {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%q and %q share a constraint", a.Schedules[0], a.Schedules[i]),
				Actual:   fmt.Sprintf("%s and %s", cs[0].Handle(), cs[i].Handle()),
			}
		}
	}
	return nil
}

func assertDistinctConstraint(m *model.Model, a Assertion) error {
	cs, err := boundConstraints(m, a.Type, a.Schedules)
	if err != nil {
		return err
	}
	seen := make(map[*model.Constraint]string, len(cs))
	for i, c := range cs {
		if other, ok := seen[c]; ok {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%q and %q use different constraints", other, a.Schedules[i]),
				Actual:   fmt.Sprintf("both use %s", c.Handle()),
			}
		}
		seen[c] = a.Schedules[i]
	}
	return nil
}

func assertBoundTo(m *model.Model, aliases map[string]model.Handle, a Assertion) error {
	s, ok := m.ScheduleByName(a.Schedule)
	if !ok {
		return fmt.Errorf("unknown schedule %q", a.Schedule)
	}
	got := s.CurrentConstraint()

	if a.Constraint == "" {
		if got != nil {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("schedule %q unbound", a.Schedule),
				Actual:   fmt.Sprintf("bound to %s", got.Handle()),
			}
		}
		return nil
	}

	want, err := lookupAlias(m, aliases, a.Constraint)
	if err != nil {
		return err
	}
	if got != want {
		actual := "unbound"
		if got != nil {
			actual = string(got.Handle())
		}
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("schedule %q bound to %s (%s)", a.Schedule, a.Constraint, want.Handle()),
			Actual:   actual,
		}
	}
	return nil
}
