package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/schedreg/internal/model"
	"github.com/roach88/schedreg/internal/registry"
	"github.com/roach88/schedreg/internal/store"
	"github.com/roach88/schedreg/internal/testutil"
)

// Error labels used in traces and expectations.
const (
	errNone         = "none"
	errNotFound     = "not_found"
	errIncompatible = "incompatible"
)

// Harness executes one scenario.
type Harness struct {
	registry *registry.Registry
	model    *model.Model
	handles  *testutil.SequenceGenerator
	seq      *testutil.Counter
	aliases  map[string]model.Handle
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// The registry comes from the scenario's catalog, or the embedded catalog
// when none is named. Each run starts from an empty model with handles
// h-001, h-002, ... in creation order.
func Run(scenario *Scenario) (*Result, error) {
	reg, err := loadRegistry(scenario)
	if err != nil {
		return nil, err
	}
	return RunWithRegistry(reg, scenario)
}

// RunWithRegistry executes a scenario against reg.
//
// Execution flow:
// 1. Create an empty model with a sequence handle generator
// 2. Execute steps in order, tracing each and checking expectations
// 3. Evaluate assertions against the final model
func RunWithRegistry(reg *registry.Registry, scenario *Scenario) (*Result, error) {
	handles := testutil.NewSequenceGenerator("h")
	h := &Harness{
		registry: reg,
		model:    model.New(model.WithHandleGenerator(handles)),
		handles:  handles,
		seq:      testutil.NewCounter(),
		aliases:  make(map[string]model.Handle),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Steps {
		event, err := h.execute(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
		result.AddTrace(event)

		for _, msg := range checkExpect(step.Expect, event) {
			result.AddError(fmt.Sprintf("step %d (%s): %s", i, step.Op, msg))
		}
	}

	for _, msg := range EvaluateAssertions(h.model, h.aliases, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func loadRegistry(scenario *Scenario) (*registry.Registry, error) {
	if scenario.Catalog == "" {
		return registry.Load()
	}
	src, err := os.ReadFile(scenario.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	reg, err := registry.FromSource(string(src), scenario.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return reg, nil
}

// execute runs one step and returns its trace event. Errors are returned
// only for malformed scenarios (unknown names or aliases, invalid limits).
func (h *Harness) execute(ctx context.Context, step Step) (TraceEvent, error) {
	event := TraceEvent{Seq: h.seq.Next(), Op: step.Op}

	switch step.Op {
	case OpNewSchedule:
		h.model.NewSchedule(step.Name, step.Values...)
		event.Schedule = step.Name

	case OpNewConstraint:
		c, err := h.newConstraint(step)
		if err != nil {
			return event, err
		}
		h.remember(step.As, step.Name, c)
		traceConstraint(&event, c)

	case OpBind:
		s, err := h.schedule(step.Schedule)
		if err != nil {
			return event, err
		}
		event.Schedule = s.Name()
		event.Role = roleLabel(step)

		b, err := h.registry.Bind(step.Kind, step.Role, s)
		if err != nil {
			event.Error = errorLabel(err)
			break
		}
		event.Transition = b.Transition.String()
		event.Created = b.Created
		traceConstraint(&event, b.Constraint)
		h.remember(step.As, "", b.Constraint)

	case OpGetOrCreate:
		event.Role = roleLabel(step)
		d, err := h.registry.Lookup(step.Kind, step.Role)
		if err != nil {
			event.Error = errorLabel(err)
			break
		}
		before := len(h.model.Constraints())
		c := h.registry.GetOrCreate(d, h.model)
		event.Created = len(h.model.Constraints()) > before
		traceConstraint(&event, c)
		h.remember(step.As, "", c)

	case OpSetConstraint:
		s, err := h.schedule(step.Schedule)
		if err != nil {
			return event, err
		}
		c, err := h.constraint(step.Constraint)
		if err != nil {
			return event, err
		}
		if !s.SetConstraint(c) {
			return event, fmt.Errorf("cannot bind %q to %q", step.Schedule, step.Constraint)
		}
		event.Schedule = s.Name()
		traceConstraint(&event, c)

	case OpRemoveConstraint:
		c, err := h.constraint(step.Constraint)
		if err != nil {
			return event, err
		}
		traceConstraint(&event, c)
		h.model.RemoveConstraint(c)
		delete(h.aliases, step.Constraint)

	case OpValidate:
		s, err := h.schedule(step.Schedule)
		if err != nil {
			return event, err
		}
		event.Schedule = s.Name()
		event.Role = roleLabel(step)
		if err := h.registry.Validate(step.Kind, step.Role, s); err != nil {
			event.Error = errorLabel(err)
		}

	case OpReload:
		if err := h.reload(ctx); err != nil {
			return event, err
		}

	default:
		return event, fmt.Errorf("unknown op %q", step.Op)
	}

	return event, nil
}

func (h *Harness) newConstraint(step Step) (*model.Constraint, error) {
	c := h.model.CreateConstraint(step.Name)
	if step.Lower != nil && !c.SetLowerLimit(*step.Lower) {
		return nil, fmt.Errorf("invalid lower limit %v", *step.Lower)
	}
	if step.Upper != nil && !c.SetUpperLimit(*step.Upper) {
		return nil, fmt.Errorf("invalid upper limit %v", *step.Upper)
	}
	if step.NumericType != "" && !c.SetNumericType(step.NumericType) {
		return nil, fmt.Errorf("invalid numeric type %q", step.NumericType)
	}
	if step.UnitType != "" && !c.SetUnitType(step.UnitType) {
		return nil, fmt.Errorf("invalid unit type %q", step.UnitType)
	}
	return c, nil
}

// reload saves the model to an in-memory store and replaces it with what
// loads back. Aliases survive because they hold handles.
func (h *Harness) reload(ctx context.Context) error {
	st, err := store.Open(ctx, ":memory:")
	if err != nil {
		return fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := st.SaveModel(ctx, h.model, h.registry.CatalogHash()); err != nil {
		return err
	}
	m, hash, err := st.LoadModel(ctx, model.WithHandleGenerator(h.handles))
	if err != nil {
		return err
	}
	if hash != h.registry.CatalogHash() {
		return fmt.Errorf("catalog hash changed across reload")
	}

	h.logger.Debug("model reloaded",
		"constraints", len(m.Constraints()),
		"schedules", len(m.Schedules()),
	)
	h.model = m
	return nil
}

func (h *Harness) remember(alias, fallback string, c *model.Constraint) {
	if alias == "" {
		alias = fallback
	}
	if alias != "" {
		h.aliases[alias] = c.Handle()
	}
}

func (h *Harness) schedule(name string) (*model.Schedule, error) {
	s, ok := h.model.ScheduleByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown schedule %q", name)
	}
	return s, nil
}

func (h *Harness) constraint(alias string) (*model.Constraint, error) {
	return lookupAlias(h.model, h.aliases, alias)
}

func lookupAlias(m *model.Model, aliases map[string]model.Handle, alias string) (*model.Constraint, error) {
	handle, ok := aliases[alias]
	if !ok {
		return nil, fmt.Errorf("unknown constraint alias %q", alias)
	}
	c, ok := m.Constraint(handle)
	if !ok {
		return nil, fmt.Errorf("constraint %q (%s) is no longer in the model", alias, handle)
	}
	return c, nil
}

func traceConstraint(e *TraceEvent, c *model.Constraint) {
	e.Constraint = string(c.Handle())
	e.ConstraintName = c.Name()
}

func roleLabel(step Step) string {
	return step.Kind + "/" + step.Role
}

func errorLabel(err error) string {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return errNotFound
	case registry.IsIncompatible(err):
		return errIncompatible
	default:
		return err.Error()
	}
}

// checkExpect compares a step's event with its expectation.
func checkExpect(expect *Expect, event TraceEvent) []string {
	if expect == nil {
		return nil
	}

	var errs []string
	if expect.Error != "" {
		got := event.Error
		if got == "" {
			got = errNone
		}
		if got != expect.Error {
			errs = append(errs, fmt.Sprintf("expected error %s, got %s", expect.Error, got))
		}
	}
	if expect.Transition != "" && expect.Transition != event.Transition {
		errs = append(errs, fmt.Sprintf("expected transition %s, got %q", expect.Transition, event.Transition))
	}
	if expect.Created != nil && *expect.Created != event.Created {
		errs = append(errs, fmt.Sprintf("expected created=%t, got %t", *expect.Created, event.Created))
	}
	if expect.ConstraintName != "" && expect.ConstraintName != event.ConstraintName {
		errs = append(errs, fmt.Sprintf("expected constraint %q, got %q", expect.ConstraintName, event.ConstraintName))
	}
	return errs
}
