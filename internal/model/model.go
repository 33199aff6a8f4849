package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/schedreg/internal/ir"
)

// Names of the constant schedules a model creates on demand.
const (
	AlwaysOnDiscreteName   = "Always On Discrete"
	AlwaysOffDiscreteName  = "Always Off Discrete"
	AlwaysOnContinuousName = "Always On Continuous"

	onOffConstraintName      = "OnOff"
	fractionalConstraintName = "Fractional"
)

var (
	// ErrOwned is returned when adding an object that already belongs to a model.
	ErrOwned = errors.New("object already belongs to a model")

	// ErrDuplicateHandle is returned when adding an object whose handle is taken.
	ErrDuplicateHandle = errors.New("duplicate handle")
)

// Model owns a set of constraints and schedules.
type Model struct {
	gen         HandleGenerator
	constraints []*Constraint
	schedules   []*Schedule
	handles     map[Handle]struct{}
}

// Option configures a Model.
type Option func(*Model)

// WithHandleGenerator sets the generator used for new handles.
// The default is UUIDv7Generator.
func WithHandleGenerator(g HandleGenerator) Option {
	return func(m *Model) {
		m.gen = g
	}
}

// New creates an empty model.
func New(opts ...Option) *Model {
	m := &Model{
		gen:     UUIDv7Generator{},
		handles: make(map[Handle]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) claim(h Handle) (Handle, error) {
	if h == "" {
		h = Handle(m.gen.Generate())
	}
	if _, taken := m.handles[h]; taken {
		return "", fmt.Errorf("%w: %s", ErrDuplicateHandle, h)
	}
	m.handles[h] = struct{}{}
	return h, nil
}

// Constraints returns the model's constraints in creation order.
func (m *Model) Constraints() []*Constraint {
	out := make([]*Constraint, len(m.constraints))
	copy(out, m.constraints)
	return out
}

// ConstraintsByName returns the constraints named name, case-insensitive,
// in creation order.
func (m *Model) ConstraintsByName(name string) []*Constraint {
	var out []*Constraint
	for _, c := range m.constraints {
		if strings.EqualFold(c.name, name) {
			out = append(out, c)
		}
	}
	return out
}

// Constraint returns the constraint with handle h.
func (m *Model) Constraint(h Handle) (*Constraint, bool) {
	for _, c := range m.constraints {
		if c.handle == h {
			return c, true
		}
	}
	return nil, false
}

// AddConstraint places a detached or removed constraint in m, assigning a
// handle if it has none.
func (m *Model) AddConstraint(c *Constraint) error {
	if c.model != nil {
		return fmt.Errorf("add constraint %q: %w", c.name, ErrOwned)
	}
	h, err := m.claim(c.handle)
	if err != nil {
		return fmt.Errorf("add constraint %q: %w", c.name, err)
	}
	c.handle = h
	c.model = m
	c.removed = false
	m.constraints = append(m.constraints, c)
	return nil
}

// CreateConstraint adds a new unbounded constraint named name.
func (m *Model) CreateConstraint(name string) *Constraint {
	c := NewConstraint(name)
	if err := m.AddConstraint(c); err != nil {
		// Only a generator that repeats handles gets here.
		panic(err)
	}
	return c
}

// RemoveConstraint removes c from m and unbinds every schedule that
// references it. It reports false when c is not in m.
func (m *Model) RemoveConstraint(c *Constraint) bool {
	idx := -1
	for i, existing := range m.constraints {
		if existing == c {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	for _, s := range m.schedules {
		if s.constraint == c {
			s.constraint = nil
		}
	}
	m.constraints = append(m.constraints[:idx], m.constraints[idx+1:]...)
	delete(m.handles, c.handle)
	c.removed = true
	c.model = nil
	return true
}

// DirectUseCount returns the number of schedules bound to c.
func (m *Model) DirectUseCount(c *Constraint) int {
	n := 0
	for _, s := range m.schedules {
		if s.constraint == c {
			n++
		}
	}
	return n
}

// Schedules returns the model's schedules in creation order.
func (m *Model) Schedules() []*Schedule {
	out := make([]*Schedule, len(m.schedules))
	copy(out, m.schedules)
	return out
}

// Schedule returns the schedule with handle h.
func (m *Model) Schedule(h Handle) (*Schedule, bool) {
	for _, s := range m.schedules {
		if s.handle == h {
			return s, true
		}
	}
	return nil, false
}

// ScheduleByName returns the first schedule named name, case-insensitive.
func (m *Model) ScheduleByName(name string) (*Schedule, bool) {
	for _, s := range m.schedules {
		if strings.EqualFold(s.name, name) {
			return s, true
		}
	}
	return nil, false
}

// NewSchedule adds an unbound schedule.
func (m *Model) NewSchedule(name string, values ...float64) *Schedule {
	s, err := m.RestoreSchedule("", name, values)
	if err != nil {
		panic(err)
	}
	return s
}

// RestoreSchedule adds an unbound schedule with a known handle. An empty
// handle is generated.
func (m *Model) RestoreSchedule(h Handle, name string, values []float64) (*Schedule, error) {
	h, err := m.claim(h)
	if err != nil {
		return nil, fmt.Errorf("add schedule %q: %w", name, err)
	}
	s := &Schedule{handle: h, name: name, model: m}
	s.SetValues(values...)
	m.schedules = append(m.schedules, s)
	return s, nil
}

// AlwaysOnDiscreteSchedule returns the constant 1 schedule bound to an
// OnOff constraint, creating both if needed.
func (m *Model) AlwaysOnDiscreteSchedule() *Schedule {
	return m.constantSchedule(AlwaysOnDiscreteName, 1, ir.NumericDiscrete)
}

// AlwaysOffDiscreteSchedule returns the constant 0 schedule bound to an
// OnOff constraint, creating both if needed.
func (m *Model) AlwaysOffDiscreteSchedule() *Schedule {
	return m.constantSchedule(AlwaysOffDiscreteName, 0, ir.NumericDiscrete)
}

// AlwaysOnContinuousSchedule returns the constant 1 schedule bound to a
// Fractional constraint, creating both if needed.
func (m *Model) AlwaysOnContinuousSchedule() *Schedule {
	return m.constantSchedule(AlwaysOnContinuousName, 1, ir.NumericContinuous)
}

// constantSchedule finds a schedule named name holding only value whose
// constraint has numeric type numeric. Otherwise it creates the schedule
// with a fresh constraint.
func (m *Model) constantSchedule(name string, value float64, numeric ir.NumericType) *Schedule {
	for _, s := range m.schedules {
		if !strings.EqualFold(s.name, name) || len(s.values) != 1 || s.values[0] != value {
			continue
		}
		if s.constraint == nil {
			continue
		}
		if n, ok := s.constraint.NumericType(); ok && n == numeric {
			return s
		}
	}

	var c *Constraint
	if numeric == ir.NumericDiscrete {
		c = m.CreateConstraint(onOffConstraintName)
		c.unit = ir.UnitAvailability
	} else {
		c = m.CreateConstraint(fractionalConstraintName)
	}
	c.numeric = numeric
	c.lower = ir.SomeLimit(0)
	c.upper = ir.SomeLimit(1)

	s := m.NewSchedule(name, value)
	s.constraint = c
	return s
}
