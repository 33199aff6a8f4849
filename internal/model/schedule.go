package model

import "slices"

// Schedule is a named series of values that may be bound to one Constraint.
type Schedule struct {
	handle     Handle
	name       string
	model      *Model
	constraint *Constraint
	values     []float64
}

func (s *Schedule) Handle() Handle { return s.handle }
func (s *Schedule) Name() string   { return s.name }
func (s *Schedule) Model() *Model  { return s.model }

// SetName renames the schedule.
func (s *Schedule) SetName(name string) { s.name = name }

// Values returns a copy of the schedule's values.
func (s *Schedule) Values() []float64 {
	return slices.Clone(s.values)
}

// SetValues replaces the schedule's values. Values are never checked
// against the bound constraint here; see package validity.
func (s *Schedule) SetValues(values ...float64) {
	s.values = slices.Clone(values)
}

// CurrentConstraint returns the bound constraint, or nil when unbound.
func (s *Schedule) CurrentConstraint() *Constraint {
	return s.constraint
}

// SetConstraint binds s to c. It fails when c is nil, was removed, or
// belongs to a different model than s.
func (s *Schedule) SetConstraint(c *Constraint) bool {
	if c == nil || c.removed || c.model == nil || c.model != s.model {
		return false
	}
	s.constraint = c
	return true
}

// ResetConstraint unbinds s.
func (s *Schedule) ResetConstraint() {
	s.constraint = nil
}
