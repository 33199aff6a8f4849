package registry

import (
	"github.com/roach88/schedreg/internal/ir"
	"github.com/roach88/schedreg/internal/model"
)

// GetOrCreate returns a constraint in m that satisfies d.
//
// When d bounds both ends of its range, m's constraints are scanned in
// creation order and the first compatible one is returned. Otherwise, or
// when nothing matches, a new constraint built from d is added to m.
func (r *Registry) GetOrCreate(d ir.RoleDescriptor, m *model.Model) *model.Constraint {
	c, _ := r.getOrCreate(d, m)
	return c
}

func (r *Registry) getOrCreate(d ir.RoleDescriptor, m *model.Model) (*model.Constraint, bool) {
	if d.FullySpecified() {
		for _, c := range m.Constraints() {
			if IsCompatible(d, c, false) {
				r.logger.Debug("reusing constraint",
					"role", d.Key().String(),
					"constraint", string(c.Handle()),
					"name", c.Name(),
				)
				return c, false
			}
		}
	}

	c := m.CreateConstraint(DefaultConstraintName(d))
	populate(c, d)

	r.logger.Debug("created constraint",
		"role", d.Key().String(),
		"constraint", string(c.Handle()),
		"name", c.Name(),
		"shared", d.FullySpecified(),
	)
	return c, true
}

// populate copies d's requirements onto c. New has validated d, so every
// setter succeeds.
func populate(c *model.Constraint, d ir.RoleDescriptor) {
	if v, ok := d.LowerLimit.Get(); ok {
		c.SetLowerLimit(v)
	}
	if v, ok := d.UpperLimit.Get(); ok {
		c.SetUpperLimit(v)
	}
	if d.IsContinuous {
		c.SetNumeric(ir.NumericContinuous)
	} else {
		c.SetNumeric(ir.NumericDiscrete)
	}
	c.SetUnit(d.UnitType)
}

// FindCompatible returns every constraint in m that satisfies the role
// (kind, role) in stringent mode. Nothing is created.
func (r *Registry) FindCompatible(m *model.Model, kind, role string) ([]*model.Constraint, error) {
	d, err := r.Lookup(kind, role)
	if err != nil {
		return nil, err
	}

	var out []*model.Constraint
	for _, c := range m.Constraints() {
		if IsCompatible(d, c, true) {
			out = append(out, c)
		}
	}
	return out, nil
}

// CompatibleSchedules returns the schedules in m that could serve (kind,
// role): those bound to a constraint FindCompatible returns, and every
// unbound schedule.
func (r *Registry) CompatibleSchedules(m *model.Model, kind, role string) ([]*model.Schedule, error) {
	compatible, err := r.FindCompatible(m, kind, role)
	if err != nil {
		return nil, err
	}

	ok := make(map[*model.Constraint]bool, len(compatible))
	for _, c := range compatible {
		ok[c] = true
	}

	var out []*model.Schedule
	for _, s := range m.Schedules() {
		c := s.CurrentConstraint()
		if c == nil || ok[c] {
			out = append(out, s)
		}
	}
	return out, nil
}
