package registry

import (
	"fmt"

	"github.com/roach88/schedreg/internal/ir"
	"github.com/roach88/schedreg/internal/model"
)

// Transition describes what a bind did to a schedule.
type Transition int

const (
	// Bound attached a constraint to an unbound schedule.
	Bound Transition = iota + 1
	// Kept left a compatible constraint in place.
	Kept
	// Rebound replaced an incompatible constraint.
	Rebound
)

func (t Transition) String() string {
	switch t {
	case Bound:
		return "bound"
	case Kept:
		return "kept"
	case Rebound:
		return "rebound"
	default:
		return fmt.Sprintf("Transition(%d)", int(t))
	}
}

// Binding is the outcome of Bind.
type Binding struct {
	Role       ir.RoleDescriptor
	Transition Transition
	// Previous is the constraint the schedule held before, nil if unbound.
	Previous *model.Constraint
	// Constraint is the constraint the schedule holds now.
	Constraint *model.Constraint
	// Created is true when Constraint was added to the model by this call.
	Created bool
}

// Bind attaches s to a constraint satisfying (kind, role).
//
// A schedule whose constraint already satisfies the role is left alone.
// Otherwise GetOrCreate supplies the constraint. If attaching fails, a
// constraint created for the attempt is removed again. Only an unregistered
// role or a schedule detached from any model produce an error.
func (r *Registry) Bind(kind, role string, s *model.Schedule) (Binding, error) {
	d, err := r.Lookup(kind, role)
	if err != nil {
		return Binding{}, err
	}

	prev := s.CurrentConstraint()
	if prev != nil && IsCompatible(d, prev, false) {
		return Binding{Role: d, Transition: Kept, Previous: prev, Constraint: prev}, nil
	}

	m := s.Model()
	if m == nil {
		return Binding{}, fmt.Errorf("bind %s: schedule %q has no model", d.Key(), s.Name())
	}

	c, created := r.getOrCreate(d, m)
	if !s.SetConstraint(c) {
		if created && m.DirectUseCount(c) == 0 {
			m.RemoveConstraint(c)
		}
		return Binding{}, fmt.Errorf("bind %s: attach constraint %s to schedule %s", d.Key(), c.Handle(), s.Handle())
	}

	b := Binding{Role: d, Transition: Bound, Previous: prev, Constraint: c, Created: created}
	if prev != nil {
		b.Transition = Rebound
		r.logger.Info("rebound schedule",
			"role", d.Key().String(),
			"schedule", string(s.Handle()),
			"from", string(prev.Handle()),
			"to", string(c.Handle()),
			"reason", incompatibility(d, prev, false),
		)
	}
	return b, nil
}

// BindOrValidate is Bind reduced to a bool. It returns false when
// (kind, role) is not registered. The only other way Bind fails is a
// schedule outside any model, or one that refuses a constraint from its own
// model; that is a broken model invariant, logged at error level, and also
// reported as false.
func (r *Registry) BindOrValidate(kind, role string, s *model.Schedule) bool {
	if _, err := r.Lookup(kind, role); err != nil {
		return false
	}
	if _, err := r.Bind(kind, role, s); err != nil {
		r.logger.Error("bind failed for registered role",
			"role", kind+"/"+role,
			"schedule", string(s.Handle()),
			"error", err,
		)
		return false
	}
	return true
}

// Validate checks s's constraint against (kind, role) without changing
// anything. An unbound schedule passes; binding will supply a constraint.
func (r *Registry) Validate(kind, role string, s *model.Schedule) error {
	d, err := r.Lookup(kind, role)
	if err != nil {
		return err
	}

	c := s.CurrentConstraint()
	if c == nil {
		return nil
	}
	if reason := incompatibility(d, c, false); reason != "" {
		return &IncompatibleBindingError{
			Role:       d,
			Schedule:   s.Handle(),
			Constraint: c.Handle(),
			Reason:     reason,
		}
	}
	return nil
}

// IsCompatibleRole looks up (kind, role) and checks c against it in
// non-stringent mode.
func (r *Registry) IsCompatibleRole(kind, role string, c Limits) (bool, error) {
	d, err := r.Lookup(kind, role)
	if err != nil {
		return false, err
	}
	return IsCompatible(d, c, false), nil
}
