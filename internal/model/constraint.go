package model

import (
	"github.com/roach88/schedreg/internal/ir"
)

// ErrInvalidFieldValue is returned when a string is outside the accepted set
// for a constraint field.
var ErrInvalidFieldValue = ir.ErrInvalidFieldValue

// ParseNumericType converts "Continuous" or "Discrete" (case-insensitive).
func ParseNumericType(s string) (ir.NumericType, error) {
	return ir.ParseNumericType(s)
}

// Constraint is a set of schedule type limits: optional bounds, an optional
// numeric type and a unit type.
//
// A Constraint belongs to at most one Model. Schedules hold it by pointer, so
// every edit is seen by every schedule bound to it.
type Constraint struct {
	handle  Handle
	name    string
	model   *Model
	removed bool

	lower   ir.Limit
	upper   ir.Limit
	numeric ir.NumericType
	unit    ir.UnitType
}

// NewConstraint returns a detached constraint. Use Model.AddConstraint to
// place it in a model.
func NewConstraint(name string) *Constraint {
	return &Constraint{name: name}
}

// NewConstraintWithHandle returns a detached constraint that keeps h when it
// is added to a model. Used when restoring persisted models.
func NewConstraintWithHandle(h Handle, name string) *Constraint {
	return &Constraint{handle: h, name: name}
}

func (c *Constraint) Handle() Handle { return c.handle }
func (c *Constraint) Name() string   { return c.name }
func (c *Constraint) Model() *Model  { return c.model }

// SetName renames the constraint. Names are not unique.
func (c *Constraint) SetName(name string) { c.name = name }

// Removed reports whether the constraint was removed from its model.
func (c *Constraint) Removed() bool { return c.removed }

// LowerLimit returns the lower bound, or ir.NoLimit when unbounded.
func (c *Constraint) LowerLimit() ir.Limit { return c.lower }

// SetLowerLimit sets the lower bound. NaN and infinities are rejected.
func (c *Constraint) SetLowerLimit(v float64) bool {
	if !ir.ValidLimitValue(v) {
		return false
	}
	c.lower = ir.SomeLimit(v)
	return true
}

// ResetLowerLimit removes the lower bound.
func (c *Constraint) ResetLowerLimit() { c.lower = ir.NoLimit }

// UpperLimit returns the upper bound, or ir.NoLimit when unbounded.
func (c *Constraint) UpperLimit() ir.Limit { return c.upper }

// SetUpperLimit sets the upper bound. NaN and infinities are rejected.
func (c *Constraint) SetUpperLimit(v float64) bool {
	if !ir.ValidLimitValue(v) {
		return false
	}
	c.upper = ir.SomeLimit(v)
	return true
}

// ResetUpperLimit removes the upper bound.
func (c *Constraint) ResetUpperLimit() { c.upper = ir.NoLimit }

// NumericType returns the numeric type and whether one is set.
func (c *Constraint) NumericType() (ir.NumericType, bool) {
	return c.numeric, c.numeric != ir.NumericUnspecified
}

// SetNumericType accepts "Continuous" or "Discrete", case-insensitive.
func (c *Constraint) SetNumericType(s string) bool {
	n, err := ir.ParseNumericType(s)
	if err != nil {
		return false
	}
	c.numeric = n
	return true
}

// SetNumeric is the typed form of SetNumericType. NumericUnspecified is
// rejected; use ResetNumericType.
func (c *Constraint) SetNumeric(n ir.NumericType) bool {
	if n != ir.NumericContinuous && n != ir.NumericDiscrete {
		return false
	}
	c.numeric = n
	return true
}

// ResetNumericType clears the numeric type.
func (c *Constraint) ResetNumericType() { c.numeric = ir.NumericUnspecified }

// UnitType returns the unit type, UnitDimensionless when none was set.
func (c *Constraint) UnitType() ir.UnitType { return c.unit.Effective() }

// UnitTypeString returns the canonical name of UnitType.
func (c *Constraint) UnitTypeString() string { return c.UnitType().String() }

// SetUnitType accepts a unit family name, case-insensitive. Empty and
// unknown names are rejected.
func (c *Constraint) SetUnitType(s string) bool {
	u, err := ir.ParseUnitType(s)
	if err != nil {
		return false
	}
	c.unit = u
	return true
}

// SetUnit is the typed form of SetUnitType. UnitUnspecified is accepted and
// behaves like ResetUnitType.
func (c *Constraint) SetUnit(u ir.UnitType) bool {
	if !u.Valid() {
		return false
	}
	c.unit = u
	return true
}

// ResetUnitType restores the default unit type.
func (c *Constraint) ResetUnitType() { c.unit = ir.UnitUnspecified }
