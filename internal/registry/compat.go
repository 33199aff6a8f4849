package registry

import (
	"github.com/roach88/schedreg/internal/ir"
)

// Limits is the read surface the compatibility predicate needs from a
// constraint. *model.Constraint implements it.
type Limits interface {
	LowerLimit() ir.Limit
	UpperLimit() ir.Limit
	NumericType() (ir.NumericType, bool)
	UnitType() ir.UnitType
}

// IsCompatible reports whether c satisfies d.
//
// The unit families must match, with an unspecified unit treated as
// Dimensionless. A numeric type on c must agree with d's continuity; a
// missing one is accepted unless stringent. Every bound d sets must be set on
// c at least as tightly. In stringent mode every bound d leaves open must
// also be open on c.
//
// A true result in stringent mode implies a true result without it.
func IsCompatible(d ir.RoleDescriptor, c Limits, stringent bool) bool {
	return incompatibility(d, c, stringent) == ""
}

// incompatibility returns why c fails d, or "" when it does not.
func incompatibility(d ir.RoleDescriptor, c Limits, stringent bool) string {
	if c.UnitType().Effective() != d.UnitType.Effective() {
		return "unit type " + c.UnitType().Effective().String() + " does not match " + d.UnitType.Effective().String()
	}

	if n, ok := c.NumericType(); ok {
		if n.IsContinuous() != d.IsContinuous {
			return "numeric type " + n.String() + " does not match role continuity"
		}
	} else if stringent {
		return "numeric type unset"
	}

	if reason := checkBound(d.LowerLimit, c.LowerLimit(), stringent, "lower", func(have, want float64) bool {
		return have >= want
	}); reason != "" {
		return reason
	}
	return checkBound(d.UpperLimit, c.UpperLimit(), stringent, "upper", func(have, want float64) bool {
		return have <= want
	})
}

// checkBound compares one side of the range. within reports whether the
// candidate value is at least as tight as the required one.
func checkBound(want, have ir.Limit, stringent bool, side string, within func(have, want float64) bool) string {
	w, wantOK := want.Get()
	h, haveOK := have.Get()

	switch {
	case wantOK && !haveOK:
		return side + " limit unset, role requires " + want.String()
	case wantOK && !within(h, w):
		return side + " limit " + have.String() + " looser than " + want.String()
	case !wantOK && haveOK && stringent:
		return side + " limit " + have.String() + " set on an unbounded role"
	}
	return ""
}
