package registry

import (
	"slices"

	"github.com/roach88/schedreg/internal/ir"
)

// ClassNames returns every distinct consumer kind, sorted.
func (r *Registry) ClassNames() []string {
	return slices.Clone(r.kinds)
}

// RolesFor returns the roles registered for kind in registration order.
// Unknown kinds yield an empty slice.
func (r *Registry) RolesFor(kind string) []ir.RoleDescriptor {
	idx := r.byKind[kind]
	out := make([]ir.RoleDescriptor, len(idx))
	for i, j := range idx {
		out[i] = r.roles[j]
	}
	return out
}

// Lookup returns the descriptor for (kind, role). Matching is exact.
// Unregistered pairs return a *NotFoundError.
func (r *Registry) Lookup(kind, role string) (ir.RoleDescriptor, error) {
	i, ok := r.byKey[ir.RoleKey{ConsumerKind: kind, RoleName: role}]
	if !ok {
		return ir.RoleDescriptor{}, &NotFoundError{Kind: kind, Role: role}
	}
	return r.roles[i], nil
}

// DefaultConstraintName names a constraint created for d.
//
// Availability roles get "OnOff". Roles with no unit family are named by
// their shape: "Fractional" or "Dimensionless" when continuous, "Binary" or
// "Integer" when discrete, the first of each pair for a [0, 1] range. Every
// other role is named after its unit family.
func DefaultConstraintName(d ir.RoleDescriptor) string {
	switch d.UnitType {
	case ir.UnitAvailability:
		return "OnOff"
	case ir.UnitUnspecified:
		unit := d.LowerLimit.Equal(ir.SomeLimit(0)) && d.UpperLimit.Equal(ir.SomeLimit(1))
		switch {
		case d.IsContinuous && unit:
			return "Fractional"
		case d.IsContinuous:
			return "Dimensionless"
		case unit:
			return "Binary"
		default:
			return "Integer"
		}
	default:
		return d.UnitType.String()
	}
}
