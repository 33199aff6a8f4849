// Package validity reports schedule values that fall outside the bounds of
// the constraint they are bound to.
//
// Binding only checks that a constraint is structurally suitable for a role.
// Whether the numbers in a schedule actually respect that constraint is a
// separate question answered here, after the fact, without changing the
// model.
package validity
