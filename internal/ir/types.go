package ir

import "fmt"

// RoleDescriptor describes what a consumer role requires from the schedule
// type limits its schedule ends up bound to.
//
// Identity is the (ConsumerKind, RoleName) pair.
type RoleDescriptor struct {
	ConsumerKind     string   `json:"consumer_kind"`
	RoleName         string   `json:"role_name"`         // display name, also the lookup key
	RelationshipName string   `json:"relationship_name"` // link name used by the model graph
	IsContinuous     bool     `json:"is_continuous"`
	UnitType         UnitType `json:"unit_type"`
	LowerLimit       Limit    `json:"lower_limit"`
	UpperLimit       Limit    `json:"upper_limit"`
}

// RoleKey identifies a role within the catalog.
type RoleKey struct {
	ConsumerKind string
	RoleName     string
}

// String implements fmt.Stringer.
func (k RoleKey) String() string {
	return fmt.Sprintf("%s/%s", k.ConsumerKind, k.RoleName)
}

// Key returns the descriptor's identity.
func (d RoleDescriptor) Key() RoleKey {
	return RoleKey{ConsumerKind: d.ConsumerKind, RoleName: d.RoleName}
}

// FullySpecified reports whether both limits are set.
// Only fully specified descriptors may share schedule type limits.
func (d RoleDescriptor) FullySpecified() bool {
	return d.LowerLimit.IsSet() && d.UpperLimit.IsSet()
}

// NumericType returns the numeric type implied by IsContinuous.
func (d RoleDescriptor) NumericType() NumericType {
	if d.IsContinuous {
		return NumericContinuous
	}
	return NumericDiscrete
}

// String implements fmt.Stringer.
func (d RoleDescriptor) String() string {
	return fmt.Sprintf("%s (%s, %s, [%s, %s])",
		d.Key(), d.UnitType, d.NumericType(), d.LowerLimit, d.UpperLimit)
}
