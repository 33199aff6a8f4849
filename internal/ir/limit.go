package ir

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Limit is an optional numeric bound.
//
// The zero value is NoLimit. NoLimit means "no bound required" and is
// distinct from SomeLimit(0).
type Limit struct {
	value float64
	set   bool
}

// NoLimit is the unbounded limit.
var NoLimit = Limit{}

// SomeLimit returns a limit bounded at v.
func SomeLimit(v float64) Limit {
	return Limit{value: v, set: true}
}

// IsSet reports whether the limit carries a bound.
func (l Limit) IsSet() bool {
	return l.set
}

// Get returns the bound and whether it is set.
func (l Limit) Get() (float64, bool) {
	return l.value, l.set
}

// Value returns the bound. It returns 0 for NoLimit; callers that need to
// distinguish the two must use Get or IsSet.
func (l Limit) Value() float64 {
	return l.value
}

// Equal reports whether two limits are identical, including their set state.
func (l Limit) Equal(o Limit) bool {
	if l.set != o.set {
		return false
	}
	return !l.set || l.value == o.value
}

// String implements fmt.Stringer. NoLimit renders as "-".
func (l Limit) String() string {
	if !l.set {
		return "-"
	}
	return strconv.FormatFloat(l.value, 'g', -1, 64)
}

// MarshalJSON encodes NoLimit as null and a bound as a JSON number.
func (l Limit) MarshalJSON() ([]byte, error) {
	if !l.set {
		return []byte("null"), nil
	}
	return json.Marshal(l.value)
}

// UnmarshalJSON decodes null as NoLimit.
func (l *Limit) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = NoLimit
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("limit: %w", err)
	}
	*l = SomeLimit(v)
	return nil
}

// ValidLimitValue reports whether v may be stored as a bound.
// NaN and infinities are rejected.
func ValidLimitValue(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
