package validity

import (
	"fmt"
	"math"

	"github.com/roach88/schedreg/internal/ir"
	"github.com/roach88/schedreg/internal/model"
)

// Problem classifies a violation.
type Problem string

const (
	BelowLower  Problem = "below_lower"
	AboveUpper  Problem = "above_upper"
	NotIntegral Problem = "not_integral"
	NotFinite   Problem = "not_finite"
)

// Violation is one schedule value that its constraint does not allow.
type Violation struct {
	Schedule     model.Handle `json:"schedule"`
	ScheduleName string       `json:"schedule_name"`
	Constraint   model.Handle `json:"constraint"`
	Index        int          `json:"index"`
	Value        float64      `json:"value"`
	Problem      Problem      `json:"problem"`
	Limit        ir.Limit     `json:"limit"`
}

func (v Violation) String() string {
	switch v.Problem {
	case BelowLower, AboveUpper:
		return fmt.Sprintf("%s[%d] = %v is %s %s (constraint %s)",
			v.ScheduleName, v.Index, v.Value, v.Problem, v.Limit, v.Constraint)
	default:
		return fmt.Sprintf("%s[%d] = %v is %s (constraint %s)",
			v.ScheduleName, v.Index, v.Value, v.Problem, v.Constraint)
	}
}

// Check reports every violation in m, schedules in creation order.
// Unbound schedules have nothing to violate.
func Check(m *model.Model) []Violation {
	var out []Violation
	for _, s := range m.Schedules() {
		out = append(out, CheckSchedule(s)...)
	}
	return out
}

// CheckSchedule reports the violations of one schedule.
func CheckSchedule(s *model.Schedule) []Violation {
	c := s.CurrentConstraint()
	if c == nil {
		return nil
	}

	lower, hasLower := c.LowerLimit().Get()
	upper, hasUpper := c.UpperLimit().Get()
	numeric, _ := c.NumericType()

	var out []Violation
	for i, v := range s.Values() {
		base := Violation{
			Schedule:     s.Handle(),
			ScheduleName: s.Name(),
			Constraint:   c.Handle(),
			Index:        i,
			Value:        v,
		}

		if math.IsNaN(v) || math.IsInf(v, 0) {
			base.Problem = NotFinite
			out = append(out, base)
			continue
		}
		if hasLower && v < lower {
			viol := base
			viol.Problem = BelowLower
			viol.Limit = c.LowerLimit()
			out = append(out, viol)
		}
		if hasUpper && v > upper {
			viol := base
			viol.Problem = AboveUpper
			viol.Limit = c.UpperLimit()
			out = append(out, viol)
		}
		if numeric == ir.NumericDiscrete && v != math.Trunc(v) {
			viol := base
			viol.Problem = NotIntegral
			out = append(out, viol)
		}
	}
	return out
}
