package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/schedreg/internal/ir"
	"github.com/roach88/schedreg/internal/model"
)

// limits builds a detached constraint for predicate tests.
func limits(unit string, numeric string, lower, upper ir.Limit) *model.Constraint {
	c := model.NewConstraint("test")
	if unit != "" {
		c.SetUnitType(unit)
	}
	if numeric != "" {
		c.SetNumericType(numeric)
	}
	if v, ok := lower.Get(); ok {
		c.SetLowerLimit(v)
	}
	if v, ok := upper.Get(); ok {
		c.SetUpperLimit(v)
	}
	return c
}

func TestIsCompatibleUnitMatch(t *testing.T) {
	d := setpoint()

	assert.True(t, IsCompatible(d, limits("Temperature", "Continuous", ir.NoLimit, ir.NoLimit), false))
	assert.False(t, IsCompatible(d, limits("DeltaTemperature", "Continuous", ir.NoLimit, ir.NoLimit), false))
	assert.False(t, IsCompatible(d, limits("", "Continuous", ir.NoLimit, ir.NoLimit), false))
}

func TestIsCompatibleUnspecifiedUnitIsDimensionless(t *testing.T) {
	d := lights()

	assert.True(t, IsCompatible(d, limits("", "Continuous", ir.SomeLimit(0), ir.SomeLimit(1)), false))
	assert.True(t, IsCompatible(d, limits("Dimensionless", "Continuous", ir.SomeLimit(0), ir.SomeLimit(1)), false))
	assert.False(t, IsCompatible(d, limits("Availability", "Continuous", ir.SomeLimit(0), ir.SomeLimit(1)), false),
		"availability is its own family")
}

func TestIsCompatibleNumericType(t *testing.T) {
	d := fan()

	assert.True(t, IsCompatible(d, limits("Availability", "Discrete", ir.SomeLimit(0), ir.SomeLimit(1)), false))
	assert.False(t, IsCompatible(d, limits("Availability", "Continuous", ir.SomeLimit(0), ir.SomeLimit(1)), false))

	unset := limits("Availability", "", ir.SomeLimit(0), ir.SomeLimit(1))
	assert.True(t, IsCompatible(d, unset, false))
	assert.False(t, IsCompatible(d, unset, true))
}

func TestIsCompatibleBounds(t *testing.T) {
	d := lights()

	tests := []struct {
		name         string
		lower, upper ir.Limit
		want         bool
	}{
		{"exact", ir.SomeLimit(0), ir.SomeLimit(1), true},
		{"tighter", ir.SomeLimit(0.2), ir.SomeLimit(0.8), true},
		{"looser lower", ir.SomeLimit(-1), ir.SomeLimit(1), false},
		{"looser upper", ir.SomeLimit(0), ir.SomeLimit(2), false},
		{"missing lower", ir.NoLimit, ir.SomeLimit(1), false},
		{"missing upper", ir.SomeLimit(0), ir.NoLimit, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := limits("", "Continuous", tt.lower, tt.upper)
			assert.Equal(t, tt.want, IsCompatible(d, c, false))
		})
	}
}

func TestIsCompatibleUnboundedRole(t *testing.T) {
	d := mixing()

	bounded := limits("Temperature", "Continuous", ir.SomeLimit(-50), ir.SomeLimit(50))
	assert.True(t, IsCompatible(d, bounded, false), "any upper accepted when the role sets none")
	assert.False(t, IsCompatible(d, bounded, true), "stringent requires the open end to stay open")

	open := limits("Temperature", "Continuous", ir.SomeLimit(-50), ir.NoLimit)
	assert.True(t, IsCompatible(d, open, true))

	zero := limits("Temperature", "Continuous", ir.SomeLimit(-50), ir.SomeLimit(0))
	assert.False(t, IsCompatible(d, zero, true), "a bound of zero is still a bound")
}

func TestIsCompatibleStringentImpliesNonStringent(t *testing.T) {
	bounds := []ir.Limit{ir.NoLimit, ir.SomeLimit(-1), ir.SomeLimit(0), ir.SomeLimit(0.5), ir.SomeLimit(1), ir.SomeLimit(2)}
	units := []ir.UnitType{ir.UnitUnspecified, ir.UnitDimensionless, ir.UnitAvailability}
	numerics := []string{"", "Continuous", "Discrete"}

	var descriptors []ir.RoleDescriptor
	for _, unit := range units {
		for _, cont := range []bool{true, false} {
			for _, lo := range bounds {
				for _, hi := range bounds {
					descriptors = append(descriptors, ir.RoleDescriptor{
						IsContinuous: cont,
						UnitType:     unit,
						LowerLimit:   lo,
						UpperLimit:   hi,
					})
				}
			}
		}
	}

	var candidates []*model.Constraint
	for _, unit := range []string{"", "Dimensionless", "Availability"} {
		for _, n := range numerics {
			for _, lo := range bounds {
				for _, hi := range bounds {
					candidates = append(candidates, limits(unit, n, lo, hi))
				}
			}
		}
	}

	for _, d := range descriptors {
		for _, c := range candidates {
			if IsCompatible(d, c, true) {
				assert.True(t, IsCompatible(d, c, false),
					"stringent match must hold non-stringent: d=%s c=[%s,%s]", d, c.LowerLimit(), c.UpperLimit())
			}
		}
	}
}

func TestIsCompatibleRole(t *testing.T) {
	r := testRegistry(t)

	ok, err := r.IsCompatibleRole("Lights", "Lighting", limits("", "Continuous", ir.SomeLimit(0), ir.SomeLimit(1)))
	assert.NoError(t, err)
	assert.True(t, ok)

	_, err = r.IsCompatibleRole("Lights", "Nope", limits("", "", ir.NoLimit, ir.NoLimit))
	assert.ErrorIs(t, err, ErrNotFound)
}
