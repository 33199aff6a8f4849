package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/schedreg/internal/ir"
)

func newTestModel(handles ...string) *Model {
	return New(WithHandleGenerator(NewFixedGenerator(handles...)))
}

func TestModelConstraintsInCreationOrder(t *testing.T) {
	m := newTestModel("c1", "c2", "c3")

	a := m.CreateConstraint("A")
	b := m.CreateConstraint("B")
	c := m.CreateConstraint("C")

	got := m.Constraints()
	require.Len(t, got, 3)
	assert.Same(t, a, got[0])
	assert.Same(t, b, got[1])
	assert.Same(t, c, got[2])

	assert.Equal(t, Handle("c1"), a.Handle())
	assert.Same(t, m, a.Model())
}

func TestModelConstraintsReturnsCopy(t *testing.T) {
	m := newTestModel("c1")
	m.CreateConstraint("A")

	got := m.Constraints()
	got[0] = nil
	assert.NotNil(t, m.Constraints()[0])
}

func TestModelAddConstraint(t *testing.T) {
	m := newTestModel("gen-1")

	c := NewConstraint("Detached")
	assert.Nil(t, c.Model())

	require.NoError(t, m.AddConstraint(c))
	assert.Equal(t, Handle("gen-1"), c.Handle())

	err := m.AddConstraint(c)
	assert.ErrorIs(t, err, ErrOwned)

	other := New()
	assert.ErrorIs(t, other.AddConstraint(c), ErrOwned)
}

func TestModelAddConstraintKeepsHandle(t *testing.T) {
	m := newTestModel()

	c := NewConstraintWithHandle("persisted", "Restored")
	require.NoError(t, m.AddConstraint(c))
	assert.Equal(t, Handle("persisted"), c.Handle())

	got, ok := m.Constraint("persisted")
	require.True(t, ok)
	assert.Same(t, c, got)

	dup := NewConstraintWithHandle("persisted", "Again")
	assert.ErrorIs(t, m.AddConstraint(dup), ErrDuplicateHandle)
}

func TestModelConstraintsByName(t *testing.T) {
	m := newTestModel("c1", "c2", "c3")
	first := m.CreateConstraint("Fractional")
	m.CreateConstraint("Temperature")
	second := m.CreateConstraint("fractional")

	got := m.ConstraintsByName("FRACTIONAL")
	require.Len(t, got, 2)
	assert.Same(t, first, got[0])
	assert.Same(t, second, got[1])
}

func TestScheduleSetConstraint(t *testing.T) {
	m := newTestModel("c1", "s1")
	c := m.CreateConstraint("Fractional")
	s := m.NewSchedule("Occupancy", 0, 0.5, 1)

	assert.Nil(t, s.CurrentConstraint())
	require.True(t, s.SetConstraint(c))
	assert.Same(t, c, s.CurrentConstraint())
	assert.Equal(t, 1, m.DirectUseCount(c))

	s.ResetConstraint()
	assert.Nil(t, s.CurrentConstraint())
	assert.Equal(t, 0, m.DirectUseCount(c))
}

func TestScheduleSetConstraintRejectsForeign(t *testing.T) {
	m := newTestModel("s1")
	other := New(WithHandleGenerator(NewFixedGenerator("c1")))

	s := m.NewSchedule("Occupancy")
	foreign := other.CreateConstraint("Fractional")

	assert.False(t, s.SetConstraint(foreign))
	assert.False(t, s.SetConstraint(nil))
	assert.False(t, s.SetConstraint(NewConstraint("Detached")))
	assert.Nil(t, s.CurrentConstraint())
}

func TestScheduleValuesAreCopied(t *testing.T) {
	m := newTestModel("s1")
	in := []float64{1, 2, 3}
	s := m.NewSchedule("Setpoint", in...)

	in[0] = 99
	out := s.Values()
	assert.Equal(t, []float64{1, 2, 3}, out)

	out[1] = 99
	assert.Equal(t, []float64{1, 2, 3}, s.Values())
}

func TestModelRemoveConstraintClearsReferences(t *testing.T) {
	m := newTestModel("c1", "c2", "s1", "s2", "s3")
	doomed := m.CreateConstraint("Doomed")
	kept := m.CreateConstraint("Kept")

	s1 := m.NewSchedule("one")
	s2 := m.NewSchedule("two")
	s3 := m.NewSchedule("three")
	require.True(t, s1.SetConstraint(doomed))
	require.True(t, s2.SetConstraint(doomed))
	require.True(t, s3.SetConstraint(kept))

	require.True(t, m.RemoveConstraint(doomed))

	assert.Nil(t, s1.CurrentConstraint())
	assert.Nil(t, s2.CurrentConstraint())
	assert.Same(t, kept, s3.CurrentConstraint())
	assert.True(t, doomed.Removed())
	assert.Nil(t, doomed.Model())
	assert.Len(t, m.Constraints(), 1)

	assert.False(t, s1.SetConstraint(doomed), "removed constraint cannot be bound")
	assert.False(t, m.RemoveConstraint(doomed), "second removal is a no-op")
}

func TestModelReAddRemovedConstraint(t *testing.T) {
	m := newTestModel("c1")
	c := m.CreateConstraint("Back")
	require.True(t, m.RemoveConstraint(c))

	require.NoError(t, m.AddConstraint(c))
	assert.False(t, c.Removed())
	assert.Equal(t, Handle("c1"), c.Handle())
}

func TestModelScheduleLookup(t *testing.T) {
	m := newTestModel("s1", "s2")
	a := m.NewSchedule("Heating Setpoint")
	m.NewSchedule("Cooling Setpoint")

	got, ok := m.Schedule("s1")
	require.True(t, ok)
	assert.Same(t, a, got)

	got, ok = m.ScheduleByName("heating setpoint")
	require.True(t, ok)
	assert.Same(t, a, got)

	_, ok = m.ScheduleByName("Missing")
	assert.False(t, ok)

	_, err := m.RestoreSchedule("s2", "dup", nil)
	assert.ErrorIs(t, err, ErrDuplicateHandle)
}

func TestAlwaysOnDiscreteSchedule(t *testing.T) {
	m := newTestModel("c1", "s1")

	s := m.AlwaysOnDiscreteSchedule()
	assert.Equal(t, AlwaysOnDiscreteName, s.Name())
	assert.Equal(t, []float64{1}, s.Values())

	c := s.CurrentConstraint()
	require.NotNil(t, c)
	assert.Equal(t, "OnOff", c.Name())
	assert.Equal(t, ir.UnitAvailability, c.UnitType())
	n, ok := c.NumericType()
	require.True(t, ok)
	assert.Equal(t, ir.NumericDiscrete, n)
	assert.True(t, c.LowerLimit().Equal(ir.SomeLimit(0)))
	assert.True(t, c.UpperLimit().Equal(ir.SomeLimit(1)))

	again := m.AlwaysOnDiscreteSchedule()
	assert.Same(t, s, again)
	assert.Len(t, m.Constraints(), 1)
	assert.Len(t, m.Schedules(), 1)
}

func TestAlwaysOffDiscreteSchedule(t *testing.T) {
	m := newTestModel("c1", "s1")

	s := m.AlwaysOffDiscreteSchedule()
	assert.Equal(t, AlwaysOffDiscreteName, s.Name())
	assert.Equal(t, []float64{0}, s.Values())
	assert.Equal(t, "OnOff", s.CurrentConstraint().Name())
}

func TestAlwaysOnContinuousSchedule(t *testing.T) {
	m := newTestModel("c1", "s1")

	s := m.AlwaysOnContinuousSchedule()
	c := s.CurrentConstraint()
	require.NotNil(t, c)
	assert.Equal(t, "Fractional", c.Name())
	assert.Equal(t, ir.UnitDimensionless, c.UnitType())
	n, _ := c.NumericType()
	assert.Equal(t, ir.NumericContinuous, n)
}

func TestAlwaysOnDiscreteRecreatedWhenUnbound(t *testing.T) {
	m := newTestModel("c1", "s1", "c2", "s2")

	first := m.AlwaysOnDiscreteSchedule()
	first.ResetConstraint()

	second := m.AlwaysOnDiscreteSchedule()
	assert.NotSame(t, first, second)
	assert.Len(t, m.Schedules(), 2)
}

func TestFixedGeneratorExhausted(t *testing.T) {
	gen := NewFixedGenerator("only")
	assert.Equal(t, "only", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}

func TestUUIDv7GeneratorUnique(t *testing.T) {
	gen := UUIDv7Generator{}
	a := gen.Generate()
	b := gen.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
