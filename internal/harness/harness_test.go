package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/schedreg/internal/ir"
	"github.com/roach88/schedreg/internal/registry"
)

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

// testRegistry holds a small catalog so harness tests do not depend on the
// embedded one.
func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New([]ir.RoleDescriptor{
		{
			ConsumerKind:     "Fan",
			RoleName:         "Availability",
			RelationshipName: "availabilitySchedule",
			UnitType:         ir.UnitAvailability,
			LowerLimit:       ir.SomeLimit(0),
			UpperLimit:       ir.SomeLimit(1),
		},
		{
			ConsumerKind:     "Lights",
			RoleName:         "Lighting",
			RelationshipName: "schedule",
			IsContinuous:     true,
			LowerLimit:       ir.SomeLimit(0),
			UpperLimit:       ir.SomeLimit(1),
		},
		{
			ConsumerKind:     "Thermostat",
			RoleName:         "Heating Setpoint",
			RelationshipName: "heatingSetpointTemperatureSchedule",
			IsContinuous:     true,
			UnitType:         ir.UnitTemperature,
		},
	})
	require.NoError(t, err)
	return reg
}

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name: "minimal",
		Steps: []Step{
			{Op: OpNewSchedule, Name: "Fan", Values: []float64{1}},
			{Op: OpBind, Schedule: "Fan", Kind: "Fan", Role: "Availability"},
		},
	}

	result, err := RunWithRegistry(testRegistry(t), scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 2)

	assert.Equal(t, TraceEvent{Seq: 1, Op: OpNewSchedule, Schedule: "Fan"}, result.Trace[0])
	assert.Equal(t, TraceEvent{
		Seq:            2,
		Op:             OpBind,
		Schedule:       "Fan",
		Role:           "Fan/Availability",
		Constraint:     "h-002",
		ConstraintName: "OnOff",
		Transition:     "bound",
		Created:        true,
	}, result.Trace[1])
}

func TestRun_EmbeddedCatalog(t *testing.T) {
	scenario := &Scenario{
		Name: "embedded",
		Steps: []Step{
			{Op: OpGetOrCreate, Kind: "Lights", Role: "Lighting"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, "Fractional", result.Trace[0].ConstraintName)
	assert.True(t, result.Trace[0].Created)
}

func TestRun_MissingCatalogFile(t *testing.T) {
	scenario := &Scenario{
		Name:    "missing",
		Catalog: "/nonexistent/catalog.cue",
		Steps:   []Step{{Op: OpReload}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read catalog")
}

func TestRun_ExpectationsMet(t *testing.T) {
	scenario := &Scenario{
		Name: "expect",
		Steps: []Step{
			{Op: OpNewSchedule, Name: "Fan A"},
			{Op: OpNewSchedule, Name: "Fan B"},
			{
				Op: OpBind, Schedule: "Fan A", Kind: "Fan", Role: "Availability",
				Expect: &Expect{Transition: "bound", Created: boolPtr(true), ConstraintName: "OnOff", Error: "none"},
			},
			{
				Op: OpBind, Schedule: "Fan B", Kind: "Fan", Role: "Availability",
				Expect: &Expect{Transition: "bound", Created: boolPtr(false)},
			},
			{
				Op: OpBind, Schedule: "Fan B", Kind: "Fan", Role: "Availability",
				Expect: &Expect{Transition: "kept"},
			},
		},
		Assertions: []Assertion{
			{Type: AssertConstraintCount, Count: 1},
			{Type: AssertSameConstraint, Schedules: []string{"Fan A", "Fan B"}},
		},
	}

	result, err := RunWithRegistry(testRegistry(t), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
}

func TestRun_ExpectationsFailed(t *testing.T) {
	scenario := &Scenario{
		Name: "expect_fail",
		Steps: []Step{
			{Op: OpNewSchedule, Name: "Fan"},
			{
				Op: OpBind, Schedule: "Fan", Kind: "Fan", Role: "Availability",
				Expect: &Expect{Transition: "kept", Created: boolPtr(false), ConstraintName: "Other", Error: "incompatible"},
			},
		},
	}

	result, err := RunWithRegistry(testRegistry(t), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Equal(t, "step 1 (bind): expected error incompatible, got none", result.Errors[0])
	assert.Equal(t, `step 1 (bind): expected transition kept, got "bound"`, result.Errors[1])
	assert.Equal(t, "step 1 (bind): expected created=false, got true", result.Errors[2])
	assert.Equal(t, `step 1 (bind): expected constraint "Other", got "OnOff"`, result.Errors[3])
}

func TestRun_NotFoundRole(t *testing.T) {
	scenario := &Scenario{
		Name: "not_found",
		Steps: []Step{
			{Op: OpNewSchedule, Name: "Fan"},
			{
				Op: OpBind, Schedule: "Fan", Kind: "Fan", Role: "Speed",
				Expect: &Expect{Error: "not_found"},
			},
			{
				Op: OpGetOrCreate, Kind: "Pump", Role: "Availability",
				Expect: &Expect{Error: "not_found"},
			},
		},
		Assertions: []Assertion{
			{Type: AssertConstraintCount, Count: 0},
			{Type: AssertBoundTo, Schedule: "Fan"},
		},
	}

	result, err := RunWithRegistry(testRegistry(t), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "not_found", result.Trace[1].Error)
	assert.Empty(t, result.Trace[1].Constraint)
	assert.Equal(t, "Pump/Availability", result.Trace[2].Role)
}

func TestRun_ValidateAndRebind(t *testing.T) {
	scenario := &Scenario{
		Name: "rebind",
		Steps: []Step{
			{Op: OpNewConstraint, Name: "Setpoint", NumericType: "Continuous", UnitType: "Temperature"},
			{Op: OpNewSchedule, Name: "Lights"},
			{Op: OpSetConstraint, Schedule: "Lights", Constraint: "Setpoint"},
			{
				Op: OpValidate, Schedule: "Lights", Kind: "Lights", Role: "Lighting",
				Expect: &Expect{Error: "incompatible"},
			},
			{
				Op: OpValidate, Schedule: "Lights", Kind: "Thermostat", Role: "Heating Setpoint",
				Expect: &Expect{Error: "none"},
			},
			{
				Op: OpBind, Schedule: "Lights", Kind: "Lights", Role: "Lighting", As: "frac",
				Expect: &Expect{Transition: "rebound", Created: boolPtr(true), ConstraintName: "Fractional"},
			},
		},
		Assertions: []Assertion{
			{Type: AssertConstraintCount, Count: 2},
			{Type: AssertBoundTo, Schedule: "Lights", Constraint: "frac"},
		},
	}

	result, err := RunWithRegistry(testRegistry(t), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_NewConstraintLimits(t *testing.T) {
	scenario := &Scenario{
		Name: "limits",
		Steps: []Step{
			{Op: OpNewConstraint, Name: "Half", Lower: floatPtr(0.25), Upper: floatPtr(0.75), NumericType: "Continuous"},
			{Op: OpNewSchedule, Name: "Lights", Values: []float64{0.5, 0.9}},
			{
				Op: OpBind, Schedule: "Lights", Kind: "Lights", Role: "Lighting",
				Expect: &Expect{Created: boolPtr(false), ConstraintName: "Half"},
			},
		},
		Assertions: []Assertion{
			{Type: AssertConstraintCount, Count: 1},
			{Type: AssertBoundTo, Schedule: "Lights", Constraint: "Half"},
			{Type: AssertViolationCount, Count: 1},
		},
	}

	result, err := RunWithRegistry(testRegistry(t), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_RemoveConstraintUnbinds(t *testing.T) {
	scenario := &Scenario{
		Name: "remove",
		Steps: []Step{
			{Op: OpNewSchedule, Name: "Fan"},
			{Op: OpBind, Schedule: "Fan", Kind: "Fan", Role: "Availability", As: "onoff"},
			{Op: OpRemoveConstraint, Constraint: "onoff"},
		},
		Assertions: []Assertion{
			{Type: AssertConstraintCount, Count: 0},
			{Type: AssertBoundTo, Schedule: "Fan"},
		},
	}

	result, err := RunWithRegistry(testRegistry(t), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "h-002", result.Trace[2].Constraint)
}

func TestRun_ReloadKeepsHandles(t *testing.T) {
	scenario := &Scenario{
		Name: "reload",
		Steps: []Step{
			{Op: OpNewSchedule, Name: "Fan A", Values: []float64{1, 0}},
			{Op: OpBind, Schedule: "Fan A", Kind: "Fan", Role: "Availability", As: "onoff"},
			{Op: OpReload},
			{Op: OpNewSchedule, Name: "Fan B"},
			{
				Op: OpBind, Schedule: "Fan B", Kind: "Fan", Role: "Availability",
				Expect: &Expect{Created: boolPtr(false)},
			},
		},
		Assertions: []Assertion{
			{Type: AssertSameConstraint, Schedules: []string{"Fan A", "Fan B"}},
			{Type: AssertBoundTo, Schedule: "Fan A", Constraint: "onoff"},
		},
	}

	result, err := RunWithRegistry(testRegistry(t), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "h-002", result.Trace[4].Constraint)
}

func TestRun_MalformedSteps(t *testing.T) {
	tests := []struct {
		name    string
		step    Step
		wantErr string
	}{
		{"unknown schedule", Step{Op: OpBind, Schedule: "Ghost", Kind: "Fan", Role: "Availability"}, `unknown schedule "Ghost"`},
		{"unknown alias", Step{Op: OpRemoveConstraint, Constraint: "ghost"}, `unknown constraint alias "ghost"`},
		{"unknown op", Step{Op: "explode"}, `unknown op "explode"`},
		{"bad numeric type", Step{Op: OpNewConstraint, Name: "c", NumericType: "Integer"}, `invalid numeric type "Integer"`},
		{"bad unit type", Step{Op: OpNewConstraint, Name: "c", UnitType: "Furlongs"}, `invalid unit type "Furlongs"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario := &Scenario{Name: "bad", Steps: []Step{tt.step}}
			_, err := RunWithRegistry(testRegistry(t), scenario)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "step 0")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/partial_and_rebind.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)

	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
