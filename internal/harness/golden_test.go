package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Golden files live in testdata/golden. To regenerate them:
//
//	go test ./internal/harness -run TestScenarios -update
func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name, "scenario name must match its file name")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestAssertGolden_FromResult(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/shared_availability.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	require.NoError(t, AssertGolden(t, "shared_availability", result))
}

func TestMarshalTrace_Canonical(t *testing.T) {
	result := NewResult()
	result.AddTrace(TraceEvent{Seq: 1, Op: OpNewSchedule, Schedule: "Fan"})
	result.AddTrace(TraceEvent{
		Seq:            2,
		Op:             OpBind,
		Schedule:       "Fan",
		Role:           "Fan/Availability",
		Constraint:     "h-002",
		ConstraintName: "OnOff",
		Transition:     "bound",
		Created:        true,
	})
	result.AddTrace(TraceEvent{Seq: 3, Op: OpValidate, Schedule: "Fan", Role: "Lights/Lighting", Error: "incompatible"})

	data, err := MarshalTrace("canonical", result)
	require.NoError(t, err)

	want := `{"scenario_name":"canonical","trace":[` +
		`{"op":"new_schedule","schedule":"Fan","seq":1},` +
		`{"constraint":"h-002","constraint_name":"OnOff","created":true,"op":"bind","role":"Fan/Availability","schedule":"Fan","seq":2,"transition":"bound"},` +
		`{"error":"incompatible","op":"validate","role":"Lights/Lighting","schedule":"Fan","seq":3}]}`
	assert.Equal(t, want, string(data))
}

func TestMarshalTrace_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/custom_catalog.yaml")
	require.NoError(t, err)

	var outputs []string
	for i := 0; i < 5; i++ {
		result, err := Run(scenario)
		require.NoError(t, err)
		data, err := MarshalTrace(scenario.Name, result)
		require.NoError(t, err)
		outputs = append(outputs, string(data))
	}

	for i := 1; i < len(outputs); i++ {
		assert.Equal(t, outputs[0], outputs[i], "run %d differs", i)
	}
}

func TestMarshalTrace_Empty(t *testing.T) {
	data, err := MarshalTrace("empty", NewResult())
	require.NoError(t, err)
	assert.Equal(t, `{"scenario_name":"empty","trace":[]}`, string(data))
}
