package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/schedreg/internal/ir"
)

func TestClasses_EmbeddedCatalog(t *testing.T) {
	out, err := runCLI(t, "classes")
	require.NoError(t, err)
	assert.Contains(t, out, "FanConstantVolume\n")
	assert.Contains(t, out, "ZoneMixing\n")
}

func TestClasses_JSON(t *testing.T) {
	out, err := runCLI(t, "--catalog", writeCatalog(t, testCatalog), "--format", "json", "classes")
	require.NoError(t, err)

	status, data, _ := decodeResponse[ClassesResult](t, out)
	assert.Equal(t, "ok", status)
	assert.Equal(t, []string{"Fan", "Lights", "Thermostat"}, data.Classes)
	assert.Len(t, data.CatalogHash, 64)
}

func TestClasses_MissingCatalog(t *testing.T) {
	out, err := runCLI(t, "--catalog", "/nonexistent/catalog.cue", "classes")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestRoles_Text(t *testing.T) {
	out, err := runCLI(t, "--catalog", writeCatalog(t, testCatalog), "roles", "Fan")
	require.NoError(t, err)
	assert.Contains(t, out, "ROLE")
	assert.Contains(t, out, "availabilitySchedule")
	assert.Contains(t, out, "OnOff")
}

func TestRoles_JSON(t *testing.T) {
	out, err := runCLI(t, "--catalog", writeCatalog(t, testCatalog), "--format", "json", "roles", "Lights")
	require.NoError(t, err)

	_, data, _ := decodeResponse[RolesResult](t, out)
	assert.Equal(t, "Lights", data.Kind)
	require.Len(t, data.Roles, 1)

	role := data.Roles[0]
	assert.Equal(t, "Lighting", role.RoleName)
	assert.True(t, role.IsContinuous)
	assert.Equal(t, ir.UnitUnspecified, role.UnitType)
	assert.True(t, role.LowerLimit.Equal(ir.SomeLimit(0)))
	assert.True(t, role.UpperLimit.Equal(ir.SomeLimit(1)))
	assert.True(t, role.FullySpecified)
	assert.Equal(t, "Fractional", role.DefaultConstraint)
}

func TestRoles_UnknownKind(t *testing.T) {
	catalog := writeCatalog(t, testCatalog)

	out, err := runCLI(t, "--catalog", catalog, "roles", "Boiler")
	require.NoError(t, err)
	assert.Equal(t, "No roles registered for Boiler.\n", out)

	out, err = runCLI(t, "--catalog", catalog, "--format", "json", "roles", "Boiler")
	require.NoError(t, err)
	_, data, _ := decodeResponse[RolesResult](t, out)
	assert.NotNil(t, data.Roles)
	assert.Empty(t, data.Roles)
}

func TestLookup_Found(t *testing.T) {
	out, err := runCLI(t, "--catalog", writeCatalog(t, testCatalog), "--format", "json", "lookup", "Thermostat", "Heating Setpoint")
	require.NoError(t, err)

	_, info, _ := decodeResponse[RoleInfo](t, out)
	assert.Equal(t, "heatingSetpointTemperatureSchedule", info.RelationshipName)
	assert.Equal(t, ir.UnitTemperature, info.UnitType)
	assert.False(t, info.LowerLimit.IsSet())
	assert.False(t, info.FullySpecified)
	assert.Equal(t, "Temperature", info.DefaultConstraint)
}

func TestLookup_Text(t *testing.T) {
	out, err := runCLI(t, "--catalog", writeCatalog(t, testCatalog), "lookup", "Lights", "Lighting")
	require.NoError(t, err)
	assert.Contains(t, out, "Numeric type:")
	assert.Contains(t, out, "Continuous")
	assert.Contains(t, out, "Dimensionless")
	assert.Contains(t, out, "Fractional")
}

func TestLookup_NotFound(t *testing.T) {
	out, err := runCLI(t, "--catalog", writeCatalog(t, testCatalog), "--format", "json", "lookup", "Fan", "availability")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	status, _, cliErr := decodeResponse[any](t, out)
	assert.Equal(t, "error", status)
	require.NotNil(t, cliErr)
	assert.Equal(t, ErrCodeRoleNotFound, cliErr.Code)
	assert.Contains(t, cliErr.Message, "Fan/availability")
}

func TestLookup_InvalidCatalog(t *testing.T) {
	catalog := writeCatalog(t, `roles: [
	{kind: "Fan", role: "Availability", relationship: "a", continuous: false, lower: 1, upper: 0},
]
`)
	_, err := runCLI(t, "--catalog", catalog, "lookup", "Fan", "Availability")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E001")
}
