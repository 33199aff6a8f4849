package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDescriptor() RoleDescriptor {
	return RoleDescriptor{
		ConsumerKind:     "FanConstantVolume",
		RoleName:         "Availability",
		RelationshipName: "availabilitySchedule",
		IsContinuous:     false,
		UnitType:         UnitAvailability,
		LowerLimit:       SomeLimit(0),
		UpperLimit:       SomeLimit(1),
	}
}

func TestDescriptorHashDeterminism(t *testing.T) {
	d := testDescriptor()

	h1, err := DescriptorHash(d)
	require.NoError(t, err)
	h2, err := DescriptorHash(d)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "DescriptorHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestDescriptorHashDistinguishesNoLimitFromZero(t *testing.T) {
	bounded := testDescriptor()
	unbounded := testDescriptor()
	unbounded.LowerLimit = NoLimit

	h1, err := DescriptorHash(bounded)
	require.NoError(t, err)
	h2, err := DescriptorHash(unbounded)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestCatalogHashDependsOnOrder(t *testing.T) {
	a := testDescriptor()
	b := testDescriptor()
	b.RoleName = "Supply Air Fan Operating Mode"
	b.UnitType = UnitControlMode

	h1, err := CatalogHash([]RoleDescriptor{a, b})
	require.NoError(t, err)
	h2, err := CatalogHash([]RoleDescriptor{b, a})
	require.NoError(t, err)
	h3, err := CatalogHash([]RoleDescriptor{a, b})
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "registration order is part of the fingerprint")
	assert.Equal(t, h1, h3)
}

func TestCatalogHashDomainSeparation(t *testing.T) {
	d := testDescriptor()

	catalog, err := CatalogHash([]RoleDescriptor{d})
	require.NoError(t, err)
	single, err := DescriptorHash(d)
	require.NoError(t, err)

	assert.NotEqual(t, catalog, single)
}

func TestCatalogHashEmpty(t *testing.T) {
	h, err := CatalogHash(nil)
	require.NoError(t, err)
	assert.Len(t, h, 64)
}
