package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix enables future algorithm migration.
const (
	DomainCatalog    = "schedreg/catalog/v1"
	DomainDescriptor = "schedreg/descriptor/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalDescriptor converts a descriptor to the map form hashed by
// DescriptorHash and CatalogHash.
func canonicalDescriptor(d RoleDescriptor) map[string]any {
	return map[string]any{
		"consumer_kind":     d.ConsumerKind,
		"role_name":         d.RoleName,
		"relationship_name": d.RelationshipName,
		"is_continuous":     d.IsContinuous,
		"unit_type":         d.UnitType.String(),
		"lower_limit":       d.LowerLimit,
		"upper_limit":       d.UpperLimit,
	}
}

// DescriptorHash computes the content-addressed ID of a single descriptor.
func DescriptorHash(d RoleDescriptor) (string, error) {
	canonical, err := MarshalCanonical(canonicalDescriptor(d))
	if err != nil {
		return "", fmt.Errorf("DescriptorHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDescriptor, canonical), nil
}

// CatalogHash computes the fingerprint of an ordered role table.
// Registration order is part of the fingerprint because RolesFor exposes it.
// Persisted models record this hash so a changed catalog can be detected.
func CatalogHash(descriptors []RoleDescriptor) (string, error) {
	list := make([]any, len(descriptors))
	for i, d := range descriptors {
		list[i] = canonicalDescriptor(d)
	}

	canonical, err := MarshalCanonical(map[string]any{
		"ir_version": IRVersion,
		"roles":      list,
	})
	if err != nil {
		return "", fmt.Errorf("CatalogHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCatalog, canonical), nil
}
