package ir

// Version constants for the IR schema and the registry.
const (
	// IRVersion is the IR schema version. Stored with persisted models.
	IRVersion = "1"

	// RegistryVersion is the schedule type registry version.
	RegistryVersion = "0.1.0"
)
