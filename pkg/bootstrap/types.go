// Package bootstrap provides bootstrap configuration loading for the gateway:
// the provisioning parameter seed set and subject overrides.
package bootstrap

// SeedParameter is a provisioning parameter seeded into the database at
// startup. VersionRange, when set, is a semver constraint limiting which
// client versions receive the parameter.
type SeedParameter struct {
	Name         string `json:"name"`
	Value        string `json:"value"`
	Type         string `json:"type"`
	Active       bool   `json:"active"`
	VersionRange string `json:"versionRange,omitempty"`
}

// Subjects overrides the default NATS subjects.
type Subjects struct {
	Gateway      string `json:"gateway,omitempty"`
	RecordEvent  string `json:"recordEvent,omitempty"`
	AccountEvent string `json:"accountEvent,omitempty"`
}

// BootstrapConfig is the root bootstrap configuration.
type BootstrapConfig struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description,omitempty"`
	Subjects    Subjects        `json:"subjects"`
	Parameters  []SeedParameter `json:"parameters"`
}
