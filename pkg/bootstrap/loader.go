package bootstrap

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

const logPrefix = "bootstrap:loader"

// LoadBootstrapConfig loads bootstrap config from file paths or environment.
// It tries paths in order: first any paths passed in, then the
// GATEWAY_BOOTSTRAP_FILE env var, then defaults. So an explicit path (e.g.
// from "seed my.json") is tried before the env var.
func LoadBootstrapConfig(paths ...string) (*BootstrapConfig, error) {
	all := make([]string, 0, len(paths)+3)
	for _, p := range paths {
		if p != "" {
			all = append(all, p)
		}
	}
	if envPath := os.Getenv("GATEWAY_BOOTSTRAP_FILE"); envPath != "" {
		all = append(all, envPath)
	}
	all = append(all, "config/bootstrap.json", "bootstrap.json")

	for _, p := range all {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}

		var cfg BootstrapConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			slog.Warn(fmt.Sprintf("%s - Failed to parse bootstrap file %s: %v", logPrefix, p, err))
			continue
		}

		slog.Info(fmt.Sprintf("%s - Loaded bootstrap config from %s", logPrefix, p))
		return &cfg, nil
	}

	slog.Info(fmt.Sprintf("%s - Using default bootstrap config", logPrefix))
	return GetDefaultBootstrapConfig(), nil
}

// GetDefaultBootstrapConfig returns the embedded fallback bootstrap
// configuration: the parameter set clients need before an operator has
// provisioned anything.
func GetDefaultBootstrapConfig() *BootstrapConfig {
	return &BootstrapConfig{
		Name:        "gateway-bootstrap",
		Version:     "1.0.0",
		Description: "Default telemetry gateway bootstrap configuration",
		Parameters: []SeedParameter{
			{Name: "reportingInterval", Value: "300", Type: "Integer", Active: true},
			{Name: "locationTracking", Value: "false", Type: "Boolean", Active: true},
			{Name: "uploadBatchSize", Value: "50", Type: "Integer", Active: true},
			{Name: "compressUploads", Value: "true", Type: "Boolean", Active: true, VersionRange: ">= 2.0.0"},
		},
	}
}

// MergeBootstrapConfigs merges an override config into a base config.
// Parameters are merged by name; subjects are overridden when set.
func MergeBootstrapConfigs(base, override *BootstrapConfig) *BootstrapConfig {
	merged := *base

	byName := make(map[string]int, len(merged.Parameters))
	params := make([]SeedParameter, len(merged.Parameters))
	copy(params, merged.Parameters)
	for i, p := range params {
		byName[p.Name] = i
	}
	for _, p := range override.Parameters {
		if i, ok := byName[p.Name]; ok {
			params[i] = p
			continue
		}
		byName[p.Name] = len(params)
		params = append(params, p)
	}
	merged.Parameters = params

	if override.Subjects.Gateway != "" {
		merged.Subjects.Gateway = override.Subjects.Gateway
	}
	if override.Subjects.RecordEvent != "" {
		merged.Subjects.RecordEvent = override.Subjects.RecordEvent
	}
	if override.Subjects.AccountEvent != "" {
		merged.Subjects.AccountEvent = override.Subjects.AccountEvent
	}

	return &merged
}
