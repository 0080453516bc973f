package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaultBootstrapConfig(t *testing.T) {
	cfg := GetDefaultBootstrapConfig()
	if cfg.Name != "gateway-bootstrap" {
		t.Errorf("bootstrap:loader_test - Name = %q", cfg.Name)
	}
	if len(cfg.Parameters) == 0 {
		t.Fatalf("bootstrap:loader_test - default config should carry parameters")
	}
	byName := make(map[string]SeedParameter)
	for _, p := range cfg.Parameters {
		byName[p.Name] = p
	}
	if p, ok := byName["reportingInterval"]; !ok || !p.Active {
		t.Errorf("bootstrap:loader_test - reportingInterval = %+v", p)
	}
	if p, ok := byName["compressUploads"]; !ok || p.VersionRange == "" {
		t.Errorf("bootstrap:loader_test - compressUploads should carry a version range, got %+v", p)
	}
}

func TestLoadBootstrapConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bootstrap.json")
	content := `{
		"name": "test-bootstrap",
		"version": "2.0.0",
		"subjects": {"gateway": "custom.gateway.v1"},
		"parameters": [
			{"name": "uploadBatchSize", "value": "10", "type": "Integer", "active": true}
		]
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("bootstrap:loader_test - write file: %v", err)
	}

	cfg, err := LoadBootstrapConfig(path)
	if err != nil {
		t.Fatalf("bootstrap:loader_test - load: %v", err)
	}
	if cfg.Name != "test-bootstrap" || cfg.Subjects.Gateway != "custom.gateway.v1" {
		t.Errorf("bootstrap:loader_test - cfg = %+v", cfg)
	}
	if len(cfg.Parameters) != 1 || cfg.Parameters[0].Name != "uploadBatchSize" {
		t.Errorf("bootstrap:loader_test - parameters = %+v", cfg.Parameters)
	}
}

func TestLoadBootstrapConfigFallsBackToDefault(t *testing.T) {
	os.Unsetenv("GATEWAY_BOOTSTRAP_FILE")
	cfg, err := LoadBootstrapConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("bootstrap:loader_test - load: %v", err)
	}
	if cfg.Name != "gateway-bootstrap" {
		t.Errorf("bootstrap:loader_test - expected default config, got %q", cfg.Name)
	}
}

func TestLoadBootstrapConfigEnvPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "env.json")
	if err := os.WriteFile(path, []byte(`{"name":"from-env","parameters":[]}`), 0o600); err != nil {
		t.Fatalf("bootstrap:loader_test - write file: %v", err)
	}
	os.Setenv("GATEWAY_BOOTSTRAP_FILE", path)
	defer os.Unsetenv("GATEWAY_BOOTSTRAP_FILE")

	cfg, err := LoadBootstrapConfig()
	if err != nil {
		t.Fatalf("bootstrap:loader_test - load: %v", err)
	}
	if cfg.Name != "from-env" {
		t.Errorf("bootstrap:loader_test - Name = %q, want from-env", cfg.Name)
	}
}

func TestMergeBootstrapConfigs(t *testing.T) {
	base := &BootstrapConfig{
		Name: "base",
		Parameters: []SeedParameter{
			{Name: "a", Value: "1", Active: true},
			{Name: "b", Value: "2", Active: true},
		},
		Subjects: Subjects{Gateway: "base.gateway"},
	}
	override := &BootstrapConfig{
		Parameters: []SeedParameter{
			{Name: "b", Value: "20", Active: false},
			{Name: "c", Value: "3", Active: true},
		},
		Subjects: Subjects{RecordEvent: "override.records"},
	}

	merged := MergeBootstrapConfigs(base, override)
	if len(merged.Parameters) != 3 {
		t.Fatalf("bootstrap:loader_test - merged has %d parameters, want 3", len(merged.Parameters))
	}
	byName := make(map[string]SeedParameter)
	for _, p := range merged.Parameters {
		byName[p.Name] = p
	}
	if byName["b"].Value != "20" || byName["b"].Active {
		t.Errorf("bootstrap:loader_test - override should replace b: %+v", byName["b"])
	}
	if byName["a"].Value != "1" || byName["c"].Value != "3" {
		t.Errorf("bootstrap:loader_test - merged params = %+v", merged.Parameters)
	}
	if merged.Subjects.Gateway != "base.gateway" || merged.Subjects.RecordEvent != "override.records" {
		t.Errorf("bootstrap:loader_test - merged subjects = %+v", merged.Subjects)
	}

	// Base must not be mutated.
	if len(base.Parameters) != 2 || base.Parameters[1].Value != "2" {
		t.Errorf("bootstrap:loader_test - base mutated: %+v", base.Parameters)
	}
}
