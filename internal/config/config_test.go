package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRealmLayersBaseThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "port: 8900\ntick_hz: 30\nmaster_key: \"YmFzZQ==\"\n")
	writeFile(t, dir, "staging.yaml", "port: 8901\n")

	cfg, err := LoadRealm(dir, "staging")
	if err != nil {
		t.Fatalf("LoadRealm: %v", err)
	}
	if cfg.Port != 8901 {
		t.Errorf("Port = %d, want 8901 (staging.yaml should override base.yaml)", cfg.Port)
	}
	if cfg.TickHz != 30 {
		t.Errorf("TickHz = %d, want 30 (inherited from base.yaml)", cfg.TickHz)
	}
}

func TestLoadRealmMissingEnvironmentFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "tick_hz: 20\nmaster_key: \"YmFzZQ==\"\n")

	cfg, err := LoadRealm(dir, "production")
	if err != nil {
		t.Fatalf("LoadRealm: %v", err)
	}
	if cfg.TickHz != 20 {
		t.Errorf("TickHz = %d, want 20", cfg.TickHz)
	}
}

func TestEnvOverrideAppliesOverYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "port: 8900\nmaster_key: \"YmFzZQ==\"\n")

	t.Setenv("APP__PORT", "9999")
	t.Setenv("APP__DATABASE__HOST", "db.internal")

	cfg, err := LoadRealm(dir, "local")
	if err != nil {
		t.Fatalf("LoadRealm: %v", err)
	}
	if cfg.Port != 9999 {
		t.Errorf("Port = %d, want 9999 from APP__PORT", cfg.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %q, want db.internal from APP__DATABASE__HOST", cfg.Database.Host)
	}
}

func TestRealmValidateRejectsZeroTickRate(t *testing.T) {
	cfg := DefaultRealm()
	cfg.MasterKeyB64 = "YmFzZQ=="
	cfg.TickHz = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for zero tick rate")
	}
}

func TestGatewayValidateRequiresSigningKeys(t *testing.T) {
	cfg := DefaultGateway()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for missing jwt_signing_key/master_key")
	}

	cfg.JWTSigningKeyB64 = "k"
	cfg.MasterKeyB64 = "k"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil once required keys are set", err)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}
