package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.JWTSecret) == 0 {
		t.Error("no JWT secret generated")
	}
	if cfg.RateLimits.AuthRatePerMin <= 0 || cfg.RateLimits.APIRatePerMin <= 0 {
		t.Errorf("bad default rate limits: %+v", cfg.RateLimits)
	}
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		t.Errorf("bad default admin bootstrap: %+v", cfg.Admin)
	}

	path := filepath.Join(dir, "server_config.json")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file mode = %o, want 600", perm)
	}
}

func TestLoadIsStable(t *testing.T) {
	dir := t.TempDir()
	first, err := Load(dir)
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	second, err := Load(dir)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if !bytes.Equal(first.JWTSecret, second.JWTSecret) {
		t.Error("JWT secret changed between loads")
	}
}

func TestLoadRegeneratesMissingSecret(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server_config.json")
	content := []byte(`{"rate_limits":{"auth_rate_per_min":5,"api_rate_per_min":100},"admin":{"email":"a@b.c","password":"pw","name":"A"}}`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.JWTSecret) == 0 {
		t.Error("secret not regenerated")
	}
	if cfg.RateLimits.AuthRatePerMin != 5 {
		t.Errorf("existing settings clobbered: %+v", cfg.RateLimits)
	}

	// The regenerated secret must be persisted for the next startup.
	again, err := Load(dir)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if !bytes.Equal(cfg.JWTSecret, again.JWTSecret) {
		t.Error("regenerated secret not persisted")
	}
}

func TestValidateRejectsNegativeRates(t *testing.T) {
	cfg, err := defaultConfig()
	if err != nil {
		t.Fatalf("defaultConfig: %v", err)
	}
	cfg.RateLimits.AuthRatePerMin = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative auth rate accepted")
	}
}
