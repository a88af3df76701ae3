package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig writes a config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

const validConfig = `
server:
  host: "0.0.0.0"
  port: 8080
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
upstream:
  base_url: "https://api.example.gov/GovMetricAPI"
  timeout: 30
  state: "FL"
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`

func TestLoad_ValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.Upstream.BaseURL != "https://api.example.gov/GovMetricAPI" {
		t.Errorf("Upstream.BaseURL = %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.State != "FL" {
		t.Errorf("Upstream.State = %q, want FL", cfg.Upstream.State)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Session.CheckInterval != 30 {
		t.Errorf("Session.CheckInterval = %d, want 30", cfg.Session.CheckInterval)
	}
	if cfg.Session.LoginTimeout != 30 {
		t.Errorf("Session.LoginTimeout = %d, want 30", cfg.Session.LoginTimeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_MissingUpstreamBaseURL(t *testing.T) {
	content := `
database:
  path: "/tmp/test.db"
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "upstream.base_url") {
		t.Errorf("error %q should mention upstream.base_url", err)
	}
}

func TestLoad_WeakJWTSecret(t *testing.T) {
	content := `
database:
  path: "/tmp/test.db"
upstream:
  base_url: "https://api.example.gov/GovMetricAPI"
security:
  jwt:
    secret: "short"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "32 characters") {
		t.Errorf("error %q should mention secret length", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LIENPORTAL_DATABASE_PATH", "/env/override.db")
	t.Setenv("LIENPORTAL_UPSTREAM_BASE_URL", "https://env.example.gov/GovMetricAPI")
	t.Setenv("LIENPORTAL_JWT_SECRET", "env-secret-key-that-is-32-chars-long!")

	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/env/override.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.Upstream.BaseURL != "https://env.example.gov/GovMetricAPI" {
		t.Errorf("Upstream.BaseURL = %q, want env override", cfg.Upstream.BaseURL)
	}
	if cfg.Security.JWT.Secret != "env-secret-key-that-is-32-chars-long!" {
		t.Errorf("JWT.Secret not overridden from environment")
	}
}

func TestValidate_RedisEnabledRequiresAddr(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg.Redis.Enabled = true
	cfg.Redis.Addr = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for redis without addr, got nil")
	}
}

func TestGetDurations(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.GetUpstreamTimeout().Seconds(); got != 30 {
		t.Errorf("GetUpstreamTimeout() = %vs, want 30s", got)
	}
	if got := cfg.GetCheckInterval().Minutes(); got != 30 {
		t.Errorf("GetCheckInterval() = %vm, want 30m", got)
	}
}
