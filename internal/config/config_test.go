// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, defaults, and duration parsing

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  http_addr: "0.0.0.0:3000"

database:
  driver: "sqlite"
  path: "./test.db"

auth:
  jwt_secret: "test-secret"
  api_key_hash: "$2a$10$abcdefghijklmnopqrstuv"

llm:
  primary: "claude-opus-4-1"
  fallbacks:
    - "claude-sonnet-4-5"
    - "claude-haiku-4-5"
  agent_overrides:
    agent-002: "claude-haiku-4-5"
  max_retries: 3
  retry_delay: "2s"

seed:
  fixtures_path: "./fixtures.toml"

logging:
  level: "debug"
  format: "json"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:3000" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:3000")
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, "sqlite")
	}
	if cfg.Database.Path != "./test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./test.db")
	}
	if cfg.Auth.JWTSecret != "test-secret" {
		t.Errorf("Auth.JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "test-secret")
	}
	if cfg.LLM.Primary != "claude-opus-4-1" {
		t.Errorf("LLM.Primary = %q, want %q", cfg.LLM.Primary, "claude-opus-4-1")
	}
	if len(cfg.LLM.Fallbacks) != 2 {
		t.Errorf("LLM.Fallbacks len = %d, want 2", len(cfg.LLM.Fallbacks))
	}
	if cfg.LLM.AgentOverrides["agent-002"] != "claude-haiku-4-5" {
		t.Errorf("LLM.AgentOverrides[agent-002] = %q, want %q",
			cfg.LLM.AgentOverrides["agent-002"], "claude-haiku-4-5")
	}
	if cfg.LLM.MaxRetries != 3 {
		t.Errorf("LLM.MaxRetries = %d, want 3", cfg.LLM.MaxRetries)
	}
	if cfg.LLM.RetryDelay != 2*time.Second {
		t.Errorf("LLM.RetryDelay = %v, want %v", cfg.LLM.RetryDelay, 2*time.Second)
	}
	if cfg.Seed.FixturesPath != "./fixtures.toml" {
		t.Errorf("Seed.FixturesPath = %q, want %q", cfg.Seed.FixturesPath, "./fixtures.toml")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// A nearly empty file should produce a runnable config using the
	// in-memory store.
	err := os.WriteFile(configPath, []byte("logging:\n  level: info\n"), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "localhost:3000" {
		t.Errorf("Server.HTTPAddr = %q, want default %q", cfg.Server.HTTPAddr, "localhost:3000")
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("Database.Driver = %q, want default %q", cfg.Database.Driver, "memory")
	}
	if cfg.LLM.Primary == "" {
		t.Error("LLM.Primary default not applied")
	}
	if len(cfg.LLM.Fallbacks) == 0 {
		t.Error("LLM.Fallbacks default not applied")
	}
	if cfg.LLM.RetryDelay != time.Second {
		t.Errorf("LLM.RetryDelay = %v, want default 1s", cfg.LLM.RetryDelay)
	}
}

func TestLoad_DriverInferredFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
database:
  path: "./data/mission.db"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want %q when a path is set", cfg.Database.Driver, "sqlite")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "secret-from-env")
	t.Setenv("TEST_DB_PATH", "/var/lib/mission/test.db")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  http_addr: "0.0.0.0:3000"

database:
  driver: "sqlite"
  path: "${TEST_DB_PATH}"

auth:
  jwt_secret: "${TEST_JWT_SECRET}"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.JWTSecret != "secret-from-env" {
		t.Errorf("Auth.JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "secret-from-env")
	}
	if cfg.Database.Path != "/var/lib/mission/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/var/lib/mission/test.db")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  http_addr "missing colon"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err = Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
llm:
  retry_delay: "invalid-duration"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err = Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid duration, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		cfg           Config
		wantErrSubstr string
	}{
		{
			name: "sqlite driver requires path",
			cfg: Config{
				Server:   ServerConfig{HTTPAddr: "localhost:3000"},
				Database: DatabaseConfig{Driver: "sqlite"},
			},
			wantErrSubstr: "database.path is required",
		},
		{
			name: "unknown driver rejected",
			cfg: Config{
				Server:   ServerConfig{HTTPAddr: "localhost:3000"},
				Database: DatabaseConfig{Driver: "postgres", Path: "dsn"},
			},
			wantErrSubstr: "database.driver",
		},
		{
			name: "memory driver needs no path",
			cfg: Config{
				Server:   ServerConfig{HTTPAddr: "localhost:3000"},
				Database: DatabaseConfig{Driver: "memory"},
			},
		},
		{
			name: "negative retries rejected",
			cfg: Config{
				Server:   ServerConfig{HTTPAddr: "localhost:3000"},
				Database: DatabaseConfig{Driver: "memory"},
				LLM:      LLMConfig{MaxRetries: -1},
			},
			wantErrSubstr: "llm.max_retries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErrSubstr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Errorf("Validate() expected error containing %q, got nil", tt.wantErrSubstr)
				return
			}
			if !strings.Contains(err.Error(), tt.wantErrSubstr) {
				t.Errorf("Validate() error = %q, want error containing %q", err.Error(), tt.wantErrSubstr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FOO", "bar")
	t.Setenv("BAZ", "qux")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single env var",
			input:    "${FOO}",
			expected: "bar",
		},
		{
			name:     "env var with surrounding text",
			input:    "prefix-${FOO}-suffix",
			expected: "prefix-bar-suffix",
		},
		{
			name:     "multiple env vars",
			input:    "${FOO}/${BAZ}",
			expected: "bar/qux",
		},
		{
			name:     "no env vars",
			input:    "no-vars-here",
			expected: "no-vars-here",
		},
		{
			name:     "unset env var",
			input:    "${UNSET_VAR}",
			expected: "",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvVars(tt.input)
			if result != tt.expected {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
