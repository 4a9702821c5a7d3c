// ABOUTME: Configuration loading and parsing for mission-control
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete mission-control configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	LLM      LLMConfig      `yaml:"llm"`
	Seed     SeedConfig     `yaml:"seed"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// DatabaseConfig selects the storage backend. Driver is "sqlite" or
// "memory"; the memory driver is the fallback for running without any
// database file and loses everything on restart.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// AuthConfig holds authentication configuration. APIKeyHash is a
// bcrypt hash of the static API key; generate one with the token
// subcommand.
type AuthConfig struct {
	JWTSecret  string `yaml:"jwt_secret"`
	APIKeyHash string `yaml:"api_key_hash"`
}

// LLMConfig holds the model fallback chain configuration.
type LLMConfig struct {
	Primary        string            `yaml:"primary"`
	Fallbacks      []string          `yaml:"fallbacks"`
	AgentOverrides map[string]string `yaml:"agent_overrides"`
	MaxRetries     int               `yaml:"max_retries"`

	RetryDelay time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	RetryDelayRaw string `yaml:"retry_delay"`
}

// SeedConfig holds development seed data configuration.
type SeedConfig struct {
	// FixturesPath points at a TOML fixture file overriding the
	// built-in seed data. Empty means use the built-ins.
	FixturesPath string `yaml:"fixtures_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is supplied:
// an HTTP listener on localhost and the in-memory store.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "localhost:3000"
	}
	if c.Database.Driver == "" {
		if c.Database.Path != "" {
			c.Database.Driver = "sqlite"
		} else {
			c.Database.Driver = "memory"
		}
	}
	if c.LLM.Primary == "" {
		c.LLM.Primary = "claude-opus-4-1"
	}
	if len(c.LLM.Fallbacks) == 0 {
		c.LLM.Fallbacks = []string{"claude-sonnet-4-5", "claude-haiku-4-5"}
	}
	if c.LLM.MaxRetries == 0 {
		c.LLM.MaxRetries = 2
	}
	if c.LLM.RetryDelayRaw == "" && c.LLM.RetryDelay == 0 {
		c.LLM.RetryDelay = time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required with the sqlite driver")
		}
	case "memory":
		// Nothing to check; the fallback store needs no path.
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", "sqlite", "memory", c.Database.Driver)
	}

	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must not be negative")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.LLM.RetryDelayRaw != "" {
		d, err := time.ParseDuration(cfg.LLM.RetryDelayRaw)
		if err != nil {
			return fmt.Errorf("parsing retry_delay %q: %w", cfg.LLM.RetryDelayRaw, err)
		}
		cfg.LLM.RetryDelay = d
	}
	return nil
}
