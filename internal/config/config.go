package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all labadmin configuration.
type Config struct {
	// Core settings
	Name string `yaml:"name"`

	// Backend REST API
	Backend BackendConfig `yaml:"backend"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Local activity journal
	Journal JournalConfig `yaml:"journal"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`
}

// BackendConfig points the console at the site's REST API.
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// JournalConfig configures the SQLite activity journal.
type JournalConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DatabasePath string `yaml:"database_path"`
}

// UIConfig configures the interactive console.
type UIConfig struct {
	Theme          string `yaml:"theme"`           // auto, light, dark
	ConfirmDeletes bool   `yaml:"confirm_deletes"` // CLI prompts before DELETE unless --yes
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "labadmin",

		Backend: BackendConfig{
			BaseURL: "http://localhost:3000",
			Timeout: "30s",
		},

		Logging: LoggingConfig{
			Level:     "info",
			Format:    "json",
			File:      filepath.Join(DefaultDir(), "logs", "labadmin.log"),
			DebugMode: false,
		},

		Journal: JournalConfig{
			Enabled:      true,
			DatabasePath: filepath.Join(DefaultDir(), "journal.db"),
		},

		UI: UIConfig{
			Theme:          "auto",
			ConfirmDeletes: true,
		},
	}
}

// DefaultDir is the per-user state directory (~/.labadmin).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".labadmin"
	}
	return filepath.Join(home, ".labadmin")
}

// DefaultConfigPath is where Load looks when no --config flag is given.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Defaults if config file doesn't exist
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LABADMIN_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("LABADMIN_TIMEOUT"); v != "" {
		c.Backend.Timeout = v
	}
	if v := os.Getenv("LABADMIN_JOURNAL_DB"); v != "" {
		c.Journal.DatabasePath = v
	}
	if v := os.Getenv("LABADMIN_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
		c.Logging.DebugMode = true
	}
	if v := os.Getenv("LABADMIN_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// GetBackendTimeout returns the backend timeout as a duration.
func (c *Config) GetBackendTimeout() time.Duration {
	d, err := time.ParseDuration(c.Backend.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ValidThemes lists the accepted ui.theme values.
var ValidThemes = []string{"auto", "light", "dark"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid backend base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend base_url %q: must be an absolute http(s) URL", c.Backend.BaseURL)
	}

	if c.Backend.Timeout != "" {
		if _, err := time.ParseDuration(c.Backend.Timeout); err != nil {
			return fmt.Errorf("invalid backend timeout %q: %w", c.Backend.Timeout, err)
		}
	}

	validTheme := false
	for _, t := range ValidThemes {
		if c.UI.Theme == t {
			validTheme = true
			break
		}
	}
	if !validTheme {
		return fmt.Errorf("invalid ui theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}

	if c.Journal.Enabled && c.Journal.DatabasePath == "" {
		return fmt.Errorf("journal enabled but database_path is empty")
	}

	if err := c.Logging.validate(); err != nil {
		return err
	}

	return nil
}
