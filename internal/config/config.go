// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultAPIURL   = "http://localhost:8080"
	DefaultPort     = 8080
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Config represents the settings shared by the server and the CLI. It can be
// loaded from a JSON or YAML file; every field is optional.
type Config struct {
	// Client
	APIURL    string `json:"api_url,omitempty" yaml:"api_url,omitempty"`       // Base URL of the resume API
	TokenFile string `json:"token_file,omitempty" yaml:"token_file,omitempty"` // Where the session token is kept
	PageSize  int    `json:"page_size,omitempty" yaml:"page_size,omitempty"`   // Default listing page size
	Ordering  string `json:"ordering,omitempty" yaml:"ordering,omitempty"`     // Default listing ordering, e.g. "-updated_at"

	// Server
	Port          int    `json:"port,omitempty" yaml:"port,omitempty"`
	DatabaseURL   string `json:"database_url,omitempty" yaml:"database_url,omitempty"`       // PostgreSQL connection URL
	PublicBaseURL string `json:"public_base_url,omitempty" yaml:"public_base_url,omitempty"` // Prefix of shareable view links

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// LoadConfig loads configuration from a file. Files ending in .yaml or .yml are
// parsed as YAML, anything else as JSON.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}
	return &cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	cfg := Config{
		APIURL:   DefaultAPIURL,
		Port:     DefaultPort,
		PageSize: DefaultPageSize,
	}
	if dir, err := os.UserConfigDir(); err == nil {
		cfg.TokenFile = filepath.Join(dir, "resume-studio", "token")
	}
	return cfg
}

// ApplyEnv overrides fields from DATABASE_URL, RESUME_API_URL, PORT,
// RESUME_TOKEN_FILE and PUBLIC_BASE_URL when they are set.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("RESUME_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("RESUME_TOKEN_FILE"); v != "" {
		c.TokenFile = v
	}
	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		c.PublicBaseURL = v
	}
	port, err := envInt("PORT", c.Port)
	if err != nil {
		return err
	}
	c.Port = port
	return nil
}

// Validate checks that the configuration has valid values.
// Required fields are checked by the commands that need them.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}
	if c.PageSize < 0 || c.PageSize > MaxPageSize {
		return fmt.Errorf("config error: 'page_size' must be between 1 and %d, got %d", MaxPageSize, c.PageSize)
	}
	for name, raw := range map[string]string{"api_url": c.APIURL, "public_base_url": c.PublicBaseURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config error: '%s' must be an absolute http(s) URL: %q", name, raw)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// Bools are not merged since unset and false cannot be told apart.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.TokenFile == "" {
		result.TokenFile = defaults.TokenFile
	}
	if result.Ordering == "" {
		result.Ordering = defaults.Ordering
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.PublicBaseURL == "" {
		result.PublicBaseURL = defaults.PublicBaseURL
	}

	if result.PageSize == 0 {
		result.PageSize = defaults.PageSize
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	return result
}
