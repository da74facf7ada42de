// Package config provides configuration loading for the quorum server
// and tools: YAML file, defaults, and environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/liamcoop/quorum/search"
)

// Config represents the complete quorum configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Source   SourceConfig   `yaml:"source"`
	Search   SearchConfig   `yaml:"search"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	// Addr is the listen address (default ":8080")
	Addr string `yaml:"addr"`
	// RequestTimeout bounds request handling (default 60s)
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// DatabaseConfig configures the Postgres body store. An empty URL means
// bodies are loaded from the source into memory instead.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// SourceConfig configures body-document discovery
type SourceConfig struct {
	// URL is the base URL serving the manifest or directory listing
	URL string `yaml:"url"`
}

// SearchConfig bounds the coalition search
type SearchConfig struct {
	// MaxFreeGroups caps non-baseline groups per search
	MaxFreeGroups int `yaml:"maxFreeGroups"`
	// NodeBudget caps visited nodes per search (0 = unbounded)
	NodeBudget int `yaml:"nodeBudget"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 60 * time.Second,
		},
		Search: SearchConfig{
			MaxFreeGroups: search.DefaultMaxFreeGroups,
			NodeBudget:    0,
		},
	}
}

// Load reads the YAML file at path (if it exists) over the defaults,
// then applies environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values from the environment. Environment
// wins over file, file wins over defaults.
func (c *Config) applyEnv() {
	if v := os.Getenv("QUORUM_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("QUORUM_SOURCE_URL"); v != "" {
		c.Source.URL = v
	}
	if v := os.Getenv("QUORUM_MAX_FREE_GROUPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.MaxFreeGroups = n
		}
	}
	if v := os.Getenv("QUORUM_NODE_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Search.NodeBudget = n
		}
	}
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Search.MaxFreeGroups <= 0 {
		return fmt.Errorf("search.maxFreeGroups must be positive, got %d", c.Search.MaxFreeGroups)
	}
	if c.Search.NodeBudget < 0 {
		return fmt.Errorf("search.nodeBudget must not be negative, got %d", c.Search.NodeBudget)
	}
	return nil
}

// SearchOptions converts the search section to search.Options
func (c *Config) SearchOptions() search.Options {
	return search.Options{
		MaxFreeGroups: c.Search.MaxFreeGroups,
		NodeBudget:    c.Search.NodeBudget,
	}
}
