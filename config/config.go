// Package config provides configuration loading and management for annograph.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/annograph/app"
)

// Config represents the complete annograph configuration
type Config struct {
	App      app.Metadata   `yaml:"app"`
	Resolver ResolverConfig `yaml:"resolver"`
	NATS     NATSConfig     `yaml:"nats"`
}

// ResolverConfig configures external location resolution
type ResolverConfig struct {
	// Timeout is the maximum time for one location fetch
	Timeout time.Duration `yaml:"timeout"`
	// MaxContentSize caps the bytes read from a location
	MaxContentSize int64 `yaml:"max_content_size"`
	// UserAgent is sent on URL fetches
	UserAgent string `yaml:"user_agent"`
	// AllowInsecure permits plain http URLs and private addresses (tests and local pipelines only)
	AllowInsecure bool `yaml:"allow_insecure"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL
	URL string `yaml:"url"`
	// Stream is the JetStream stream for annotate requests
	Stream string `yaml:"stream"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		App: app.Default(),
		Resolver: ResolverConfig{
			Timeout:        30 * time.Second,
			MaxContentSize: 10 << 20,
			UserAgent:      "annograph/1.0",
		},
		NATS: NATSConfig{
			URL:    "nats://localhost:4222",
			Stream: "ANNOTATE",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if c.Resolver.Timeout <= 0 {
		return fmt.Errorf("resolver.timeout must be positive")
	}
	if c.Resolver.MaxContentSize <= 0 {
		return fmt.Errorf("resolver.max_content_size must be positive")
	}
	if c.NATS.Stream == "" {
		return fmt.Errorf("nats.stream is required")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	c.App.Merge(other.App)

	// Resolver
	if other.Resolver.Timeout != 0 {
		c.Resolver.Timeout = other.Resolver.Timeout
	}
	if other.Resolver.MaxContentSize != 0 {
		c.Resolver.MaxContentSize = other.Resolver.MaxContentSize
	}
	if other.Resolver.UserAgent != "" {
		c.Resolver.UserAgent = other.Resolver.UserAgent
	}
	if other.Resolver.AllowInsecure {
		c.Resolver.AllowInsecure = true
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Stream != "" {
		c.NATS.Stream = other.NATS.Stream
	}
}
