// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all contactform configuration.
type Config struct {
	Business Business `yaml:"business"`
	Form     Form     `yaml:"form"`
	Logging  Logging  `yaml:"logging"`
	Outbox   Outbox   `yaml:"outbox"`
}

// Business holds details shown on the success banner.
type Business struct {
	Name string `yaml:"name"`
}

// Form holds contact form behavior.
type Form struct {
	SuccessDelay time.Duration `yaml:"success_delay"` // How long the success banner shows.
	Services     []string      `yaml:"services"`      // Options for the service field.
}

// Logging holds submission log settings.
type Logging struct {
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
	File  string `yaml:"file"`  // Empty: stderr in plain mode, discarded under the TUI.
}

// Outbox holds local storage for sent submissions.
type Outbox struct {
	Dir string `yaml:"dir"` // Empty: submissions are only logged.
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Business: Business{
			Name: "Neighborhood Detailing",
		},
		Form: Form{
			SuccessDelay: 5 * time.Second,
			Services: []string{
				"Exterior Detail",
				"Interior Detail",
				"Full Detail",
				"Ceramic Coating",
				"Paint Correction",
			},
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Business.Name == "" {
		return errors.New("config: business.name cannot be empty")
	}
	if c.Form.SuccessDelay <= 0 {
		return fmt.Errorf("config: form.success_delay must be positive, got %v", c.Form.SuccessDelay)
	}
	if len(c.Form.Services) == 0 {
		return errors.New("config: form.services must list at least one service")
	}
	seen := make(map[string]bool, len(c.Form.Services))
	for i, s := range c.Form.Services {
		if s == "" {
			return fmt.Errorf("config: form.services[%d] cannot be empty", i)
		}
		if seen[s] {
			return fmt.Errorf("config: form.services lists %q twice", s)
		}
		seen[s] = true
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("config: logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: CONTACTFORM_BUSINESS_NAME, CONTACTFORM_SUCCESS_DELAY,
// CONTACTFORM_LOG_LEVEL, CONTACTFORM_LOG_FILE, CONTACTFORM_OUTBOX_DIR.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("CONTACTFORM_BUSINESS_NAME"); v != "" {
		c.Business.Name = v
	}
	if v := os.Getenv("CONTACTFORM_SUCCESS_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid CONTACTFORM_SUCCESS_DELAY %q: %w", v, err)
		}
		c.Form.SuccessDelay = d
	}
	if v := os.Getenv("CONTACTFORM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CONTACTFORM_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("CONTACTFORM_OUTBOX_DIR"); v != "" {
		c.Outbox.Dir = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Business *rawBusiness `yaml:"business"`
	Form     *rawForm     `yaml:"form"`
	Logging  *rawLogging  `yaml:"logging"`
	Outbox   *rawOutbox   `yaml:"outbox"`
}

type rawBusiness struct {
	Name *string `yaml:"name"`
}

type rawForm struct {
	SuccessDelay *time.Duration `yaml:"success_delay"`
	Services     *[]string      `yaml:"services"`
}

type rawLogging struct {
	Level *string `yaml:"level"`
	File  *string `yaml:"file"`
}

type rawOutbox struct {
	Dir *string `yaml:"dir"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
// A services list replaces the previous list rather than extending it.
func (c *Config) merge(layer *rawConfig) {
	if layer.Business != nil {
		if layer.Business.Name != nil {
			c.Business.Name = *layer.Business.Name
		}
	}
	if layer.Form != nil {
		if layer.Form.SuccessDelay != nil {
			c.Form.SuccessDelay = *layer.Form.SuccessDelay
		}
		if layer.Form.Services != nil {
			c.Form.Services = append([]string(nil), (*layer.Form.Services)...)
		}
	}
	if layer.Logging != nil {
		if layer.Logging.Level != nil {
			c.Logging.Level = *layer.Logging.Level
		}
		if layer.Logging.File != nil {
			c.Logging.File = *layer.Logging.File
		}
	}
	if layer.Outbox != nil && layer.Outbox.Dir != nil {
		c.Outbox.Dir = *layer.Outbox.Dir
	}
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("config: encoding: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("config: encoding: %w", err)
	}
	return buf.Bytes(), nil
}
