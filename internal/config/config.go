// Package config provides configuration loading and validation for the
// annotation audit CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ironsheep/annotation-audit/internal/audit"
)

// DateLayout is the format of the created-at window bounds.
const DateLayout = "2006-01-02"

// Config holds the application configuration.
type Config struct {
	ProjectName string `json:"project_name" validate:"required"`
	OutputFile  string `json:"output_file" validate:"required"`

	// Window on task creation time, inclusive of CreatedAfter and exclusive
	// of CreatedBefore.
	CreatedAfter  string `json:"created_after" validate:"required,datetime=2006-01-02"`
	CreatedBefore string `json:"created_before" validate:"required,datetime=2006-01-02"`

	Workers             int  `json:"workers" validate:"gte=1,lte=256"`
	FetchTimeoutSeconds int  `json:"fetch_timeout_seconds" validate:"gte=1"`
	IncludeCrops        bool `json:"include_crops"`

	Rules audit.Rules `json:"rules"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		ProjectName:         "Traffic Sign Detection",
		OutputFile:          "report.json",
		CreatedAfter:        "1960-01-01",
		CreatedBefore:       "2100-01-01",
		Workers:             4,
		FetchTimeoutSeconds: 30,
		Rules:               audit.DefaultRules(),
	}
}

// LoadFromFile loads configuration from a JSON file. Fields absent from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	after, before, err := c.Window()
	if err != nil {
		return err
	}
	if !after.Before(before) {
		return fmt.Errorf("config error: created_after must be before created_before")
	}

	return nil
}

// Window parses the created-at bounds.
func (c *Config) Window() (after, before time.Time, err error) {
	after, err = time.Parse(DateLayout, c.CreatedAfter)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("config error: invalid created_after: %w", err)
	}
	before, err = time.Parse(DateLayout, c.CreatedBefore)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("config error: invalid created_before: %w", err)
	}
	return after, before, nil
}

// FetchTimeout returns the attachment download timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "annotation-audit", "config.json")
}
