// Package config loads application configuration from the user config directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Segformer SegformerConfig `yaml:"segformer"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SegformerConfig configures the segmentation inference service client.
type SegformerConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Timeout        time.Duration `yaml:"timeout"`
	HealthInterval time.Duration `yaml:"health_interval"`
}

// OllamaConfig configures the captioning backend.
type OllamaConfig struct {
	Host    string        `yaml:"host"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// MongoConfig configures the processing-history store.
type MongoConfig struct {
	// Enabled selects MongoDB persistence; when false an in-memory store is used
	Enabled  bool   `yaml:"enabled"`
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// LoggingConfig configures log output levels.
type LoggingConfig struct {
	ConsoleLevel string `yaml:"console_level"`
	FileLevel    string `yaml:"file_level"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Segformer: SegformerConfig{
			BaseURL:        "http://localhost:8600",
			Timeout:        60 * time.Second,
			HealthInterval: 5 * time.Second,
		},
		Ollama: OllamaConfig{
			Host:    "http://localhost:11434",
			Model:   "llava:7b",
			Timeout: 120 * time.Second,
		},
		Mongo: MongoConfig{
			Enabled:  false,
			URI:      "mongodb://localhost:27017",
			Database: "stylelens",
		},
		Logging: LoggingConfig{
			ConsoleLevel: "info",
			FileLevel:    "debug",
		},
	}
}

// DefaultPath returns the expected config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "stylelens", "config.yaml"), nil
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist. Fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
