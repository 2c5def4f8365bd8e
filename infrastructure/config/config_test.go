package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Segformer.BaseURL != "http://localhost:8600" {
		t.Errorf("Segformer.BaseURL = %q", cfg.Segformer.BaseURL)
	}
	if cfg.Ollama.Model != "llava:7b" {
		t.Errorf("Ollama.Model = %q", cfg.Ollama.Model)
	}
	if cfg.Mongo.Enabled {
		t.Error("Mongo should be disabled by default")
	}
	if cfg.Logging.ConsoleLevel != "info" || cfg.Logging.FileLevel != "debug" {
		t.Errorf("Logging levels = %q/%q", cfg.Logging.ConsoleLevel, cfg.Logging.FileLevel)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "ollama:\n  model: moondream\nmongo:\n  enabled: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Ollama.Model != "moondream" {
		t.Errorf("Ollama.Model = %q, want moondream", cfg.Ollama.Model)
	}
	if !cfg.Mongo.Enabled {
		t.Error("Mongo.Enabled should be true")
	}
	// Untouched sections retain defaults
	if cfg.Segformer.Timeout != 60*time.Second {
		t.Errorf("Segformer.Timeout = %v", cfg.Segformer.Timeout)
	}
	if cfg.Mongo.Database != "stylelens" {
		t.Errorf("Mongo.Database = %q", cfg.Mongo.Database)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ollama: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed config")
	}
}
