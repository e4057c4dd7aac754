// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kraklabs/graphload/pkg/store"
)

// GlobalFlags carries flags that apply to every command.
type GlobalFlags struct {
	// JSON switches all output to machine-readable JSON.
	JSON bool

	// Quiet suppresses progress bars and informational output.
	Quiet bool

	// NoColor disables colored terminal output.
	NoColor bool
}

// Config is the project configuration loaded from .graphload/project.yaml.
type Config struct {
	ProjectID string `yaml:"project_id"`

	Store struct {
		URI      string `yaml:"uri"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Database string `yaml:"database"`
	} `yaml:"store"`

	Import struct {
		BatchSize        int `yaml:"batch_size"`
		FailureTolerance int `yaml:"failure_tolerance"`
	} `yaml:"import"`
}

// DefaultConfig returns a configuration with sane defaults for a local
// Neo4j instance.
func DefaultConfig(projectID string) *Config {
	cfg := &Config{ProjectID: projectID}
	cfg.Store.URI = "neo4j://localhost:7687"
	cfg.Store.Username = "neo4j"
	cfg.Store.Database = "neo4j"
	cfg.Import.BatchSize = 1000
	return cfg
}

// ConfigDir returns the .graphload directory under the given root.
func ConfigDir(root string) string {
	return filepath.Join(root, ".graphload")
}

// ConfigPath returns the project.yaml path under the given root.
func ConfigPath(root string) string {
	return filepath.Join(ConfigDir(root), "project.yaml")
}

// LastRunPath returns where the last-run summary is persisted.
func LastRunPath(root string) string {
	return filepath.Join(ConfigDir(root), "lastrun.json")
}

// LoadConfig loads the project configuration.
//
// Resolution order per field: .env file (loaded into the environment if
// present), NEO4J_* environment variables, project.yaml, then defaults.
// Environment wins over the file so CI can override credentials without
// editing checked-in config. A missing config file is not an error; the
// defaults apply.
func LoadConfig(configPath string) (*Config, error) {
	// Best effort: a .env in the working directory, as the original
	// deployment used.
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	if configPath == "" {
		configPath = ConfigPath(cwd)
	}

	cfg := DefaultConfig(filepath.Base(cwd))

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		// Defaults plus environment.
	default:
		return nil, fmt.Errorf("read %s: %w", configPath, err)
	}

	applyEnvOverrides(cfg)

	if cfg.Import.BatchSize < 1 {
		cfg.Import.BatchSize = 1000
	}
	if cfg.Store.Database == "" {
		cfg.Store.Database = "neo4j"
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NEO4J_URI"); v != "" {
		cfg.Store.URI = v
	}
	if v := os.Getenv("NEO4J_USERNAME"); v != "" {
		cfg.Store.Username = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		cfg.Store.Password = v
	}
	if v := os.Getenv("NEO4J_DATABASE"); v != "" {
		cfg.Store.Database = v
	}
}

// SaveConfig writes the configuration as YAML to the given path.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// StoreConfig converts the loaded configuration into gateway settings.
func (c *Config) StoreConfig() store.Neo4jConfig {
	return store.Neo4jConfig{
		URI:      c.Store.URI,
		Username: c.Store.Username,
		Password: c.Store.Password,
		Database: c.Store.Database,
	}
}
