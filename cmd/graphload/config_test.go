// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("demo")
	assert.Equal(t, "demo", cfg.ProjectID)
	assert.Equal(t, "neo4j://localhost:7687", cfg.Store.URI)
	assert.Equal(t, "neo4j", cfg.Store.Username)
	assert.Equal(t, "neo4j", cfg.Store.Database)
	assert.Equal(t, 1000, cfg.Import.BatchSize)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	clearNeo4jEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "neo4j://localhost:7687", cfg.Store.URI)
	assert.Equal(t, 1000, cfg.Import.BatchSize)
}

func TestLoadConfigFromFile(t *testing.T) {
	clearNeo4jEnv(t)

	path := filepath.Join(t.TempDir(), "project.yaml")
	content := `project_id: myproject
store:
  uri: neo4j://db.internal:7687
  username: importer
  database: code
import:
  batch_size: 500
  failure_tolerance: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "myproject", cfg.ProjectID)
	assert.Equal(t, "neo4j://db.internal:7687", cfg.Store.URI)
	assert.Equal(t, "importer", cfg.Store.Username)
	assert.Equal(t, "code", cfg.Store.Database)
	assert.Equal(t, 500, cfg.Import.BatchSize)
	assert.Equal(t, 2, cfg.Import.FailureTolerance)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	clearNeo4jEnv(t)
	t.Setenv("NEO4J_URI", "neo4j://override:7687")
	t.Setenv("NEO4J_PASSWORD", "secret")

	path := filepath.Join(t.TempDir(), "project.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  uri: neo4j://file:7687\n"), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "neo4j://override:7687", cfg.Store.URI)
	assert.Equal(t, "secret", cfg.Store.Password)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	clearNeo4jEnv(t)

	path := filepath.Join(t.TempDir(), "project.yaml")
	cfg := DefaultConfig("roundtrip")
	cfg.Store.URI = "neo4j://somewhere:7687"
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "roundtrip", loaded.ProjectID)
	assert.Equal(t, "neo4j://somewhere:7687", loaded.Store.URI)
}

func TestConfigPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("/repo", ".graphload"), ConfigDir("/repo"))
	assert.Equal(t, filepath.Join("/repo", ".graphload", "project.yaml"), ConfigPath("/repo"))
	assert.Equal(t, filepath.Join("/repo", ".graphload", "lastrun.json"), LastRunPath("/repo"))
}

func clearNeo4jEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"NEO4J_URI", "NEO4J_USERNAME", "NEO4J_PASSWORD", "NEO4J_DATABASE"} {
		t.Setenv(key, "")
	}
}
