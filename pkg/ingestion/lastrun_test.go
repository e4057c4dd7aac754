// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastRunRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lastrun.json")
	mgr := NewLastRunManager(path)

	run := &LastRun{
		RunID:       "abc123",
		ProjectID:   "demo",
		ReportPath:  "report.json",
		NodesMerged: 42,
		EdgesMerged: 17,
		Duration:    "1.2s",
		FinishedAt:  time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, mgr.Save(run))

	loaded, err := mgr.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, run, loaded)

	// No stray temp file left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLastRunMissingFile(t *testing.T) {
	mgr := NewLastRunManager(filepath.Join(t.TempDir(), "lastrun.json"))
	loaded, err := mgr.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestLastRunCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lastrun.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewLastRunManager(path).Load()
	assert.Error(t, err)
}

func TestLastRunClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lastrun.json")
	mgr := NewLastRunManager(path)

	require.NoError(t, mgr.Save(&LastRun{RunID: "x"}))
	require.NoError(t, mgr.Clear())
	require.NoError(t, mgr.Clear())

	loaded, err := mgr.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSummarizeRun(t *testing.T) {
	result := &ImportResult{
		RunID: "deadbeef",
		Wiped: true,
		Nodes: StageReport{Merged: 5, Rejected: []Rejection{{Kind: "node", Ref: "x", Reason: "empty id"}}},
		Edges: StageReport{Merged: 3},
	}
	run := SummarizeRun(result, "demo", "out/report.json")

	assert.Equal(t, "deadbeef", run.RunID)
	assert.True(t, run.Wiped)
	assert.Equal(t, 5, run.NodesMerged)
	assert.Equal(t, 1, run.NodesRejected)
	assert.Zero(t, run.EdgesRejected)
	assert.Equal(t, "out/report.json", run.ReportPath)
	assert.False(t, run.FinishedAt.IsZero())
}
