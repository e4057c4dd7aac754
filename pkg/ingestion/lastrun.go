// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LastRun is the persisted summary of the most recent import, shown by
// the status command.
type LastRun struct {
	RunID         string    `json:"run_id"`
	ProjectID     string    `json:"project_id,omitempty"`
	ReportPath    string    `json:"report_path"`
	Wiped         bool      `json:"wiped"`
	NodesMerged   int       `json:"nodes_merged"`
	EdgesMerged   int       `json:"edges_merged"`
	NodesRejected int       `json:"nodes_rejected"`
	EdgesRejected int       `json:"edges_rejected"`
	Duration      string    `json:"duration"`
	FinishedAt    time.Time `json:"finished_at"`
}

// LastRunManager persists the last-run summary in the project config
// directory.
type LastRunManager struct {
	path string
}

// NewLastRunManager creates a manager writing to the given file path.
func NewLastRunManager(path string) *LastRunManager {
	return &LastRunManager{path: path}
}

// Load reads the persisted summary. A missing file returns (nil, nil).
func (m *LastRunManager) Load() (*LastRun, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read last-run summary: %w", err)
	}

	var run LastRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parse last-run summary: %w", err)
	}
	return &run, nil
}

// Save writes the summary atomically (temp file + rename).
func (m *LastRunManager) Save(run *LastRun) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal last-run summary: %w", err)
	}

	tmpPath := m.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write last-run temp: %w", err)
	}
	if err := os.Rename(tmpPath, m.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename last-run summary: %w", err)
	}
	return nil
}

// Clear removes the persisted summary. Missing file is not an error.
func (m *LastRunManager) Clear() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove last-run summary: %w", err)
	}
	return nil
}

// SummarizeRun builds the persisted record from a finished run.
func SummarizeRun(result *ImportResult, projectID, reportPath string) *LastRun {
	return &LastRun{
		RunID:         result.RunID,
		ProjectID:     projectID,
		ReportPath:    reportPath,
		Wiped:         result.Wiped,
		NodesMerged:   result.Nodes.Merged,
		EdgesMerged:   result.Edges.Merged,
		NodesRejected: len(result.Nodes.Rejected),
		EdgesRejected: len(result.Edges.Rejected),
		Duration:      result.Duration.Round(time.Millisecond).String(),
		FinishedAt:    time.Now().UTC(),
	}
}
