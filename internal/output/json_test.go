// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	var buf bytes.Buffer

	data := map[string]any{
		"nodes_merged": 42,
		"run_id":       "abc123",
	}

	if err := JSONTo(&buf, data); err != nil {
		t.Fatalf("JSONTo failed: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "  \"nodes_merged\": 42") {
		t.Errorf("Expected 2-space indentation, got: %s", got)
	}
	if !strings.Contains(got, `"run_id": "abc123"`) {
		t.Errorf("Missing run_id field, got: %s", got)
	}
	if !strings.HasSuffix(got, "}\n") {
		t.Errorf("Expected trailing newline, got: %q", got)
	}
}

func TestJSONCompact(t *testing.T) {
	var buf bytes.Buffer

	data := map[string]any{"nodes_merged": 42}
	if err := JSONCompactTo(&buf, data); err != nil {
		t.Fatalf("JSONCompactTo failed: %v", err)
	}

	got := buf.String()
	if strings.Contains(got, "  ") {
		t.Errorf("Compact JSON should not have indentation, got: %s", got)
	}
	if !strings.Contains(got, `"nodes_merged":42`) {
		t.Errorf("Missing field in compact output, got: %s", got)
	}
}

func TestJSONError(t *testing.T) {
	var buf bytes.Buffer

	if encErr := JSONErrorTo(&buf, errors.New("connection refused")); encErr != nil {
		t.Fatalf("JSONErrorTo failed: %v", encErr)
	}

	got := buf.String()
	if !strings.Contains(got, `"error": "connection refused"`) {
		t.Errorf("Missing error field, got: %s", got)
	}
}

func TestJSONStructTags(t *testing.T) {
	type result struct {
		RunID    string `json:"run_id"`
		Rejected int    `json:"rejected,omitempty"`
		Internal string `json:"-"`
	}

	var buf bytes.Buffer
	data := result{RunID: "abc", Internal: "hidden"}
	if err := JSONTo(&buf, data); err != nil {
		t.Fatalf("JSONTo failed: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, `"run_id"`) {
		t.Errorf("Expected run_id tag to be used, got: %s", got)
	}
	if strings.Contains(got, "rejected") {
		t.Errorf("Expected zero rejected to be omitted, got: %s", got)
	}
	if strings.Contains(got, "hidden") {
		t.Errorf("Expected ignored field to be excluded, got: %s", got)
	}
}
