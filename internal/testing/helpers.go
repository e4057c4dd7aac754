// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package testing

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kraklabs/graphload/pkg/report"
	"github.com/kraklabs/graphload/pkg/store"
)

// SetupGateway creates an in-memory store gateway for testing. The
// gateway is closed automatically when the test finishes.
func SetupGateway(t *testing.T) *store.MemoryGateway {
	t.Helper()

	gw := store.NewMemoryGateway()
	t.Cleanup(func() {
		_ = gw.Close(context.Background())
	})
	return gw
}

// SeedNode upserts a single vertex directly through the gateway.
//
// Example:
//
//	gw := graphloadtest.SetupGateway(t)
//	graphloadtest.SeedNode(t, gw, "Class", "class_1", map[string]any{"name": "UserService"})
func SeedNode(t *testing.T, gw *store.MemoryGateway, label, id string, props map[string]any) {
	t.Helper()

	_, err := gw.UpsertNodes(context.Background(), []store.NodeGroup{
		{Label: label, Rows: []store.NodeRow{{ID: id, Props: props}}},
	})
	if err != nil {
		t.Fatalf("failed to seed node %s: %v", id, err)
	}
}

// SeedEdge upserts a single relationship directly through the gateway.
// Both endpoints must already exist.
func SeedEdge(t *testing.T, gw *store.MemoryGateway, relType, sourceID, targetID string) {
	t.Helper()

	res, err := gw.UpsertEdges(context.Background(), []store.EdgeGroup{
		{RelType: relType, Rows: []store.EdgeRow{{SourceID: sourceID, TargetID: targetID}}},
	})
	if err != nil {
		t.Fatalf("failed to seed edge %s->%s: %v", sourceID, targetID, err)
	}
	if len(res.Dangling) > 0 {
		t.Fatalf("seed edge %s->%s has missing endpoints", sourceID, targetID)
	}
}

// SampleReport returns a small well-formed report: two classes, one
// method, a CONTAINS edge and a CALLS edge.
func SampleReport() *report.Report {
	return &report.Report{
		Nodes: []report.NodeRecord{
			{ID: "class_1", Type: "class", Properties: map[string]any{"name": "UserService", "file": "user.go"}},
			{ID: "class_2", Type: "class", Properties: map[string]any{"name": "AuthService", "file": "auth.go"}},
			{ID: "method_1", Type: "method", Properties: map[string]any{"name": "Login", "line": float64(42)}},
		},
		Edges: []report.EdgeRecord{
			{SourceID: "class_2", TargetID: "method_1", Type: "contains"},
			{SourceID: "method_1", TargetID: "class_1", Type: "calls"},
		},
	}
}

// WriteReportFile writes a report document to a temp file and returns
// its path. The document uses the wire shape the parser accepts (nodes
// and edges as arrays of objects).
func WriteReportFile(t *testing.T, nodes, edges []map[string]any) string {
	t.Helper()

	doc := map[string]any{"nodes": nodes, "edges": edges}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to marshal report document: %v", err)
	}

	path := filepath.Join(t.TempDir(), "report.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write report file: %v", err)
	}
	return path
}
