// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/graphload/pkg/report"
	"github.com/kraklabs/graphload/pkg/store"
)

func TestNormalizeLabel(t *testing.T) {
	cases := []struct {
		token string
		want  string
	}{
		{"method", "Method"},
		{"Method", "Method"},
		{"class", "Class"},
		{"http_route", "Http_route"},
		{"_internal", "_internal"},
		{"  file  ", "File"},
	}
	for _, tc := range cases {
		got, err := NormalizeLabel(tc.token)
		require.NoError(t, err, "token %q", tc.token)
		assert.Equal(t, tc.want, got)
	}
}

func TestNormalizeLabelRejectsBadTokens(t *testing.T) {
	for _, token := range []string{"", "1bad", "has space", "semi;colon", "dash-ed", "n) DETACH DELETE (m"} {
		_, err := NormalizeLabel(token)
		var invalid *InvalidTypeNameError
		assert.ErrorAs(t, err, &invalid, "token %q should be rejected", token)
	}
}

func TestNormalizeRelType(t *testing.T) {
	got, err := NormalizeRelType("contains")
	require.NoError(t, err)
	assert.Equal(t, "CONTAINS", got)

	got, err = NormalizeRelType("calls_into")
	require.NoError(t, err)
	assert.Equal(t, "CALLS_INTO", got)

	_, err = NormalizeRelType("not valid")
	var invalid *InvalidTypeNameError
	assert.ErrorAs(t, err, &invalid)
}

func TestMergeNodesGroupsByLabel(t *testing.T) {
	gw := store.NewMemoryGateway()
	engine := NewEngine(gw, nil)

	result, err := engine.MergeNodes(context.Background(), []report.NodeRecord{
		{ID: "a", Type: "class", Properties: map[string]any{"name": "A"}},
		{ID: "b", Type: "method", Properties: map[string]any{"name": "b"}},
		{ID: "c", Type: "class", Properties: map[string]any{"name": "C"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Merged)
	assert.Empty(t, result.Rejected)

	// One gateway transaction per batch, label groups in first-seen order.
	assert.Equal(t, []string{"upsert-nodes:Class,Method"}, gw.Ops)
	assert.Equal(t, []string{"a", "b", "c"}, gw.NodeIDs())
}

func TestMergeNodesRejectsInvalidRecords(t *testing.T) {
	gw := store.NewMemoryGateway()
	engine := NewEngine(gw, nil)

	result, err := engine.MergeNodes(context.Background(), []report.NodeRecord{
		{ID: "", Type: "class"},
		{ID: "x", Type: "bad type"},
		{ID: "ok", Type: "file"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Merged)
	require.Len(t, result.Rejected, 2)
	assert.Equal(t, report.KindNode, result.Rejected[0].Kind)
	assert.Equal(t, "empty id", result.Rejected[0].Reason)
	assert.Equal(t, "x", result.Rejected[1].Ref)
	assert.Equal(t, []string{"ok"}, gw.NodeIDs())
}

func TestMergeNodesIdempotent(t *testing.T) {
	gw := store.NewMemoryGateway()
	engine := NewEngine(gw, nil)
	batch := []report.NodeRecord{
		{ID: "a", Type: "class", Properties: map[string]any{"name": "A", "loc": float64(10)}},
		{ID: "b", Type: "method", Properties: map[string]any{"name": "b"}},
	}

	for i := 0; i < 3; i++ {
		_, err := engine.MergeNodes(context.Background(), batch)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"a", "b"}, gw.NodeIDs())
	assert.Equal(t, "A", gw.Node("a").Props["name"])
}

func TestMergeNodesRetypeAccumulatesLabels(t *testing.T) {
	gw := store.NewMemoryGateway()
	engine := NewEngine(gw, nil)

	_, err := engine.MergeNodes(context.Background(), []report.NodeRecord{
		{ID: "a", Type: "class"},
	})
	require.NoError(t, err)
	_, err = engine.MergeNodes(context.Background(), []report.NodeRecord{
		{ID: "a", Type: "interface", Properties: map[string]any{"name": "A2"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Class", "Interface"}, gw.Labels("a"))
	assert.Equal(t, "A2", gw.Node("a").Props["name"])
}

func TestMergeEdgesDanglingIsolated(t *testing.T) {
	gw := store.NewMemoryGateway()
	engine := NewEngine(gw, nil)

	_, err := engine.MergeNodes(context.Background(), []report.NodeRecord{
		{ID: "a", Type: "class"},
		{ID: "b", Type: "method"},
	})
	require.NoError(t, err)

	result, err := engine.MergeEdges(context.Background(), []report.EdgeRecord{
		{SourceID: "a", TargetID: "b", Type: "contains"},
		{SourceID: "a", TargetID: "missing", Type: "contains"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Merged)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "a->missing", result.Rejected[0].Ref)
	assert.Contains(t, result.Rejected[0].Reason, "missing")
	assert.True(t, gw.HasEdge("a", "b", "CONTAINS"))
}

func TestMergeEdgesRejectsInvalidRecords(t *testing.T) {
	gw := store.NewMemoryGateway()
	engine := NewEngine(gw, nil)

	result, err := engine.MergeEdges(context.Background(), []report.EdgeRecord{
		{SourceID: "", TargetID: "b", Type: "calls"},
		{SourceID: "a", TargetID: "b", Type: "bad type"},
	})
	require.NoError(t, err)
	assert.Zero(t, result.Merged)
	assert.Len(t, result.Rejected, 2)
}

func TestMergeEdgesIdempotent(t *testing.T) {
	gw := store.NewMemoryGateway()
	engine := NewEngine(gw, nil)

	_, err := engine.MergeNodes(context.Background(), []report.NodeRecord{
		{ID: "a", Type: "class"},
		{ID: "b", Type: "method"},
	})
	require.NoError(t, err)

	batch := []report.EdgeRecord{{SourceID: "a", TargetID: "b", Type: "contains"}}
	for i := 0; i < 3; i++ {
		_, err := engine.MergeEdges(context.Background(), batch)
		require.NoError(t, err)
	}

	counts, err := gw.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Relationships)
}

func TestMergeNodesGatewayErrorPropagates(t *testing.T) {
	gw := store.NewMemoryGateway()
	gw.UpsertNodesErr = errors.New("boom")
	engine := NewEngine(gw, nil)

	_, err := engine.MergeNodes(context.Background(), []report.NodeRecord{{ID: "a", Type: "class"}})
	var txErr *store.TransactionError
	assert.ErrorAs(t, err, &txErr)
}

func TestMergeNodesFailedBatchCommitsNothing(t *testing.T) {
	gw := store.NewMemoryGateway()
	gw.UpsertNodesErr = errors.New("deadlock")
	engine := NewEngine(gw, nil)

	// The batch spans two labels; a transaction failure must not leave
	// the first label group committed.
	result, err := engine.MergeNodes(context.Background(), []report.NodeRecord{
		{ID: "a", Type: "class"},
		{ID: "b", Type: "method"},
	})
	require.Error(t, err)
	assert.Zero(t, result.Merged)
	assert.Empty(t, gw.NodeIDs())
}

func TestMergeEdgesFailedBatchCommitsNothing(t *testing.T) {
	gw := store.NewMemoryGateway()
	engine := NewEngine(gw, nil)

	_, err := engine.MergeNodes(context.Background(), []report.NodeRecord{
		{ID: "a", Type: "class"},
		{ID: "b", Type: "method"},
	})
	require.NoError(t, err)

	gw.UpsertEdgesErr = errors.New("deadlock")
	result, err := engine.MergeEdges(context.Background(), []report.EdgeRecord{
		{SourceID: "a", TargetID: "b", Type: "contains"},
		{SourceID: "b", TargetID: "a", Type: "calls"},
	})
	require.Error(t, err)
	assert.Zero(t, result.Merged)
	assert.False(t, gw.HasEdge("a", "b", "CONTAINS"))
	assert.False(t, gw.HasEdge("b", "a", "CALLS"))
}

func TestNodeLabels(t *testing.T) {
	labels := NodeLabels([]report.NodeRecord{
		{ID: "a", Type: "class"},
		{ID: "b", Type: "method"},
		{ID: "c", Type: "class"},
		{ID: "d", Type: "broken token"},
	})
	assert.Equal(t, []string{"Class", "Method"}, labels)
}
