// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryGateway is an in-memory Gateway with the same observable merge
// semantics as the Neo4j implementation: vertices keyed by id, labels
// accumulate, property keys overwrite, relationships deduplicated by the
// (source, target, type) triple. It exists for tests; it also records the
// sequence of operations so tests can assert phase ordering.
type MemoryGateway struct {
	mu    sync.Mutex
	nodes map[string]*MemoryNode
	edges map[string]struct{}

	// Ops is the ordered log of gateway operations ("verify", "wipe",
	// "upsert-nodes:<Label,...>", "upsert-edges:<TYPE,...>", ...).
	Ops []string

	// Error injection knobs. When set, the corresponding operation fails
	// with a TransactionError (or ConnectivityError for VerifyErr).
	VerifyErr      error
	UpsertNodesErr error
	UpsertEdgesErr error
	WipeErr        error
}

// MemoryNode is a vertex held by MemoryGateway.
type MemoryNode struct {
	Labels map[string]struct{}
	Props  map[string]any
}

// NewMemoryGateway creates an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		nodes: make(map[string]*MemoryNode),
		edges: make(map[string]struct{}),
	}
}

func (g *MemoryGateway) VerifyConnectivity(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Ops = append(g.Ops, "verify")
	if g.VerifyErr != nil {
		return &ConnectivityError{URI: "memory://", Err: g.VerifyErr}
	}
	return nil
}

func (g *MemoryGateway) EnsureConstraints(ctx context.Context, labels []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Ops = append(g.Ops, "constraints")
	return nil
}

func (g *MemoryGateway) UpsertNodes(ctx context.Context, groups []NodeGroup) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Ops = append(g.Ops, "upsert-nodes:"+nodeGroupLabels(groups))
	// An injected failure commits nothing, matching the all-or-nothing
	// transaction the real gateway runs the batch in.
	if g.UpsertNodesErr != nil {
		return 0, &TransactionError{Op: "upsert nodes", Err: g.UpsertNodesErr}
	}

	merged := 0
	for _, group := range groups {
		for _, row := range group.Rows {
			node, ok := g.nodes[row.ID]
			if !ok {
				node = &MemoryNode{
					Labels: make(map[string]struct{}),
					Props:  map[string]any{"id": row.ID},
				}
				g.nodes[row.ID] = node
			}
			node.Labels[group.Label] = struct{}{}
			for k, v := range row.Props {
				node.Props[k] = v
			}
			merged++
		}
	}
	return merged, nil
}

func (g *MemoryGateway) UpsertEdges(ctx context.Context, groups []EdgeGroup) (EdgeUpsertResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Ops = append(g.Ops, "upsert-edges:"+edgeGroupTypes(groups))
	if g.UpsertEdgesErr != nil {
		return EdgeUpsertResult{}, &TransactionError{Op: "upsert edges", Err: g.UpsertEdgesErr}
	}

	var result EdgeUpsertResult
	counted := make(map[string]struct{})
	for _, group := range groups {
		for _, row := range group.Rows {
			_, hasSource := g.nodes[row.SourceID]
			_, hasTarget := g.nodes[row.TargetID]
			if !hasSource || !hasTarget {
				result.Dangling = append(result.Dangling, DanglingRef{
					SourceID:      row.SourceID,
					TargetID:      row.TargetID,
					RelType:       group.RelType,
					MissingSource: !hasSource,
					MissingTarget: !hasTarget,
				})
				continue
			}
			key := edgeKey(row.SourceID, row.TargetID, group.RelType)
			g.edges[key] = struct{}{}
			// Duplicate rows merge the same relationship once.
			if _, ok := counted[key]; ok {
				continue
			}
			counted[key] = struct{}{}
			result.Merged++
		}
	}
	return result, nil
}

func (g *MemoryGateway) WipeAll(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Ops = append(g.Ops, "wipe")
	if g.WipeErr != nil {
		return &TransactionError{Op: "wipe all", Err: g.WipeErr}
	}
	g.nodes = make(map[string]*MemoryNode)
	g.edges = make(map[string]struct{})
	return nil
}

func (g *MemoryGateway) Counts(ctx context.Context) (GraphCounts, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GraphCounts{
		Nodes:         int64(len(g.nodes)),
		Relationships: int64(len(g.edges)),
	}, nil
}

func (g *MemoryGateway) Close(ctx context.Context) error {
	return nil
}

// Node returns the stored vertex for id, or nil.
func (g *MemoryGateway) Node(id string) *MemoryNode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nodes[id]
}

// NodeIDs returns all vertex ids in sorted order.
func (g *MemoryGateway) NodeIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasEdge reports whether the (source, target, type) relationship exists.
func (g *MemoryGateway) HasEdge(sourceID, targetID, relType string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.edges[edgeKey(sourceID, targetID, relType)]
	return ok
}

// Labels returns the sorted label set of the vertex with the given id.
func (g *MemoryGateway) Labels(id string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	node, ok := g.nodes[id]
	if !ok {
		return nil
	}
	labels := make([]string, 0, len(node.Labels))
	for l := range node.Labels {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

func edgeKey(sourceID, targetID, relType string) string {
	return fmt.Sprintf("%s\x00%s\x00%s", sourceID, targetID, relType)
}

func nodeGroupLabels(groups []NodeGroup) string {
	labels := make([]string, 0, len(groups))
	for _, g := range groups {
		labels = append(labels, g.Label)
	}
	return strings.Join(labels, ",")
}

func edgeGroupTypes(groups []EdgeGroup) string {
	types := make([]string, 0, len(groups))
	for _, g := range groups {
		types = append(types, g.RelType)
	}
	return strings.Join(types, ",")
}
