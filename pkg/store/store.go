// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the transactional boundary around the graph
// database. A Gateway executes one batch's merge effect per transaction;
// callers never see a half-applied batch.
package store

import (
	"context"
	"fmt"
)

// NodeRow is one vertex upsert within a batch. All rows passed to
// UpsertNodes share the same (already validated) label.
type NodeRow struct {
	ID    string
	Props map[string]any
}

// EdgeRow is one relationship upsert within a batch. All rows in an
// EdgeGroup share the same (already validated) relationship type.
type EdgeRow struct {
	SourceID string
	TargetID string
}

// NodeGroup is the subset of a batch sharing one label.
type NodeGroup struct {
	Label string
	Rows  []NodeRow
}

// EdgeGroup is the subset of a batch sharing one relationship type.
type EdgeGroup struct {
	RelType string
	Rows    []EdgeRow
}

// DanglingRef identifies an edge row whose endpoints were not found.
type DanglingRef struct {
	SourceID      string
	TargetID      string
	RelType       string
	MissingSource bool
	MissingTarget bool
}

// EdgeUpsertResult reports the outcome of one edge batch.
type EdgeUpsertResult struct {
	// Merged is the number of distinct relationships the batch merged.
	// Duplicate rows for the same (source, target, type) triple count
	// once.
	Merged int

	// Dangling lists rows skipped because an endpoint vertex is missing.
	Dangling []DanglingRef
}

// GraphCounts holds totals for the whole graph.
type GraphCounts struct {
	Nodes         int64
	Relationships int64
}

// Gateway is the contract the import engine needs from a graph store.
//
// Every mutating call runs inside exactly one transaction: it either
// commits the whole batch's merge effect or none of it. Implementations
// own session lifecycle and must close sessions on every exit path.
type Gateway interface {
	// VerifyConnectivity checks that the store is reachable. Returns a
	// *ConnectivityError when it is not.
	VerifyConnectivity(ctx context.Context) error

	// EnsureConstraints creates id-uniqueness constraints for the given
	// labels if they do not already exist. Advisory: callers treat a
	// failure as a warning, not a fatal condition.
	EnsureConstraints(ctx context.Context, labels []string) error

	// UpsertNodes merges one batch of vertices, grouped by label, inside
	// a single transaction: every group commits or none does. Each row's
	// vertex is merged by id, its property keys overwritten and its
	// group's label added. Returns the number of vertices touched.
	// Idempotent.
	UpsertNodes(ctx context.Context, groups []NodeGroup) (int, error)

	// UpsertEdges merges one batch of relationships, grouped by type,
	// inside a single transaction. Rows with a missing endpoint are
	// skipped and reported in the result rather than failing the batch.
	// Idempotent.
	UpsertEdges(ctx context.Context, groups []EdgeGroup) (EdgeUpsertResult, error)

	// WipeAll deletes every vertex and relationship.
	WipeAll(ctx context.Context) error

	// Counts returns graph-wide vertex and relationship totals.
	Counts(ctx context.Context) (GraphCounts, error)

	// Close releases the underlying driver.
	Close(ctx context.Context) error
}

// QueryResult holds rows returned by a read query.
type QueryResult struct {
	Columns []string
	Rows    [][]any
}

// Querier is implemented by gateways that can run arbitrary read-only
// queries. The CLI's query command type-asserts for it; the import path
// never uses it.
type Querier interface {
	ReadQuery(ctx context.Context, cypher string, params map[string]any) (*QueryResult, error)
}

// ConnectivityError indicates the store could not be reached. Fatal: the
// run aborts without claiming progress beyond what already committed.
type ConnectivityError struct {
	URI string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("cannot reach graph store at %s: %v", e.URI, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// TransactionError indicates a unit of work failed mid-transaction. The
// batch is failed in full; nothing from it was committed.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed (%s): %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}
