// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Cypher templates. The only text spliced into a template is a label or
// relationship-type token that the engine has already validated against a
// strict identifier pattern; everything record-derived travels in $rows.
const (
	// upsertNodesQuery merges each vertex by id, overwrites the batch's
	// property keys (leaving other existing properties untouched) and adds
	// the label without removing labels from earlier runs.
	upsertNodesQuery = `UNWIND $rows AS row
MERGE (n {id: row.id})
SET n += row.props
SET n:%s
RETURN count(n) AS merged`

	// upsertEdgesQuery merges one relationship per row when both endpoints
	// exist and returns the rows that reference a missing endpoint, so a
	// dangling record never aborts the rest of its batch.
	upsertEdgesQuery = `UNWIND $rows AS row
OPTIONAL MATCH (a {id: row.sourceId})
OPTIONAL MATCH (b {id: row.targetId})
FOREACH (_ IN CASE WHEN a IS NOT NULL AND b IS NOT NULL THEN [1] ELSE [] END |
  MERGE (a)-[:%s]->(b)
)
WITH row, a, b
WHERE a IS NULL OR b IS NULL
RETURN row.sourceId AS sourceId, row.targetId AS targetId,
       a IS NULL AS missingSource, b IS NULL AS missingTarget`

	constraintQuery = `CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.id IS UNIQUE`

	wipeQuery = `MATCH (n) DETACH DELETE n`

	countNodesQuery = `MATCH (n) RETURN count(n) AS c`
	countRelsQuery  = `MATCH ()-[r]->() RETURN count(r) AS c`
)

// Neo4jConfig holds resolved connection settings for a Neo4j gateway.
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
}

type neo4jGateway struct {
	driver   neo4j.DriverWithContext
	uri      string
	database string
}

// NewNeo4jGateway creates a Gateway backed by a Neo4j server. The driver
// is created eagerly; reachability is checked by VerifyConnectivity.
func NewNeo4jGateway(cfg Neo4jConfig) (Gateway, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create driver: %w", err)
	}
	return &neo4jGateway{
		driver:   driver,
		uri:      cfg.URI,
		database: cfg.Database,
	}, nil
}

func (g *neo4jGateway) VerifyConnectivity(ctx context.Context) error {
	if err := g.driver.VerifyConnectivity(ctx); err != nil {
		return &ConnectivityError{URI: g.uri, Err: err}
	}
	return nil
}

func (g *neo4jGateway) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return g.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: g.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
}

func (g *neo4jGateway) readSession(ctx context.Context) neo4j.SessionWithContext {
	return g.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: g.database,
		AccessMode:   neo4j.AccessModeRead,
	})
}

func (g *neo4jGateway) EnsureConstraints(ctx context.Context, labels []string) error {
	session := g.writeSession(ctx)
	defer session.Close(ctx)

	for _, label := range labels {
		name := fmt.Sprintf("graphload_%s_id", label)
		query := fmt.Sprintf(constraintQuery, name, label)
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, query, nil)
			if err != nil {
				return nil, err
			}
			_, err = res.Consume(ctx)
			return nil, err
		})
		if err != nil {
			return fmt.Errorf("create constraint for %s: %w", label, err)
		}
	}
	return nil
}

func (g *neo4jGateway) UpsertNodes(ctx context.Context, groups []NodeGroup) (int, error) {
	if len(groups) == 0 {
		return 0, nil
	}

	session := g.writeSession(ctx)
	defer session.Close(ctx)

	// All of the batch's label groups run in one managed transaction so
	// a failure rolls back the whole batch.
	merged, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		var total int64
		for _, group := range groups {
			query := fmt.Sprintf(upsertNodesQuery, group.Label)
			res, err := tx.Run(ctx, query, map[string]any{"rows": nodeRowParams(group.Rows)})
			if err != nil {
				return nil, err
			}
			rec, err := res.Single(ctx)
			if err != nil {
				return nil, err
			}
			count, _ := rec.Get("merged")
			n, _ := count.(int64)
			total += n
		}
		return total, nil
	})
	if err != nil {
		return 0, &TransactionError{Op: "upsert nodes", Err: err}
	}

	count, _ := merged.(int64)
	return int(count), nil
}

func (g *neo4jGateway) UpsertEdges(ctx context.Context, groups []EdgeGroup) (EdgeUpsertResult, error) {
	if len(groups) == 0 {
		return EdgeUpsertResult{}, nil
	}

	session := g.writeSession(ctx)
	defer session.Close(ctx)

	// Duplicate rows for the same (source, target) pair collapse into
	// one MERGE, so the merged count reflects distinct relationships.
	sent := 0
	deduped := make([][]EdgeRow, len(groups))
	for i, group := range groups {
		deduped[i] = dedupeEdgeRows(group.Rows)
		sent += len(deduped[i])
	}

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		var dangling []DanglingRef
		for i, group := range groups {
			query := fmt.Sprintf(upsertEdgesQuery, group.RelType)
			res, err := tx.Run(ctx, query, map[string]any{"rows": edgeRowParams(deduped[i])})
			if err != nil {
				return nil, err
			}
			records, err := res.Collect(ctx)
			if err != nil {
				return nil, err
			}

			for _, rec := range records {
				ref := DanglingRef{RelType: group.RelType}
				if v, ok := rec.Get("sourceId"); ok {
					ref.SourceID, _ = v.(string)
				}
				if v, ok := rec.Get("targetId"); ok {
					ref.TargetID, _ = v.(string)
				}
				if v, ok := rec.Get("missingSource"); ok {
					ref.MissingSource, _ = v.(bool)
				}
				if v, ok := rec.Get("missingTarget"); ok {
					ref.MissingTarget, _ = v.(bool)
				}
				dangling = append(dangling, ref)
			}
		}
		return dangling, nil
	})
	if err != nil {
		return EdgeUpsertResult{}, &TransactionError{Op: "upsert edges", Err: err}
	}

	dangling, _ := out.([]DanglingRef)
	return EdgeUpsertResult{
		Merged:   sent - len(dangling),
		Dangling: dangling,
	}, nil
}

// dedupeEdgeRows drops repeated (source, target) pairs, keeping first
// occurrence order.
func dedupeEdgeRows(rows []EdgeRow) []EdgeRow {
	seen := make(map[EdgeRow]struct{}, len(rows))
	out := rows[:0:0]
	for _, row := range rows {
		if _, ok := seen[row]; ok {
			continue
		}
		seen[row] = struct{}{}
		out = append(out, row)
	}
	return out
}

func (g *neo4jGateway) WipeAll(ctx context.Context) error {
	session := g.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, wipeQuery, nil)
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return &TransactionError{Op: "wipe all", Err: err}
	}
	return nil
}

func (g *neo4jGateway) Counts(ctx context.Context) (GraphCounts, error) {
	session := g.readSession(ctx)
	defer session.Close(ctx)

	var counts GraphCounts
	for _, q := range []struct {
		query string
		dest  *int64
	}{
		{countNodesQuery, &counts.Nodes},
		{countRelsQuery, &counts.Relationships},
	} {
		out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, q.query, nil)
			if err != nil {
				return nil, err
			}
			rec, err := res.Single(ctx)
			if err != nil {
				return nil, err
			}
			v, _ := rec.Get("c")
			return v, nil
		})
		if err != nil {
			return GraphCounts{}, &TransactionError{Op: "count", Err: err}
		}
		*q.dest, _ = out.(int64)
	}
	return counts, nil
}

// ReadQuery executes an arbitrary Cypher query in a read transaction and
// returns the result rows. Write clauses are rejected by the server
// because the session is opened read-only.
func (g *neo4jGateway) ReadQuery(ctx context.Context, cypher string, params map[string]any) (*QueryResult, error) {
	session := g.readSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}

		result := &QueryResult{}
		for i, rec := range records {
			if i == 0 {
				result.Columns = rec.Keys
			}
			row := make([]any, len(rec.Keys))
			for j, key := range rec.Keys {
				row[j], _ = rec.Get(key)
			}
			result.Rows = append(result.Rows, row)
		}
		return result, nil
	})
	if err != nil {
		return nil, &TransactionError{Op: "read query", Err: err}
	}
	return out.(*QueryResult), nil
}

func (g *neo4jGateway) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}

// nodeRowParams converts rows into the driver's parameter shape.
func nodeRowParams(rows []NodeRow) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		props := row.Props
		if props == nil {
			props = map[string]any{}
		}
		out = append(out, map[string]any{"id": row.ID, "props": props})
	}
	return out
}

func edgeRowParams(rows []EdgeRow) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, map[string]any{"sourceId": row.SourceID, "targetId": row.TargetID})
	}
	return out
}
