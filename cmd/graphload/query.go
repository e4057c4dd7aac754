// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/graphload/internal/errors"
	"github.com/kraklabs/graphload/internal/output"
	"github.com/kraklabs/graphload/pkg/store"
)

// runQuery executes the 'query' CLI command, running a read-only Cypher
// query against the configured database.
//
// The query string is passed through verbatim; the session is opened
// read-only so write clauses are rejected by the server.
//
// Flags:
//   - --json: output rows as JSON (default: false)
//   - --timeout: query timeout duration (default: 30s)
//   - --limit: append LIMIT to the query (default: 0, no limit)
//
// Examples:
//
//	graphload query "MATCH (n:Class) RETURN n.id, n.name" --limit 10
//	graphload query "MATCH ()-[r]->() RETURN type(r), count(r)" --json
func runQuery(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	jsonOutput := fs.Bool("json", globals.JSON, "Output as JSON")
	timeout := fs.Duration("timeout", 30*time.Second, "Query timeout")
	limit := fs.Int("limit", 0, "Append LIMIT to the query (0 = no limit)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: graphload query [options] <cypher>

Executes a read-only Cypher query against the configured database.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # List classes
  graphload query "MATCH (n:Class) RETURN n.id, n.name" --limit 10

  # Count relationships by type
  graphload query "MATCH ()-[r]->() RETURN type(r) AS t, count(r) AS c ORDER BY c DESC"

  # Find what a method calls
  graphload query "MATCH (m {id: 'method_1'})-[:CALLS]->(t) RETURN t.id"

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: cypher argument required\n")
		fs.Usage()
		os.Exit(errors.ExitInput)
	}
	cypher := strings.TrimSpace(fs.Arg(0))

	if *limit > 0 && !strings.Contains(strings.ToUpper(cypher), "LIMIT") {
		cypher = fmt.Sprintf("%s LIMIT %d", cypher, *limit)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		errors.FatalError(errors.NewConfigError(
			"Cannot load graphload configuration",
			err.Error(),
			"Run 'graphload init' or fix the config file",
			err,
		), *jsonOutput)
	}

	gateway, err := store.NewNeo4jGateway(cfg.StoreConfig())
	if err != nil {
		errors.FatalError(errors.NewConnectivityError(
			"Cannot create Neo4j driver",
			fmt.Sprintf("Driver initialization for %s failed", cfg.Store.URI),
			"Check the store.uri value in .graphload/project.yaml",
			err,
		), *jsonOutput)
	}
	defer func() { _ = gateway.Close(context.Background()) }()

	querier, ok := gateway.(store.Querier)
	if !ok {
		errors.FatalError(errors.NewInternalError(
			"Store does not support queries", "", "", nil,
		), *jsonOutput)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := querier.ReadQuery(ctx, cypher, nil)
	if err != nil {
		errors.FatalError(errors.NewStoreError(
			"Query failed",
			err.Error(),
			"Check the Cypher syntax; only read clauses are allowed",
			err,
		), *jsonOutput)
	}

	if *jsonOutput {
		_ = output.JSON(map[string]any{
			"columns": result.Columns,
			"rows":    result.Rows,
		})
		return
	}
	printQueryResult(result)
}

// printQueryResult renders rows as an aligned table.
func printQueryResult(result *store.QueryResult) {
	if len(result.Rows) == 0 {
		fmt.Println("No rows.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(result.Columns, "\t"))

	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprintf("%v", v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush()

	fmt.Printf("\n%d row(s)\n", len(result.Rows))
}
