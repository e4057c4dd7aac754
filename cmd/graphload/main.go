// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main implements the graphload CLI for importing static-analysis
// reports into a Neo4j graph.
//
// Usage:
//
//	graphload init                      Create .graphload/project.yaml configuration
//	graphload import <report.json>      Import a report into the graph
//	graphload status [--json]           Show graph counts and last run
//	graphload query <cypher> [--json]   Execute a read-only Cypher query
//	graphload wipe --yes                Delete the whole graph (destructive!)
package main

import (
	"flag"
	"fmt"
	"os"
)

// Version information (set via ldflags during build)
var (
	version = "dev"     // Version string
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// main parses global flags and dispatches to command handlers.
//
// Global flags:
//   - --version: display version information and exit
//   - --config: path to .graphload/project.yaml
//   - --json: machine-readable output
//   - -q: suppress progress and informational output
//   - --no-color: disable colored output
func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		configPath  = flag.String("config", "", "Path to .graphload/project.yaml (default: ./.graphload/project.yaml)")
		jsonOutput  = flag.Bool("json", false, "Output as JSON")
		quiet       = flag.Bool("q", false, "Suppress progress and info output")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `graphload - graph construction from static-analysis reports

graphload reads a JSON report of nodes and edges produced by a code
analyzer and merges it into a Neo4j labeled property graph. Imports are
idempotent: re-running the same report never duplicates vertices or
relationships.

Usage:
  graphload <command> [options]

Commands:
  init          Create .graphload/project.yaml configuration
  import        Import a report file into the graph
  status        Show graph counts and last import summary
  query         Execute a read-only Cypher query
  wipe          Delete the whole graph (destructive!)
  completion    Generate shell completion script (bash|zsh|fish)

Global Options:
  --config      Path to .graphload/project.yaml
  --json        Output as JSON
  -q            Suppress progress and info output
  --no-color    Disable colored output
  --version     Show version and exit

Examples:
  graphload init                          Create configuration
  graphload import out/report.json        Import a report
  graphload import out/report.json --clear  Wipe first, then import
  graphload status --json                 Counts as JSON
  graphload query "MATCH (n) RETURN count(n)"

Environment Variables:
  NEO4J_URI        Bolt URI (default: neo4j://localhost:7687)
  NEO4J_USERNAME   Database user (default: neo4j)
  NEO4J_PASSWORD   Database password
  NEO4J_DATABASE   Database name (default: neo4j)

A .env file in the working directory is loaded automatically.

For detailed command help: graphload <command> --help

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("graphload version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	globals := GlobalFlags{
		JSON:    *jsonOutput,
		Quiet:   *quiet || *jsonOutput,
		NoColor: *noColor,
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs)
	case "import":
		runImport(cmdArgs, *configPath, globals)
	case "status":
		runStatus(cmdArgs, *configPath, globals)
	case "query":
		runQuery(cmdArgs, *configPath, globals)
	case "wipe":
		runWipe(cmdArgs, *configPath, globals)
	case "completion":
		runCompletion(cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
