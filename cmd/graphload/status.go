// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/graphload/internal/errors"
	"github.com/kraklabs/graphload/internal/output"
	"github.com/kraklabs/graphload/internal/ui"
	"github.com/kraklabs/graphload/pkg/ingestion"
	"github.com/kraklabs/graphload/pkg/store"
)

// StatusResult represents the graph status for JSON output.
type StatusResult struct {
	ProjectID     string             `json:"project_id"`
	URI           string             `json:"uri"`
	Database      string             `json:"database"`
	Connected     bool               `json:"connected"`
	Nodes         int64              `json:"nodes"`
	Relationships int64              `json:"relationships"`
	LastRun       *ingestion.LastRun `json:"last_run,omitempty"`
	Error         string             `json:"error,omitempty"`
	Timestamp     time.Time          `json:"timestamp"`
}

// runStatus executes the 'status' CLI command, showing node and
// relationship counts plus the persisted last-import summary.
//
// Examples:
//
//	graphload status           Display formatted status
//	graphload status --json    Output as JSON for programmatic use
func runStatus(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	jsonOutput := fs.Bool("json", globals.JSON, "Output as JSON")
	timeout := fs.Duration("timeout", 30*time.Second, "Connection timeout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: graphload status [options]

Shows graph counts and the last import summary.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
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
	ui.InitColors(globals.NoColor)

	result := &StatusResult{
		ProjectID: cfg.ProjectID,
		URI:       cfg.Store.URI,
		Database:  cfg.Store.Database,
		Timestamp: time.Now(),
	}

	cwd, _ := os.Getwd()
	lastRun, err := ingestion.NewLastRunManager(LastRunPath(cwd)).Load()
	if err == nil {
		result.LastRun = lastRun
	}

	gateway, err := store.NewNeo4jGateway(cfg.StoreConfig())
	if err != nil {
		statusUnavailable(result, err, *jsonOutput)
		return
	}
	defer func() { _ = gateway.Close(context.Background()) }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := gateway.VerifyConnectivity(ctx); err != nil {
		statusUnavailable(result, err, *jsonOutput)
		return
	}

	counts, err := gateway.Counts(ctx)
	if err != nil {
		statusUnavailable(result, err, *jsonOutput)
		return
	}

	result.Connected = true
	result.Nodes = counts.Nodes
	result.Relationships = counts.Relationships

	if *jsonOutput {
		_ = output.JSON(result)
	} else {
		printStatus(result)
	}
}

// statusUnavailable reports a status the database could not answer. The
// last-run summary is still shown; the command exits non-zero.
func statusUnavailable(result *StatusResult, err error, jsonOutput bool) {
	result.Connected = false
	result.Error = err.Error()
	if jsonOutput {
		_ = output.JSON(result)
	} else {
		printStatus(result)
	}
	os.Exit(errors.ExitConnectivity)
}

// printStatus prints the status result as formatted text to stdout.
func printStatus(result *StatusResult) {
	ui.Header("Graph Status")
	fmt.Printf("%s %s\n", ui.Label("Project ID:"), result.ProjectID)
	fmt.Printf("%s %s\n", ui.Label("URI:"), result.URI)
	fmt.Printf("%s %s\n", ui.Label("Database:"), result.Database)
	fmt.Println()

	if result.Connected {
		ui.SubHeader("Counts:")
		fmt.Printf("  Nodes:          %s\n", ui.CountText(result.Nodes))
		fmt.Printf("  Relationships:  %s\n", ui.CountText(result.Relationships))
	} else {
		ui.Errorf("Not connected: %s", result.Error)
	}

	if result.LastRun != nil {
		fmt.Println()
		ui.SubHeader("Last import:")
		fmt.Printf("  Run ID:    %s\n", result.LastRun.RunID)
		fmt.Printf("  Report:    %s\n", ui.DimText(result.LastRun.ReportPath))
		fmt.Printf("  Merged:    %d nodes, %d edges\n", result.LastRun.NodesMerged, result.LastRun.EdgesMerged)
		if rejected := result.LastRun.NodesRejected + result.LastRun.EdgesRejected; rejected > 0 {
			fmt.Printf("  Rejected:  %d\n", rejected)
		}
		fmt.Printf("  Duration:  %s\n", result.LastRun.Duration)
		fmt.Printf("  Finished:  %s\n", result.LastRun.FinishedAt.Format(time.RFC3339))
	}
}
