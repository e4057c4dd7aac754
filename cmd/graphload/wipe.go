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
	"github.com/kraklabs/graphload/internal/ui"
	"github.com/kraklabs/graphload/pkg/ingestion"
	"github.com/kraklabs/graphload/pkg/store"
)

// runWipe executes the 'wipe' CLI command, deleting every node and
// relationship in the configured database.
func runWipe(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("wipe", flag.ExitOnError)
	confirm := fs.Bool("yes", false, "Confirm the wipe (required)")
	timeout := fs.Duration("timeout", 5*time.Minute, "Wipe timeout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: graphload wipe [options]

Deletes every node and relationship in the configured database.
This is the same operation as 'import --clear' without the import.

WARNING: This operation is destructive and cannot be undone!

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if !*confirm {
		fmt.Fprintf(os.Stderr, "Error: you must pass --yes to confirm the wipe\n")
		fmt.Fprintf(os.Stderr, "This will delete every node and relationship in the database.\n")
		os.Exit(errors.ExitInput)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		errors.FatalError(errors.NewConfigError(
			"Cannot load graphload configuration",
			err.Error(),
			"Run 'graphload init' or fix the config file",
			err,
		), globals.JSON)
	}
	ui.InitColors(globals.NoColor)

	gateway, err := store.NewNeo4jGateway(cfg.StoreConfig())
	if err != nil {
		errors.FatalError(errors.NewConnectivityError(
			"Cannot create Neo4j driver",
			fmt.Sprintf("Driver initialization for %s failed", cfg.Store.URI),
			"Check the store.uri value in .graphload/project.yaml",
			err,
		), globals.JSON)
	}
	defer func() { _ = gateway.Close(context.Background()) }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := gateway.VerifyConnectivity(ctx); err != nil {
		errors.FatalError(errors.NewConnectivityError(
			"Cannot connect to Neo4j",
			err.Error(),
			"Check that the database is running and NEO4J_* settings are correct",
			err,
		), globals.JSON)
	}

	fmt.Printf("Wiping graph at %s...\n", cfg.Store.URI)
	if err := gateway.WipeAll(ctx); err != nil {
		errors.FatalError(errors.NewStoreError(
			"Wipe failed", err.Error(), "Inspect the database logs", err,
		), globals.JSON)
	}

	cwd, _ := os.Getwd()
	if err := ingestion.NewLastRunManager(LastRunPath(cwd)).Clear(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot clear last-run summary: %v\n", err)
	}

	ui.Success("Graph wiped. All nodes and relationships have been deleted.")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  graphload import <report.json>    Import a fresh report")
}
