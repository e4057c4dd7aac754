// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kraklabs/graphload/internal/contract"
	"github.com/kraklabs/graphload/internal/errors"
	"github.com/kraklabs/graphload/internal/output"
	"github.com/kraklabs/graphload/internal/ui"
	"github.com/kraklabs/graphload/pkg/ingestion"
	"github.com/kraklabs/graphload/pkg/report"
	"github.com/kraklabs/graphload/pkg/store"
)

const timeRounding = time.Millisecond

// runImport executes the 'import' CLI command, merging a report file into
// the graph.
//
// Nodes are imported fully before any edge, so edge resolution sees every
// vertex the report defines. A second import of the same report is a
// no-op for graph shape.
//
// Flags:
//   - --clear: wipe the whole graph before importing
//   - --batch-size: records per transaction (default from config, 1000)
//   - --failure-tolerance: failed batches tolerated before aborting
//   - --debug: enable debug logging
//   - --metrics-addr: HTTP address for Prometheus metrics (default: disabled)
//
// Examples:
//
//	graphload import out/report.json
//	graphload import out/report.json --clear
//	graphload import out/report.json --batch-size 500
func runImport(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	clearFirst := fs.Bool("clear", false, "Wipe the whole graph before importing")
	batchSize := fs.Int("batch-size", 0, "Records per transaction (0 = use config)")
	failureTolerance := fs.Int("failure-tolerance", -1, "Failed batches tolerated before aborting (-1 = use config)")
	debug := fs.Bool("debug", false, "Enable debug logging")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: graphload import [options] <report.json>

Imports a static-analysis report into the configured Neo4j database.
Connection settings come from .graphload/project.yaml and NEO4J_* env vars.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: report file argument required\n")
		fs.Usage()
		os.Exit(errors.ExitInput)
	}
	reportPath := fs.Arg(0)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		errors.FatalError(errors.NewConfigError(
			"Cannot load graphload configuration",
			err.Error(),
			"Run 'graphload init' or fix the config file",
			err,
		), globals.JSON)
	}

	if *batchSize == 0 {
		*batchSize = cfg.Import.BatchSize
	}
	if *failureTolerance < 0 {
		*failureTolerance = cfg.Import.FailureTolerance
	}
	if result := contract.ValidateBatchSize(*batchSize); !result.OK {
		errors.FatalError(errors.NewInputError(
			"Invalid batch size",
			result.Message,
			fmt.Sprintf("Use a value between 1 and %d", contract.MaxBatchRows()),
		), globals.JSON)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	ui.InitColors(globals.NoColor)

	rep := parseReportFile(reportPath, globals)

	// Start Prometheus metrics endpoint (optional)
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: *metricsAddr, Handler: mux}
			logger.Info("metrics.http.start", "addr", *metricsAddr, "path", "/metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics.http.error", "err", err)
			}
		}()
	}

	// Graceful shutdown on interrupt: the current batch finishes, the
	// next one is never sent.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown.signal", "signal", sig.String())
		cancel()
	}()

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

	sink := newProgressSink(NewProgressConfig(globals))
	pipeline, err := ingestion.NewPipeline(ingestion.Config{
		ProjectID:        cfg.ProjectID,
		BatchSize:        *batchSize,
		Clear:            *clearFirst,
		FailureTolerance: *failureTolerance,
	}, gateway, logger, sink)
	if err != nil {
		errors.FatalError(errors.NewInputError(
			"Invalid import configuration", err.Error(), "Check --batch-size and --failure-tolerance",
		), globals.JSON)
	}

	result, err := pipeline.Run(ctx, rep)
	sink.Finish()
	if err != nil {
		errors.FatalError(importRunError(err), globals.JSON)
	}

	cwd, _ := os.Getwd()
	lastRun := ingestion.SummarizeRun(result, cfg.ProjectID, reportPath)
	if err := ingestion.NewLastRunManager(LastRunPath(cwd)).Save(lastRun); err != nil {
		logger.Warn("lastrun.save.failed", "err", err)
	}

	if globals.JSON {
		if err := output.JSON(result); err != nil {
			errors.FatalError(err, true)
		}
	} else {
		printImportResult(result)
	}

	// A completed run with drops still signals failure to CI.
	if result.TotalRejected() > 0 {
		os.Exit(errors.ExitInput)
	}
}

// parseReportFile loads and validates the report document, exiting with
// a structured error on failure.
func parseReportFile(path string, globals GlobalFlags) *report.Report {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			errors.FatalError(errors.NewNotFoundError(
				"Report file not found",
				fmt.Sprintf("No file exists at %s", path),
				"Check the path or generate the report first",
			), globals.JSON)
		}
		errors.FatalError(errors.NewPermissionError(
			"Cannot read report file", err.Error(), "Check file permissions", err,
		), globals.JSON)
	}
	if result := contract.ValidateReportSize(info.Size()); !result.OK {
		errors.FatalError(errors.NewInputError(
			"Report file too large",
			result.Message,
			"Raise GRAPHLOAD_SOFT_LIMIT_BYTES or split the report",
		), globals.JSON)
	}

	rep, err := report.ParseFile(path)
	if err != nil {
		errors.FatalError(errors.NewInputError(
			"Malformed report document",
			err.Error(),
			"The report must be a JSON object with 'nodes' and 'edges' arrays",
		), globals.JSON)
	}
	return rep
}

// importRunError maps a pipeline failure onto the exit-code taxonomy.
func importRunError(err error) error {
	var connErr *store.ConnectivityError
	if stderrors.As(err, &connErr) {
		return errors.NewConnectivityError(
			"Cannot connect to Neo4j",
			connErr.Error(),
			"Check that the database is running and NEO4J_* settings are correct",
			err,
		)
	}
	var txErr *store.TransactionError
	if stderrors.As(err, &txErr) {
		return errors.NewStoreError(
			"Import transaction failed",
			txErr.Error(),
			"Inspect the database logs; re-running the import is safe",
			err,
		)
	}
	if stderrors.Is(err, context.Canceled) {
		return errors.NewInternalError(
			"Import interrupted",
			"The run was canceled before all batches committed",
			"Re-run the import; committed batches will not be duplicated",
			err,
		)
	}
	return errors.NewInternalError("Import failed", err.Error(), "", err)
}

// printImportResult prints the import summary to stdout.
func printImportResult(result *ingestion.ImportResult) {
	fmt.Println()
	ui.Header("Import Complete")
	fmt.Printf("%s %s\n", ui.Label("Run ID:"), result.RunID)
	if result.Wiped {
		fmt.Printf("%s yes\n", ui.Label("Graph wiped:"))
	}
	fmt.Println()

	fmt.Printf("Nodes:  %s merged in %d batches (%s)\n",
		ui.CountText(int64(result.Nodes.Merged)), result.Nodes.Batches, result.Nodes.Duration.Round(timeRounding))
	fmt.Printf("Edges:  %s merged in %d batches (%s)\n",
		ui.CountText(int64(result.Edges.Merged)), result.Edges.Batches, result.Edges.Duration.Round(timeRounding))
	fmt.Printf("Total:  %s\n", result.Duration.Round(timeRounding))

	rejected := result.TotalRejected()
	if rejected == 0 {
		fmt.Println()
		ui.Success("No records rejected")
		return
	}

	fmt.Println()
	ui.Warningf("%d records rejected", rejected)
	for _, rej := range result.Nodes.Rejected {
		fmt.Printf("  node %s: %s\n", rej.Ref, rej.Reason)
	}
	for _, rej := range result.Edges.Rejected {
		fmt.Printf("  edge %s: %s\n", rej.Ref, rej.Reason)
	}
}
