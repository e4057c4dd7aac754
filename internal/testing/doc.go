// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package testing provides test helpers for graphload.
//
// The helpers seed an in-memory store.Gateway and build report fixtures
// so package tests can exercise the full parse-batch-merge path without
// a running Neo4j.
//
//	func TestMyFeature(t *testing.T) {
//	    gw := graphloadtest.SetupGateway(t)
//	    graphloadtest.SeedNode(t, gw, "Class", "a", map[string]any{"name": "A"})
//
//	    // Run your tests...
//	}
//
// WriteReportFile writes a well-formed report document to a temp file
// for CLI and parser tests.
package testing
