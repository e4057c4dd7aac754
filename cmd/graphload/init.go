// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// runInit executes the 'init' CLI command, creating .graphload/project.yaml.
//
// Flags:
//   - --force: overwrite existing configuration
//   - -y: non-interactive mode, use all defaults
//   - --project-id: project identifier (default: directory name)
//   - --uri: Neo4j bolt URI
//   - --username: database user
//   - --database: database name
//
// The password is never written by init; set NEO4J_PASSWORD in the
// environment or a .env file instead.
//
// Examples:
//
//	graphload init                            Interactive setup
//	graphload init -y                         Use all defaults
//	graphload init --uri neo4j://db:7687 -y   Point at a remote instance
func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite existing configuration")
	nonInteractive := fs.Bool("y", false, "Non-interactive mode (use defaults)")
	projectID := fs.String("project-id", "", "Project identifier")
	uri := fs.String("uri", "", "Neo4j bolt URI")
	username := fs.String("username", "", "Database user")
	database := fs.String("database", "", "Database name")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: graphload init [options]

Creates .graphload/project.yaml configuration file.

Examples:
  graphload init -y
  graphload init --uri neo4j://db.internal:7687 --database code -y

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot get current directory: %v\n", err)
		os.Exit(1)
	}

	configPath := ConfigPath(cwd)
	if _, err := os.Stat(configPath); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: %s already exists. Use --force to overwrite.\n", configPath)
		os.Exit(1)
	}

	pid := *projectID
	if pid == "" {
		pid = filepath.Base(cwd)
	}
	cfg := DefaultConfig(pid)
	if *uri != "" {
		cfg.Store.URI = *uri
	}
	if *username != "" {
		cfg.Store.Username = *username
	}
	if *database != "" {
		cfg.Store.Database = *database
	}

	if !*nonInteractive {
		reader := bufio.NewReader(os.Stdin)
		fmt.Println("graphload Project Configuration")
		fmt.Println("===============================")
		fmt.Println()

		cfg.ProjectID = prompt(reader, "Project ID", cfg.ProjectID)
		cfg.Store.URI = prompt(reader, "Neo4j URI", cfg.Store.URI)
		cfg.Store.Username = prompt(reader, "Username", cfg.Store.Username)
		cfg.Store.Database = prompt(reader, "Database", cfg.Store.Database)
		fmt.Println()
	}

	if err := os.MkdirAll(ConfigDir(cwd), 0750); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot create .graphload directory: %v\n", err)
		os.Exit(1)
	}
	if err := SaveConfig(cfg, configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot save configuration: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created %s\n", configPath)
	addToGitignore(cwd)

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Set NEO4J_PASSWORD in your environment or a .env file")
	fmt.Println("  2. Run 'graphload import <report.json>' to import a report")
	fmt.Println("  3. Run 'graphload status' to verify the import")
}

// prompt displays an interactive prompt and reads one line from stdin.
// Enter with no input returns the default value.
func prompt(reader *bufio.Reader, label, defaultValue string) string {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", label, defaultValue)
	} else {
		fmt.Printf("%s: ", label)
	}

	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultValue
	}
	return input
}

// addToGitignore adds .graphload/ to the project's .gitignore if not
// already present. If .gitignore does not exist, nothing happens.
func addToGitignore(dir string) {
	gitignorePath := filepath.Join(dir, ".gitignore")

	content, err := os.ReadFile(gitignorePath) //nolint:gosec // G304: gitignorePath built from repo dir
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == ".graphload/" || line == ".graphload" || line == "/.graphload/" || line == "/.graphload" {
			return
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_WRONLY, 0600) //nolint:gosec // G304: gitignorePath built from repo dir
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()

	if len(content) > 0 && content[len(content)-1] != '\n' {
		_, _ = f.WriteString("\n")
	}
	_, _ = f.WriteString("\n# graphload configuration\n.graphload/\n")
	fmt.Println("Added .graphload/ to .gitignore")
}
