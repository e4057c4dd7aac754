// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package errors provides structured error handling for the graphload CLI.
//
// UserError carries what went wrong, why, and how to fix it, plus a
// semantic exit code. Commands build UserErrors near the failure site and
// hand them to FatalError, which renders them for the terminal (colored)
// or as JSON in --json mode.
//
// # Exit Codes
//
//   - ExitSuccess (0): successful execution
//   - ExitConfig (1): configuration errors (missing/invalid config)
//   - ExitStore (2): graph store errors (failed transaction, wipe refused)
//   - ExitConnectivity (3): cannot reach the graph database
//   - ExitInput (4): invalid user input (bad report, bad arguments)
//   - ExitPermission (5): permission denied (file access, etc.)
//   - ExitNotFound (6): resource not found (report file, project)
//   - ExitInternal (10): internal errors (bugs, panics)
//
// An import that completes but rejects records exits with ExitInput so
// callers in CI can tell "clean" from "loaded with drops".
package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Exit codes for different error categories.
const (
	ExitSuccess = 0

	// ExitConfig indicates configuration errors (missing/invalid config files).
	ExitConfig = 1

	// ExitStore indicates graph store errors (failed batch transaction, etc.).
	ExitStore = 2

	// ExitConnectivity indicates the graph database could not be reached.
	ExitConnectivity = 3

	// ExitInput indicates invalid user input: a malformed report, bad
	// arguments, or a run that rejected records.
	ExitInput = 4

	// ExitPermission indicates permission denied errors (file access, etc.).
	ExitPermission = 5

	// ExitNotFound indicates resource not found errors (report file, project).
	ExitNotFound = 6

	// ExitInternal indicates internal errors (bugs, unexpected panics).
	// Exit code 10 signals "this is a bug that should be reported".
	ExitInternal = 10
)

// UserError represents an error with structured context for end users.
//
// It provides three levels of information:
//   - Message: what went wrong
//   - Cause: why it happened
//   - Fix: how to fix it
type UserError struct {
	Message string
	Cause   string
	Fix     string

	// ExitCode is used when the CLI exits because of this error.
	ExitCode int

	// Err is the underlying error, if any, exposed through Unwrap.
	Err error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *UserError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a configuration error with exit code ExitConfig.
//
// Example:
//
//	return NewConfigError(
//	    "Cannot load graphload configuration",
//	    "The config file .graphload/project.yaml is missing",
//	    "Run 'graphload init' to create a new configuration",
//	    nil,
//	)
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitConfig,
		Err:      err,
	}
}

// NewStoreError creates a graph store error with exit code ExitStore.
//
// Use this for failed transactions, wipe failures, and other errors the
// database reported after a session was established.
func NewStoreError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitStore,
		Err:      err,
	}
}

// NewConnectivityError creates a connection error with exit code ExitConnectivity.
//
// Example:
//
//	return NewConnectivityError(
//	    "Cannot connect to Neo4j",
//	    "Connection to neo4j://localhost:7687 refused",
//	    "Check that the database is running and NEO4J_URI is correct",
//	    err,
//	)
func NewConnectivityError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitConnectivity,
		Err:      err,
	}
}

// NewInputError creates an input validation error with exit code ExitInput.
// Input errors typically do not wrap an underlying error.
func NewInputError(msg, cause, fix string) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitInput,
	}
}

// NewPermissionError creates a permission denied error with exit code ExitPermission.
func NewPermissionError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitPermission,
		Err:      err,
	}
}

// NewNotFoundError creates a resource not found error with exit code ExitNotFound.
//
// Example:
//
//	return NewNotFoundError(
//	    "Report file not found",
//	    "No file exists at out/report.json",
//	    "Check the path or generate the report first",
//	)
func NewNotFoundError(msg, cause, fix string) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitNotFound,
	}
}

// NewInternalError creates an internal error with exit code ExitInternal.
// Internal errors indicate bugs and should be reported to the maintainers.
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitInternal,
		Err:      err,
	}
}

// Color definitions for error formatting.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display:
//
//	Error: Cannot connect to Neo4j
//	Cause: Connection to neo4j://localhost:7687 refused
//	Fix:   Check that the database is running
//
// Empty Cause or Fix lines are omitted. Color respects the NO_COLOR
// environment variable and the noColor parameter.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON is the machine-readable error shape used in --json mode.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to its JSON-serializable shape.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		ExitCode: e.ExitCode,
	}
}

// FatalError prints the error and exits with the appropriate code.
//
// If the error is a UserError it uses Format() for terminal output or
// ToJSON() in JSON mode; anything else prints a plain message and exits
// with ExitInternal. This function never returns for a non-nil error.
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}

	if ue, ok := err.(*UserError); ok {
		if jsonOutput {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			// Encoding failure is ignored: we are about to exit and the
			// exit code already carries the category.
			_ = enc.Encode(ue.ToJSON())
		} else {
			fmt.Fprint(os.Stderr, ue.Format(false))
		}
		os.Exit(ue.ExitCode)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ExitInternal)
}
