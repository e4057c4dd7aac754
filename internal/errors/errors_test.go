// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package errors

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestUserError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *UserError
		want string
	}{
		{
			name: "with underlying error",
			err: &UserError{
				Message: "Cannot connect to Neo4j",
				Err:     fmt.Errorf("connection refused"),
			},
			want: "Cannot connect to Neo4j: connection refused",
		},
		{
			name: "without underlying error",
			err:  &UserError{Message: "Invalid report"},
			want: "Invalid report",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("UserError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		exitCode int
		want     int
	}{
		{"ExitSuccess", ExitSuccess, 0},
		{"ExitConfig", ExitConfig, 1},
		{"ExitStore", ExitStore, 2},
		{"ExitConnectivity", ExitConnectivity, 3},
		{"ExitInput", ExitInput, 4},
		{"ExitPermission", ExitPermission, 5},
		{"ExitNotFound", ExitNotFound, 6},
		{"ExitInternal", ExitInternal, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.exitCode != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.exitCode, tt.want)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	underlyingErr := fmt.Errorf("underlying error")

	tests := []struct {
		name         string
		constructor  func() *UserError
		wantExitCode int
		wantHasErr   bool
	}{
		{
			name: "NewConfigError",
			constructor: func() *UserError {
				return NewConfigError("msg", "cause", "fix", underlyingErr)
			},
			wantExitCode: ExitConfig,
			wantHasErr:   true,
		},
		{
			name: "NewStoreError",
			constructor: func() *UserError {
				return NewStoreError("msg", "cause", "fix", underlyingErr)
			},
			wantExitCode: ExitStore,
			wantHasErr:   true,
		},
		{
			name: "NewConnectivityError",
			constructor: func() *UserError {
				return NewConnectivityError("msg", "cause", "fix", underlyingErr)
			},
			wantExitCode: ExitConnectivity,
			wantHasErr:   true,
		},
		{
			name: "NewInputError",
			constructor: func() *UserError {
				return NewInputError("msg", "cause", "fix")
			},
			wantExitCode: ExitInput,
		},
		{
			name: "NewPermissionError",
			constructor: func() *UserError {
				return NewPermissionError("msg", "cause", "fix", underlyingErr)
			},
			wantExitCode: ExitPermission,
			wantHasErr:   true,
		},
		{
			name: "NewNotFoundError",
			constructor: func() *UserError {
				return NewNotFoundError("msg", "cause", "fix")
			},
			wantExitCode: ExitNotFound,
		},
		{
			name: "NewInternalError",
			constructor: func() *UserError {
				return NewInternalError("msg", "cause", "fix", underlyingErr)
			},
			wantExitCode: ExitInternal,
			wantHasErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.constructor()

			if got.Message != "msg" || got.Cause != "cause" || got.Fix != "fix" {
				t.Errorf("fields = (%q, %q, %q), want (msg, cause, fix)", got.Message, got.Cause, got.Fix)
			}
			if got.ExitCode != tt.wantExitCode {
				t.Errorf("ExitCode = %d, want %d", got.ExitCode, tt.wantExitCode)
			}
			if hasErr := got.Err != nil; hasErr != tt.wantHasErr {
				t.Errorf("has underlying error = %v, want %v", hasErr, tt.wantHasErr)
			}
		})
	}
}

func TestErrorChain(t *testing.T) {
	t.Run("errors.Is finds wrapped sentinel", func(t *testing.T) {
		sentinel := fmt.Errorf("sentinel error")
		wrapped := fmt.Errorf("wrapped: %w", sentinel)
		userErr := NewStoreError("store error", "cause", "fix", wrapped)

		if !errors.Is(userErr, sentinel) {
			t.Error("errors.Is should find sentinel error in chain")
		}
	})

	t.Run("errors.As extracts outermost UserError", func(t *testing.T) {
		inner := NewConfigError("config error", "cause", "fix", nil)
		outer := NewStoreError("store error", "cause", "fix", inner)

		var target *UserError
		if !errors.As(outer, &target) {
			t.Fatal("errors.As should extract UserError")
		}
		if target.ExitCode != ExitStore {
			t.Errorf("ExitCode = %d, want %d", target.ExitCode, ExitStore)
		}
	})
}

func TestUserError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *UserError
		want []string
	}{
		{
			name: "full error",
			err: &UserError{
				Message: "Cannot connect to Neo4j",
				Cause:   "Connection to neo4j://localhost:7687 refused",
				Fix:     "Start the database",
			},
			want: []string{
				"Error: Cannot connect to Neo4j",
				"Cause: Connection to neo4j://localhost:7687 refused",
				"Fix:   Start the database",
			},
		},
		{
			name: "message only",
			err:  &UserError{Message: "Something failed"},
			want: []string{"Error: Something failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Format(true)
			for _, substr := range tt.want {
				if !strings.Contains(got, substr) {
					t.Errorf("Format() output missing %q\nGot: %s", substr, got)
				}
			}
			if tt.err.Cause == "" && strings.Contains(got, "Cause:") {
				t.Error("Format() should omit empty Cause line")
			}
		})
	}
}

func TestUserError_Format_NoColorEnv(t *testing.T) {
	oldNoColor := os.Getenv("NO_COLOR")
	defer func() {
		if oldNoColor != "" {
			os.Setenv("NO_COLOR", oldNoColor)
		} else {
			os.Unsetenv("NO_COLOR")
		}
	}()

	os.Setenv("NO_COLOR", "1")
	output := (&UserError{Message: "x", Cause: "y", Fix: "z"}).Format(false)
	if strings.Contains(output, "\x1b[") {
		t.Error("Format() output contains ANSI codes despite NO_COLOR being set")
	}
}

func TestUserError_ToJSON(t *testing.T) {
	err := &UserError{
		Message:  "Malformed report",
		Cause:    "nodes is not an array",
		Fix:      "Regenerate the report",
		ExitCode: ExitInput,
	}
	got := err.ToJSON()

	if got.Error != err.Message || got.Cause != err.Cause || got.Fix != err.Fix {
		t.Errorf("ToJSON() = %+v, want fields from %+v", got, err)
	}
	if got.ExitCode != ExitInput {
		t.Errorf("ToJSON().ExitCode = %d, want %d", got.ExitCode, ExitInput)
	}
}

func TestFatalError_NilIsNoop(t *testing.T) {
	// Must not exit or panic.
	FatalError(nil, false)
	FatalError(nil, true)
}
