// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import "fmt"

// ConfigurationError indicates an invalid pipeline setting, such as a
// non-positive batch size.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// InvalidTypeNameError indicates a type token unusable as a label or
// relationship-type identifier. The record carrying it is skipped; the
// run continues.
type InvalidTypeNameError struct {
	Token string
}

func (e *InvalidTypeNameError) Error() string {
	return fmt.Sprintf("invalid type name %q: must match [A-Za-z_][A-Za-z0-9_]*", e.Token)
}

// DanglingReferenceError indicates an edge record referencing a vertex
// that does not exist. The record is skipped; the run continues.
type DanglingReferenceError struct {
	SourceID string
	TargetID string
	Type     string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling reference: (%s)-[:%s]->(%s) has a missing endpoint",
		e.SourceID, e.Type, e.TargetID)
}
