// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package contract

import (
	"os"
	"strconv"
)

const (
	// DefaultMaxBatchRows caps rows per store transaction. Batches much
	// larger than this make the Neo4j transaction memory footprint hard
	// to predict.
	DefaultMaxBatchRows = 50_000

	// DefaultSoftLimitBytes is the baseline soft limit for report files.
	DefaultSoftLimitBytes = 256 << 20 // 256 MiB
)

// MaxBatchRows returns the effective upper bound for --batch-size.
// Controlled via env GRAPHLOAD_MAX_BATCH_ROWS; falls back to
// DefaultMaxBatchRows.
func MaxBatchRows() int {
	if v := os.Getenv("GRAPHLOAD_MAX_BATCH_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultMaxBatchRows
}

// SoftLimitBytes returns the effective soft limit for report file size.
// Controlled via env GRAPHLOAD_SOFT_LIMIT_BYTES; falls back to
// DefaultSoftLimitBytes.
func SoftLimitBytes() int64 {
	if v := os.Getenv("GRAPHLOAD_SOFT_LIMIT_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return DefaultSoftLimitBytes
}

// ValidationResult represents the result of a validation check.
type ValidationResult struct {
	OK      bool
	Message string
}

// ValidateBatchSize checks a requested batch size against the limits.
func ValidateBatchSize(size int) *ValidationResult {
	if size < 1 {
		return &ValidationResult{Message: "batch size must be positive"}
	}
	if size > MaxBatchRows() {
		return &ValidationResult{Message: "batch size exceeds maximum"}
	}
	return &ValidationResult{OK: true}
}

// ValidateReportSize checks a report file size against the soft limit.
func ValidateReportSize(bytes int64) *ValidationResult {
	if bytes > SoftLimitBytes() {
		return &ValidationResult{
			Message: "report file exceeds soft limit",
		}
	}
	return &ValidationResult{OK: true}
}
