// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package contract provides validation constants and limits for graphload.
//
// Batch sizes and report file sizes are bounded to keep the Neo4j
// transaction memory footprint predictable. The limits are soft and
// tunable via environment variables:
//
//	export GRAPHLOAD_MAX_BATCH_ROWS=10000
//	export GRAPHLOAD_SOFT_LIMIT_BYTES=134217728  # 128 MiB
//
// If a variable is unset or invalid, the package defaults apply
// (DefaultMaxBatchRows, DefaultSoftLimitBytes).
package contract
