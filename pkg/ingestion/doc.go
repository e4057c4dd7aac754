// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ingestion implements the batched, idempotent graph import
// pipeline: it batches parsed report records, translates each batch into
// one transactional upsert against the store gateway, and enforces the
// ordering barrier between the node phase and the edge phase.
package ingestion
