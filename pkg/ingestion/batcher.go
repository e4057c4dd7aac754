// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import "fmt"

// Batch splits items into ordered chunks of at most size elements. Every
// chunk except possibly the last has exactly size elements; concatenating
// the chunks in order reconstructs items exactly. Chunks are subslices of
// items, so no element is copied.
//
// A size below 1 fails with a *ConfigurationError.
func Batch[T any](items []T, size int) ([][]T, error) {
	if size < 1 {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("batch size must be a positive integer, got %d", size),
		}
	}
	if len(items) == 0 {
		return nil, nil
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks, nil
}
