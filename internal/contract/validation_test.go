// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package contract

import "testing"

func TestMaxBatchRowsDefault(t *testing.T) {
	t.Setenv("GRAPHLOAD_MAX_BATCH_ROWS", "")
	if got := MaxBatchRows(); got != DefaultMaxBatchRows {
		t.Errorf("MaxBatchRows() = %d, want %d", got, DefaultMaxBatchRows)
	}
}

func TestMaxBatchRowsFromEnv(t *testing.T) {
	t.Setenv("GRAPHLOAD_MAX_BATCH_ROWS", "2500")
	if got := MaxBatchRows(); got != 2500 {
		t.Errorf("MaxBatchRows() = %d, want 2500", got)
	}
}

func TestMaxBatchRowsIgnoresInvalidEnv(t *testing.T) {
	for _, v := range []string{"not-a-number", "-5", "0"} {
		t.Setenv("GRAPHLOAD_MAX_BATCH_ROWS", v)
		if got := MaxBatchRows(); got != DefaultMaxBatchRows {
			t.Errorf("MaxBatchRows() with env %q = %d, want default %d", v, got, DefaultMaxBatchRows)
		}
	}
}

func TestSoftLimitBytesFromEnv(t *testing.T) {
	t.Setenv("GRAPHLOAD_SOFT_LIMIT_BYTES", "1024")
	if got := SoftLimitBytes(); got != 1024 {
		t.Errorf("SoftLimitBytes() = %d, want 1024", got)
	}
}

func TestValidateBatchSize(t *testing.T) {
	tests := []struct {
		size   int
		wantOK bool
	}{
		{1, true},
		{1000, true},
		{DefaultMaxBatchRows, true},
		{DefaultMaxBatchRows + 1, false},
		{0, false},
		{-1, false},
	}

	t.Setenv("GRAPHLOAD_MAX_BATCH_ROWS", "")
	for _, tt := range tests {
		result := ValidateBatchSize(tt.size)
		if result.OK != tt.wantOK {
			t.Errorf("ValidateBatchSize(%d).OK = %v, want %v (%s)", tt.size, result.OK, tt.wantOK, result.Message)
		}
	}
}

func TestValidateReportSize(t *testing.T) {
	t.Setenv("GRAPHLOAD_SOFT_LIMIT_BYTES", "100")

	if result := ValidateReportSize(99); !result.OK {
		t.Errorf("ValidateReportSize(99) should pass: %s", result.Message)
	}
	if result := ValidateReportSize(101); result.OK {
		t.Error("ValidateReportSize(101) should fail")
	}
}
