// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"testing"

	"github.com/fatih/color"
)

func TestInitColors(t *testing.T) {
	original := color.NoColor
	defer func() { color.NoColor = original }()

	InitColors(true)
	if !color.NoColor {
		t.Error("InitColors(true) should disable colors")
	}
	InitColors(false)
	if color.NoColor {
		t.Error("InitColors(false) should enable colors")
	}
}

func TestInlineHelpers(t *testing.T) {
	original := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = original }()

	if got := Label("Database:"); got != "Database:" {
		t.Errorf("Label() = %q, expected %q", got, "Database:")
	}
	if got := DimText(".graphload/lastrun.json"); got != ".graphload/lastrun.json" {
		t.Errorf("DimText() = %q", got)
	}
	if got := CountText(42); got != "42" {
		t.Errorf("CountText(42) = %q, expected %q", got, "42")
	}
	if got := CountText(0); got != "0" {
		t.Errorf("CountText(0) = %q, expected %q", got, "0")
	}
}

func TestMessageFunctions(t *testing.T) {
	original := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = original }()

	// These write to stdout; the test just verifies none of them panic.
	Success("imported")
	Successf("imported %d nodes", 42)
	Warning("rejected records")
	Warningf("%d edges rejected", 3)
	Error("import failed")
	Errorf("batch %d failed", 7)
	Info("connecting")
	Infof("batch size %d", 1000)
	Header("Graph Status")
	SubHeader("Last run:")
}
