// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package testing

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/graphload/pkg/report"
)

func TestSetupGateway(t *testing.T) {
	gw := SetupGateway(t)
	require.NotNil(t, gw)
	assert.Empty(t, gw.NodeIDs())
}

func TestSeedNodeAndEdge(t *testing.T) {
	gw := SetupGateway(t)

	SeedNode(t, gw, "Class", "class_1", map[string]any{"name": "UserService"})
	SeedNode(t, gw, "Method", "method_1", nil)
	SeedEdge(t, gw, "CONTAINS", "class_1", "method_1")

	assert.Equal(t, []string{"class_1", "method_1"}, gw.NodeIDs())
	assert.True(t, gw.HasEdge("class_1", "method_1", "CONTAINS"))
}

func TestSampleReport(t *testing.T) {
	rep := SampleReport()
	assert.Len(t, rep.Nodes, 3)
	assert.Len(t, rep.Edges, 2)
	assert.Empty(t, rep.Rejected)
}

func TestWriteReportFile(t *testing.T) {
	path := WriteReportFile(t,
		[]map[string]any{{"id": "a", "type": "class", "name": "A"}},
		[]map[string]any{{"sourceId": "a", "targetId": "a", "type": "self"}},
	)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rep, err := report.Parse(f)
	require.NoError(t, err)
	require.Len(t, rep.Nodes, 1)
	assert.Equal(t, "a", rep.Nodes[0].ID)
	assert.Len(t, rep.Edges, 1)
	assert.Empty(t, rep.Rejected)
}
