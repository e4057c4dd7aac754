// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsImport holds Prometheus metrics for the import pipeline.
type metricsImport struct {
	once sync.Once

	nodesMerged   prometheus.Counter
	edgesMerged   prometheus.Counter
	nodesRejected prometheus.Counter
	edgesRejected prometheus.Counter

	batchesSent   prometheus.Counter
	batchesFailed prometheus.Counter
	wipes         prometheus.Counter

	nodePhaseDuration prometheus.Histogram
	edgePhaseDuration prometheus.Histogram
	totalDuration     prometheus.Histogram
}

var impMetrics metricsImport

func (m *metricsImport) init() {
	m.once.Do(func() {
		m.nodesMerged = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphload_nodes_merged_total", Help: "Vertices merged into the graph"})
		m.edgesMerged = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphload_edges_merged_total", Help: "Relationships merged into the graph"})
		m.nodesRejected = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphload_nodes_rejected_total", Help: "Node records rejected during import"})
		m.edgesRejected = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphload_edges_rejected_total", Help: "Edge records rejected during import"})

		m.batchesSent = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphload_batches_sent_total", Help: "Batches committed to the store"})
		m.batchesFailed = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphload_batches_failed_total", Help: "Batches whose transaction failed"})
		m.wipes = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphload_wipes_total", Help: "Explicit clear-before-import wipes"})

		buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}
		m.nodePhaseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "graphload_node_phase_seconds", Help: "Duration of the node import phase", Buckets: buckets})
		m.edgePhaseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "graphload_edge_phase_seconds", Help: "Duration of the edge import phase", Buckets: buckets})
		m.totalDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "graphload_import_seconds", Help: "Total import duration", Buckets: buckets})

		prometheus.MustRegister(
			m.nodesMerged, m.edgesMerged, m.nodesRejected, m.edgesRejected,
			m.batchesSent, m.batchesFailed, m.wipes,
			m.nodePhaseDuration, m.edgePhaseDuration, m.totalDuration,
		)
	})
}
