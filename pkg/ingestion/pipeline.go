// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/kraklabs/graphload/pkg/report"
	"github.com/kraklabs/graphload/pkg/store"
)

// Stage names used in events, logs and results.
const (
	StageWipe  = "wipe"
	StageNodes = "nodes"
	StageEdges = "edges"
)

// pipelineState tracks where a run is; mostly useful in logs when a run
// dies half way.
type pipelineState int

const (
	stateIdle pipelineState = iota
	stateWiping
	stateNodeImporting
	stateEdgeImporting
	stateDone
	stateFailed
)

func (s pipelineState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateWiping:
		return "wiping"
	case stateNodeImporting:
		return "node-importing"
	case stateEdgeImporting:
		return "edge-importing"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Config controls a pipeline run.
type Config struct {
	// ProjectID tags log lines and the run ID. Optional.
	ProjectID string

	// BatchSize is the number of records per store transaction.
	BatchSize int

	// Clear wipes the whole graph before importing.
	Clear bool

	// FailureTolerance is the number of failed batch transactions
	// tolerated before the run aborts. Zero means the first failure is
	// fatal.
	FailureTolerance int
}

// BatchEvent describes one committed (or failed) batch.
type BatchEvent struct {
	Stage     string
	Index     int
	Attempted int
	Merged    int
	Rejected  []Rejection
	Err       error
}

// EventSink receives pipeline progress. Calls are synchronous and made
// from the importing goroutine; a slow sink slows the import.
type EventSink interface {
	StageStarted(stage string, total int)
	BatchCompleted(event BatchEvent)
}

// nopSink is used when the caller passes a nil sink.
type nopSink struct{}

func (nopSink) StageStarted(string, int) {}
func (nopSink) BatchCompleted(BatchEvent) {}

// StageReport summarizes one stage of a run.
type StageReport struct {
	Batches  int           `json:"batches"`
	Merged   int           `json:"merged"`
	Rejected []Rejection   `json:"rejected,omitempty"`
	Failed   int           `json:"failed_batches,omitempty"`
	Duration time.Duration `json:"duration"`
}

// ImportResult is the outcome of a full pipeline run.
type ImportResult struct {
	RunID    string        `json:"run_id"`
	Wiped    bool          `json:"wiped"`
	Nodes    StageReport   `json:"nodes"`
	Edges    StageReport   `json:"edges"`
	Duration time.Duration `json:"duration"`
}

// TotalRejected is the number of records dropped across both stages.
func (r *ImportResult) TotalRejected() int {
	return len(r.Nodes.Rejected) + len(r.Edges.Rejected)
}

// Pipeline drives a full import: optional wipe, then every node batch,
// then every edge batch. Single writer; no internal concurrency.
type Pipeline struct {
	cfg     Config
	gateway store.Gateway
	engine  *Engine
	logger  *slog.Logger
	sink    EventSink

	state pipelineState
}

// NewPipeline wires a pipeline. sink may be nil.
func NewPipeline(cfg Config, gateway store.Gateway, logger *slog.Logger, sink EventSink) (*Pipeline, error) {
	if cfg.BatchSize < 1 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("batch size must be positive, got %d", cfg.BatchSize)}
	}
	if cfg.FailureTolerance < 0 {
		return nil, &ConfigurationError{Reason: "failure tolerance must not be negative"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = nopSink{}
	}
	impMetrics.init()
	return &Pipeline{
		cfg:     cfg,
		gateway: gateway,
		engine:  NewEngine(gateway, logger),
		logger:  logger,
		sink:    sink,
		state:   stateIdle,
	}, nil
}

// generateRunID derives a deterministic run ID for log correlation.
func (p *Pipeline) generateRunID(startTime time.Time) string {
	roundedTime := startTime.Truncate(time.Second)
	baseID := fmt.Sprintf("run-%s-%d", p.cfg.ProjectID, roundedTime.Unix())
	hash := sha256.Sum256([]byte(baseID))
	return hex.EncodeToString(hash[:16])
}

// Run imports the report. The node phase commits fully before the first
// edge batch is sent, so every edge either finds both endpoints or is a
// genuine dangling reference in the input.
func (p *Pipeline) Run(ctx context.Context, rep *report.Report) (*ImportResult, error) {
	startTime := time.Now()
	result := &ImportResult{RunID: p.generateRunID(startTime)}

	p.logger.Info("import.start",
		"run_id", result.RunID,
		"project_id", p.cfg.ProjectID,
		"nodes", len(rep.Nodes),
		"edges", len(rep.Edges),
		"batch_size", p.cfg.BatchSize,
		"clear", p.cfg.Clear,
	)

	if err := p.gateway.VerifyConnectivity(ctx); err != nil {
		p.state = stateFailed
		return result, err
	}

	// Structural rejections found during parsing count against the run
	// like any merge-time rejection.
	for _, rej := range rep.Rejected {
		r := Rejection{Kind: rej.Kind, Ref: fmt.Sprintf("#%d", rej.Index), Reason: rej.Reason}
		if rej.Kind == report.KindNode {
			result.Nodes.Rejected = append(result.Nodes.Rejected, r)
		} else {
			result.Edges.Rejected = append(result.Edges.Rejected, r)
		}
	}

	if p.cfg.Clear {
		p.state = stateWiping
		p.sink.StageStarted(StageWipe, 1)
		p.logger.Info("import.wipe", "run_id", result.RunID)
		if err := p.gateway.WipeAll(ctx); err != nil {
			p.state = stateFailed
			return result, err
		}
		impMetrics.wipes.Inc()
		result.Wiped = true
	}

	if labels := NodeLabels(rep.Nodes); len(labels) > 0 {
		// Advisory only: an unlabeled MERGE cannot rely on a per-label
		// constraint, so a failure here never stops the run.
		if err := p.gateway.EnsureConstraints(ctx, labels); err != nil {
			p.logger.Warn("import.constraints.skipped", "run_id", result.RunID, "error", err)
		}
	}

	p.state = stateNodeImporting
	nodeStart := time.Now()
	if err := p.runNodeStage(ctx, result, rep.Nodes); err != nil {
		p.state = stateFailed
		return result, err
	}
	result.Nodes.Duration = time.Since(nodeStart)
	impMetrics.nodePhaseDuration.Observe(result.Nodes.Duration.Seconds())

	p.state = stateEdgeImporting
	edgeStart := time.Now()
	if err := p.runEdgeStage(ctx, result, rep.Edges); err != nil {
		p.state = stateFailed
		return result, err
	}
	result.Edges.Duration = time.Since(edgeStart)
	impMetrics.edgePhaseDuration.Observe(result.Edges.Duration.Seconds())

	p.state = stateDone
	result.Duration = time.Since(startTime)
	impMetrics.totalDuration.Observe(result.Duration.Seconds())

	p.logger.Info("import.done",
		"run_id", result.RunID,
		"nodes_merged", result.Nodes.Merged,
		"edges_merged", result.Edges.Merged,
		"rejected", result.TotalRejected(),
		"duration", result.Duration.Round(time.Millisecond).String(),
	)
	return result, nil
}

func (p *Pipeline) runNodeStage(ctx context.Context, result *ImportResult, records []report.NodeRecord) error {
	batches, err := Batch(records, p.cfg.BatchSize)
	if err != nil {
		return err
	}
	p.sink.StageStarted(StageNodes, len(records))

	var failures int
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return err
		}
		merged, err := p.commitNodeBatch(ctx, result, i, batch)
		if err != nil {
			failures++
			impMetrics.batchesFailed.Inc()
			p.logger.Error("import.batch.failed",
				"stage", StageNodes, "batch", i, "failures", failures, "error", err)
			if failures > p.cfg.FailureTolerance {
				return err
			}
			continue
		}
		result.Nodes.Batches++
		result.Nodes.Merged += merged
		impMetrics.batchesSent.Inc()
	}
	return nil
}

func (p *Pipeline) commitNodeBatch(ctx context.Context, result *ImportResult, index int, batch []report.NodeRecord) (int, error) {
	res, err := p.engine.MergeNodes(ctx, batch)
	result.Nodes.Rejected = append(result.Nodes.Rejected, res.Rejected...)
	impMetrics.nodesMerged.Add(float64(res.Merged))
	impMetrics.nodesRejected.Add(float64(len(res.Rejected)))
	p.sink.BatchCompleted(BatchEvent{
		Stage:     StageNodes,
		Index:     index,
		Attempted: len(batch),
		Merged:    res.Merged,
		Rejected:  res.Rejected,
		Err:       err,
	})
	if err != nil {
		result.Nodes.Failed++
		return res.Merged, err
	}
	return res.Merged, nil
}

func (p *Pipeline) runEdgeStage(ctx context.Context, result *ImportResult, records []report.EdgeRecord) error {
	batches, err := Batch(records, p.cfg.BatchSize)
	if err != nil {
		return err
	}
	p.sink.StageStarted(StageEdges, len(records))

	var failures int
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return err
		}
		merged, err := p.commitEdgeBatch(ctx, result, i, batch)
		if err != nil {
			failures++
			impMetrics.batchesFailed.Inc()
			p.logger.Error("import.batch.failed",
				"stage", StageEdges, "batch", i, "failures", failures, "error", err)
			if failures > p.cfg.FailureTolerance {
				return err
			}
			continue
		}
		result.Edges.Batches++
		result.Edges.Merged += merged
		impMetrics.batchesSent.Inc()
	}
	return nil
}

func (p *Pipeline) commitEdgeBatch(ctx context.Context, result *ImportResult, index int, batch []report.EdgeRecord) (int, error) {
	res, err := p.engine.MergeEdges(ctx, batch)
	result.Edges.Rejected = append(result.Edges.Rejected, res.Rejected...)
	impMetrics.edgesMerged.Add(float64(res.Merged))
	impMetrics.edgesRejected.Add(float64(len(res.Rejected)))
	p.sink.BatchCompleted(BatchEvent{
		Stage:     StageEdges,
		Index:     index,
		Attempted: len(batch),
		Merged:    res.Merged,
		Rejected:  res.Rejected,
		Err:       err,
	})
	if err != nil {
		result.Edges.Failed++
		return res.Merged, err
	}
	return res.Merged, nil
}
