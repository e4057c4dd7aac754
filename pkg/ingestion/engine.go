// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kraklabs/graphload/pkg/report"
	"github.com/kraklabs/graphload/pkg/store"
)

// typeTokenPattern is the identifier shape accepted for labels and
// relationship types. Tokens come from untrusted input and end up inside
// Cypher text, so anything else is rejected rather than sanitized.
var typeTokenPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NormalizeLabel validates a node type token and returns the label form:
// first rune upper-cased, rest unchanged ("method" -> "Method").
func NormalizeLabel(token string) (string, error) {
	token = strings.TrimSpace(token)
	if !typeTokenPattern.MatchString(token) {
		return "", &InvalidTypeNameError{Token: token}
	}
	first, width := utf8.DecodeRuneInString(token)
	return string(unicode.ToUpper(first)) + token[width:], nil
}

// NormalizeRelType validates an edge type token and returns the
// relationship-type form: upper-cased ("contains" -> "CONTAINS").
func NormalizeRelType(token string) (string, error) {
	token = strings.TrimSpace(token)
	if !typeTokenPattern.MatchString(token) {
		return "", &InvalidTypeNameError{Token: token}
	}
	return strings.ToUpper(token), nil
}

// Rejection records one dropped record and why.
type Rejection struct {
	// Kind is report.KindNode or report.KindEdge.
	Kind string `json:"kind"`

	// Ref identifies the record: the node id, or "source->target" for
	// an edge.
	Ref string `json:"ref"`

	Reason string `json:"reason"`
}

// NodeMergeResult reports the outcome of one node batch.
type NodeMergeResult struct {
	Merged   int
	Rejected []Rejection
}

// EdgeMergeResult reports the outcome of one edge batch.
type EdgeMergeResult struct {
	Merged   int
	Rejected []Rejection
}

// Engine translates record batches into idempotent store operations. It
// owns type-token validation and normalization; the gateway only ever
// sees tokens that already passed NormalizeLabel/NormalizeRelType.
type Engine struct {
	gateway store.Gateway
	logger  *slog.Logger

	// seenLabels tracks the first label applied per id in this run so a
	// conflicting re-type can be flagged. Labels still accumulate.
	seenLabels map[string]string
}

// NewEngine creates an Engine writing through the given gateway.
func NewEngine(gateway store.Gateway, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		gateway:    gateway,
		logger:     logger,
		seenLabels: make(map[string]string),
	}
}

// MergeNodes applies one batch of node records. Records with an invalid
// id or type token are rejected individually; valid records are grouped
// by normalized label and the whole batch is upserted in one gateway
// transaction, so a transaction failure commits none of its groups. A
// record's label and properties are applied together as one unit.
func (e *Engine) MergeNodes(ctx context.Context, batch []report.NodeRecord) (NodeMergeResult, error) {
	var result NodeMergeResult

	byLabel := make(map[string]int)
	var groups []store.NodeGroup

	for _, rec := range batch {
		if rec.ID == "" {
			result.Rejected = append(result.Rejected, Rejection{
				Kind: report.KindNode, Ref: rec.ID, Reason: "empty id",
			})
			continue
		}
		label, err := NormalizeLabel(rec.Type)
		if err != nil {
			result.Rejected = append(result.Rejected, Rejection{
				Kind: report.KindNode, Ref: rec.ID, Reason: err.Error(),
			})
			continue
		}

		if prev, ok := e.seenLabels[rec.ID]; ok {
			if prev != label {
				e.logger.Warn("node.retyped", "id", rec.ID, "label", label, "previous", prev)
			}
		} else {
			e.seenLabels[rec.ID] = label
		}

		i, ok := byLabel[label]
		if !ok {
			i = len(groups)
			byLabel[label] = i
			groups = append(groups, store.NodeGroup{Label: label})
		}
		groups[i].Rows = append(groups[i].Rows, store.NodeRow{ID: rec.ID, Props: rec.Properties})
	}

	if len(groups) == 0 {
		return result, nil
	}
	merged, err := e.gateway.UpsertNodes(ctx, groups)
	if err != nil {
		return result, err
	}
	result.Merged = merged
	return result, nil
}

// MergeEdges applies one batch of edge records. Records with an invalid
// type token or a missing endpoint are rejected individually; neither
// aborts the rest of the batch. The batch's type groups are upserted in
// one gateway transaction.
func (e *Engine) MergeEdges(ctx context.Context, batch []report.EdgeRecord) (EdgeMergeResult, error) {
	var result EdgeMergeResult

	byType := make(map[string]int)
	var groups []store.EdgeGroup

	for _, rec := range batch {
		if rec.SourceID == "" || rec.TargetID == "" {
			result.Rejected = append(result.Rejected, Rejection{
				Kind: report.KindEdge, Ref: edgeRef(rec.SourceID, rec.TargetID), Reason: "empty endpoint id",
			})
			continue
		}
		relType, err := NormalizeRelType(rec.Type)
		if err != nil {
			result.Rejected = append(result.Rejected, Rejection{
				Kind: report.KindEdge, Ref: edgeRef(rec.SourceID, rec.TargetID), Reason: err.Error(),
			})
			continue
		}

		i, ok := byType[relType]
		if !ok {
			i = len(groups)
			byType[relType] = i
			groups = append(groups, store.EdgeGroup{RelType: relType})
		}
		groups[i].Rows = append(groups[i].Rows, store.EdgeRow{SourceID: rec.SourceID, TargetID: rec.TargetID})
	}

	if len(groups) == 0 {
		return result, nil
	}
	res, err := e.gateway.UpsertEdges(ctx, groups)
	if err != nil {
		return result, err
	}
	result.Merged = res.Merged
	for _, ref := range res.Dangling {
		dangling := &DanglingReferenceError{
			SourceID: ref.SourceID,
			TargetID: ref.TargetID,
			Type:     ref.RelType,
		}
		result.Rejected = append(result.Rejected, Rejection{
			Kind: report.KindEdge, Ref: edgeRef(ref.SourceID, ref.TargetID), Reason: dangling.Error(),
		})
	}
	return result, nil
}

// NodeLabels returns the normalized labels present in the given records,
// in first-seen order, skipping invalid tokens. Used to create advisory
// id constraints before the node phase.
func NodeLabels(records []report.NodeRecord) []string {
	seen := make(map[string]struct{})
	var labels []string
	for _, rec := range records {
		label, err := NormalizeLabel(rec.Type)
		if err != nil {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels
}

func edgeRef(sourceID, targetID string) string {
	return sourceID + "->" + targetID
}
