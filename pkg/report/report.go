// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report parses static code-analysis reports.
//
// A report is a JSON document with two keys: "nodes" (code elements) and
// "edges" (relationships between them). Each node carries an "id" and a
// "type" plus arbitrary scalar properties; each edge carries "sourceId",
// "targetId" and "type". The parser is strict about document structure and
// lenient about individual records: a document that is not an object with
// both arrays fails hard, while a single record missing a required field is
// reported and skipped so the rest of the import can proceed.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Record kinds used in rejection reports.
const (
	KindNode = "node"
	KindEdge = "edge"
)

// NodeRecord is one code element from the analysis report.
type NodeRecord struct {
	// ID is the globally unique merge key for the vertex.
	ID string

	// Type determines the dynamic label applied to the vertex, e.g.
	// "Class" or "Method".
	Type string

	// Properties holds the remaining fields of the record. Values are
	// scalars (string, number, boolean); anything structured in the input
	// has been flattened to its compact JSON text.
	Properties map[string]any
}

// EdgeRecord is one relationship from the analysis report.
type EdgeRecord struct {
	SourceID string
	TargetID string

	// Type determines the dynamic relationship type, e.g. "contains".
	Type string
}

// RejectedRecord describes a record that was dropped during parsing.
type RejectedRecord struct {
	// Kind is KindNode or KindEdge.
	Kind string `json:"kind"`

	// Index is the record's position within its array in the document.
	Index int `json:"index"`

	// Reason is a human-readable explanation.
	Reason string `json:"reason"`
}

// Report is the decoded analysis document: two ordered record sequences
// plus the records that failed structural checks.
type Report struct {
	Nodes    []NodeRecord
	Edges    []EdgeRecord
	Rejected []RejectedRecord
}

// MalformedInputError indicates the document itself is structurally
// invalid. It is fatal: nothing from such a document is imported.
type MalformedInputError struct {
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed input: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed input: %s", e.Reason)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Parse decodes an analysis document from r.
//
// Record order is preserved exactly as it appears in the document. Records
// missing required string fields are collected in Report.Rejected instead
// of aborting the parse.
func Parse(r io.Reader) (*Report, error) {
	var doc struct {
		Nodes json.RawMessage `json:"nodes"`
		Edges json.RawMessage `json:"edges"`
	}

	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, &MalformedInputError{Reason: "document is not a JSON object", Err: err}
	}
	// A key holding the literal null is present but still not an array;
	// RawMessage captures it as the bytes "null".
	if doc.Nodes == nil || isJSONNull(doc.Nodes) {
		return nil, &MalformedInputError{Reason: `document is missing the "nodes" array`}
	}
	if doc.Edges == nil || isJSONNull(doc.Edges) {
		return nil, &MalformedInputError{Reason: `document is missing the "edges" array`}
	}

	var rawNodes []map[string]any
	if err := json.Unmarshal(doc.Nodes, &rawNodes); err != nil {
		return nil, &MalformedInputError{Reason: `"nodes" is not an array of objects`, Err: err}
	}
	var rawEdges []map[string]any
	if err := json.Unmarshal(doc.Edges, &rawEdges); err != nil {
		return nil, &MalformedInputError{Reason: `"edges" is not an array of objects`, Err: err}
	}

	rep := &Report{}

	for i, raw := range rawNodes {
		id, ok := stringField(raw, "id")
		if !ok {
			rep.Rejected = append(rep.Rejected, RejectedRecord{
				Kind: KindNode, Index: i, Reason: `missing or non-string "id"`,
			})
			continue
		}
		typ, ok := stringField(raw, "type")
		if !ok {
			rep.Rejected = append(rep.Rejected, RejectedRecord{
				Kind: KindNode, Index: i, Reason: `missing or non-string "type"`,
			})
			continue
		}
		rep.Nodes = append(rep.Nodes, NodeRecord{
			ID:         id,
			Type:       typ,
			Properties: extractProperties(raw),
		})
	}

	for i, raw := range rawEdges {
		source, okS := stringField(raw, "sourceId")
		target, okT := stringField(raw, "targetId")
		typ, okY := stringField(raw, "type")
		if !okS || !okT || !okY {
			rep.Rejected = append(rep.Rejected, RejectedRecord{
				Kind: KindEdge, Index: i,
				Reason: `missing or non-string "sourceId", "targetId" or "type"`,
			})
			continue
		}
		rep.Edges = append(rep.Edges, EdgeRecord{
			SourceID: source,
			TargetID: target,
			Type:     typ,
		})
	}

	return rep, nil
}

// ParseFile opens and parses the analysis document at path.
func ParseFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func isJSONNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func stringField(raw map[string]any, key string) (string, bool) {
	v, ok := raw[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// extractProperties returns the record's fields minus the reserved keys,
// with every value coerced to a scalar. JSON nulls are dropped; nested
// arrays and objects are kept as compact JSON strings rather than being
// propagated as structure.
func extractProperties(raw map[string]any) map[string]any {
	props := make(map[string]any, len(raw))
	for key, value := range raw {
		switch key {
		case "id", "type", "sourceId", "targetId":
			continue
		}
		scalar, ok := coerceScalar(value)
		if !ok {
			continue
		}
		props[key] = scalar
	}
	return props
}

func coerceScalar(v any) (any, bool) {
	switch x := v.(type) {
	case string, bool, float64:
		return x, true
	case nil:
		return nil, false
	default:
		text, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		return string(text), true
	}
}
