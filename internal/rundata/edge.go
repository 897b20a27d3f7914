// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package rundata

import "strings"

const (
	// RootSymbol is the symbol of the synthetic root call.
	RootSymbol = "main()"
	// PrunedSymbol is the parent that edges of pruned parents are redirected to.
	PrunedSymbol = "__pruned__()"
	// ScriptPrefix prefixes the fake symbols created when aggregation keeps
	// page identity.
	ScriptPrefix = "__script::"

	edgeDelimiter = "==>"
)

// Edge identifies one parent/child call pair. An empty Parent denotes the
// root call.
type Edge struct {
	Parent string
	Child  string
}

// RootEdge is the key of the root entry.
var RootEdge = Edge{Child: RootSymbol}

// IsRoot reports whether the edge has no parent.
func (e Edge) IsRoot() bool {
	return e.Parent == ""
}

// String returns the raw data key, "parent==>child", or just the child for
// root edges.
func (e Edge) String() string {
	return EncodeEdge(e.Parent, e.Child)
}

// EncodeEdge composes the raw data key for a parent/child pair.
func EncodeEdge(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + edgeDelimiter + child
}

// DecodeEdge splits a raw data key into its parent and child.
func DecodeEdge(key string) Edge {
	parent, child, found := strings.Cut(key, edgeDelimiter)
	if !found {
		return Edge{Child: key}
	}
	return Edge{Parent: parent, Child: child}
}

// MarshalText encodes the edge as its raw data key, so a Profile marshals
// to a JSON object keyed like the stored raw data.
func (e Edge) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText decodes a raw data key.
func (e *Edge) UnmarshalText(text []byte) error {
	*e = DecodeEdge(string(text))
	return nil
}
