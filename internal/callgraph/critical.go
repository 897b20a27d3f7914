// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package callgraph

import (
	"math"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/Rarst/sideface/internal/rundata"
)

// Path is the critical path of a run: the symbols on it, main() excluded,
// and the edges between them.
type Path struct {
	Nodes mapset.Set[string]
	Edges mapset.Set[rundata.Edge]
}

// CriticalPath walks down from main(), always following the unvisited child
// with the largest absolute metric value on its edge. Ties go to the child
// whose edge sorts first.
func CriticalPath(p rundata.Profile, metric rundata.Kind) Path {
	path := Path{
		Nodes: mapset.NewThreadUnsafeSet[string](),
		Edges: mapset.NewThreadUnsafeSet[rundata.Edge](),
	}
	children := make(map[string][]rundata.Edge)
	for _, edge := range p.Edges() {
		if edge.IsRoot() {
			continue
		}
		children[edge.Parent] = append(children[edge.Parent], edge)
	}
	visited := mapset.NewThreadUnsafeSet[string]()
	node := rundata.RootSymbol
	for {
		visited.Add(node)
		var next *rundata.Edge
		for _, edge := range children[node] {
			if visited.Contains(edge.Child) {
				continue
			}
			if next == nil || math.Abs(p[edge][metric]) > math.Abs(p[*next][metric]) {
				next = &edge
			}
		}
		if next == nil {
			return path
		}
		path.Nodes.Add(next.Child)
		path.Edges.Add(*next)
		node = next.Child
	}
}
