// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package rundata

import (
	"log/slog"

	"github.com/pkg/errors"
)

// Prune drops the edges of every symbol whose inclusive wall time (or
// samples, when wall time is not recorded) accounts for less than percent of
// the run total.
//
// A child can survive while one of its parents is pruned. Its edge from that
// parent is then moved to the special parent __pruned__(), merging with any
// edge already there, so the child keeps its full cost.
func Prune(p Profile, percent float64) (Profile, error) {
	root, ok := p.Root()
	if !ok {
		return nil, errors.Wrapf(ErrCorruptProfile, "%s missing in raw data", RootSymbol)
	}
	metric, ok := primaryMetric(root)
	if !ok {
		return nil, errors.Wrapf(ErrCorruptProfile, "for %s we must have either %s or %s set", RootSymbol, WallTime, SampleCount)
	}
	threshold := root[metric] * percent / 100.0
	flat, err := Inclusive(p)
	if err != nil {
		return nil, err
	}
	out := make(Profile, len(p))
	merge := func(edge Edge, info Metrics) {
		existing, ok := out[edge]
		if !ok {
			out[edge] = info.Clone()
			return
		}
		for kind := range root {
			existing[kind] += info[kind]
		}
	}
	dropped, redirected := 0, 0
	for _, edge := range p.Edges() {
		info := p[edge]
		// is this child's overall total from all parents less than threshold?
		if flat[edge.Child][metric] < threshold {
			dropped++
			continue
		}
		if !edge.IsRoot() && edge.Parent != PrunedSymbol && flat[edge.Parent][metric] < threshold {
			redirected++
			merge(Edge{Parent: PrunedSymbol, Child: edge.Child}, info)
			continue
		}
		merge(edge, info)
	}
	slog.Debug("pruned raw data", slog.Float64("percent", percent), slog.Int("dropped", dropped), slog.Int("redirected", redirected))
	return out, nil
}
