// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package rundata

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// rootNudge is added to the root metrics of a run aggregated with page
// identity so that main() sorts above its __script:: child.
const rootNudge = 0.00001

// AggregateResult is the weighted combination of several runs.
type AggregateResult struct {
	Profile     Profile
	BadRuns     []string // ids of runs that failed validation and were skipped
	Description string
}

// Aggregate combines runs into one normalized profile. Each run's metrics
// are multiplied by its weight (1 when weights is empty) and the sum is
// divided by the total weight, or by the number of valid runs when no
// weights are given.
//
// The aggregated metrics are those on the root of the first valid run,
// except peak memory usage, which is left out to keep the result small.
// Runs failing Validate are skipped and reported in BadRuns.
//
// With preserveScriptIdentity, every run that has a page gets a fake
// main() ==> __script::<page> edge carrying its root metrics, and the edges
// it called from main() are moved under the fake symbol.
func Aggregate(runs []Run, weights []float64, preserveScriptIdentity bool) (AggregateResult, error) {
	if len(runs) == 0 {
		return AggregateResult{}, errors.Wrap(ErrInvalidAggregationInput, "no runs to aggregate")
	}
	if len(weights) > 0 && len(weights) != len(runs) {
		return AggregateResult{}, errors.Wrapf(ErrInvalidAggregationInput, "%d weights given for %d runs", len(weights), len(runs))
	}
	var weightSum float64
	for i, w := range weights {
		if !(w > 0) || math.IsInf(w, 0) {
			return AggregateResult{}, errors.Wrapf(ErrInvalidAggregationInput, "weight %d must be a positive number, got %v", i+1, w)
		}
		weightSum += w
	}
	var metrics []Kind
	var badRuns []string
	validRuns := 0
	total := make(Profile)
	for i, run := range runs {
		if err := Validate(run.Profile); err != nil {
			slog.Warn("skipping invalid run", slog.String("run", run.ID), slog.String("error", err.Error()))
			badRuns = append(badRuns, run.ID)
			continue
		}
		if metrics == nil {
			metrics = aggregationMetrics(run.Profile)
		}
		raw := run.Profile
		if preserveScriptIdentity && run.Page != "" {
			raw = withScriptIdentity(raw, run.Page)
		}
		weight := 1.0
		if len(weights) > 0 {
			weight = weights[i]
		}
		for edge, info := range raw {
			acc, ok := total[edge]
			if !ok {
				acc = make(Metrics, len(metrics))
				total[edge] = acc
			}
			for _, kind := range metrics {
				acc[kind] += weight * info[kind]
			}
		}
		validRuns++
	}
	if validRuns == 0 {
		return AggregateResult{}, errors.Wrapf(ErrInvalidAggregationInput, "none of the %d runs is valid", len(runs))
	}
	normalization := float64(validRuns)
	if len(weights) > 0 {
		normalization = weightSum
	}
	for _, acc := range total {
		for kind := range acc {
			acc[kind] /= normalization
		}
	}
	return AggregateResult{
		Profile:     total,
		BadRuns:     badRuns,
		Description: aggregateDescription(runs, weights, validRuns),
	}, nil
}

// aggregationMetrics returns the active metrics of the profile without peak
// memory usage.
func aggregationMetrics(p Profile) []Kind {
	var metrics []Kind
	for _, kind := range ActiveMetrics(p) {
		if kind == PeakMemUsage {
			continue
		}
		metrics = append(metrics, kind)
	}
	return metrics
}

// withScriptIdentity returns a copy of the profile where main() calls a fake
// __script::<page> symbol that in turn calls everything main() used to call.
func withScriptIdentity(p Profile, page string) Profile {
	script := ScriptPrefix + page
	out := make(Profile, len(p)+1)
	for edge, info := range p {
		if edge.IsRoot() {
			continue
		}
		if edge.Parent == RootSymbol && edge.Child != script {
			edge = Edge{Parent: script, Child: edge.Child}
		}
		if existing, ok := out[edge]; ok {
			for kind, value := range info {
				existing[kind] += value
			}
			continue
		}
		out[edge] = info.Clone()
	}
	if root, ok := p.Root(); ok {
		nudged := make(Metrics, len(root))
		for kind, value := range root {
			nudged[kind] = value + rootNudge
		}
		out[RootEdge] = nudged
		out[Edge{Parent: RootSymbol, Child: script}] = root.Clone()
	}
	return out
}

func aggregateDescription(runs []Run, weights []float64, validRuns int) string {
	ids := make([]string, 0, len(runs))
	for _, run := range runs {
		ids = append(ids, run.ID)
	}
	var ratio string
	if len(weights) > 0 {
		parts := make([]string, 0, len(weights))
		for _, w := range weights {
			parts = append(parts, strconv.FormatFloat(w, 'f', -1, 64))
		}
		ratio = " in the ratio (" + strings.Join(parts, ":") + ")"
	}
	return fmt.Sprintf("Aggregated Report for %d runs: %s%s", validRuns, strings.Join(ids, ","), ratio)
}
