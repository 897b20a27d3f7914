// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pprofimport converts pprof profiles into run profiles.
package pprofimport

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/pprof/profile"
	"github.com/pkg/errors"

	"github.com/Rarst/sideface/internal/rundata"
)

// conversion converts the values of one pprof sample type to the unit of
// the metric it feeds.
type conversion struct {
	kind       rundata.Kind
	multiplier float64
	divisor    float64
}

func (c conversion) apply(v int64) float64 {
	return float64(v) * c.multiplier / c.divisor
}

// valueKind maps a pprof sample type to a metric. Times are converted to
// microseconds.
func valueKind(st *profile.ValueType) (conversion, bool) {
	c := conversion{multiplier: 1, divisor: 1}
	timed := true
	switch st.Unit {
	case "count", "bytes":
		timed = false
	case "microseconds":
	case "nanoseconds":
		c.divisor = 1000
	case "milliseconds":
		c.multiplier = 1000
	case "seconds":
		c.multiplier = 1000000
	default:
		return c, false
	}
	switch {
	case st.Type == "samples" && st.Unit == "count":
		c.kind = rundata.SampleCount
	case st.Type == "cpu" && timed:
		c.kind = rundata.CPUTime
	case st.Type == "wall" && timed:
		c.kind = rundata.WallTime
	case (st.Type == "inuse_space" || st.Type == "alloc_space") && st.Unit == "bytes":
		c.kind = rundata.MemUsage
	default:
		return c, false
	}
	return c, true
}

// Read parses a pprof profile, gzipped or not, and converts it.
func Read(r io.Reader) (rundata.Profile, error) {
	prof, err := profile.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse pprof profile")
	}
	return Convert(prof)
}

// Convert builds a run profile from the samples of a pprof profile. Every
// stack is hung under main(), each sample's values are added to all edges of
// its stack, and inlined frames become calls of their own. A symbol seen
// again further down the same stack is renamed symbol@1, symbol@2 and so on
// so the result has no recursive edges.
func Convert(prof *profile.Profile) (rundata.Profile, error) {
	type column struct {
		conversion
		index int
	}
	var columns []column
	seen := make(map[rundata.Kind]bool)
	for i, st := range prof.SampleType {
		c, ok := valueKind(st)
		if !ok || seen[c.kind] {
			slog.Debug("skipping pprof sample type", slog.String("type", st.Type), slog.String("unit", st.Unit))
			continue
		}
		seen[c.kind] = true
		columns = append(columns, column{conversion: c, index: i})
	}
	if !seen[rundata.SampleCount] && !seen[rundata.WallTime] {
		return nil, errors.Wrap(rundata.ErrCorruptProfile, "pprof profile records neither samples nor wall time")
	}

	out := rundata.Profile{rundata.RootEdge: make(rundata.Metrics, len(columns))}
	add := func(edge rundata.Edge, sample *profile.Sample) {
		m, ok := out[edge]
		if !ok {
			m = make(rundata.Metrics, len(columns))
			out[edge] = m
		}
		for _, c := range columns {
			m[c.kind] += c.apply(sample.Value[c.index])
		}
	}
	for _, sample := range prof.Sample {
		add(rundata.RootEdge, sample)
		depth := map[string]int{rundata.RootSymbol: 1}
		parent := rundata.RootSymbol
		for _, name := range stack(sample) {
			symbol := name
			if n := depth[name]; n > 0 {
				symbol = fmt.Sprintf("%s@%d", name, n)
			}
			depth[name]++
			add(rundata.Edge{Parent: parent, Child: symbol}, sample)
			parent = symbol
		}
	}
	slog.Debug("converted pprof profile", slog.Int("samples", len(prof.Sample)), slog.Int("edges", len(out)))
	return out, nil
}

// stack returns the function names of a sample, outermost caller first.
func stack(sample *profile.Sample) []string {
	var names []string
	for i := len(sample.Location) - 1; i >= 0; i-- {
		loc := sample.Location[i]
		if len(loc.Line) == 0 {
			names = append(names, fmt.Sprintf("0x%x", loc.Address))
			continue
		}
		// the last line is the caller of the inlined ones before it
		for j := len(loc.Line) - 1; j >= 0; j-- {
			names = append(names, functionName(loc.Line[j], loc.Address))
		}
	}
	return names
}

func functionName(line profile.Line, address uint64) string {
	if line.Function == nil || line.Function.Name == "" {
		return fmt.Sprintf("0x%x", address)
	}
	return strings.TrimSpace(line.Function.Name)
}
