// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package rundata

import (
	"log/slog"
	"slices"
	"strings"
	"time"
)

// Profile is the raw data of one profiling run: metrics per call edge.
type Profile map[Edge]Metrics

// Run is a profile together with its identity in the run store.
type Run struct {
	ID        string
	Source    string
	Page      string // page or script description, used to keep identity when aggregating
	Timestamp time.Time
	Profile   Profile
}

// Root returns the root entry.
func (p Profile) Root() (Metrics, bool) {
	m, ok := p[RootEdge]
	return m, ok
}

// Edges returns the edges sorted by their raw data key so that iteration
// over a profile is deterministic.
func (p Profile) Edges() []Edge {
	edges := make([]Edge, 0, len(p))
	for edge := range p {
		edges = append(edges, edge)
	}
	slices.SortFunc(edges, func(a, b Edge) int {
		return strings.Compare(a.String(), b.String())
	})
	return edges
}

// Clone returns a deep copy of the profile.
func (p Profile) Clone() Profile {
	c := make(Profile, len(p))
	for edge, m := range p {
		c[edge] = m.Clone()
	}
	return c
}

// ProfileFromRaw converts raw data as stored on disk, edge key to metric key
// to value, into a profile. Unknown metric keys are skipped.
func ProfileFromRaw(raw map[string]map[string]float64) Profile {
	p := make(Profile, len(raw))
	unknown := make(map[string]bool)
	for key, values := range raw {
		m := make(Metrics, len(values))
		for metricKey, value := range values {
			kind, ok := KindFromKey(metricKey)
			if !ok {
				unknown[metricKey] = true
				continue
			}
			m[kind] = value
		}
		p[DecodeEdge(key)] = m
	}
	for key := range unknown {
		slog.Debug("skipping unknown metric in raw data", slog.String("metric", key))
	}
	return p
}

// Raw converts the profile back into its on-disk representation.
func (p Profile) Raw() map[string]map[string]float64 {
	raw := make(map[string]map[string]float64, len(p))
	for edge, m := range p {
		values := make(map[string]float64, len(m))
		for kind, value := range m {
			values[kind.String()] = value
		}
		raw[edge.String()] = values
	}
	return raw
}
