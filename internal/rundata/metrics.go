// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package rundata

import "github.com/pkg/errors"

// Kind identifies one measurement recorded for a call edge.
type Kind int

// Kinds in catalog order.
const (
	Calls Kind = iota
	WallTime
	UserTime
	SysTime
	CPUTime
	MemUsage
	PeakMemUsage
	SampleCount
)

// MetricInfo describes a measurement kind and how to print its values.
type MetricInfo struct {
	Kind        Kind
	Key         string // key used in the raw data, e.g., "wt"
	Label       string // short column label, e.g., "Wall"
	Unit        string
	Description string
	Format      func(float64) string
}

var catalog = []MetricInfo{
	{Kind: Calls, Key: "ct", Label: "Calls", Unit: "calls", Description: "number of calls", Format: FormatCount},
	{Kind: WallTime, Key: "wt", Label: "Wall", Unit: "microsecs", Description: "walltime", Format: FormatNumber},
	{Kind: UserTime, Key: "ut", Label: "User", Unit: "microsecs", Description: "user cpu time", Format: FormatNumber},
	{Kind: SysTime, Key: "st", Label: "Sys", Unit: "microsecs", Description: "system cpu time", Format: FormatNumber},
	{Kind: CPUTime, Key: "cpu", Label: "Cpu", Unit: "microsecs", Description: "cpu time", Format: FormatNumber},
	{Kind: MemUsage, Key: "mu", Label: "MUse", Unit: "bytes", Description: "memory usage", Format: FormatNumber},
	{Kind: PeakMemUsage, Key: "pmu", Label: "PMUse", Unit: "bytes", Description: "peak memory usage", Format: FormatNumber},
	{Kind: SampleCount, Key: "samples", Label: "Samples", Unit: "samples", Description: "cpu time", Format: FormatNumber},
}

// Info returns the catalog entry for the kind.
func (k Kind) Info() MetricInfo {
	if k < 0 || int(k) >= len(catalog) {
		return MetricInfo{Kind: k, Key: "unknown", Label: "Unknown", Format: FormatNumber}
	}
	return catalog[k]
}

// String returns the raw data key of the kind.
func (k Kind) String() string {
	return k.Info().Key
}

// MarshalText encodes the kind as its raw data key.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a raw data key.
func (k *Kind) UnmarshalText(text []byte) error {
	kind, ok := KindFromKey(string(text))
	if !ok {
		return errors.Errorf("unknown metric %q", text)
	}
	*k = kind
	return nil
}

// KindFromKey maps a raw data key, e.g., "wt", to its kind.
func KindFromKey(key string) (Kind, bool) {
	for _, info := range catalog {
		if info.Key == key {
			return info.Kind, true
		}
	}
	return 0, false
}

// PossibleMetrics returns the measurable kinds (everything but Calls) in
// catalog order.
func PossibleMetrics() []MetricInfo {
	possible := make([]MetricInfo, 0, len(catalog)-1)
	for _, info := range catalog {
		if info.Kind == Calls {
			continue
		}
		possible = append(possible, info)
	}
	return possible
}

// ActiveMetrics returns the kinds present on the root entry of the profile.
// Calls comes first when present, followed by the measurable kinds in
// catalog order. A profile without a root entry has no active metrics.
func ActiveMetrics(p Profile) []Kind {
	root, ok := p.Root()
	if !ok {
		return nil
	}
	var kinds []Kind
	for _, info := range catalog {
		if root.Has(info.Kind) {
			kinds = append(kinds, info.Kind)
		}
	}
	return kinds
}

// Metrics holds the values recorded for one edge or one symbol.
type Metrics map[Kind]float64

// Has reports whether a value is recorded for the kind.
func (m Metrics) Has(k Kind) bool {
	_, ok := m[k]
	return ok
}

// Clone returns a copy of the metrics.
func (m Metrics) Clone() Metrics {
	c := make(Metrics, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// primaryMetric picks the metric used for sanity checks and pruning: wall
// time when recorded, otherwise the sample count.
func primaryMetric(root Metrics) (Kind, bool) {
	if root.Has(WallTime) {
		return WallTime, true
	}
	if root.Has(SampleCount) {
		return SampleCount, true
	}
	return 0, false
}
