// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package rundata

// Diff computes run2 - run1 edge by edge. An edge missing from either run
// counts as zero for that run. The metrics compared are the ones active in
// run2, the newer run of a regression report. Neither input is modified.
func Diff(run1, run2 Profile) Profile {
	metrics := ActiveMetrics(run2)
	delta := run2.Clone()
	for edge, info := range run1 {
		d, ok := delta[edge]
		if !ok {
			d = make(Metrics, len(metrics))
			for _, kind := range metrics {
				d[kind] = 0
			}
			delta[edge] = d
		}
		for _, kind := range metrics {
			d[kind] -= info[kind]
		}
	}
	return delta
}
