// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package rundata

import "github.com/pkg/errors"

// maxMetricValue is a sanity ceiling of one day in microseconds.
const maxMetricValue = 86400000000

// Validate sanity checks a raw profile. The root entry must record wall time
// or samples, and that metric must lie between 0 and one day on every edge.
// Failures wrap ErrRunValidation.
func Validate(p Profile) error {
	root, ok := p.Root()
	if !ok {
		return errors.Wrapf(ErrRunValidation, "%s missing in raw data", RootSymbol)
	}
	metric, ok := primaryMetric(root)
	if !ok {
		return errors.Wrapf(ErrRunValidation, "%s must have either %s or %s set", RootSymbol, WallTime, SampleCount)
	}
	for _, edge := range p.Edges() {
		value := p[edge][metric]
		if value < 0 {
			return errors.Wrapf(ErrRunValidation, "%s should not be negative: %s = %v", metric, edge, value)
		}
		if value > maxMetricValue {
			return errors.Wrapf(ErrRunValidation, "%s > 1 day found: %s = %v", metric, edge, value)
		}
	}
	return nil
}
