// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package rundata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	run1 := ProfileFromRaw(map[string]map[string]float64{
		"main()":       {"wt": 1000, "ct": 1},
		"main()==>foo": {"wt": 600, "ct": 2},
	})
	run2 := ProfileFromRaw(map[string]map[string]float64{
		"main()":       {"wt": 900, "ct": 1},
		"main()==>baz": {"wt": 300, "ct": 5},
	})
	delta := Diff(run1, run2)
	assert.Equal(t, Profile{
		RootEdge:                         {WallTime: -100, Calls: 0},
		{Parent: "main()", Child: "foo"}: {WallTime: -600, Calls: -2},
		{Parent: "main()", Child: "baz"}: {WallTime: 300, Calls: 5},
	}, delta)

	// inputs are left alone
	assert.Equal(t, 600.0, run1[Edge{Parent: "main()", Child: "foo"}][WallTime])
	assert.Equal(t, 900.0, run2[RootEdge][WallTime])
}

func TestDiffSameRunIsZero(t *testing.T) {
	p := sampleProfile()
	delta := Diff(p, p)
	assert.Len(t, delta, len(p))
	for edge, m := range delta {
		for kind, value := range m {
			assert.Zero(t, value, "%s %s", edge, kind)
		}
	}
}

func TestDiffUsesSecondRunMetrics(t *testing.T) {
	run1 := ProfileFromRaw(map[string]map[string]float64{
		"main()":       {"wt": 10, "cpu": 8},
		"main()==>foo": {"wt": 5, "cpu": 4},
	})
	run2 := ProfileFromRaw(map[string]map[string]float64{
		"main()": {"wt": 12},
	})
	delta := Diff(run1, run2)
	assert.Equal(t, Metrics{WallTime: 2}, delta[RootEdge])
	assert.Equal(t, Metrics{WallTime: -5}, delta[Edge{Parent: "main()", Child: "foo"}])
}
