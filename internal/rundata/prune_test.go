// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package rundata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneZeroIsNoop(t *testing.T) {
	p := sampleProfile()
	pruned, err := Prune(p, 0)
	require.NoError(t, err)
	assert.Equal(t, p, pruned)
}

func TestPruneEverything(t *testing.T) {
	pruned, err := Prune(sampleProfile(), 100)
	require.NoError(t, err)
	assert.Equal(t, Profile{RootEdge: {WallTime: 1000, Calls: 1, MemUsage: 4096}}, pruned)
}

func TestPruneRedirectsToPrunedParent(t *testing.T) {
	p := ProfileFromRaw(map[string]map[string]float64{
		"main()":           {"wt": 1000, "ct": 1},
		"main()==>a":       {"wt": 100, "ct": 1},
		"main()==>b":       {"wt": 800, "ct": 1},
		"a==>c":            {"wt": 90, "ct": 1},
		"b==>c":            {"wt": 300, "ct": 1},
		"__pruned__()==>c": {"wt": 10, "ct": 1},
	})
	pruned, err := Prune(p, 20)
	require.NoError(t, err)
	assert.Equal(t, Profile{
		RootEdge:                             {WallTime: 1000, Calls: 1},
		{Parent: "main()", Child: "b"}:       {WallTime: 800, Calls: 1},
		{Parent: "b", Child: "c"}:            {WallTime: 300, Calls: 1},
		{Parent: "__pruned__()", Child: "c"}: {WallTime: 100, Calls: 2},
	}, pruned)

	// the input is not modified
	assert.Len(t, p, 6)
	assert.Equal(t, 10.0, p[Edge{Parent: "__pruned__()", Child: "c"}][WallTime])
}

func TestPruneSamples(t *testing.T) {
	p := ProfileFromRaw(map[string]map[string]float64{
		"main()":        {"samples": 100},
		"main()==>hot":  {"samples": 95},
		"main()==>cold": {"samples": 5},
	})
	pruned, err := Prune(p, 10)
	require.NoError(t, err)
	assert.Len(t, pruned, 2)
	_, ok := pruned[Edge{Parent: "main()", Child: "cold"}]
	assert.False(t, ok)
}

func TestPruneCorruptProfile(t *testing.T) {
	_, err := Prune(ProfileFromRaw(map[string]map[string]float64{"foo==>bar": {"wt": 1}}), 10)
	assert.ErrorIs(t, err, ErrCorruptProfile)
	_, err = Prune(ProfileFromRaw(map[string]map[string]float64{"main()": {"mu": 1}}), 10)
	assert.ErrorIs(t, err, ErrCorruptProfile)
}
