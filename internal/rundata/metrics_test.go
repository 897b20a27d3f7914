// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package rundata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPossibleMetrics(t *testing.T) {
	var keys []string
	for _, info := range PossibleMetrics() {
		keys = append(keys, info.Key)
		assert.NotNil(t, info.Format, info.Key)
	}
	assert.Equal(t, []string{"wt", "ut", "st", "cpu", "mu", "pmu", "samples"}, keys)
}

func TestActiveMetrics(t *testing.T) {
	assert.Equal(t, []Kind{Calls, WallTime, MemUsage}, ActiveMetrics(sampleProfile()))

	samples := ProfileFromRaw(map[string]map[string]float64{
		"main()":       {"samples": 10},
		"main()==>foo": {"samples": 4, "wt": 3},
	})
	assert.Equal(t, []Kind{SampleCount}, ActiveMetrics(samples))

	assert.Empty(t, ActiveMetrics(Profile{}))
}

func TestKindFromKey(t *testing.T) {
	for _, info := range catalog {
		kind, ok := KindFromKey(info.Key)
		assert.True(t, ok)
		assert.Equal(t, info.Kind, kind)
		assert.Equal(t, info.Key, kind.String())
	}
	_, ok := KindFromKey("bogus")
	assert.False(t, ok)
}

func TestProfileFromRawSkipsUnknownMetrics(t *testing.T) {
	p := ProfileFromRaw(map[string]map[string]float64{
		"main()": {"wt": 5, "bogus": 7},
	})
	root, ok := p.Root()
	assert.True(t, ok)
	assert.Equal(t, Metrics{WallTime: 5}, root)
	assert.Equal(t, map[string]map[string]float64{"main()": {"wt": 5}}, p.Raw())
}
