// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package pprofimport

import (
	"bytes"
	"testing"

	"github.com/google/pprof/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rarst/sideface/internal/rundata"
)

func testProfile() *profile.Profile {
	fnMain := &profile.Function{ID: 1, Name: "main.main"}
	fnWork := &profile.Function{ID: 2, Name: "main.work"}
	fnHash := &profile.Function{ID: 3, Name: "crypto.hash"}
	locMain := &profile.Location{ID: 1, Address: 0x10, Line: []profile.Line{{Function: fnMain}}}
	locWork := &profile.Location{ID: 2, Address: 0x20, Line: []profile.Line{{Function: fnWork}}}
	// hash inlined into work
	locInlined := &profile.Location{ID: 3, Address: 0x30, Line: []profile.Line{{Function: fnHash}, {Function: fnWork}}}
	locUnknown := &profile.Location{ID: 4, Address: 0x40}
	return &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "samples", Unit: "count"},
			{Type: "cpu", Unit: "nanoseconds"},
		},
		PeriodType: &profile.ValueType{Type: "cpu", Unit: "nanoseconds"},
		Period:     10000000,
		Sample: []*profile.Sample{
			{Location: []*profile.Location{locWork, locMain}, Value: []int64{3, 30000000}},
			{Location: []*profile.Location{locInlined, locMain}, Value: []int64{2, 20000000}},
			{Location: []*profile.Location{locWork, locWork, locMain}, Value: []int64{1, 10000000}},
			{Location: []*profile.Location{locUnknown}, Value: []int64{4, 40000000}},
		},
		Location: []*profile.Location{locMain, locWork, locInlined, locUnknown},
		Function: []*profile.Function{fnMain, fnWork, fnHash},
	}
}

func TestConvert(t *testing.T) {
	p, err := Convert(testProfile())
	require.NoError(t, err)
	m := func(samples, cpu float64) rundata.Metrics {
		return rundata.Metrics{rundata.SampleCount: samples, rundata.CPUTime: cpu}
	}
	assert.Equal(t, rundata.Profile{
		rundata.RootEdge:                            m(10, 100000),
		{Parent: "main()", Child: "main.main"}:      m(6, 60000),
		{Parent: "main.main", Child: "main.work"}:   m(6, 60000),
		{Parent: "main.work", Child: "crypto.hash"}: m(2, 20000),
		{Parent: "main.work", Child: "main.work@1"}: m(1, 10000),
		{Parent: "main()", Child: "0x40"}:           m(4, 40000),
	}, p)
	assert.NoError(t, rundata.Validate(p))

	flat, totals, err := rundata.Flat(p)
	require.NoError(t, err)
	assert.Equal(t, 10.0, totals.Metrics[rundata.SampleCount])
	assert.Equal(t, 3.0, flat["main.work"].Exclusive[rundata.SampleCount])
}

func TestRead(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testProfile().Write(&buf))
	p, err := Read(&buf)
	require.NoError(t, err)
	assert.Len(t, p, 6)

	_, err = Read(bytes.NewReader([]byte("not a profile")))
	assert.Error(t, err)
}

func TestConvertWithoutUsableMetric(t *testing.T) {
	prof := testProfile()
	prof.SampleType = []*profile.ValueType{{Type: "contentions", Unit: "count"}, {Type: "delay", Unit: "nanoseconds"}}
	_, err := Convert(prof)
	assert.ErrorIs(t, err, rundata.ErrCorruptProfile)
}

func TestValueKind(t *testing.T) {
	tests := []struct {
		typ, unit string
		kind      rundata.Kind
		converted float64
		ok        bool
	}{
		{"samples", "count", rundata.SampleCount, 5000, true},
		{"cpu", "nanoseconds", rundata.CPUTime, 5, true},
		{"wall", "milliseconds", rundata.WallTime, 5000000, true},
		{"alloc_space", "bytes", rundata.MemUsage, 5000, true},
		{"alloc_objects", "count", 0, 0, false},
		{"cpu", "count", 0, 0, false},
		{"cpu", "furlongs", 0, 0, false},
	}
	for _, tt := range tests {
		c, ok := valueKind(&profile.ValueType{Type: tt.typ, Unit: tt.unit})
		assert.Equal(t, tt.ok, ok, "%s/%s", tt.typ, tt.unit)
		if tt.ok {
			assert.Equal(t, tt.kind, c.kind)
			assert.Equal(t, tt.converted, c.apply(5000))
		}
	}
}
