// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package rundata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrim(t *testing.T) {
	p := ProfileFromRaw(map[string]map[string]float64{
		"main()":       {"wt": 100},
		"main()==>foo": {"wt": 60},
		"main()==>qux": {"wt": 30},
		"foo==>bar":    {"wt": 20},
		"qux==>baz":    {"wt": 10},
	})
	trimmed := Trim(p, []string{"bar"})
	assert.ElementsMatch(t, []Edge{
		RootEdge,
		{Parent: "main()", Child: "foo"},
		{Parent: "main()", Child: "qux"},
		{Parent: "foo", Child: "bar"},
	}, trimmed.Edges())
}

func TestSymbolBreakdown(t *testing.T) {
	p := ProfileFromRaw(map[string]map[string]float64{
		"main()":       {"wt": 100},
		"main()==>foo": {"wt": 60},
		"qux==>foo":    {"wt": 5},
		"foo==>zed":    {"wt": 20},
		"foo==>bar":    {"wt": 10},
	})
	parents, children := SymbolBreakdown(p, "foo")
	assert.Equal(t, []string{"main()", "qux"}, []string{parents[0].Symbol, parents[1].Symbol})
	assert.Equal(t, []string{"bar", "zed"}, []string{children[0].Symbol, children[1].Symbol})
	assert.Equal(t, 20.0, children[1].Metrics[WallTime])

	parents, children = SymbolBreakdown(p, "main()")
	assert.Empty(t, parents)
	assert.Len(t, children, 1)
}

func TestMatchingSymbols(t *testing.T) {
	p := ProfileFromRaw(map[string]map[string]float64{
		"main()":            {"wt": 100},
		"main()==>Foo::run": {"wt": 60},
		"Foo::run==>foobar": {"wt": 20},
		"main()==>baz":      {"wt": 10},
	})
	assert.Equal(t, []string{"Foo::run", "foobar"}, MatchingSymbols(p, "FOO"))
	assert.Empty(t, MatchingSymbols(p, "nothing"))
}
