// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package rundata

import (
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// EdgeStat is one edge of a symbol breakdown.
type EdgeStat struct {
	Symbol  string // the parent or child on the other end of the edge
	Edge    Edge
	Metrics Metrics
}

// Trim keeps only the edges that touch one of the given symbols. main() is
// always kept so that run totals can still be computed.
func Trim(p Profile, keep []string) Profile {
	keepSet := mapset.NewThreadUnsafeSet(keep...)
	keepSet.Add(RootSymbol)
	out := make(Profile)
	for edge, info := range p {
		if keepSet.Contains(edge.Parent) || keepSet.Contains(edge.Child) {
			out[edge] = info.Clone()
		}
	}
	return out
}

// SymbolBreakdown returns the edges calling the symbol (parents) and the
// edges the symbol calls (children), each sorted by the symbol on the other
// end. Only inclusive metrics can be broken down per edge.
func SymbolBreakdown(p Profile, symbol string) (parents []EdgeStat, children []EdgeStat) {
	for edge, info := range p {
		if edge.Child == symbol && !edge.IsRoot() {
			parents = append(parents, EdgeStat{Symbol: edge.Parent, Edge: edge, Metrics: info})
		}
		if edge.Parent == symbol {
			children = append(children, EdgeStat{Symbol: edge.Child, Edge: edge, Metrics: info})
		}
	}
	bySymbol := func(a, b EdgeStat) int {
		return strings.Compare(a.Symbol, b.Symbol)
	}
	slices.SortFunc(parents, bySymbol)
	slices.SortFunc(children, bySymbol)
	return parents, children
}

// MatchingSymbols returns the symbols containing q, case-insensitively, in
// sorted order.
func MatchingSymbols(p Profile, q string) []string {
	q = strings.ToLower(q)
	matches := mapset.NewThreadUnsafeSet[string]()
	for edge := range p {
		for _, symbol := range []string{edge.Parent, edge.Child} {
			if symbol != "" && strings.Contains(strings.ToLower(symbol), q) {
				matches.Add(symbol)
			}
		}
	}
	result := matches.ToSlice()
	slices.Sort(result)
	return result
}
