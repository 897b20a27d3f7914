// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package rundata

import (
	"slices"

	"github.com/pkg/errors"
)

// FlatEntry is the per-symbol view of a profile.
type FlatEntry struct {
	Calls     float64 // summed over all parent edges, zero when calls are not recorded
	Inclusive Metrics
	Exclusive Metrics // inclusive minus the inclusive values of the symbol's callees
}

// FlatTable maps each symbol to its flat entry.
type FlatTable map[string]FlatEntry

// Totals holds the run totals every percentage is computed against.
type Totals struct {
	Metrics Metrics // inclusive metrics of main()
	Calls   float64 // call count summed over all symbols
}

// Symbols returns the symbols of the table in sorted order.
func (t FlatTable) Symbols() []string {
	symbols := make([]string, 0, len(t))
	for symbol := range t {
		symbols = append(symbols, symbol)
	}
	slices.Sort(symbols)
	return symbols
}

// Inclusive computes the inclusive metrics of every symbol by summing the
// metrics of all edges the symbol is the child of. Calls are included only
// when they are an active metric.
//
// Recursive calls are expected to have been renamed uniquely upstream (e.g.,
// foo@1). An edge whose parent is its own child is reported as
// ErrCorruptProfile.
func Inclusive(p Profile) (map[string]Metrics, error) {
	metrics := ActiveMetrics(p)
	symbols := make(map[string]Metrics)
	for edge, info := range p {
		if edge.Parent == edge.Child {
			return nil, errors.Wrapf(ErrCorruptProfile, "parent & child are both: %s", edge.Child)
		}
		m, ok := symbols[edge.Child]
		if !ok {
			m = make(Metrics, len(metrics))
			symbols[edge.Child] = m
		}
		for _, kind := range metrics {
			m[kind] += info[kind]
		}
	}
	return symbols, nil
}

// Flat computes the flat table and totals of a profile.
func Flat(p Profile) (FlatTable, Totals, error) {
	if _, ok := p.Root(); !ok {
		return nil, Totals{}, errors.Wrapf(ErrCorruptProfile, "%s missing in raw data", RootSymbol)
	}
	inclusive, err := Inclusive(p)
	if err != nil {
		return nil, Totals{}, err
	}
	metrics := ActiveMetrics(p)
	table := make(FlatTable, len(inclusive))
	var totals Totals
	for symbol, incl := range inclusive {
		entry := FlatEntry{
			Inclusive: make(Metrics, len(metrics)),
			Exclusive: make(Metrics, len(metrics)),
		}
		for _, kind := range metrics {
			if kind == Calls {
				entry.Calls = incl[kind]
				continue
			}
			entry.Inclusive[kind] = incl[kind]
			entry.Exclusive[kind] = incl[kind]
		}
		totals.Calls += entry.Calls
		table[symbol] = entry
	}
	totals.Metrics = table[RootSymbol].Inclusive.Clone()
	for edge, info := range p {
		if edge.IsRoot() {
			continue
		}
		// the parent may have been trimmed away
		parent, ok := table[edge.Parent]
		if !ok {
			continue
		}
		for _, kind := range metrics {
			if kind == Calls {
				continue
			}
			parent.Exclusive[kind] -= info[kind]
		}
	}
	return table, totals, nil
}
