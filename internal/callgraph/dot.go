// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package callgraph generates Graphviz DOT scripts from run profiles and
// renders them to images.
package callgraph

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"

	"github.com/Rarst/sideface/internal/rundata"
)

// DefaultThreshold is the share of total wall time below which symbols are
// left out of the graph.
const DefaultThreshold = 0.01

const (
	maxWidth       = 5.0
	maxHeight      = 3.5
	maxFontSize    = 35.0
	maxSizingRatio = 20.0
	hotRatio       = 1.5
)

// Options control which symbols end up in the graph and how they are drawn.
type Options struct {
	Threshold    float64 // share of total wall time, in [0,1)
	Focus        string  // when set, only the focus symbol and its neighbours are drawn
	CriticalPath bool
	Page         string // shown on the main() node in place of its name
}

// NewOptions returns options with the threshold reset to DefaultThreshold
// when it is outside [0,1).
func NewOptions(threshold float64, focus string, criticalPath bool, page string) Options {
	if threshold < 0 || threshold >= 1 || math.IsNaN(threshold) {
		threshold = DefaultThreshold
	}
	return Options{
		Threshold:    threshold,
		Focus:        focus,
		CriticalPath: criticalPath,
		Page:         page,
	}
}

// Script generates the call graph of a single run.
func Script(p rundata.Profile, opts Options) (string, error) {
	return generate(p, opts, nil, nil)
}

// DiffScript generates the call graph of the difference between two runs.
// Node labels read "new - old = delta", with run2 as the new run.
func DiffScript(run1, run2 rundata.Profile, opts Options) (string, error) {
	left, _, err := rundata.Flat(run2)
	if err != nil {
		return "", errors.Wrap(err, "run2")
	}
	right, _, err := rundata.Flat(run1)
	if err != nil {
		return "", errors.Wrap(err, "run1")
	}
	return generate(rundata.Diff(run1, run2), opts, left, right)
}

// unit converts metric values for labels. Wall time is shown in ms, sample
// counts as they are.
type unit struct {
	divisor float64
	suffix  string
	verb    string
}

func unitFor(metric rundata.Kind) unit {
	if metric == rundata.WallTime {
		return unit{divisor: 1000, suffix: "ms", verb: "%.3f"}
	}
	return unit{divisor: 1, suffix: "samples", verb: "%.0f"}
}

func (u unit) format(v float64) string {
	return fmt.Sprintf(u.verb+" %s", v/u.divisor, u.suffix)
}

// graphMetric is the metric nodes are sized and labelled by.
func graphMetric(p rundata.Profile) (rundata.Kind, error) {
	root, ok := p.Root()
	if !ok {
		return 0, errors.Wrapf(rundata.ErrCorruptProfile, "%s missing in raw data", rundata.RootSymbol)
	}
	if root.Has(rundata.WallTime) {
		return rundata.WallTime, nil
	}
	if root.Has(rundata.SampleCount) {
		return rundata.SampleCount, nil
	}
	return 0, errors.Wrapf(rundata.ErrCorruptProfile, "for %s we must have either %s or %s set", rundata.RootSymbol, rundata.WallTime, rundata.SampleCount)
}

func generate(p rundata.Profile, opts Options, left, right rundata.FlatTable) (string, error) {
	metric, err := graphMetric(p)
	if err != nil {
		return "", err
	}
	table, totals, err := rundata.Flat(p)
	if err != nil {
		return "", err
	}
	u := unitFor(metric)
	total := totals.Metrics[metric]

	var path Path
	if opts.CriticalPath {
		path = CriticalPath(p, metric)
	}

	symbols := orderedSymbols(table)
	if opts.Focus != "" {
		interested := mapset.NewThreadUnsafeSet[string]()
		for edge := range p {
			if edge.Parent == opts.Focus || edge.Child == opts.Focus {
				interested.Append(edge.Parent, edge.Child)
			}
		}
		symbols = filter(symbols, interested.ContainsOne)
	} else if total != 0 {
		symbols = filter(symbols, func(symbol string) bool {
			return math.Abs(table[symbol].Inclusive[metric]/total) >= opts.Threshold
		})
	}

	ids := make(map[string]int, len(symbols))
	maxExclusive := 0.0
	for i, symbol := range symbols {
		ids[symbol] = i
		maxExclusive = math.Max(maxExclusive, math.Abs(table[symbol].Exclusive[metric]))
	}
	slog.Debug("generating call graph", slog.Int("symbols", len(symbols)), slog.Int("dropped", len(table)-len(symbols)))

	var sb strings.Builder
	sb.WriteString("digraph call_graph {\n")
	for _, symbol := range symbols {
		entry := table[symbol]
		exclusive := entry.Exclusive[metric]
		sizing := maxSizingRatio
		if exclusive != 0 {
			sizing = math.Min(maxExclusive/math.Abs(exclusive), maxSizingRatio)
		}
		fill := ""
		if sizing < hotRatio {
			fill = ", style=filled, fillcolor=red"
		} else if opts.CriticalPath && path.Nodes.Contains(symbol) {
			fill = ", style=filled, fillcolor=yellow"
		}
		var label string
		if left == nil {
			label = nodeLabel(symbol, entry, metric, total, u, opts.Page)
		} else {
			label = diffNodeLabel(symbol, entry, left, right, metric, u)
		}
		shape := "box"
		if symbol == rundata.RootSymbol {
			shape = "octagon"
		}
		fmt.Fprintf(&sb, "N%d[shape=%s, label=\"%s\", width=%.1f, height=%.1f, fontsize=%d%s];\n",
			ids[symbol], shape, label, maxWidth/sizing, maxHeight/sizing, int(maxFontSize/((sizing-1)/10+1)), fill)
	}

	for _, edge := range p.Edges() {
		parentID, ok := ids[edge.Parent]
		if !ok {
			continue
		}
		childID, ok := ids[edge.Child]
		if !ok {
			continue
		}
		if opts.Focus != "" && edge.Parent != opts.Focus && edge.Child != opts.Focus {
			continue
		}
		info := p[edge]
		parent, child := table[edge.Parent], table[edge.Child]
		calls := info[rundata.Calls]
		label := formatFloat(calls) + " calls"
		if calls == 1 {
			label = "1 call"
		}
		headLabel := "0.0%"
		if child.Inclusive[metric] > 0 {
			headLabel = percent(info[metric], child.Inclusive[metric])
		}
		tailLabel := "0.0%"
		if parent.Inclusive[metric] > 0 {
			tailLabel = percent(info[metric], parent.Inclusive[metric]-parent.Exclusive[metric])
		}
		lineWidth, arrowSize := 1, 1
		if opts.CriticalPath && path.Edges.Contains(edge) {
			lineWidth, arrowSize = 10, 2
		}
		fmt.Fprintf(&sb, "N%d -> N%d[arrowsize=%d, color=grey, style=\"setlinewidth(%d)\", label=\"%s\", headlabel=\"%s\", taillabel=\"%s\"];\n",
			parentID, childID, arrowSize, lineWidth, label, headLabel, tailLabel)
	}
	sb.WriteString("\n}")
	return sb.String(), nil
}

func nodeLabel(symbol string, entry rundata.FlatEntry, metric rundata.Kind, total float64, u unit, page string) string {
	var name string
	if symbol == rundata.RootSymbol {
		if page == "" {
			page = symbol
		}
		name = fmt.Sprintf("Total: %s %s\\n%s", formatFloat(total/u.divisor), u.suffix, escape(page))
	} else {
		inclusive := entry.Inclusive[metric]
		name = fmt.Sprintf("%s\\nInc: %s (%s)", escape(symbol), u.format(inclusive), percent(inclusive, total))
	}
	exclusive := entry.Exclusive[metric]
	return fmt.Sprintf("%s\\nExcl: %s (%s)\\n%s total calls", name, u.format(exclusive), percent(exclusive, total), formatFloat(entry.Calls))
}

// diffNodeLabel shows left - right = delta for inclusive, exclusive and
// calls. A symbol missing on one side counts as 0 there.
func diffNodeLabel(symbol string, delta rundata.FlatEntry, left, right rundata.FlatTable, metric rundata.Kind, u unit) string {
	l, inLeft := left[symbol]
	r, inRight := right[symbol]
	leg := func(entry rundata.FlatEntry, present bool, value func(rundata.FlatEntry) float64, format func(float64) string, zero string) string {
		if !present {
			return zero
		}
		return format(value(entry))
	}
	inclusive := func(e rundata.FlatEntry) float64 { return e.Inclusive[metric] }
	exclusive := func(e rundata.FlatEntry) float64 { return e.Exclusive[metric] }
	calls := func(e rundata.FlatEntry) float64 { return e.Calls }
	count := func(v float64) string { return fmt.Sprintf("%.3f", v) }
	zero := "0 " + u.suffix
	return fmt.Sprintf("%s\\nInc: %s - %s = %s\\nExcl: %s - %s = %s\\nCalls: %s - %s = %s",
		escape(symbol),
		leg(l, inLeft, inclusive, u.format, zero), leg(r, inRight, inclusive, u.format, zero), u.format(inclusive(delta)),
		leg(l, inLeft, exclusive, u.format, zero), leg(r, inRight, exclusive, u.format, zero), u.format(exclusive(delta)),
		leg(l, inLeft, calls, count, "0"), leg(r, inRight, calls, count, "0"), count(delta.Calls),
	)
}

// orderedSymbols returns main() first, then every other symbol in sorted
// order, so node ids are stable.
func orderedSymbols(table rundata.FlatTable) []string {
	symbols := make([]string, 0, len(table))
	if _, ok := table[rundata.RootSymbol]; ok {
		symbols = append(symbols, rundata.RootSymbol)
	}
	for _, symbol := range table.Symbols() {
		if symbol != rundata.RootSymbol {
			symbols = append(symbols, symbol)
		}
	}
	return symbols
}

func filter(symbols []string, keep func(string) bool) []string {
	kept := symbols[:0]
	for _, symbol := range symbols {
		if keep(symbol) {
			kept = append(kept, symbol)
		}
	}
	return kept
}

func percent(a, b float64) string {
	if b == 0 {
		return rundata.NotApplicable
	}
	return rundata.FormatPercent(a/b, 1)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// escape quotes a symbol for use inside a DOT label.
func escape(s string) string {
	return labelEscaper.Replace(s)
}
