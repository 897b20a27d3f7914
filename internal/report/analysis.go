package report

// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"github.com/pkg/errors"

	"github.com/Rarst/sideface/internal/rundata"
)

// ErrSymbolNotFound is returned when a report is requested for a function
// that is not part of the run.
var ErrSymbolNotFound = errors.New("symbol not found in run")

// Snapshot is the flat view of one run.
type Snapshot struct {
	RunID  string
	Flat   rundata.FlatTable
	Totals rundata.Totals
}

// Analysis is the data a report is built from. In diff mode Profile, Flat
// and Totals hold the delta between Base and Current.
type Analysis struct {
	Description string
	RunIDs      []string
	BadRuns     []string // runs skipped during aggregation
	Profile     rundata.Profile
	Flat        rundata.FlatTable
	Totals      rundata.Totals
	Metrics     []rundata.Kind // measured kinds, without Calls
	ShowCalls   bool
	Base        *Snapshot // run1 of a diff
	Current     *Snapshot // run2 of a diff
}

// IsDiff reports whether the analysis compares two runs.
func (a *Analysis) IsDiff() bool {
	return a.Base != nil
}

// prepare trims the profile to the symbol of interest.
func prepare(p rundata.Profile, req Request) rundata.Profile {
	if req.Symbol == "" {
		return p
	}
	return rundata.Trim(p, []string{req.Symbol})
}

func measured(p rundata.Profile) []rundata.Kind {
	var metrics []rundata.Kind
	for _, kind := range rundata.ActiveMetrics(p) {
		if kind != rundata.Calls {
			metrics = append(metrics, kind)
		}
	}
	return metrics
}

// showCalls follows the convention that runs without wall time come from
// sampling profilers, whose call counts are not meaningful.
func showCalls(p rundata.Profile) bool {
	root, _ := p.Root()
	return root.Has(rundata.WallTime) && root.Has(rundata.Calls)
}

// NewAnalysis analyses a single run.
func NewAnalysis(run rundata.Run, req Request) (*Analysis, error) {
	p := prepare(run.Profile, req)
	flat, totals, err := rundata.Flat(p)
	if err != nil {
		return nil, errors.Wrapf(err, "run %s", run.ID)
	}
	if req.Symbol != "" {
		if _, ok := flat[req.Symbol]; !ok {
			return nil, errors.Wrapf(ErrSymbolNotFound, "%s in run %s", req.Symbol, run.ID)
		}
	}
	return &Analysis{
		Description: run.Page,
		RunIDs:      []string{run.ID},
		Profile:     p,
		Flat:        flat,
		Totals:      totals,
		Metrics:     measured(p),
		ShowCalls:   showCalls(p),
	}, nil
}

// NewDiffAnalysis analyses the difference run2 - run1.
func NewDiffAnalysis(run1, run2 rundata.Run, req Request) (*Analysis, error) {
	p1 := prepare(run1.Profile, req)
	p2 := prepare(run2.Profile, req)
	flat1, totals1, err := rundata.Flat(p1)
	if err != nil {
		return nil, errors.Wrapf(err, "run %s", run1.ID)
	}
	flat2, totals2, err := rundata.Flat(p2)
	if err != nil {
		return nil, errors.Wrapf(err, "run %s", run2.ID)
	}
	delta := rundata.Diff(p1, p2)
	flat, totals, err := rundata.Flat(delta)
	if err != nil {
		return nil, errors.Wrap(err, "diff")
	}
	if req.Symbol != "" {
		if _, ok := flat[req.Symbol]; !ok {
			return nil, errors.Wrapf(ErrSymbolNotFound, "%s in runs %s and %s", req.Symbol, run1.ID, run2.ID)
		}
	}
	return &Analysis{
		RunIDs:    []string{run1.ID, run2.ID},
		Profile:   delta,
		Flat:      flat,
		Totals:    totals,
		Metrics:   measured(delta),
		ShowCalls: showCalls(delta),
		Base:      &Snapshot{RunID: run1.ID, Flat: flat1, Totals: totals1},
		Current:   &Snapshot{RunID: run2.ID, Flat: flat2, Totals: totals2},
	}, nil
}
