// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package workflow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/Rarst/sideface/internal/app"
	"github.com/Rarst/sideface/internal/rundata"
	"github.com/Rarst/sideface/internal/runstore"
)

// LoadedRun is the run an analysis works on: a stored run, or the
// aggregate of several.
type LoadedRun struct {
	Run         rundata.Run
	RunIDs      []string
	BadRuns     []string // runs skipped by the aggregation
	Description string
}

// LoadRun loads one run as stored, or aggregates several. Weights, when
// given, need one value per run and force aggregation even of a single run.
func LoadRun(ctx context.Context, appContext app.Context, ids []string, weights []float64, source string, scriptIdentity bool) (LoadedRun, error) {
	if len(ids) == 0 {
		return LoadedRun{}, errors.New("no run ids given")
	}
	if source == "" {
		source = appContext.Config.Source
	}
	runs, err := runstore.GetRuns(ctx, appContext.Store(), ids, source)
	if err != nil {
		return LoadedRun{}, err
	}
	if len(runs) == 1 && len(weights) == 0 && !scriptIdentity {
		return LoadedRun{Run: runs[0], RunIDs: ids, Description: runs[0].Page}, nil
	}
	result, err := rundata.Aggregate(runs, weights, scriptIdentity)
	if err != nil {
		return LoadedRun{}, err
	}
	if len(result.BadRuns) > 0 {
		slog.Warn("skipped invalid runs", slog.String("runs", strings.Join(result.BadRuns, ",")), slog.Int("count", len(result.BadRuns)))
		if appContext.Stats != nil {
			appContext.Stats.ObserveSkippedRuns(len(result.BadRuns))
		}
	}
	slog.Debug("aggregated runs", slog.Int("runs", len(runs)), slog.Int("edges", len(result.Profile)))
	return LoadedRun{
		Run: rundata.Run{
			ID:      strings.Join(ids, ","),
			Source:  source,
			Profile: result.Profile,
		},
		RunIDs:      ids,
		BadRuns:     result.BadRuns,
		Description: result.Description,
	}, nil
}
