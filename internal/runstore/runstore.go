// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package runstore persists profiling runs.
package runstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/Rarst/sideface/internal/rundata"
)

// ErrNotFound is returned when a run does not exist in the store.
var ErrNotFound = errors.New("run not found")

// Summary identifies a stored run.
type Summary struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// Store loads and saves runs.
type Store interface {
	// GetRun loads the run with the given id and source.
	GetRun(id, source string) (rundata.Run, error)
	// ListRuns returns the stored runs, newest first. An empty source lists
	// runs of every source.
	ListRuns(source string) ([]Summary, error)
	// SaveRun stores the run and returns its id. A new id is generated when
	// the run has none.
	SaveRun(run rundata.Run) (string, error)
}

// maxConcurrentLoads bounds the number of runs GetRuns reads at once.
const maxConcurrentLoads = 8

// GetRuns loads several runs of the same source concurrently. The runs are
// returned in the order of ids. The first failure cancels the remaining
// loads.
func GetRuns(ctx context.Context, store Store, ids []string, source string) ([]rundata.Run, error) {
	runs := make([]rundata.Run, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			run, err := store.GetRun(id, source)
			if err != nil {
				return err
			}
			runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}
