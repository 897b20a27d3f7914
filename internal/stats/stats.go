// Package stats counts what a sideface invocation did and writes the counts
// in the Prometheus text format, for node_exporter's textfile collector.
package stats

// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sideface"

// Stats holds the collectors of one invocation. The zero value is not
// usable; call New.
type Stats struct {
	registry      *prometheus.Registry
	analyses      *prometheus.CounterVec
	edges         prometheus.Gauge
	skippedRuns   prometheus.Counter
	renders       *prometheus.CounterVec
	renderSeconds prometheus.Histogram
}

// New registers the collectors on a private registry.
func New() *Stats {
	s := &Stats{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analyses performed, by kind.",
		}, []string{"kind"}),
		edges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "profile_edges",
			Help:      "Call edges in the last analysed profile.",
		}),
		skippedRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_runs_total",
			Help:      "Runs skipped during aggregation because they failed validation.",
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Call-graph renders, by image format and result.",
		}, []string{"format", "result"}),
		renderSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent in the graph renderer.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 8),
		}),
	}
	s.registry.MustRegister(s.analyses, s.edges, s.skippedRuns, s.renders, s.renderSeconds)
	return s
}

// ObserveAnalysis counts one analysis of a profile with the given number of
// edges.
func (s *Stats) ObserveAnalysis(kind string, edges int) {
	s.analyses.WithLabelValues(kind).Inc()
	s.edges.Set(float64(edges))
}

// ObserveSkippedRuns counts runs dropped by the aggregator.
func (s *Stats) ObserveSkippedRuns(n int) {
	if n > 0 {
		s.skippedRuns.Add(float64(n))
	}
}

// ObserveRender counts one renderer invocation.
func (s *Stats) ObserveRender(format string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.renders.WithLabelValues(format, result).Inc()
	s.renderSeconds.Observe(elapsed.Seconds())
}

// Registry exposes the registry, e.g., for gathering in tests.
func (s *Stats) Registry() *prometheus.Registry {
	return s.registry
}

// WriteToTextfile writes all collected values to path. Nothing is written
// when path is empty.
func (s *Stats) WriteToTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, s.registry); err != nil {
		return errors.Wrapf(err, "failed to write metrics to %s", path)
	}
	slog.Debug("wrote metrics file", slog.String("path", path))
	return nil
}
