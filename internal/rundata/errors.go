// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package rundata

import "github.com/pkg/errors"

// Errors returned by the analysis functions. They are always wrapped with
// context, match them with errors.Is.
var (
	// ErrCorruptProfile is returned when a raw profile is structurally unusable:
	// missing root, recursive self-edge or missing required metric.
	ErrCorruptProfile = errors.New("corrupt profile")
	// ErrInvalidAggregationInput is returned before any partial aggregation
	// result is produced: empty run list, weight/run count mismatch, bad
	// weights or nothing to normalize by.
	ErrInvalidAggregationInput = errors.New("invalid aggregation input")
	// ErrRunValidation is returned by Validate. Aggregation treats it as
	// non-fatal and skips the run.
	ErrRunValidation = errors.New("run validation failed")
)
