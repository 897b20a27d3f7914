package report

// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/casbin/govaluate"
	"github.com/pkg/errors"

	"github.com/Rarst/sideface/internal/rundata"
)

// Sort keys that are not metric keys.
const (
	SortFunction = "fn"
	SortCalls    = "ct"

	exclusivePrefix = "excl_"
)

// DefaultSortColumn sorts by inclusive wall time.
const DefaultSortColumn = "wt"

// Request holds everything that shapes a report. It is passed by value and
// never modified while the report is built.
type Request struct {
	Symbol     string // report on one function and its parents and children
	SortColumn string // fn, ct, a metric key, or excl_ followed by a metric key
	Limit      int    // maximum number of function rows, 0 for all
	Where      string // optional filter expression over the sort keys, e.g., "wt > 1000 && ct >= 2"
}

// SortableColumns lists every accepted sort key in report order.
func SortableColumns() []string {
	columns := []string{SortFunction, SortCalls}
	for _, info := range rundata.PossibleMetrics() {
		columns = append(columns, info.Key, exclusivePrefix+info.Key)
	}
	return columns
}

// Validate checks the sort column and compiles the filter expression.
func (r Request) Validate() error {
	if r.SortColumn != "" && !slices.Contains(SortableColumns(), r.SortColumn) {
		return errors.Errorf("invalid sort key %q, expected one of %s", r.SortColumn, strings.Join(SortableColumns(), ", "))
	}
	if r.Limit < 0 {
		return errors.Errorf("limit must not be negative, got %d", r.Limit)
	}
	if r.Where != "" {
		if _, err := newRowFilter(r.Where); err != nil {
			return err
		}
	}
	return nil
}

// sortKey resolves the effective sort column for a profile. Runs without
// wall time sort by samples instead, and parent/child breakdowns only have
// inclusive values.
func (r Request) sortKey(metrics []rundata.Kind, breakdown bool) string {
	key := r.SortColumn
	if key == "" {
		key = DefaultSortColumn
	}
	if !slices.Contains(metrics, rundata.WallTime) {
		key = strings.Replace(key, rundata.WallTime.String(), rundata.SampleCount.String(), 1)
	}
	if breakdown {
		key = strings.TrimPrefix(key, exclusivePrefix)
	}
	return key
}

// row is one function of a report with its raw values keyed by sort key.
type row struct {
	Symbol string
	Values map[string]float64
}

// sortRows orders rows by the key: function names ascending and
// case-insensitive, everything else descending. Diff reports sort by
// absolute value so the largest changes either way come first.
func sortRows(rows []row, key string, diff bool) {
	slices.SortStableFunc(rows, func(a, b row) int {
		if key == SortFunction {
			if c := strings.Compare(strings.ToLower(a.Symbol), strings.ToLower(b.Symbol)); c != 0 {
				return c
			}
			return strings.Compare(a.Symbol, b.Symbol)
		}
		left, right := a.Values[key], b.Values[key]
		if diff {
			left, right = math.Abs(left), math.Abs(right)
		}
		switch {
		case left > right:
			return -1
		case left < right:
			return 1
		}
		return strings.Compare(a.Symbol, b.Symbol)
	})
}

// rowFilter evaluates a boolean expression against each row. Sort keys are
// the variables, fn holds the function name.
type rowFilter struct {
	expression *govaluate.EvaluableExpression
}

func filterFunctions() map[string]govaluate.ExpressionFunction {
	functions := make(map[string]govaluate.ExpressionFunction)
	functions["abs"] = func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("abs takes 1 argument, got %d", len(args))
		}
		v, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("abs expects a number, got %v", args[0])
		}
		return math.Abs(v), nil
	}
	functions["contains"] = func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("contains takes 2 arguments, got %d", len(args))
		}
		s, ok1 := args[0].(string)
		sub, ok2 := args[1].(string)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("contains expects strings, got %v and %v", args[0], args[1])
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(sub)), nil
	}
	return functions
}

func newRowFilter(where string) (*rowFilter, error) {
	expression, err := govaluate.NewEvaluableExpressionWithFunctions(where, filterFunctions())
	if err != nil {
		return nil, errors.Wrapf(err, "invalid filter expression %q", where)
	}
	known := SortableColumns()
	for _, name := range expression.Vars() {
		if !slices.Contains(known, name) {
			return nil, errors.Errorf("unknown column %q in filter expression, expected one of %s", name, strings.Join(known, ", "))
		}
	}
	return &rowFilter{expression: expression}, nil
}

// keep reports whether the row matches. Columns the run does not record
// evaluate as zero.
func (f *rowFilter) keep(r row) (bool, error) {
	parameters := make(map[string]any, len(r.Values)+1)
	for _, key := range SortableColumns() {
		parameters[key] = r.Values[key]
	}
	parameters[SortFunction] = r.Symbol
	result, err := f.expression.Evaluate(parameters)
	if err != nil {
		return false, errors.Wrapf(err, "failed to evaluate filter for %s", r.Symbol)
	}
	keep, ok := result.(bool)
	if !ok {
		return false, errors.Errorf("filter expression must be boolean, got %v", result)
	}
	return keep, nil
}
