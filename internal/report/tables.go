package report

// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"

	"github.com/Rarst/sideface/internal/rundata"
	"github.com/Rarst/sideface/internal/table"
)

// Table names.
const (
	RunSummaryTableName  = "Run Summary"
	DiffSummaryTableName = "Overall Diff Summary"
	FunctionsTableName   = "Functions"
	ParentsTableName     = "Parent Functions"
	ChildrenTableName    = "Child Functions"
	functionTablePrefix  = "Function: "
)

const functionNameHeading = "Function Name"

// BriefTableName returns the name of the summary table of the analysis.
func BriefTableName(a *Analysis) string {
	if a.IsDiff() {
		return DiffSummaryTableName
	}
	return RunSummaryTableName
}

// column is one value column of a function table.
type column struct {
	key       string // row value key
	heading   string
	desc      string
	format    func(float64) string
	percentOf func(base rundata.FlatEntry, totals rundata.Totals) float64 // nil for value columns
}

func metricHeading(info rundata.MetricInfo, prefix string, diff bool) string {
	heading := prefix + info.Label
	if diff {
		heading += " Diff"
	}
	if info.Unit != info.Key && info.Unit != strings.ToLower(info.Label) {
		heading += " (" + info.Unit + ")"
	}
	return heading
}

// functionColumns returns the columns of the full function table, or of a
// parent/child breakdown, which only has inclusive values.
func functionColumns(a *Analysis, breakdown bool) []column {
	diff := ""
	if a.IsDiff() {
		diff = " Diff"
	}
	var columns []column
	if a.ShowCalls {
		columns = append(columns,
			column{key: SortCalls, heading: "Calls" + diff, desc: "number of calls", format: rundata.FormatCount},
			column{key: SortCalls, heading: "Calls" + diff + "%", percentOf: func(base rundata.FlatEntry, totals rundata.Totals) float64 {
				if breakdown {
					return base.Calls
				}
				return totals.Calls
			}},
		)
	}
	for _, kind := range a.Metrics {
		info := kind.Info()
		base := func(b rundata.FlatEntry, totals rundata.Totals) float64 {
			if breakdown {
				return b.Inclusive[kind]
			}
			return totals.Metrics[kind]
		}
		columns = append(columns,
			column{key: info.Key, heading: metricHeading(info, "Incl. ", a.IsDiff()), desc: "inclusive " + info.Description, format: info.Format},
			column{key: info.Key, heading: "I" + info.Label + diff + "%", percentOf: base},
		)
		if !breakdown {
			columns = append(columns,
				column{key: exclusivePrefix + info.Key, heading: metricHeading(info, "Excl. ", a.IsDiff()), desc: "exclusive " + info.Description, format: info.Format},
				column{key: exclusivePrefix + info.Key, heading: "E" + info.Label + diff + "%", percentOf: base},
			)
		}
	}
	return columns
}

// percentCell formats a as a percentage of b.
func percentCell(a, b float64) string {
	pct := rundata.Pct(a, b)
	if pct == rundata.NotApplicable {
		return pct
	}
	return pct + "%"
}

// fieldsFromRows lays out rows as table fields, one field per column.
func fieldsFromRows(rows []row, columns []column, base rundata.FlatEntry, totals rundata.Totals) []table.Field {
	fields := []table.Field{{Name: functionNameHeading, Values: make([]string, 0, len(rows))}}
	for _, c := range columns {
		fields = append(fields, table.Field{Name: c.heading, Description: c.desc, Values: make([]string, 0, len(rows))})
	}
	for _, r := range rows {
		fields[0].Values = append(fields[0].Values, r.Symbol)
		for i, c := range columns {
			var value string
			if c.percentOf != nil {
				value = percentCell(r.Values[c.key], c.percentOf(base, totals))
			} else {
				value = c.format(r.Values[c.key])
			}
			fields[i+1].Values = append(fields[i+1].Values, value)
		}
	}
	return fields
}

func flatRows(flat rundata.FlatTable) []row {
	rows := make([]row, 0, len(flat))
	for _, symbol := range flat.Symbols() {
		entry := flat[symbol]
		values := map[string]float64{SortCalls: entry.Calls}
		for kind, v := range entry.Inclusive {
			values[kind.String()] = v
		}
		for kind, v := range entry.Exclusive {
			values[exclusivePrefix+kind.String()] = v
		}
		rows = append(rows, row{Symbol: symbol, Values: values})
	}
	return rows
}

func edgeRows(stats []rundata.EdgeStat) []row {
	rows := make([]row, 0, len(stats))
	for _, stat := range stats {
		values := make(map[string]float64, len(stat.Metrics))
		for kind, v := range stat.Metrics {
			values[kind.String()] = v
		}
		rows = append(rows, row{Symbol: stat.Symbol, Values: values})
	}
	return rows
}

// percentBase returns the totals percentages are computed against: the run
// itself, or the base run of a diff.
func (a *Analysis) percentBase() (rundata.FlatTable, rundata.Totals) {
	if a.IsDiff() {
		return a.Base.Flat, a.Base.Totals
	}
	return a.Flat, a.Totals
}

// Tables builds the report tables for the analysis.
func Tables(a *Analysis, req Request) ([]table.TableValues, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var allTableValues []table.TableValues
	if a.IsDiff() {
		allTableValues = append(allTableValues, diffSummaryTable(a, DiffSummaryTableName, a.Base.Totals, a.Current.Totals))
	} else {
		allTableValues = append(allTableValues, runSummaryTable(a))
	}
	if req.Symbol != "" {
		return append(allTableValues, symbolTables(a, req)...), nil
	}
	functions, err := functionsTable(a, req)
	if err != nil {
		return nil, err
	}
	return append(allTableValues, functions), nil
}

func runSummaryTable(a *Analysis) table.TableValues {
	fields := []table.Field{{Name: "Run", Values: []string{strings.Join(a.RunIDs, ",")}}}
	if a.Description != "" {
		fields = append(fields, table.Field{Name: "Description", Values: []string{a.Description}})
	}
	for _, kind := range a.Metrics {
		info := kind.Info()
		fields = append(fields, table.Field{Name: "Total " + metricHeading(info, "Incl. ", false), Values: []string{info.Format(a.Totals.Metrics[kind])}})
	}
	if a.ShowCalls {
		fields = append(fields, table.Field{Name: "Number of Function Calls", Values: []string{rundata.FormatCount(a.Totals.Calls)}})
	}
	if len(a.BadRuns) > 0 {
		fields = append(fields, table.Field{Name: "Skipped Runs", Values: []string{strings.Join(a.BadRuns, ",")}})
	}
	return table.NewTableValues(table.TableDefinition{Name: RunSummaryTableName}, fields)
}

// diffSummaryTable compares two sets of totals metric by metric.
func diffSummaryTable(a *Analysis, name string, totals1, totals2 rundata.Totals) table.TableValues {
	fields := []table.Field{
		{Name: "Metric"},
		{Name: "Run " + a.Base.RunID},
		{Name: "Run " + a.Current.RunID},
		{Name: "Diff"},
		{Name: "Diff%"},
	}
	add := func(label string, v1, v2 float64, format func(float64) string) {
		values := []string{label, format(v1), format(v2), format(v2 - v1), percentCell(v2-v1, v1)}
		for i := range fields {
			fields[i].Values = append(fields[i].Values, values[i])
		}
	}
	if a.ShowCalls {
		add("Number of Function Calls", totals1.Calls, totals2.Calls, rundata.FormatCount)
	}
	for _, kind := range a.Metrics {
		info := kind.Info()
		add(metricHeading(info, "", false), totals1.Metrics[kind], totals2.Metrics[kind], info.Format)
	}
	return table.NewTableValues(table.TableDefinition{Name: name, HasRows: true}, fields)
}

func functionsTable(a *Analysis, req Request) (table.TableValues, error) {
	rows := flatRows(a.Flat)
	if req.Where != "" {
		filter, err := newRowFilter(req.Where)
		if err != nil {
			return table.TableValues{}, err
		}
		kept := rows[:0]
		for _, r := range rows {
			keep, err := filter.keep(r)
			if err != nil {
				return table.TableValues{}, err
			}
			if keep {
				kept = append(kept, r)
			}
		}
		rows = kept
	}
	sortRows(rows, req.sortKey(a.Metrics, false), a.IsDiff())
	if req.Limit > 0 && len(rows) > req.Limit {
		rows = rows[:req.Limit]
	}
	_, totals := a.percentBase()
	definition := table.TableDefinition{
		Name:        FunctionsTableName,
		HasRows:     true,
		NoDataFound: "No functions match the filter.",
	}
	return table.NewTableValues(definition, fieldsFromRows(rows, functionColumns(a, false), rundata.FlatEntry{}, totals)), nil
}

// symbolTables describes one function and breaks its inclusive metrics down
// by parent and by child.
func symbolTables(a *Analysis, req Request) []table.TableValues {
	symbol := req.Symbol
	baseFlat, totals := a.percentBase()
	base := baseFlat[symbol]
	var summary table.TableValues
	if a.IsDiff() {
		current := a.Current.Flat[symbol]
		summary = diffSummaryTable(a, functionTablePrefix+symbol,
			rundata.Totals{Metrics: base.Inclusive, Calls: base.Calls},
			rundata.Totals{Metrics: current.Inclusive, Calls: current.Calls})
	} else {
		summary = symbolSummaryTable(a, symbol, totals)
	}
	parents, children := rundata.SymbolBreakdown(a.Profile, symbol)
	key := req.sortKey(a.Metrics, true)
	columns := functionColumns(a, true)
	breakdown := func(name string, stats []rundata.EdgeStat, noData string) table.TableValues {
		rows := edgeRows(stats)
		sortRows(rows, key, a.IsDiff())
		definition := table.TableDefinition{Name: name, HasRows: true, NoDataFound: noData}
		return table.NewTableValues(definition, fieldsFromRows(rows, columns, base, totals))
	}
	return []table.TableValues{
		summary,
		breakdown(ParentsTableName, parents, fmt.Sprintf("%s has no parents.", symbol)),
		breakdown(ChildrenTableName, children, fmt.Sprintf("%s calls no other functions.", symbol)),
	}
}

func symbolSummaryTable(a *Analysis, symbol string, totals rundata.Totals) table.TableValues {
	entry := a.Flat[symbol]
	var fields []table.Field
	if a.ShowCalls {
		fields = append(fields, table.Field{Name: "Calls", Values: []string{
			fmt.Sprintf("%s (%s of overall)", rundata.FormatCount(entry.Calls), percentCell(entry.Calls, totals.Calls)),
		}})
	}
	for _, kind := range a.Metrics {
		info := kind.Info()
		inclusive, exclusive := entry.Inclusive[kind], entry.Exclusive[kind]
		fields = append(fields,
			table.Field{Name: metricHeading(info, "Incl. ", false), Values: []string{
				fmt.Sprintf("%s (%s of overall)", info.Format(inclusive), percentCell(inclusive, totals.Metrics[kind])),
			}},
			table.Field{Name: metricHeading(info, "Excl. ", false), Values: []string{
				fmt.Sprintf("%s (%s of overall) (%s of this function)", info.Format(exclusive), percentCell(exclusive, totals.Metrics[kind]), percentCell(exclusive, inclusive)),
			}},
		)
	}
	return table.NewTableValues(table.TableDefinition{Name: functionTablePrefix + symbol}, fields)
}
