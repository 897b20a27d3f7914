package report

// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"

	"github.com/Rarst/sideface/internal/rundata"
	"github.com/Rarst/sideface/internal/table"
)

func createTextReport(allTableValues []table.TableValues) (out []byte, err error) {
	var sb strings.Builder
	for _, tableValues := range allTableValues {
		sb.WriteString(fmt.Sprintf("%s\n", tableValues.Name))
		for range len(tableValues.Name) {
			sb.WriteString("=")
		}
		sb.WriteString("\n")
		if len(tableValues.Fields) == 0 || len(tableValues.Fields[0].Values) == 0 {
			msg := NoDataFound
			if tableValues.NoDataFound != "" {
				msg = tableValues.NoDataFound
			}
			sb.WriteString(msg + "\n\n")
			continue
		}
		// custom renderer defined?
		if renderer := tableValues.TextTableRendererFunc; renderer != nil {
			sb.WriteString(renderer(tableValues))
		} else {
			sb.WriteString(DefaultTextTableRendererFunc(tableValues))
		}
		sb.WriteString("\n")
	}
	out = []byte(sb.String())
	return
}

// DefaultTextTableRendererFunc renders row tables as columns, with numeric
// columns right-aligned, and other tables as "name: value" lines.
func DefaultTextTableRendererFunc(tableValues table.TableValues) string {
	var sb strings.Builder
	if !tableValues.HasRows {
		// get the longest field name to format the table nicely
		maxFieldNameLen := 0
		for _, field := range tableValues.Fields {
			maxFieldNameLen = max(maxFieldNameLen, len(field.Name))
		}
		// print the field names followed by their value
		for _, field := range tableValues.Fields {
			var value string
			if len(field.Values) > 0 {
				value = field.Values[0]
			}
			sb.WriteString(fmt.Sprintf("%s%-*s %s\n", field.Name, maxFieldNameLen-len(field.Name)+1, ":", value))
		}
		return sb.String()
	}
	const columnSpacing = 3
	// find the longest item per column -- can be the field name (column header) or a value
	widths := make([]int, len(tableValues.Fields))
	numeric := make([]bool, len(tableValues.Fields))
	for i, field := range tableValues.Fields {
		widths[i] = len(field.Name)
		numeric[i] = true
		for _, val := range field.Values {
			widths[i] = max(widths[i], len(val))
			if !isNumeric(val) {
				numeric[i] = false
			}
		}
	}
	cell := func(i int, val string) string {
		spacing := strings.Repeat(" ", columnSpacing)
		if i == len(widths)-1 {
			spacing = ""
		}
		if numeric[i] {
			return fmt.Sprintf("%*s%s", widths[i], val, spacing)
		}
		if i == len(widths)-1 {
			// the last column shouldn't occupy more space than the value
			return val
		}
		return fmt.Sprintf("%-*s%s", widths[i], val, spacing)
	}
	// print the field names, then underline them
	for i, field := range tableValues.Fields {
		sb.WriteString(cell(i, field.Name))
	}
	sb.WriteString("\n")
	for i, field := range tableValues.Fields {
		sb.WriteString(cell(i, strings.Repeat("-", len(field.Name))))
	}
	sb.WriteString("\n")
	// print the rows
	for row := range tableValues.NumRows() {
		for i, field := range tableValues.Fields {
			sb.WriteString(cell(i, field.Values[row]))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// isNumeric reports whether a formatted cell holds a number, a percentage
// or the not-applicable marker.
func isNumeric(val string) bool {
	if val == rundata.NotApplicable {
		return true
	}
	_, ok := parseNumber(val)
	return ok
}
