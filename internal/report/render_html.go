package report

// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"html"
	htmltemplate "html/template"
	"strings"

	"github.com/Rarst/sideface/internal/table"
)

// HtmlTitle heads every html report.
const HtmlTitle = "Sideface Report"

func getHtmlReportBegin() string {
	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html>
<html lang="en">
`)
	sb.WriteString("<head>\n")
	sb.WriteString(`    <meta charset="UTF-8">
    <title>` + HtmlTitle + `</title>
    <meta name="viewport" content="width=device-width, initial-scale=1">
`)
	sb.WriteString(`
	<style>
		body { font-family: sans-serif; font-size: 14px; margin: 0; }
		.content { padding: 0 2em 2em 2em; }
		.menu { padding: 1em 0; border-bottom: 1px solid #ccc; }
		.menu a { margin-right: 1.5em; color: #1f8dd6; text-decoration: none; }
		table.report-table { border-collapse: collapse; margin-bottom: 2em; }
		table.report-table th, table.report-table td { border: 1px solid #cbcbcb; padding: 0.3em 0.8em; }
		table.report-table thead { background-color: #e0e0e0; }
		table.report-table tbody tr:nth-child(2n) { background-color: #f2f2f2; }
		.field-description { position: relative; display: inline-block; margin-left: 0.3em; }
		.field-description .tooltip-icon { color: #888; cursor: help; }
		.field-description .tooltip-text {
			visibility: hidden;
			opacity: 0;
			position: absolute;
			z-index: 1;
			bottom: 125%;
			left: 50%;
			width: 200px;
			margin-left: -100px;
			padding: 0.5em;
			border-radius: 4px;
			background-color: #333;
			color: #fff;
			font-weight: normal;
			text-align: center;
			transition: opacity 0.3s;
		}
		.field-description:hover .tooltip-text {
			visibility: visible;
			opacity: 1;
		}
	</style>
	`)
	sb.WriteString("</head>\n")
	return sb.String()
}

func getHtmlReportMenu(allTableValues []table.TableValues) string {
	if len(allTableValues) < 2 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("<div class=\"menu\">\n")
	for _, tableValues := range allTableValues {
		sb.WriteString(fmt.Sprintf("<a href=\"#%s\">%s</a>\n", html.EscapeString(tableAnchor(tableValues.Name)), html.EscapeString(tableValues.Name)))
	}
	sb.WriteString("</div>\n")
	return sb.String()
}

// tableAnchor turns a table name into an html id.
func tableAnchor(name string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '"' || r == '\'' {
			return '-'
		}
		return r
	}, name)
}

func createHtmlReport(allTableValues []table.TableValues) (out []byte, err error) {
	var sb strings.Builder
	sb.WriteString(getHtmlReportBegin())
	sb.WriteString("<body>\n")
	sb.WriteString("<main class=\"content\">\n")
	sb.WriteString("<h1>" + HtmlTitle + "</h1>\n")
	sb.WriteString(getHtmlReportMenu(allTableValues))
	for _, tableValues := range allTableValues {
		sb.WriteString(fmt.Sprintf("<h2 id=\"%s\">%s</h2>\n", html.EscapeString(tableAnchor(tableValues.Name)), html.EscapeString(tableValues.Name)))
		// if there's no data in the table, print a message and continue
		if tableValues.NumRows() == 0 {
			msg := NoDataFound
			if tableValues.NoDataFound != "" {
				msg = tableValues.NoDataFound
			}
			sb.WriteString("<p>" + html.EscapeString(msg) + "</p>\n")
			continue
		}
		if renderer := tableValues.HTMLTableRendererFunc; renderer != nil {
			sb.WriteString(renderer(tableValues))
		} else {
			sb.WriteString(DefaultHTMLTableRendererFunc(tableValues))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("</main>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")
	out = []byte(sb.String())
	return
}

// CreateFieldNameWithDescription creates HTML for a field name with optional description tooltip
func CreateFieldNameWithDescription(fieldName, description string) string {
	if description == "" {
		return htmltemplate.HTMLEscapeString(fieldName)
	}
	return htmltemplate.HTMLEscapeString(fieldName) + `<span class="field-description"><span class="tooltip-icon">?</span><span class="tooltip-text">` + htmltemplate.HTMLEscapeString(description) + `</span></span>`
}

// renderHTMLTableWithDescriptions renders an HTML table with optional header descriptions.
// Values must already be escaped.
func renderHTMLTableWithDescriptions(tableHeaders []string, headerDescriptions []string, tableValues [][]string, class string, valuesStyle [][]string) string {
	var sb strings.Builder
	sb.WriteString(`<table class="` + class + `">`)
	if len(tableHeaders) > 0 {
		sb.WriteString(`<thead>`)
		sb.WriteString(`<tr>`)
		for i, label := range tableHeaders {
			var description string
			if headerDescriptions != nil && i < len(headerDescriptions) {
				description = headerDescriptions[i]
			}
			sb.WriteString(`<th>` + CreateFieldNameWithDescription(label, description) + `</th>`)
		}
		sb.WriteString(`</tr>`)
		sb.WriteString(`</thead>`)
	}
	sb.WriteString(`<tbody>`)
	for rowIdx, rowValues := range tableValues {
		sb.WriteString(`<tr>`)
		for colIdx, value := range rowValues {
			var style string
			if len(valuesStyle) > rowIdx && len(valuesStyle[rowIdx]) > colIdx && valuesStyle[rowIdx][colIdx] != "" {
				style = ` style="` + valuesStyle[rowIdx][colIdx] + `"`
			}
			sb.WriteString(`<td` + style + `>` + value + `</td>`)
		}
		sb.WriteString(`</tr>`)
	}
	sb.WriteString(`</tbody>`)
	sb.WriteString(`</table>`)
	return sb.String()
}

// DefaultHTMLTableRendererFunc renders row tables with a header line and
// numbers right-aligned, and other tables as name/value pairs.
func DefaultHTMLTableRendererFunc(tableValues table.TableValues) string {
	if tableValues.HasRows { // print the field names as column headings across the top of the table
		headers := []string{}
		headerDescriptions := []string{}
		for _, field := range tableValues.Fields {
			headers = append(headers, field.Name)
			headerDescriptions = append(headerDescriptions, field.Description)
		}
		values := [][]string{}
		styles := [][]string{}
		for row := range tableValues.NumRows() {
			rowValues := []string{}
			rowStyles := []string{}
			for _, field := range tableValues.Fields {
				rowValues = append(rowValues, htmltemplate.HTMLEscapeString(field.Values[row]))
				style := ""
				if isNumeric(field.Values[row]) {
					style = "text-align:right"
				}
				rowStyles = append(rowStyles, style)
			}
			values = append(values, rowValues)
			styles = append(styles, rowStyles)
		}
		return renderHTMLTableWithDescriptions(headers, headerDescriptions, values, "report-table", styles)
	}
	// print the field name followed by its value
	values := [][]string{}
	var tableValueStyles [][]string
	for _, field := range tableValues.Fields {
		rowValues := []string{}
		rowValues = append(rowValues, CreateFieldNameWithDescription(field.Name, field.Description))
		if len(field.Values) > 0 {
			rowValues = append(rowValues, htmltemplate.HTMLEscapeString(field.Values[0]))
		} else {
			rowValues = append(rowValues, "")
		}
		values = append(values, rowValues)
		tableValueStyles = append(tableValueStyles, []string{"font-weight:bold"})
	}
	return renderHTMLTableWithDescriptions(nil, nil, values, "report-table", tableValueStyles)
}
