package report

// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/json"

	"github.com/Rarst/sideface/internal/table"
)

// createJsonReport writes each table as a list of records keyed by field
// name. Tables keep their report order.
func createJsonReport(allTableValues []table.TableValues) (out []byte, err error) {
	type outRecord map[string]string
	type outTable struct {
		Name    string      `json:"name"`
		Records []outRecord `json:"records"`
	}
	oReport := make([]outTable, 0, len(allTableValues))
	for _, tableValues := range allTableValues {
		oTable := outTable{Name: tableValues.Name, Records: []outRecord{}}
		for recordIdx := range tableValues.NumRows() {
			oRecord := make(outRecord)
			for _, field := range tableValues.Fields {
				oRecord[field.Name] = field.Values[recordIdx]
			}
			oTable.Records = append(oTable.Records, oRecord)
		}
		oReport = append(oReport, oTable)
	}
	return json.MarshalIndent(oReport, "", " ")
}
