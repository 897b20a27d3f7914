// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package table provides the table types reports are rendered from.
package table

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// Field represents the values for a field in a table
type Field struct {
	Name        string
	Description string // optional description of the field
	Values      []string
}

// TableValues combines the table definition with the resulting fields and their values
type TableValues struct {
	TableDefinition
	Fields []Field
}

type TextTableRenderer func(TableValues) string
type HTMLTableRenderer func(TableValues) string
type XlsxTableRenderer func(TableValues, *excelize.File, string, *int)

// TableDefinition defines the structure of a table in the report
type TableDefinition struct {
	Name        string
	HasRows     bool   // table is meant to be displayed in row form, i.e., a field may have multiple values
	NoDataFound string // message to display when no data is found
	// optional renderers, the report's default renderers are used when nil
	TextTableRendererFunc TextTableRenderer
	HTMLTableRendererFunc HTMLTableRenderer
	XlsxTableRendererFunc XlsxTableRenderer
}

// NewTableValues pairs a definition with its fields. Fields that fail
// validation are dropped and logged so the table renders as empty.
func NewTableValues(definition TableDefinition, fields []Field) TableValues {
	tableValues := TableValues{
		TableDefinition: definition,
		Fields:          fields,
	}
	if err := validateTableValues(tableValues); err != nil {
		slog.Error("table validation failed", slog.String("table", definition.Name), slog.String("error", err.Error()))
		tableValues.Fields = []Field{}
	}
	return tableValues
}

// NumRows returns the number of values in the first field.
func (tv TableValues) NumRows() int {
	if len(tv.Fields) == 0 {
		return 0
	}
	return len(tv.Fields[0].Values)
}

// GetFieldIndex returns the index of a field with the given name in the TableValues structure.
// Returns:
//   - int: The index of the field if found and valid, -1 otherwise
//   - error: nil if successful, an error describing the issue otherwise
func GetFieldIndex(fieldName string, tableValues TableValues) (int, error) {
	for i, field := range tableValues.Fields {
		if field.Name == fieldName {
			if len(field.Values) == 0 {
				return -1, fmt.Errorf("field [%s] does not have associated value(s)", field.Name)
			}
			return i, nil
		}
	}
	return -1, fmt.Errorf("field [%s] not found in table [%s]", fieldName, tableValues.Name)
}

func validateTableValues(tableValues TableValues) error {
	if tableValues.Name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	// no field values is a valid state
	if len(tableValues.Fields) == 0 {
		return nil
	}
	// field names cannot be empty
	for i, field := range tableValues.Fields {
		if field.Name == "" {
			return fmt.Errorf("table %s, field %d, name cannot be empty", tableValues.Name, i)
		}
	}
	// the number of entries in each field must be the same
	numEntries := len(tableValues.Fields[0].Values)
	for i, field := range tableValues.Fields {
		if len(field.Values) != numEntries {
			return fmt.Errorf("table %s, field %d, %s, number of entries must be the same for all fields, expected %d, got %d", tableValues.Name, i, field.Name, numEntries, len(field.Values))
		}
	}
	return nil
}
