// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableValues(t *testing.T) {
	tests := []struct {
		name       string
		definition TableDefinition
		fields     []Field
		wantRows   int
		wantFields int
	}{
		{
			name:       "valid",
			definition: TableDefinition{Name: "Functions", HasRows: true},
			fields:     []Field{{Name: "fn", Values: []string{"a", "b"}}, {Name: "wt", Values: []string{"1", "2"}}},
			wantRows:   2,
			wantFields: 2,
		},
		{
			name:       "no fields",
			definition: TableDefinition{Name: "Empty"},
		},
		{
			name:       "uneven fields are dropped",
			definition: TableDefinition{Name: "Uneven", HasRows: true},
			fields:     []Field{{Name: "fn", Values: []string{"a", "b"}}, {Name: "wt", Values: []string{"1"}}},
		},
		{
			name:       "unnamed field is dropped",
			definition: TableDefinition{Name: "Unnamed"},
			fields:     []Field{{Values: []string{"a"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tv := NewTableValues(tt.definition, tt.fields)
			assert.Equal(t, tt.definition.Name, tv.Name)
			assert.Equal(t, tt.wantRows, tv.NumRows())
			assert.Len(t, tv.Fields, tt.wantFields)
		})
	}
}

func TestGetFieldIndex(t *testing.T) {
	tv := NewTableValues(TableDefinition{Name: "T"}, []Field{{Name: "a", Values: []string{"1"}}, {Name: "b", Values: []string{"2"}}})
	idx, err := GetFieldIndex("b", tv)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = GetFieldIndex("c", tv)
	assert.Error(t, err)
}
