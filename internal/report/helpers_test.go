package report

// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Rarst/sideface/internal/rundata"
	"github.com/Rarst/sideface/internal/table"
)

// sampleRun is main() 1000 -> foo 600 -> bar 200.
func sampleRun() rundata.Run {
	return rundata.Run{
		ID:   "run1",
		Page: "/index.php",
		Profile: rundata.ProfileFromRaw(map[string]map[string]float64{
			"main()":       {"wt": 1000, "ct": 1, "mu": 4096},
			"main()==>foo": {"wt": 600, "ct": 2, "mu": 2048},
			"foo==>bar":    {"wt": 200, "ct": 2, "mu": 1024},
		}),
	}
}

// slowerRun is sampleRun with foo taking 300 more.
func slowerRun() rundata.Run {
	return rundata.Run{
		ID: "run2",
		Profile: rundata.ProfileFromRaw(map[string]map[string]float64{
			"main()":       {"wt": 1300, "ct": 1, "mu": 4096},
			"main()==>foo": {"wt": 900, "ct": 2, "mu": 2048},
			"foo==>bar":    {"wt": 200, "ct": 2, "mu": 1024},
		}),
	}
}

func findTable(t *testing.T, tables []table.TableValues, name string) table.TableValues {
	t.Helper()
	for _, tv := range tables {
		if tv.Name == name {
			return tv
		}
	}
	require.Failf(t, "table not found", "no table named %q", name)
	return table.TableValues{}
}

func fieldValues(t *testing.T, tv table.TableValues, name string) []string {
	t.Helper()
	idx, err := table.GetFieldIndex(name, tv)
	require.NoError(t, err, "field %q in table %q", name, tv.Name)
	return tv.Fields[idx].Values
}
