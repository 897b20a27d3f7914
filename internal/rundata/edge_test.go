// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package rundata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEdge(t *testing.T) {
	tests := []struct {
		key      string
		expected Edge
	}{
		{"main()", Edge{Child: "main()"}},
		{"main()==>foo", Edge{Parent: "main()", Child: "foo"}},
		{"Foo::bar==>baz@1", Edge{Parent: "Foo::bar", Child: "baz@1"}},
		{"==>foo", Edge{Parent: "", Child: "foo"}},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, DecodeEdge(test.key), "key %s", test.key)
	}
}

func TestEdgeRoundTrip(t *testing.T) {
	pairs := []Edge{
		{Child: "main()"},
		{Parent: "main()", Child: "foo"},
		{Parent: "foo", Child: "bar"},
		{Parent: "__pruned__()", Child: "bar"},
		{Parent: "__script::index.php", Child: "run_init::index.php"},
	}
	for _, edge := range pairs {
		assert.Equal(t, edge, DecodeEdge(EncodeEdge(edge.Parent, edge.Child)))
		assert.Equal(t, edge.String(), EncodeEdge(edge.Parent, edge.Child))
	}
}

func TestRootEdge(t *testing.T) {
	assert.True(t, RootEdge.IsRoot())
	assert.Equal(t, "main()", RootEdge.String())
	assert.False(t, Edge{Parent: "main()", Child: "foo"}.IsRoot())
}

func TestProfileJSON(t *testing.T) {
	p := sampleProfile()
	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"main()": {"ct": 1, "wt": 1000, "mu": 4096},
		"main()==>foo": {"ct": 2, "wt": 600, "mu": 2048},
		"foo==>bar": {"ct": 2, "wt": 200, "mu": 1024}
	}`, string(out))

	var decoded Profile
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, p, decoded)

	assert.Error(t, json.Unmarshal([]byte(`{"main()": {"bogus": 1}}`), &decoded))
}
