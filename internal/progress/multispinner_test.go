package progress

// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiSpinnerLabels(t *testing.T) {
	spinner := NewMultiSpinnerTo(&bytes.Buffer{}, false)
	require.NoError(t, spinner.AddSpinner("report"))
	require.NoError(t, spinner.AddSpinner("callgraph"))
	assert.Error(t, spinner.AddSpinner("report"), "added spinner with same label")

	assert.NoError(t, spinner.Status("report", "loading runs"))
	assert.Error(t, spinner.Status("diff", "loading runs"))
}

func TestMultiSpinnerWritesStatusChanges(t *testing.T) {
	var out bytes.Buffer
	spinner := NewMultiSpinnerTo(&out, false)
	require.NoError(t, spinner.AddSpinner("report"))
	spinner.Start()
	require.NoError(t, spinner.Status("report", "loading runs"))
	require.NoError(t, spinner.Status("report", "loading runs"))
	spinner.Finish()

	text := out.String()
	assert.Equal(t, 1, strings.Count(text, "loading runs"))
	assert.NotContains(t, text, "\x1b[1A")
}

func TestMultiSpinnerTerminalRedraws(t *testing.T) {
	var out bytes.Buffer
	spinner := NewMultiSpinnerTo(&out, true)
	require.NoError(t, spinner.AddSpinner("report"))
	spinner.Start()
	spinner.Finish()

	text := out.String()
	assert.Equal(t, 2, strings.Count(text, "report"))
	assert.Equal(t, 1, strings.Count(text, "\x1b[1A"))
}

func TestMultiSpinnerFinishWithoutStart(t *testing.T) {
	var out bytes.Buffer
	spinner := NewMultiSpinnerTo(&out, true)
	spinner.Finish()
	assert.Empty(t, out.String())
}
