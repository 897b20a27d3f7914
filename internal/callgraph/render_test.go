// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package callgraph

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDot writes a shell script standing in for Graphviz dot.
func fakeDot(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake renderer needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "dot")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755)) // #nosec G306
	return path
}

func TestRender(t *testing.T) {
	renderer := NewRenderer(fakeDot(t, `echo "$1"; cat`))
	out, err := renderer.Render(context.Background(), "digraph call_graph {\n}", PNG)
	require.NoError(t, err)
	assert.Equal(t, "-Tpng\ndigraph call_graph {\n}", string(out))
}

func TestRenderStderrIsFailure(t *testing.T) {
	renderer := NewRenderer(fakeDot(t, `cat; echo "syntax error in line 1" >&2`))
	out, err := renderer.Render(context.Background(), "digraph {", SVG)
	assert.ErrorIs(t, err, ErrRenderer)
	assert.ErrorContains(t, err, "syntax error in line 1")
	assert.Nil(t, out)
}

func TestRenderExitCodeIsFailure(t *testing.T) {
	renderer := NewRenderer(fakeDot(t, `exit 3`))
	_, err := renderer.Render(context.Background(), "digraph {}", SVG)
	assert.ErrorIs(t, err, ErrRenderer)
}

func TestRenderMissingBinary(t *testing.T) {
	renderer := NewRenderer(filepath.Join(t.TempDir(), "no-such-dot"))
	_, err := renderer.Render(context.Background(), "digraph {}", SVG)
	assert.ErrorIs(t, err, ErrRenderer)
}

func TestRenderCancelled(t *testing.T) {
	renderer := NewRenderer(fakeDot(t, `exec sleep 5`))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := renderer.Render(ctx, "digraph {}", SVG)
	assert.ErrorIs(t, err, ErrRenderer)
}

func TestNewRendererDefault(t *testing.T) {
	assert.Equal(t, DefaultDotBinary, NewRenderer("").Binary)
}

func TestParseFormat(t *testing.T) {
	for _, format := range Formats {
		parsed, err := ParseFormat(string(format))
		require.NoError(t, err)
		assert.Equal(t, format, parsed)
	}
	parsed, err := ParseFormat("PNG")
	require.NoError(t, err)
	assert.Equal(t, PNG, parsed)
	_, err = ParseFormat("bmp")
	assert.Error(t, err)
}

func TestMIMEType(t *testing.T) {
	assert.Equal(t, "image/jpeg", JPG.MIMEType())
	assert.Equal(t, "image/gif", GIF.MIMEType())
	assert.Equal(t, "image/png", PNG.MIMEType())
	assert.Equal(t, "image/svg+xml", SVG.MIMEType())
	assert.Equal(t, "application/postscript", PS.MIMEType())
	assert.True(t, SVG.IsText())
	assert.False(t, PNG.IsText())
}
