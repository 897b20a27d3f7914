package util

// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandUser(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	assert.Equal(t, home, ExpandUser("~"))
	assert.Equal(t, filepath.Join(home, "runs"), ExpandUser("~"+string(os.PathSeparator)+"runs"))
	assert.Equal(t, "/tmp/runs", ExpandUser("/tmp/runs"))
	assert.Equal(t, "~other", ExpandUser("~other"))
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "run.sideface")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))

	tests := []struct {
		name       string
		path       string
		fileExists bool
		fileErr    bool
		dirExists  bool
		dirErr     bool
	}{
		{name: "file", path: file, fileExists: true, dirErr: true},
		{name: "directory", path: dir, fileErr: true, dirExists: true},
		{name: "missing", path: filepath.Join(dir, "missing")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists, err := FileExists(tt.path)
			assert.Equal(t, tt.fileExists, exists)
			assert.Equal(t, tt.fileErr, err != nil)
			exists, err = DirectoryExists(tt.path)
			assert.Equal(t, tt.dirExists, exists)
			assert.Equal(t, tt.dirErr, err != nil)
		})
	}
}

func TestCreateDirectoryIfNotExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, CreateDirectoryIfNotExists(dir, 0o755))
	exists, err := DirectoryExists(dir)
	require.NoError(t, err)
	assert.True(t, exists)
	// existing directories are left alone
	require.NoError(t, CreateDirectoryIfNotExists(dir, 0o755))

	file := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	assert.Error(t, CreateDirectoryIfNotExists(file, 0o755))
}

func TestAbsPath(t *testing.T) {
	path, err := AbsPath("runs")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
}
