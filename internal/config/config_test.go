// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sideface.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "sideface", cfg.Suffix)
	assert.Equal(t, "dot", cfg.DotBinary)
	assert.Equal(t, 0.01, cfg.Threshold)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
runs_dir: /var/lib/sideface
source: shop
render_timeout: 5s
threshold: 0.05
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/sideface", cfg.RunsDir)
	assert.Equal(t, "shop", cfg.Source)
	assert.Equal(t, 5*time.Second, cfg.RenderTimeout)
	assert.Equal(t, 0.05, cfg.Threshold)
	// unset keys keep their defaults
	assert.Equal(t, "sideface", cfg.Suffix)
	assert.Equal(t, "dot", cfg.DotBinary)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown key", content: "runsdir: /tmp\n"},
		{name: "threshold out of range", content: "threshold: 1.5\n"},
		{name: "negative timeout", content: "render_timeout: -1s\n"},
		{name: "not yaml", content: "runs_dir: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(FlagRunsDirName, "", "")
	flags.String(FlagSourceName, "", "")
	flags.Float64(FlagThresholdName, 0, "")
	flags.Duration(FlagRenderTimeoutName, 0, "")
	require.NoError(t, flags.Parse([]string{"--" + FlagSourceName, "api", "--" + FlagThresholdName, "0.2"}))

	cfg := Default()
	cfg.RunsDir = "/from/file"
	require.NoError(t, cfg.ApplyFlags(flags))
	assert.Equal(t, "api", cfg.Source)
	assert.Equal(t, 0.2, cfg.Threshold)
	// flags that were not given do not override
	assert.Equal(t, "/from/file", cfg.RunsDir)
	assert.Equal(t, DefaultRenderTimeout, cfg.RenderTimeout)
}

func TestApplyFlagsInvalid(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64(FlagThresholdName, 0, "")
	require.NoError(t, flags.Parse([]string{"--" + FlagThresholdName, "-0.5"}))
	cfg := Default()
	assert.Error(t, cfg.ApplyFlags(flags))
}
