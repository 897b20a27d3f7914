// Package config loads the optional sideface configuration file and merges
// command line flags into it.
package config

// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"

	"github.com/Rarst/sideface/internal/callgraph"
	"github.com/Rarst/sideface/internal/runstore"
)

// Flag names that override configuration values.
const (
	FlagRunsDirName       = "runs-dir"
	FlagSuffixName        = "suffix"
	FlagSourceName        = "source"
	FlagDotName           = "dot"
	FlagRenderTimeoutName = "render-timeout"
	FlagThresholdName     = "threshold"
)

// Defaults.
const (
	DefaultRunsDir       = "runs"
	DefaultSource        = "sideface"
	DefaultRenderTimeout = 30 * time.Second
)

// Config holds the settings shared by all commands.
type Config struct {
	RunsDir       string        `yaml:"runs_dir"`
	Suffix        string        `yaml:"suffix"`
	Source        string        `yaml:"source"`
	DotBinary     string        `yaml:"dot_binary"`
	RenderTimeout time.Duration `yaml:"render_timeout"` // e.g., 10s
	Threshold     float64       `yaml:"threshold"`      // call-graph node threshold, [0, 1)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RunsDir:       DefaultRunsDir,
		Suffix:        runstore.DefaultSuffix,
		Source:        DefaultSource,
		DotBinary:     callgraph.DefaultDotBinary,
		RenderTimeout: DefaultRenderTimeout,
		Threshold:     callgraph.DefaultThreshold,
	}
}

// Load reads the configuration file at path on top of the defaults. An
// empty path returns the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config file %s", path)
	}
	slog.Debug("loaded config", slog.String("path", path), slog.String("runs_dir", cfg.RunsDir), slog.String("source", cfg.Source))
	return cfg, nil
}

// Validate checks value ranges. Empty strings are filled with defaults.
func (c *Config) Validate() error {
	defaults := Default()
	if c.RunsDir == "" {
		c.RunsDir = defaults.RunsDir
	}
	if c.Suffix == "" {
		c.Suffix = defaults.Suffix
	}
	if c.Source == "" {
		c.Source = defaults.Source
	}
	if c.DotBinary == "" {
		c.DotBinary = defaults.DotBinary
	}
	if c.RenderTimeout <= 0 {
		return errors.Errorf("render timeout must be positive, got %s", c.RenderTimeout)
	}
	if math.IsNaN(c.Threshold) || c.Threshold < 0 || c.Threshold >= 1 {
		return errors.Errorf("threshold must be in [0, 1), got %g", c.Threshold)
	}
	return nil
}

// ApplyFlags overrides values with the flags of the set that were given on
// the command line. Flags the set does not define are ignored.
func (c *Config) ApplyFlags(flags *pflag.FlagSet) error {
	changed := func(name string) bool {
		flag := flags.Lookup(name)
		return flag != nil && flag.Changed
	}
	var err error
	if changed(FlagRunsDirName) {
		c.RunsDir, err = flags.GetString(FlagRunsDirName)
		if err != nil {
			return err
		}
	}
	if changed(FlagSuffixName) {
		c.Suffix, err = flags.GetString(FlagSuffixName)
		if err != nil {
			return err
		}
	}
	if changed(FlagSourceName) {
		c.Source, err = flags.GetString(FlagSourceName)
		if err != nil {
			return err
		}
	}
	if changed(FlagDotName) {
		c.DotBinary, err = flags.GetString(FlagDotName)
		if err != nil {
			return err
		}
	}
	if changed(FlagRenderTimeoutName) {
		c.RenderTimeout, err = flags.GetDuration(FlagRenderTimeoutName)
		if err != nil {
			return err
		}
	}
	if changed(FlagThresholdName) {
		c.Threshold, err = flags.GetFloat64(FlagThresholdName)
		if err != nil {
			return err
		}
	}
	return c.Validate()
}
