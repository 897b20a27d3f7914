// Package app defines application-wide types, constants, and context
// that are shared across multiple commands.
package app

// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Rarst/sideface/internal/config"
	"github.com/Rarst/sideface/internal/runstore"
	"github.com/Rarst/sideface/internal/stats"
)

// Name is the name of the application executable.
var Name = filepath.Base(os.Args[0])

// Context represents the application context that can be accessed from all commands.
type Context struct {
	Timestamp   string        // Timestamp is the timestamp when the application was started.
	OutputDir   string        // OutputDir is the directory where the application will write output files.
	LogFilePath string        // LogFilePath is the path to the log file.
	Version     string        // Version is the version of the application.
	Debug       bool          // Debug is true if the application is running in debug mode.
	Config      config.Config // Config is the configuration file merged with the global flags.
	MetricsFile string        // MetricsFile receives the invocation's counters, when set.
	Stats       *stats.Stats
}

// FromCommand returns the application context stored on the root command.
func FromCommand(cmd *cobra.Command) (Context, error) {
	root := cmd.Root()
	if root.Context() == nil {
		return Context{}, errors.New("application context not initialized")
	}
	appContext, ok := root.Context().Value(Context{}).(Context)
	if !ok {
		return Context{}, errors.New("application context not initialized")
	}
	return appContext, nil
}

// Store opens the run store the configuration points to.
func (c Context) Store() runstore.Store {
	return runstore.NewFileStore(c.Config.RunsDir, c.Config.Suffix)
}

// Flag names for flags shared by the analysis commands.
const (
	FlagFormatName = "format"
	FlagRunName    = "run"
	FlagSymbolName = "symbol"
	FlagSortName   = "sort"
	FlagLimitName  = "limit"
	FlagWhereName  = "where"
)

// Flag names for flags defined in the root command, but sometimes used in other commands.
const (
	FlagDebugName       = "debug"
	FlagSyslogName      = "syslog"
	FlagLogStdOutName   = "log-stdout"
	FlagOutputDirName   = "output"
	FlagConfigName      = "config"
	FlagMetricsFileName = "metrics-file"
)

// Flag represents a command-line flag with its name and help text.
type Flag struct {
	Name string
	Help string
}

// FlagGroup represents a group of related flags with a group name.
type FlagGroup struct {
	GroupName string
	Flags     []Flag
}
