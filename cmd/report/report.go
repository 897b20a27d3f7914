// Package report is a subcommand of the root command. It generates flat and
// per-function reports from one run or the aggregate of several runs.
package report

// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rarst/sideface/internal/app"
	"github.com/Rarst/sideface/internal/config"
	"github.com/Rarst/sideface/internal/report"
	"github.com/Rarst/sideface/internal/rundata"
	"github.com/Rarst/sideface/internal/workflow"
)

const cmdName = "report"

var examples = []string{
	fmt.Sprintf("  Report on a run:                         $ %s %s --run 5f1c2e", app.Name, cmdName),
	fmt.Sprintf("  Top 20 functions by exclusive CPU time:  $ %s %s --run 5f1c2e --sort excl_cpu --limit 20", app.Name, cmdName),
	fmt.Sprintf("  Parents and children of a function:      $ %s %s --run 5f1c2e --symbol 'PDO::query'", app.Name, cmdName),
	fmt.Sprintf("  Weighted average of two runs:            $ %s %s --run 5f1c2e,7a9d01 --weights 3,1", app.Name, cmdName),
	fmt.Sprintf("  Filter functions, all output formats:    $ %s %s --run 5f1c2e --where 'wt > 1000 && ct >= 2' --format all", app.Name, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Generate a report from one run or the aggregate of several runs",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

// flag vars
var (
	flagRuns           []string
	flagWeights        []float64
	flagSymbol         string
	flagSort           string
	flagLimit          int
	flagWhere          string
	flagPrune          float64
	flagScriptIdentity bool
	flagFormat         []string
)

// flag names
const (
	flagWeightsName        = "weights"
	flagPruneName          = "prune"
	flagScriptIdentityName = "script-identity"
)

func init() {
	Cmd.Flags().StringSliceVar(&flagRuns, app.FlagRunName, nil, "")
	Cmd.Flags().Float64SliceVar(&flagWeights, flagWeightsName, nil, "")
	Cmd.Flags().String(config.FlagSourceName, "", "")
	Cmd.Flags().StringVar(&flagSymbol, app.FlagSymbolName, "", "")
	Cmd.Flags().StringVar(&flagSort, app.FlagSortName, report.DefaultSortColumn, "")
	Cmd.Flags().IntVar(&flagLimit, app.FlagLimitName, 0, "")
	Cmd.Flags().StringVar(&flagWhere, app.FlagWhereName, "", "")
	Cmd.Flags().Float64Var(&flagPrune, flagPruneName, 0, "")
	Cmd.Flags().BoolVar(&flagScriptIdentity, flagScriptIdentityName, false, "")
	Cmd.Flags().StringSliceVar(&flagFormat, app.FlagFormatName, []string{report.FormatTxt}, "")

	Cmd.SetUsageFunc(workflow.UsageFunc(getFlagGroups))
}

func getFlagGroups() []app.FlagGroup {
	var groups []app.FlagGroup
	flags := []app.Flag{
		{
			Name: app.FlagRunName,
			Help: "comma separated list of run ids, more than one id aggregates the runs",
		},
		{
			Name: config.FlagSourceName,
			Help: "source (namespace) of the runs",
		},
		{
			Name: app.FlagSymbolName,
			Help: "report on this function, its parents and its children",
		},
		{
			Name: app.FlagFormatName,
			Help: fmt.Sprintf("choose output format(s) from: %s", strings.Join(append([]string{report.FormatAll}, report.FormatOptions...), ", ")),
		},
	}
	groups = append(groups, app.FlagGroup{
		GroupName: "Options",
		Flags:     flags,
	})
	flags = []app.Flag{
		{
			Name: app.FlagSortName,
			Help: fmt.Sprintf("sort column, one of: %s", strings.Join(report.SortableColumns(), ", ")),
		},
		{
			Name: app.FlagLimitName,
			Help: "maximum number of functions in the report (0 = no limit)",
		},
		{
			Name: app.FlagWhereName,
			Help: "only report functions matching this expression over the sort columns, e.g., 'wt > 1000 && contains(fn, \"PDO\")'",
		},
	}
	groups = append(groups, app.FlagGroup{
		GroupName: "Sorting and Filtering Options",
		Flags:     flags,
	})
	flags = []app.Flag{
		{
			Name: flagWeightsName,
			Help: "comma separated list of weights, one per run",
		},
		{
			Name: flagScriptIdentityName,
			Help: "keep each run's page apart under a __script:: node when aggregating",
		},
		{
			Name: flagPruneName,
			Help: "drop functions below this percentage of total wall time (or samples)",
		},
	}
	groups = append(groups, app.FlagGroup{
		GroupName: "Aggregation Options",
		Flags:     flags,
	})
	return groups
}

func request() report.Request {
	return report.Request{
		Symbol:     flagSymbol,
		SortColumn: flagSort,
		Limit:      flagLimit,
		Where:      flagWhere,
	}
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if len(flagRuns) == 0 {
		return workflow.FlagValidationError(cmd, fmt.Sprintf("at least one run id must be given with --%s", app.FlagRunName))
	}
	if len(flagWeights) > 0 && len(flagWeights) != len(flagRuns) {
		return workflow.FlagValidationError(cmd, fmt.Sprintf("--%s needs one weight per run, got %d weights for %d runs", flagWeightsName, len(flagWeights), len(flagRuns)))
	}
	for _, weight := range flagWeights {
		if !(weight > 0) {
			return workflow.FlagValidationError(cmd, fmt.Sprintf("weights must be positive, got %v", weight))
		}
	}
	if flagPrune < 0 || flagPrune >= 100 {
		return workflow.FlagValidationError(cmd, fmt.Sprintf("--%s must be a percentage in [0, 100)", flagPruneName))
	}
	formatOptions := append([]string{report.FormatAll}, report.FormatOptions...)
	for _, format := range flagFormat {
		if !slices.Contains(formatOptions, format) {
			return workflow.FlagValidationError(cmd, fmt.Sprintf("format options are: %s", strings.Join(formatOptions, ", ")))
		}
	}
	if err := request().Validate(); err != nil {
		return workflow.FlagValidationError(cmd, err.Error())
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	req := request()
	reportingCommand := workflow.ReportingCommand{
		Cmd:     cmd,
		Formats: flagFormat,
		Request: req,
		AnalysisFunc: func(ctx context.Context, appContext app.Context) (*report.Analysis, error) {
			loaded, err := workflow.LoadRun(ctx, appContext, flagRuns, flagWeights, "", flagScriptIdentity)
			if err != nil {
				return nil, err
			}
			run := loaded.Run
			if flagPrune > 0 {
				pruned, err := rundata.Prune(run.Profile, flagPrune)
				if err != nil {
					return nil, err
				}
				slog.Debug("pruned profile", slog.Int("before", len(run.Profile)), slog.Int("after", len(pruned)))
				run.Profile = pruned
			}
			analysis, err := report.NewAnalysis(run, req)
			if err != nil {
				return nil, err
			}
			analysis.RunIDs = loaded.RunIDs
			analysis.BadRuns = loaded.BadRuns
			analysis.Description = loaded.Description
			return analysis, nil
		},
	}
	return reportingCommand.Run()
}
