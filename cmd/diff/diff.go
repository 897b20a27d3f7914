// Package diff is a subcommand of the root command. It reports the
// difference between two runs.
package diff

// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rarst/sideface/internal/app"
	"github.com/Rarst/sideface/internal/config"
	"github.com/Rarst/sideface/internal/report"
	"github.com/Rarst/sideface/internal/runstore"
	"github.com/Rarst/sideface/internal/workflow"
)

const cmdName = "diff"

var examples = []string{
	fmt.Sprintf("  Compare two runs:                 $ %s %s --run1 5f1c2e --run2 7a9d01", app.Name, cmdName),
	fmt.Sprintf("  Biggest changes in calls:         $ %s %s --run1 5f1c2e --run2 7a9d01 --sort ct --limit 10", app.Name, cmdName),
	fmt.Sprintf("  How one function changed:         $ %s %s --run1 5f1c2e --run2 7a9d01 --symbol 'PDO::query'", app.Name, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Report the difference between two runs",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var (
	flagRun1   string
	flagRun2   string
	flagSymbol string
	flagSort   string
	flagLimit  int
	flagWhere  string
	flagFormat []string
)

const (
	flagRun1Name = "run1"
	flagRun2Name = "run2"
)

func init() {
	Cmd.Flags().StringVar(&flagRun1, flagRun1Name, "", "")
	Cmd.Flags().StringVar(&flagRun2, flagRun2Name, "", "")
	Cmd.Flags().String(config.FlagSourceName, "", "")
	Cmd.Flags().StringVar(&flagSymbol, app.FlagSymbolName, "", "")
	Cmd.Flags().StringVar(&flagSort, app.FlagSortName, report.DefaultSortColumn, "")
	Cmd.Flags().IntVar(&flagLimit, app.FlagLimitName, 0, "")
	Cmd.Flags().StringVar(&flagWhere, app.FlagWhereName, "", "")
	Cmd.Flags().StringSliceVar(&flagFormat, app.FlagFormatName, []string{report.FormatTxt}, "")

	Cmd.SetUsageFunc(workflow.UsageFunc(getFlagGroups))
}

func getFlagGroups() []app.FlagGroup {
	var groups []app.FlagGroup
	flags := []app.Flag{
		{
			Name: flagRun1Name,
			Help: "id of the base run",
		},
		{
			Name: flagRun2Name,
			Help: "id of the run compared against the base run",
		},
		{
			Name: config.FlagSourceName,
			Help: "source (namespace) of both runs",
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
			Help: fmt.Sprintf("sort column, one of: %s; the largest changes in either direction come first", strings.Join(report.SortableColumns(), ", ")),
		},
		{
			Name: app.FlagLimitName,
			Help: "maximum number of functions in the report (0 = no limit)",
		},
		{
			Name: app.FlagWhereName,
			Help: "only report functions whose changes match this expression, e.g., 'abs(wt) > 500'",
		},
	}
	groups = append(groups, app.FlagGroup{
		GroupName: "Sorting and Filtering Options",
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
	if flagRun1 == "" || flagRun2 == "" {
		return workflow.FlagValidationError(cmd, fmt.Sprintf("both --%s and --%s must be given", flagRun1Name, flagRun2Name))
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
		Cmd:            cmd,
		ReportNamePost: cmdName,
		Formats:        flagFormat,
		Request:        req,
		AnalysisFunc: func(ctx context.Context, appContext app.Context) (*report.Analysis, error) {
			runs, err := runstore.GetRuns(ctx, appContext.Store(), []string{flagRun1, flagRun2}, appContext.Config.Source)
			if err != nil {
				return nil, err
			}
			return report.NewDiffAnalysis(runs[0], runs[1], req)
		},
	}
	return reportingCommand.Run()
}
