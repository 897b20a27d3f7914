// Package workflow implements the common flow/logic for the analysis
// commands (report, diff, callgraph). It handles loading runs from the
// store, report generation, and error reporting.
package workflow

// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Rarst/sideface/internal/app"
	"github.com/Rarst/sideface/internal/progress"
	"github.com/Rarst/sideface/internal/report"
)

// AnalysisFunc loads the runs a command works on and analyses them.
type AnalysisFunc func(ctx context.Context, appContext app.Context) (*report.Analysis, error)

// ReportingCommand represents a command that generates reports from stored runs.
type ReportingCommand struct {
	Cmd            *cobra.Command
	ReportNamePost string // appended to the report file names, e.g., "diff"
	Formats        []string
	Request        report.Request
	AnalysisFunc   AnalysisFunc
}

// Run is the common flow/logic for the 'report' and 'diff' commands.
// The individual commands populate the ReportingCommand struct with the
// details specific to the command and then call this Run function.
func (rc *ReportingCommand) Run() error {
	appContext, err := app.FromCommand(rc.Cmd)
	if err != nil {
		return CommandError(rc.Cmd, err)
	}
	ctx, stop := SignalContext(rc.Cmd.Context())
	defer stop()
	label := rc.Cmd.Name()
	multiSpinner := progress.NewMultiSpinner()
	_ = multiSpinner.AddSpinner(label)
	multiSpinner.Start()
	_ = multiSpinner.Status(label, "analyzing runs")
	analysis, err := rc.AnalysisFunc(ctx, appContext)
	if err != nil {
		_ = multiSpinner.Status(label, "failed")
		multiSpinner.Finish()
		return CommandError(rc.Cmd, err)
	}
	if appContext.Stats != nil {
		appContext.Stats.ObserveAnalysis(rc.Cmd.Name(), len(analysis.Profile))
	}
	_ = multiSpinner.Status(label, "building tables")
	allTableValues, err := report.Tables(analysis, rc.Request)
	if err != nil {
		_ = multiSpinner.Status(label, "failed")
		multiSpinner.Finish()
		return CommandError(rc.Cmd, err)
	}
	_ = multiSpinner.Status(label, "done")
	// txt reports may go to stdout
	multiSpinner.Finish()
	// check report formats
	formats := rc.Formats
	if slices.Contains(formats, report.FormatAll) {
		formats = report.FormatOptions
	}
	reportFilePaths, err := createReports(appContext, allTableValues, report.BriefTableName(analysis), formats, reportBaseName(analysis, rc.ReportNamePost))
	if err != nil {
		return CommandError(rc.Cmd, err)
	}
	if len(reportFilePaths) > 0 {
		fmt.Println("Report files:")
	}
	for _, reportFilePath := range reportFilePaths {
		fmt.Printf("  %s\n", reportFilePath)
	}
	return nil
}

// FlagValidationError is used to report an error with a flag
func FlagValidationError(cmd *cobra.Command, msg string) error {
	err := fmt.Errorf("%s", msg)
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	fmt.Fprintf(os.Stderr, "See '%s --help' for usage details.\n", cmd.CommandPath())
	cmd.SilenceUsage = true
	return err
}

// CommandError reports an error that is not caused by the flags: usage is
// not shown.
func CommandError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	slog.Error(err.Error(), slog.String("command", cmd.Name()))
	cmd.SilenceUsage = true
	return err
}
