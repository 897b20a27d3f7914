// Package callgraph is a subcommand of the root command. It draws the call
// graph of a run, or of the difference between two runs, with Graphviz.
package callgraph

// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Rarst/sideface/internal/app"
	"github.com/Rarst/sideface/internal/callgraph"
	"github.com/Rarst/sideface/internal/config"
	"github.com/Rarst/sideface/internal/progress"
	"github.com/Rarst/sideface/internal/rundata"
	"github.com/Rarst/sideface/internal/runstore"
	"github.com/Rarst/sideface/internal/workflow"
)

const cmdName = "callgraph"

var examples = []string{
	fmt.Sprintf("  Call graph of a run:                 $ %s %s --run 5f1c2e", app.Name, cmdName),
	fmt.Sprintf("  Without critical path, as PNG:       $ %s %s --run 5f1c2e --critical=false --type png", app.Name, cmdName),
	fmt.Sprintf("  Neighbours of one function:          $ %s %s --run 5f1c2e --func 'PDO::query'", app.Name, cmdName),
	fmt.Sprintf("  Difference between two runs:         $ %s %s --run1 5f1c2e --run2 7a9d01", app.Name, cmdName),
	fmt.Sprintf("  DOT script to stdout:                $ %s %s --run 5f1c2e --script-only --stdout", app.Name, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Aliases:       []string{"graph"},
	Short:         "Draw the call graph of a run or of the difference between two runs",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var (
	flagRun        string
	flagRun1       string
	flagRun2       string
	flagFunc       string
	flagCritical   bool
	flagType       string
	flagScriptOnly bool
	flagStdout     bool
)

const (
	flagRun1Name       = "run1"
	flagRun2Name       = "run2"
	flagFuncName       = "func"
	flagCriticalName   = "critical"
	flagTypeName       = "type"
	flagScriptOnlyName = "script-only"
	flagStdoutName     = "stdout"
)

func init() {
	Cmd.Flags().StringVar(&flagRun, app.FlagRunName, "", "")
	Cmd.Flags().StringVar(&flagRun1, flagRun1Name, "", "")
	Cmd.Flags().StringVar(&flagRun2, flagRun2Name, "", "")
	Cmd.Flags().String(config.FlagSourceName, "", "")
	Cmd.Flags().Float64(config.FlagThresholdName, callgraph.DefaultThreshold, "")
	Cmd.Flags().StringVar(&flagFunc, flagFuncName, "", "")
	Cmd.Flags().BoolVar(&flagCritical, flagCriticalName, true, "")
	Cmd.Flags().StringVar(&flagType, flagTypeName, string(callgraph.SVG), "")
	Cmd.Flags().BoolVar(&flagScriptOnly, flagScriptOnlyName, false, "")
	Cmd.Flags().BoolVar(&flagStdout, flagStdoutName, false, "")
	Cmd.Flags().String(config.FlagDotName, "", "")
	Cmd.Flags().Duration(config.FlagRenderTimeoutName, config.DefaultRenderTimeout, "")

	Cmd.MarkFlagsMutuallyExclusive(app.FlagRunName, flagRun1Name)
	Cmd.MarkFlagsMutuallyExclusive(app.FlagRunName, flagRun2Name)
	Cmd.MarkFlagsRequiredTogether(flagRun1Name, flagRun2Name)

	Cmd.SetUsageFunc(workflow.UsageFunc(getFlagGroups))
}

func getFlagGroups() []app.FlagGroup {
	var groups []app.FlagGroup
	formats := make([]string, 0, len(callgraph.Formats))
	for _, format := range callgraph.Formats {
		formats = append(formats, string(format))
	}
	flags := []app.Flag{
		{
			Name: app.FlagRunName,
			Help: "id of the run to draw",
		},
		{
			Name: flagRun1Name,
			Help: "id of the base run of a diff graph",
		},
		{
			Name: flagRun2Name,
			Help: "id of the run compared against the base run",
		},
		{
			Name: config.FlagSourceName,
			Help: "source (namespace) of the runs",
		},
		{
			Name: flagTypeName,
			Help: fmt.Sprintf("image format, one of: %s", strings.Join(formats, ", ")),
		},
		{
			Name: flagStdoutName,
			Help: "write the image to stdout instead of the output directory",
		},
	}
	groups = append(groups, app.FlagGroup{
		GroupName: "Options",
		Flags:     flags,
	})
	flags = []app.Flag{
		{
			Name: config.FlagThresholdName,
			Help: "leave out functions below this share of the total, in [0, 1)",
		},
		{
			Name: flagFuncName,
			Help: "only draw this function and the functions it shares an edge with",
		},
		{
			Name: flagCriticalName,
			Help: "highlight the critical path",
		},
	}
	groups = append(groups, app.FlagGroup{
		GroupName: "Graph Options",
		Flags:     flags,
	})
	flags = []app.Flag{
		{
			Name: flagScriptOnlyName,
			Help: "write the DOT script instead of rendering it",
		},
		{
			Name: config.FlagDotName,
			Help: "path of the Graphviz dot executable",
		},
		{
			Name: config.FlagRenderTimeoutName,
			Help: "maximum time given to dot",
		},
	}
	groups = append(groups, app.FlagGroup{
		GroupName: "Advanced Options",
		Flags:     flags,
	})
	return groups
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if flagRun == "" && (flagRun1 == "" || flagRun2 == "") {
		return workflow.FlagValidationError(cmd, fmt.Sprintf("either --%s or both --%s and --%s must be given", app.FlagRunName, flagRun1Name, flagRun2Name))
	}
	if _, err := callgraph.ParseFormat(flagType); err != nil {
		return workflow.FlagValidationError(cmd, err.Error())
	}
	return nil
}

// graphScript loads the run(s) and generates the DOT script.
func graphScript(ctx context.Context, appContext app.Context) (script string, name string, err error) {
	cfg := appContext.Config
	var edges int
	if flagRun != "" {
		loaded, err := workflow.LoadRun(ctx, appContext, []string{flagRun}, nil, "", false)
		if err != nil {
			return "", "", err
		}
		opts := callgraph.NewOptions(cfg.Threshold, flagFunc, flagCritical, loaded.Run.Page)
		script, err = callgraph.Script(loaded.Run.Profile, opts)
		if err != nil {
			return "", "", err
		}
		name = flagRun
		edges = len(loaded.Run.Profile)
	} else {
		var runs []rundata.Run
		runs, err = runstore.GetRuns(ctx, appContext.Store(), []string{flagRun1, flagRun2}, cfg.Source)
		if err != nil {
			return "", "", err
		}
		opts := callgraph.NewOptions(cfg.Threshold, flagFunc, flagCritical, "")
		script, err = callgraph.DiffScript(runs[0].Profile, runs[1].Profile, opts)
		if err != nil {
			return "", "", err
		}
		name = flagRun1 + "_" + flagRun2 + "_diff"
		edges = max(len(runs[0].Profile), len(runs[1].Profile))
	}
	if appContext.Stats != nil {
		appContext.Stats.ObserveAnalysis(cmdName, edges)
	}
	return script, name + "_" + cmdName, nil
}

func render(ctx context.Context, appContext app.Context, script string, format callgraph.Format) ([]byte, error) {
	cfg := appContext.Config
	ctx, cancel := context.WithTimeout(ctx, cfg.RenderTimeout)
	defer cancel()
	renderer := callgraph.NewRenderer(cfg.DotBinary)
	multiSpinner := progress.NewMultiSpinner()
	_ = multiSpinner.AddSpinner(cmdName)
	multiSpinner.Start()
	_ = multiSpinner.Status(cmdName, "rendering "+string(format))
	start := time.Now()
	image, err := renderer.Render(ctx, script, format)
	if err != nil {
		_ = multiSpinner.Status(cmdName, "failed")
	} else {
		_ = multiSpinner.Status(cmdName, "done")
	}
	multiSpinner.Finish()
	if appContext.Stats != nil {
		appContext.Stats.ObserveRender(string(format), time.Since(start), err)
	}
	slog.Debug("rendered call graph", slog.String("format", string(format)), slog.Int("bytes", len(image)), slog.Duration("elapsed", time.Since(start)))
	return image, err
}

func runCmd(cmd *cobra.Command, args []string) error {
	appContext, err := app.FromCommand(cmd)
	if err != nil {
		return workflow.CommandError(cmd, err)
	}
	format, err := callgraph.ParseFormat(flagType)
	if err != nil {
		return workflow.FlagValidationError(cmd, err.Error())
	}
	ctx, stop := workflow.SignalContext(cmd.Context())
	defer stop()
	script, name, err := graphScript(ctx, appContext)
	if err != nil {
		return workflow.CommandError(cmd, err)
	}
	output := []byte(script)
	extension := "dot"
	if !flagScriptOnly {
		output, err = render(ctx, appContext, script, format)
		if err != nil {
			return workflow.CommandError(cmd, err)
		}
		extension = string(format)
	}
	if flagStdout {
		if !flagScriptOnly && !format.IsText() && term.IsTerminal(int(os.Stdout.Fd())) {
			return workflow.CommandError(cmd, errors.Errorf("refusing to write a %s image to a terminal, redirect stdout or drop --%s", format, flagStdoutName))
		}
		if _, err := os.Stdout.Write(output); err != nil {
			return workflow.CommandError(cmd, errors.Wrap(err, "failed to write to stdout"))
		}
		return nil
	}
	outputPath, err := workflow.WriteOutput(appContext, name+"."+extension, output)
	if err != nil {
		return workflow.CommandError(cmd, err)
	}
	fmt.Println("Call graph file:")
	fmt.Printf("  %s\n", outputPath)
	return nil
}
