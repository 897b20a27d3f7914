// Package runs is a subcommand of the root command. It manages the run
// store: listing runs, importing pprof profiles, and looking up functions.
package runs

// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Rarst/sideface/internal/app"
	"github.com/Rarst/sideface/internal/config"
	"github.com/Rarst/sideface/internal/pprofimport"
	"github.com/Rarst/sideface/internal/report"
	"github.com/Rarst/sideface/internal/rundata"
	"github.com/Rarst/sideface/internal/runstore"
	"github.com/Rarst/sideface/internal/table"
	"github.com/Rarst/sideface/internal/util"
	"github.com/Rarst/sideface/internal/workflow"
)

const cmdName = "runs"

var examples = []string{
	fmt.Sprintf("  List stored runs:                $ %s %s list", app.Name, cmdName),
	fmt.Sprintf("  Import a Go CPU profile:         $ %s %s import --pprof cpu.pprof --source api", app.Name, cmdName),
	fmt.Sprintf("  Find functions by name:          $ %s %s symbols --run 5f1c2e --match query", app.Name, cmdName),
}

var Cmd = &cobra.Command{
	Use:     cmdName,
	Short:   "List, import, and inspect stored runs",
	Example: strings.Join(examples, "\n"),
	GroupID: "other",
	Args:    cobra.NoArgs,
}

var listCmd = &cobra.Command{
	Use:           "list",
	Short:         "List stored runs, newest first",
	RunE:          runList,
	PreRunE:       validateListFlags,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var importCmd = &cobra.Command{
	Use:           "import",
	Short:         "Import a pprof profile as a run",
	RunE:          runImport,
	PreRunE:       validateImportFlags,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var symbolsCmd = &cobra.Command{
	Use:           "symbols",
	Short:         "List the functions of a run whose name contains a string",
	RunE:          runSymbols,
	PreRunE:       validateSymbolsFlags,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var (
	flagFormat string
	flagPprof  string
	flagID     string
	flagPage   string
	flagRun    string
	flagMatch  string
)

const (
	flagPprofName = "pprof"
	flagIDName    = "id"
	flagPageName  = "page"
	flagMatchName = "match"
)

// RunsTableName is the name of the table listing stored runs.
const RunsTableName = "Runs"

func init() {
	listCmd.Flags().String(config.FlagSourceName, "", "only list runs of this source")
	listCmd.Flags().StringVar(&flagFormat, app.FlagFormatName, report.FormatTxt, fmt.Sprintf("output format, one of: %s, %s", report.FormatTxt, report.FormatJson))

	importCmd.Flags().StringVar(&flagPprof, flagPprofName, "", "pprof profile to import, gzipped or not")
	importCmd.Flags().String(config.FlagSourceName, "", "source (namespace) of the new run")
	importCmd.Flags().StringVar(&flagID, flagIDName, "", "id of the new run, generated when empty")
	importCmd.Flags().StringVar(&flagPage, flagPageName, "", "page or command the profile was taken of")

	symbolsCmd.Flags().StringVar(&flagRun, app.FlagRunName, "", "id of the run")
	symbolsCmd.Flags().String(config.FlagSourceName, "", "source (namespace) of the run")
	symbolsCmd.Flags().StringVar(&flagMatch, flagMatchName, "", "case-insensitive part of the function name")

	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(importCmd)
	Cmd.AddCommand(symbolsCmd)
}

func validateListFlags(cmd *cobra.Command, args []string) error {
	if !slices.Contains([]string{report.FormatTxt, report.FormatJson}, flagFormat) {
		return workflow.FlagValidationError(cmd, fmt.Sprintf("format options are: %s, %s", report.FormatTxt, report.FormatJson))
	}
	return nil
}

// runsTable lays out run summaries as a report table.
func runsTable(summaries []runstore.Summary) table.TableValues {
	fields := []table.Field{{Name: "Run"}, {Name: "Source"}, {Name: "Time"}}
	for _, summary := range summaries {
		fields[0].Values = append(fields[0].Values, summary.ID)
		fields[1].Values = append(fields[1].Values, summary.Source)
		fields[2].Values = append(fields[2].Values, summary.Timestamp.Local().Format(time.DateTime))
	}
	return table.NewTableValues(table.TableDefinition{
		Name:        RunsTableName,
		HasRows:     true,
		NoDataFound: "No runs found.",
	}, fields)
}

func runList(cmd *cobra.Command, args []string) error {
	appContext, err := app.FromCommand(cmd)
	if err != nil {
		return workflow.CommandError(cmd, err)
	}
	source := ""
	if cmd.Flags().Changed(config.FlagSourceName) {
		source = appContext.Config.Source
	}
	summaries, err := appContext.Store().ListRuns(source)
	if err != nil {
		return workflow.CommandError(cmd, err)
	}
	out, err := report.Create(flagFormat, []table.TableValues{runsTable(summaries)}, "")
	if err != nil {
		return workflow.CommandError(cmd, err)
	}
	fmt.Print(string(out))
	return nil
}

func validateImportFlags(cmd *cobra.Command, args []string) error {
	if flagPprof == "" {
		return workflow.FlagValidationError(cmd, fmt.Sprintf("--%s is required", flagPprofName))
	}
	exists, err := util.FileExists(util.ExpandUser(flagPprof))
	if err != nil {
		return workflow.FlagValidationError(cmd, err.Error())
	}
	if !exists {
		return workflow.FlagValidationError(cmd, fmt.Sprintf("profile file %s does not exist", flagPprof))
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	appContext, err := app.FromCommand(cmd)
	if err != nil {
		return workflow.CommandError(cmd, err)
	}
	id, err := importProfile(appContext.Store(), util.ExpandUser(flagPprof), flagID, appContext.Config.Source, flagPage)
	if err != nil {
		return workflow.CommandError(cmd, err)
	}
	fmt.Printf("Imported run %s (source %s)\n", id, appContext.Config.Source)
	return nil
}

// importProfile converts the pprof file and saves it as a run.
func importProfile(store runstore.Store, path, id, source, page string) (string, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return "", errors.Wrap(err, "failed to open profile")
	}
	defer f.Close()
	p, err := pprofimport.Read(f)
	if err != nil {
		return "", errors.Wrapf(err, "failed to import %s", path)
	}
	return store.SaveRun(rundata.Run{ID: id, Source: source, Page: page, Profile: p})
}

func validateSymbolsFlags(cmd *cobra.Command, args []string) error {
	if flagRun == "" {
		return workflow.FlagValidationError(cmd, fmt.Sprintf("--%s is required", app.FlagRunName))
	}
	if flagMatch == "" {
		return workflow.FlagValidationError(cmd, fmt.Sprintf("--%s is required", flagMatchName))
	}
	return nil
}

func runSymbols(cmd *cobra.Command, args []string) error {
	appContext, err := app.FromCommand(cmd)
	if err != nil {
		return workflow.CommandError(cmd, err)
	}
	loaded, err := workflow.LoadRun(cmd.Context(), appContext, []string{flagRun}, nil, "", false)
	if err != nil {
		return workflow.CommandError(cmd, err)
	}
	for _, symbol := range rundata.MatchingSymbols(loaded.Run.Profile, flagMatch) {
		fmt.Println(symbol)
	}
	return nil
}
