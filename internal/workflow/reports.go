// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package workflow

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rarst/sideface/internal/app"
	"github.com/Rarst/sideface/internal/report"
	"github.com/Rarst/sideface/internal/table"
	"github.com/Rarst/sideface/internal/util"
)

// maxNameRuns is the number of run ids that make it into a report file name.
const maxNameRuns = 3

// reportBaseName names report files after the analysed runs.
func reportBaseName(analysis *report.Analysis, post string) string {
	ids := analysis.RunIDs
	name := strings.Join(ids, "_")
	if len(ids) > maxNameRuns {
		name = fmt.Sprintf("%s_and_%d_more", strings.Join(ids[:maxNameRuns], "_"), len(ids)-maxNameRuns)
	}
	if post != "" {
		name += "_" + post
	}
	return name
}

// writeReport writes the report bytes to the specified path.
func writeReport(reportBytes []byte, reportPath string) error {
	err := os.WriteFile(reportPath, reportBytes, 0644) // #nosec G306
	if err != nil {
		err = fmt.Errorf("failed to write report file: %v", err)
		slog.Error(err.Error())
		return err
	}
	return nil
}

// WriteOutput writes a file to the output directory, creating the directory
// if needed, and returns its path.
func WriteOutput(appContext app.Context, filename string, data []byte) (string, error) {
	if err := util.CreateDirectoryIfNotExists(appContext.OutputDir, 0755); err != nil { // #nosec G301
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(appContext.OutputDir, filename)
	if err := writeReport(data, outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

// createReports creates the requested report(s) from the table values and
// returns the paths of the report files.
func createReports(appContext app.Context, allTableValues []table.TableValues, briefTableName string, formats []string, baseName string) ([]string, error) {
	reportFilePaths := []string{}
	for _, format := range formats {
		reportBytes, err := report.Create(format, allTableValues, briefTableName)
		if err != nil {
			return nil, fmt.Errorf("failed to create report: %w", err)
		}
		if len(formats) == 1 && format == report.FormatTxt {
			fmt.Print(string(reportBytes))
		}
		reportPath, err := WriteOutput(appContext, fmt.Sprintf("%s.%s", baseName, format), reportBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to write report: %w", err)
		}
		reportFilePaths = append(reportFilePaths, reportPath)
	}
	return reportFilePaths, nil
}
