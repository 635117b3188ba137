// =============================================================================
// Production Sorter - Process Command
// =============================================================================
//
// This file defines the 'process' command, which converts exports into XLSX
// reports.
//
// COMMAND USAGE:
//   sorter process [name...] [flags]
//
// FLAGS:
//   --file     : Base name or path of one export to convert
//   --all      : Convert every export in the input directory
//   --pattern  : Glob used with --all (default "*.csv")
//   --dir      : Input directory override
//   --out      : Output directory override
//   --mode     : auto, both, picking or bincount (default auto)
//   --dry-run  : Aggregate and log, but write nothing
//   --archive  : Move inputs to the archive directory after success
//
// Without a name, --file or --all the command runs the interactive session:
// it asks for a file name, converts it and offers another one.
//
// PROCESSING PIPELINE (per file):
//   1. Resolve and load the export
//   2. Select the report modes
//   3. Aggregate and write one workbook per mode
//   4. Archive the export when requested
//   5. Write the error log and run summary (batch runs)
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ginjaninja78/production-sorter/internal/config"
	"github.com/ginjaninja78/production-sorter/internal/converter"
	"github.com/ginjaninja78/production-sorter/internal/logging"
	"github.com/ginjaninja78/production-sorter/internal/mode"
	"github.com/ginjaninja78/production-sorter/internal/prompt"
	"github.com/ginjaninja78/production-sorter/pkg/utils"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	// filePath is one export to convert.
	filePath string

	// processAll converts every export in the input directory.
	processAll bool

	// pattern filters the files picked up by --all.
	pattern string

	// inputDir and outputDir override the configured directories.
	inputDir  string
	outputDir string

	// modeFlag overrides file name detection.
	modeFlag string

	// dryRun aggregates without writing reports.
	dryRun bool

	// archive moves successful inputs to the archive directory.
	archive bool
)

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process [name...]",
	Short: "Convert CSV exports into XLSX reports",
	Long: `The process command converts warehouse exports into XLSX reports.

The report is chosen from the file name: "Production" selects the Picking
report and "Bin" selects the Bin Count report. Use --mode to override.

A name without a directory is looked up in the input directory, and ".csv"
is appended when missing. Reports are written as <name>.xlsx, or as
<name>_Picking.xlsx and <name>_BinCount.xlsx when both reports apply.

On error:
  - The failing report is not written; the other report still is
  - The export is not archived
  - An error log is written to the output directory (batch runs)`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context(), args)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&filePath, "file", "", "Base name or path of the export to convert")
	processCmd.Flags().BoolVar(&processAll, "all", false, "Convert every export in the input directory")
	processCmd.Flags().StringVar(&pattern, "pattern", "*"+utils.InputExt, "Glob used to discover exports with --all")
	processCmd.Flags().StringVar(&inputDir, "dir", "", "Input directory (overrides input_dir)")
	processCmd.Flags().StringVar(&outputDir, "out", "", "Output directory (overrides output_dir)")
	processCmd.Flags().StringVar(&modeFlag, "mode", mode.Auto, "Report selection: auto, both, picking or bincount")
	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Aggregate and log, but write no files")
	processCmd.Flags().BoolVar(&archive, "archive", false, "Archive exports after every report succeeded")

	processCmd.MarkFlagsMutuallyExclusive("file", "all")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess is the main function that orchestrates the conversion pipeline.
//
// Only batch runs trap SIGINT; the interactive session keeps the default
// behaviour so Ctrl-C at a prompt ends the process.
func runProcess(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, run, err := setup()
	if err != nil {
		return err
	}
	defer run.Close()

	// Reject a bad --mode before touching any file.
	if _, err := mode.Select(modeFlag, "", cfg.Markers); err != nil {
		return err
	}

	files := newFileManager(cfg)
	if !dryRun {
		if err := files.EnsureDirectories(); err != nil {
			return err
		}
	}

	conv := converter.New(cfg, files, run.Logger, run.ID, converter.Options{Mode: modeFlag, DryRun: dryRun})

	names := args
	if filePath != "" {
		names = append([]string{filePath}, names...)
	}

	switch {
	case processAll:
		paths, err := files.DiscoverInputFiles(pattern)
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
		if len(paths) == 0 {
			fmt.Printf("No exports matching %q in %s.\n", pattern, files.InputDir)
			return nil
		}
		return runBatch(ctx, conv, cfg, files, run, paths)

	case len(names) > 0:
		return runBatch(ctx, conv, cfg, files, run, names)

	default:
		return conv.Interactive(ctx, prompt.New(os.Stdin, os.Stdout))
	}
}

// newFileManager applies the directory flags on top of the configuration.
func newFileManager(cfg *config.MainConfig) *utils.FileManager {
	in := overrideDir(cfg.InputDir, inputDir)
	out := overrideDir(cfg.OutputDir, outputDir)

	files := utils.NewFileManager(in, out, cfg.ArchiveDir)
	files.ArchiveOnSuccess = archive
	files.UseTimestampSubdirs = cfg.ArchiveByDate
	return files
}

// runBatch converts names, prints one line per file and writes the run logs.
func runBatch(parent context.Context, conv *converter.Converter, cfg *config.MainConfig, files *utils.FileManager, run *logging.Run, names []string) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	startTime := time.Now()

	fmt.Println("=== Production Sorter ===")
	fmt.Printf("Processing %d file(s)...\n", len(names))

	results, batchErr := conv.RunBatch(ctx, names, cfg.MaxConcurrency)

	for _, result := range results {
		printResult(result)
	}

	summary := converter.Summarize(run.ID, startTime, time.Now(), results)

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", summary.TotalFiles)
	fmt.Printf("Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Printf("Skipped:         %d\n", summary.SkippedFiles)
	fmt.Printf("Errors:          %d\n", summary.FailedFiles)
	fmt.Printf("Reports written: %d\n", summary.ReportsWritten)
	fmt.Printf("Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond))

	if !dryRun {
		writeRunLogs(run, files, results, summary)
	}

	if batchErr != nil {
		return fmt.Errorf("processing interrupted: %w", batchErr)
	}
	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// printResult prints the outcome of one file.
func printResult(result converter.Result) {
	name := filepath.Base(result.FilePath)

	switch {
	case result.Skipped:
		fmt.Printf("  - %s: no report applies\n", name)
	case result.Success && dryRun:
		fmt.Printf("  ✓ %s: %d report row(s) (dry run)\n", name, result.Stats.ReportRows)
	case result.Success:
		fmt.Printf("  ✓ %s -> %s\n", name, strings.Join(baseNames(result.OutputFiles()), ", "))
	default:
		fmt.Printf("  ✗ %s: %v\n", name, oneLine(result.Error))
		for _, out := range result.OutputFiles() {
			fmt.Printf("      still written: %s\n", filepath.Base(out))
		}
	}
}

// writeRunLogs writes the error log and summary into the output directory.
// Failures are logged; the reports themselves are already on disk.
func writeRunLogs(run *logging.Run, files *utils.FileManager, results []converter.Result, summary utils.ProcessingSummary) {
	dir := files.OutputDir
	if dir == "" {
		dir = files.InputDir
	}

	if entries := converter.ErrorLogEntries(results); len(entries) > 0 {
		path, err := utils.WriteErrorLog(entries, dir)
		if err != nil {
			run.Logger.Error("failed to write error log", "error", err)
		} else {
			fmt.Printf("\nErrors have been logged to %s\n", path)
		}
	}

	if _, err := utils.WriteSummaryLog(summary, dir); err != nil {
		run.Logger.Error("failed to write summary", "error", err)
	}
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}

// oneLine flattens joined errors for the console.
func oneLine(err error) string {
	if err == nil {
		return ""
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		parts := make([]string, 0, len(joined.Unwrap()))
		for _, e := range joined.Unwrap() {
			parts = append(parts, e.Error())
		}
		return strings.Join(parts, "; ")
	}
	return strings.ReplaceAll(err.Error(), "\n", "; ")
}
