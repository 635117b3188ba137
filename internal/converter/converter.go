// =============================================================================
// Production Sorter - Converter Module
// =============================================================================
//
// This module orchestrates the pipeline for a single export, from loading the
// table to writing one workbook per report mode.
//
// CONVERSION PIPELINE:
//   1. Resolve the input path from a base name or path
//   2. Load the table (delimiter and encoding from config)
//   3. Select the report modes (file name markers or --mode)
//   4. For each mode: decode, aggregate, write the workbook
//   5. Archive the input when requested and every report succeeded
//
// A failing mode does not stop the other one; its error is recorded in the
// Result and no partial workbook is written for it.
//
// CONCURRENCY:
//   A Converter holds no per-file state, so RunBatch calls Convert from
//   several goroutines at once.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ginjaninja78/production-sorter/internal/aggregator"
	"github.com/ginjaninja78/production-sorter/internal/config"
	"github.com/ginjaninja78/production-sorter/internal/csvparser"
	"github.com/ginjaninja78/production-sorter/internal/mode"
	"github.com/ginjaninja78/production-sorter/internal/types"
	"github.com/ginjaninja78/production-sorter/internal/xlsxwriter"
	"github.com/ginjaninja78/production-sorter/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// Modes are the reports selected for the file.
	Modes []types.Mode

	// Reports holds one entry per selected mode, in Modes order.
	Reports []ReportResult

	// ArchivePath is where the input was moved, if it was archived.
	ArchivePath string

	// Success indicates that every selected report was produced.
	Success bool

	// Skipped is set when no mode applied to the file.
	Skipped bool

	// Error is the load error, or the joined errors of the failed modes.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ReportResult is the outcome of one mode.
type ReportResult struct {
	Mode types.Mode

	// OutputFile is the written workbook. Empty on failure or in a dry run.
	OutputFile string

	// Rows is the number of aggregated rows.
	Rows int

	Error error
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsRead is the number of data rows in the input table.
	RowsRead int

	// ReportRows is the total number of rows across the written reports.
	ReportRows int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// OutputFiles lists the workbooks written for the file.
func (r Result) OutputFiles() []string {
	var files []string
	for _, rep := range r.Reports {
		if rep.OutputFile != "" {
			files = append(files, rep.OutputFile)
		}
	}
	return files
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options are the per-invocation switches of the process command.
type Options struct {
	// Mode is the --mode flag: "auto", "both", "picking" or "bincount".
	Mode string

	// DryRun aggregates and logs but writes nothing.
	DryRun bool
}

// Converter runs the pipeline with one configuration.
type Converter struct {
	cfg    *config.MainConfig
	files  *utils.FileManager
	logger *slog.Logger
	runID  string
	opts   Options
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - cfg: The loaded configuration.
//   - files: Input lookup, output naming and archiving.
//   - logger: The run logger.
//   - runID: Stamped into every workbook written.
//   - opts: Mode override and dry-run switch.
//
// RETURNS:
//   - A new Converter instance.
func New(cfg *config.MainConfig, files *utils.FileManager, logger *slog.Logger, runID string, opts Options) *Converter {
	return &Converter{
		cfg:    cfg,
		files:  files,
		logger: logger,
		runID:  runID,
		opts:   opts,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// Run resolves name, loads it and converts it.
func (c *Converter) Run(ctx context.Context, name string) Result {
	startTime := time.Now()

	path, err := c.files.ResolveInput(name)
	if err != nil {
		return Result{FilePath: name, Error: err, Stats: ProcessingStats{ProcessingTime: time.Since(startTime)}}
	}

	data, err := c.Load(path)
	if err != nil {
		return Result{FilePath: path, Error: err, Stats: ProcessingStats{ProcessingTime: time.Since(startTime)}}
	}

	result := c.Convert(ctx, path, data)
	result.Stats.ProcessingTime = time.Since(startTime)
	return result
}

// Load parses the input table.
func (c *Converter) Load(path string) (*csvparser.CSVData, error) {
	data, err := csvparser.Parse(path, c.cfg.CSVSettings)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("loaded input",
		slog.String("file", path),
		slog.Int("rows", data.RowCount),
		slog.Int("columns", data.ColumnCount))
	return data, nil
}

// Convert builds and writes every report that applies to the loaded table.
//
// PARAMETERS:
//   - ctx: Checked before each mode; cancellation fails the remaining modes.
//   - path: The input path, used for mode detection and output naming.
//   - data: The loaded table.
//
// RETURNS:
//   - A Result. Success is true only if every selected mode produced its
//     report.
//
// PROCESSING STEPS:
//   1. Select the modes
//   2. For each mode: aggregate, then write (unless dry run)
//   3. Archive the input
func (c *Converter) Convert(ctx context.Context, path string, data *csvparser.CSVData) Result {
	startTime := time.Now()
	result := Result{
		FilePath: path,
		Stats:    ProcessingStats{RowsRead: data.RowCount},
	}
	log := c.logger.With(slog.String("file", path))

	// =========================================================================
	// STEP 1: SELECT MODES
	// =========================================================================

	modes, err := mode.Select(c.opts.Mode, path, c.cfg.Markers)
	if err != nil {
		result.Error = err
		return result
	}
	result.Modes = modes

	if len(modes) == 0 {
		log.Warn("no report applies to file",
			slog.String("production_marker", c.cfg.Markers.Production),
			slog.String("bin_marker", c.cfg.Markers.Bin))
		result.Skipped = true
		result.Success = true
		return result
	}

	// =========================================================================
	// STEP 2: BUILD AND WRITE EACH REPORT
	// =========================================================================

	var errs []error
	for _, m := range modes {
		rep := c.convertMode(ctx, log, path, data, m, len(modes) > 1)
		result.Reports = append(result.Reports, rep)
		if rep.Error != nil {
			errs = append(errs, fmt.Errorf("%s report: %w", m, rep.Error))
			continue
		}
		result.Stats.ReportRows += rep.Rows
	}

	result.Error = errors.Join(errs...)
	result.Success = result.Error == nil

	// =========================================================================
	// STEP 3: ARCHIVE
	// =========================================================================

	if result.Success && !c.opts.DryRun && c.files.ArchiveOnSuccess {
		archived, err := c.files.ArchiveInputFile(path)
		if err != nil {
			// Reports are already written; archiving is best effort.
			log.Warn("failed to archive input", slog.Any("error", err))
		} else {
			result.ArchivePath = archived
			log.Info("archived input", slog.String("archive", archived))
		}
	}

	result.Stats.ProcessingTime = time.Since(startTime)
	return result
}

// convertMode produces the report of one mode.
func (c *Converter) convertMode(ctx context.Context, log *slog.Logger, path string, data *csvparser.CSVData, m types.Mode, multi bool) ReportResult {
	rep := ReportResult{Mode: m}
	log = log.With(slog.String("mode", m.String()))

	if err := ctx.Err(); err != nil {
		rep.Error = err
		return rep
	}

	report, err := aggregator.Run(m, data, c.cfg.Report)
	if err != nil {
		log.Error("report failed", slog.String("error_type", ErrorType(err)), slog.Any("error", err))
		rep.Error = err
		return rep
	}
	rep.Rows = len(report.Rows)

	if c.opts.DryRun {
		log.Info("dry run: report not written",
			slog.Int("source_rows", report.SourceRows),
			slog.Int("report_rows", rep.Rows))
		return rep
	}

	output := c.files.ReportPath(path, m, multi)
	if utils.FileExists(output) {
		log.Debug("replacing existing report", slog.String("output", output))
	}

	if err := xlsxwriter.Write(output, report, xlsxwriter.Options{RunID: c.runID, SourceFile: path}); err != nil {
		log.Error("failed to write report", slog.String("output", output), slog.Any("error", err))
		rep.Error = err
		return rep
	}

	rep.OutputFile = output
	log.Info("wrote report",
		slog.String("output", output),
		slog.Int("source_rows", report.SourceRows),
		slog.Int("report_rows", rep.Rows))
	return rep
}

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

// ErrorType names the class of err for logs and the error log file.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, types.ErrFileNotFound):
		return "file_not_found"
	case errors.Is(err, types.ErrLoad):
		return "load_error"
	case errors.Is(err, types.ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, types.ErrMalformedTimestamp):
		return "malformed_timestamp"
	case errors.Is(err, types.ErrMalformedNumber):
		return "malformed_number"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
