package converter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ginjaninja78/production-sorter/internal/types"
	"github.com/ginjaninja78/production-sorter/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// RunBatch converts every file in paths, at most limit at a time.
//
// PARAMETERS:
//   - ctx: Cancelling it stops files that have not started yet.
//   - paths: Input files, as returned by FileManager.DiscoverInputFiles.
//   - limit: Maximum concurrent files; values below 1 mean 1.
//
// RETURNS:
//   - One Result per path, in the order of paths.
//   - The context error if the batch was interrupted.
func (c *Converter) RunBatch(ctx context.Context, paths []string, limit int) ([]Result, error) {
	if limit < 1 {
		limit = 1
	}

	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{FilePath: path, Error: err}
				return nil
			}
			results[i] = c.Run(gctx, path)
			return nil
		})
	}

	_ = g.Wait()

	c.logger.Info("batch complete",
		slog.Int("files", len(paths)),
		slog.Int("failed", countFailed(results)))

	return results, ctx.Err()
}

func countFailed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Success {
			n++
		}
	}
	return n
}

// =============================================================================
// RUN REPORTING
// =============================================================================

// ErrorLogEntries flattens the failures in results for utils.WriteErrorLog.
func ErrorLogEntries(results []Result) []utils.ErrorLogEntry {
	var entries []utils.ErrorLogEntry
	now := time.Now()

	for _, r := range results {
		if r.Error == nil {
			continue
		}

		if len(r.Reports) == 0 {
			entries = append(entries, entryFor(now, r.FilePath, "", r.Error))
			continue
		}
		for _, rep := range r.Reports {
			if rep.Error != nil {
				entries = append(entries, entryFor(now, r.FilePath, rep.Mode.String(), rep.Error))
			}
		}
	}

	return entries
}

func entryFor(now time.Time, file, mode string, err error) utils.ErrorLogEntry {
	entry := utils.ErrorLogEntry{
		Timestamp:    now,
		FileName:     file,
		Mode:         mode,
		ErrorType:    ErrorType(err),
		ErrorMessage: err.Error(),
	}

	var fieldErr *types.FieldError
	if errors.As(err, &fieldErr) {
		entry.RowNumber = fieldErr.Row
		entry.FieldName = fieldErr.Column
		entry.FieldValue = fieldErr.Value
	}
	var colErr *types.ColumnError
	if errors.As(err, &colErr) {
		entry.FieldName = colErr.Column
	}

	return entry
}

// Summarize builds the processing summary of a run.
func Summarize(runID string, start, end time.Time, results []Result) utils.ProcessingSummary {
	summary := utils.ProcessingSummary{
		RunID:      runID,
		StartTime:  start,
		EndTime:    end,
		TotalFiles: len(results),
	}

	for _, r := range results {
		summary.TotalRows += r.Stats.RowsRead
		switch {
		case r.Skipped:
			summary.SkippedFiles++
		case r.Success:
			summary.SuccessfulFiles++
			outputs := r.OutputFiles()
			summary.ReportsWritten += len(outputs)
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   r.FilePath,
				OutputFiles: outputs,
				ArchivePath: r.ArchivePath,
				Rows:        r.Stats.RowsRead,
				ReportRows:  r.Stats.ReportRows,
				ProcessTime: r.Stats.ProcessingTime,
			})
		default:
			summary.FailedFiles++
			// Reports of the successful mode were still written.
			summary.ReportsWritten += len(r.OutputFiles())
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    r.FilePath,
				ErrorMessage: r.Error.Error(),
				ErrorType:    ErrorType(r.Error),
			})
		}
	}

	return summary
}
