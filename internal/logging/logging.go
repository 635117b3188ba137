// Package logging builds the structured logger shared by every command.
//
// Each process run gets a random run ID. It is attached to every log line
// and stamped into the workbooks the run writes.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// RunIDKey is the attribute name carrying the run ID.
const RunIDKey = "run_id"

// Run is the logger of one invocation plus the resources behind it.
type Run struct {
	Logger *slog.Logger
	ID     string

	file *os.File
}

// New creates the run logger.
//
// PARAMETERS:
//   - w: Console destination (stderr in production).
//   - level: "debug", "info", "warn" or "error".
//   - file: Optional log file, appended to and created with its directory.
//   - verbose: Forces debug level.
//
// RETURNS:
//   - The run. Call Close when done.
//   - An error if the log file cannot be opened.
func New(w io.Writer, level, file string, verbose bool) (*Run, error) {
	lvl := parseLogLevel(level)
	if verbose {
		lvl = slog.LevelDebug
	}

	run := &Run{ID: uuid.NewString()}

	output := w
	if file != "" {
		f, err := openLogFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		run.file = f
		output = io.MultiWriter(w, f)
	}

	handler := slog.NewTextHandler(output, &slog.HandlerOptions{Level: lvl})
	run.Logger = slog.New(handler).With(slog.String(RunIDKey, run.ID))

	return run, nil
}

// Close releases the log file, if any.
func (r *Run) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
