// =============================================================================
// Production Sorter - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks exports against the
// reports they would feed without writing anything.
//
// COMMAND USAGE:
//   sorter validate [name...] [flags]
//
// Every problem is listed, not just the first one, so a file can be fixed in
// one pass. The command fails if any report would fail.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/ginjaninja78/production-sorter/internal/csvparser"
	"github.com/ginjaninja78/production-sorter/internal/mode"
	"github.com/ginjaninja78/production-sorter/internal/validation"
	"github.com/ginjaninja78/production-sorter/pkg/utils"
	"github.com/spf13/cobra"
)

var (
	validateFile       string
	validateDir        string
	validateMode       string
	validateMaxErrs    int
	validateNoWarnings bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [name...]",
	Short: "Check exports without writing reports",
	Long: `The validate command loads each export, selects its reports the same way
'process' does, and lists every problem that would make a report fail
(missing columns, malformed dates and numbers) plus warnings for rows that
would be merged or dropped unexpectedly.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		names := args
		if validateFile != "" {
			names = append([]string{validateFile}, names...)
		}
		if len(names) == 0 {
			return fmt.Errorf("no export given: pass a name or --file")
		}
		return runValidate(names)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFile, "file", "", "Base name or path of the export to check")
	validateCmd.Flags().StringVar(&validateDir, "dir", "", "Input directory (overrides input_dir)")
	validateCmd.Flags().StringVar(&validateMode, "mode", mode.Auto, "Report selection: auto, both, picking or bincount")
	validateCmd.Flags().IntVar(&validateMaxErrs, "max-errors", 100, "Stop listing after this many problems (0 for no limit)")
	validateCmd.Flags().BoolVar(&validateNoWarnings, "no-warnings", false, "Only report problems that make a report fail")
}

// runValidate checks every export in names.
func runValidate(names []string) error {
	cfg, run, err := setup()
	if err != nil {
		return err
	}
	defer run.Close()

	files := utils.NewFileManager(overrideDir(cfg.InputDir, validateDir), "", "")

	validator := validation.NewValidator(validation.ValidationOptions{
		DateLayout:   cfg.Report.DateLayout,
		MaxErrors:    validateMaxErrs,
		SkipWarnings: validateNoWarnings,
	})

	invalid := 0
	for _, name := range names {
		path, err := files.ResolveInput(name)
		if err != nil {
			fmt.Printf("✗ %s: %v\n", name, err)
			invalid++
			continue
		}

		modes, err := mode.Select(validateMode, path, cfg.Markers)
		if err != nil {
			return err
		}
		if len(modes) == 0 {
			fmt.Printf("- %s: no report applies\n", filepath.Base(path))
			continue
		}

		data, err := csvparser.Parse(path, cfg.CSVSettings)
		if err != nil {
			fmt.Printf("✗ %s: %v\n", filepath.Base(path), err)
			invalid++
			continue
		}

		result := validator.ValidateAll(data, modes)
		run.Logger.Debug("validated",
			"file", path,
			"rows", result.RowsValidated,
			"errors", result.ErrorCount,
			"warnings", result.WarningCount)

		mark := "✓"
		if !result.IsValid {
			mark = "✗"
			invalid++
		}
		fmt.Printf("%s %s: %d row(s), %d error(s), %d warning(s)\n",
			mark, filepath.Base(path), result.RowsValidated, result.ErrorCount, result.WarningCount)
		for _, problem := range result.Errors {
			fmt.Printf("    %s\n", problem.Error())
		}
		if result.Truncated {
			fmt.Printf("    ... stopped after %d problem(s)\n", validateMaxErrs)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d export(s) failed validation", invalid, len(names))
	}
	return nil
}
