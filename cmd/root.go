// =============================================================================
// Production Sorter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// (process, validate, version) is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (sorter)
//   ├── processCmd (sorter process)
//   ├── validateCmd (sorter validate)
//   └── versionCmd (sorter version)
//
// The root command owns the global flags and the shared start-up steps:
// loading the configuration and building the run logger.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/production-sorter/internal/config"
	"github.com/ginjaninja78/production-sorter/internal/logging"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sorter",
	Short: "Production Sorter - Turn warehouse CSV exports into deduplicated XLSX reports",
	Long: `Production Sorter reads CSV exports from the warehouse management system and
writes cleaned-up XLSX reports next to them (or into the output directory).

Reports:
  - Picking:   PICKING transactions merged by part, bin, user and minute,
               with quantities summed. Selected by "Production" in the file name.
  - Bin Count: the latest count per part, bin and calendar day.
               Selected by "Bin" in the file name.

A file whose name carries both markers produces both reports.

Example Usage:
  sorter process                          # Ask for a file name interactively
  sorter process --file "Production 01"   # Convert one export from the input directory
  sorter process --all --archive          # Convert every export, archive the inputs
  sorter validate --file "Bin 01"         # Check an export without writing anything`,

	// SilenceUsage keeps a conversion failure from printing the flag help.
	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file (missing file means defaults)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED START-UP
// =============================================================================

// setup loads the configuration and builds the run logger.
//
// RETURNS:
//   - The loaded configuration.
//   - The run logger. The caller must Close it.
//   - An error if the configuration is invalid or the log file cannot be opened.
func setup() (*config.MainConfig, *logging.Run, error) {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	run, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFile, verbose)
	if err != nil {
		return nil, nil, err
	}

	run.Logger.Debug("configuration loaded",
		"config", cfgFile,
		"input_dir", cfg.InputDir,
		"output_dir", cfg.OutputDir)

	return cfg, run, nil
}

// overrideDir returns flag with "~" expanded, or configured when flag is empty.
func overrideDir(configured, flag string) string {
	if flag == "" {
		return configured
	}
	return config.ExpandHome(flag)
}
