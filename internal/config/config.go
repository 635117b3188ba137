// =============================================================================
// Production Sorter - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration. A single YAML file (config.yaml) holds every setting; a
// missing file is not an error and yields the defaults.
//
// CONFIGURATION SECTIONS:
//   1. Directories (input, output, archive)
//   2. Logging (level, optional log file)
//   3. CSV settings (delimiter, encoding)
//   4. Mode markers (file name substrings selecting the report modes)
//   5. Report settings (source date layout, display format)
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory where exports are looked up by base name.
	// A leading "~" is expanded to the user's home directory.
	// Default: "~/Downloads"
	InputDir string `yaml:"input_dir"`

	// OutputDir is the directory where reports are written.
	// Default: empty, so each report is written next to its input.
	OutputDir string `yaml:"output_dir"`

	// ArchiveDir is where inputs are moved after a successful conversion
	// when archiving is requested.
	// Default: "<InputDir>/input_archive"
	ArchiveDir string `yaml:"archive_dir"`

	// ArchiveByDate files archived inputs under yyyy/mm/dd subdirectories.
	ArchiveByDate bool `yaml:"archive_by_date"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional log file. Logs always go to stderr as well.
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files converted at once in
	// batch mode. Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// CSVSettings contains settings for parsing the input file.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// Markers are the file name substrings that select report modes.
	Markers Markers `yaml:"markers"`

	// Report contains date parsing and rendering settings.
	Report ReportSettings `yaml:"report"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields in the CSV.
	// Common values: "," (comma), "|" (pipe), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the CSV file.
	// Supported: "UTF-8", "UTF-16", "Windows-1252", "ISO-8859-1"
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`
}

// Markers holds the case-sensitive substrings looked for in the input's base
// name.
type Markers struct {
	// Production selects the picking report. Default: "Production"
	Production string `yaml:"production"`

	// Bin selects the bin-count report. Default: "Bin"
	Bin string `yaml:"bin"`
}

// ReportSettings controls timestamp handling.
type ReportSettings struct {
	// DateLayout is the Go time layout of TXN_DATE / COUNT_DATE values.
	// Default: "1/2/2006 3:04:05 PM"
	DateLayout string `yaml:"date_layout"`

	// DisplayFormat is the spreadsheet number format for timestamp cells.
	// Default: "m/d/yyyy hh:mm"
	DisplayFormat string `yaml:"display_format"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultDateLayout    = "1/2/2006 3:04:05 PM"
	DefaultDisplayFormat = "m/d/yyyy hh:mm"
)

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	cfg := &MainConfig{}
	applyMainConfigDefaults(cfg)
	return cfg
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct. A missing file yields the defaults.
//   - An error if the file exists but cannot be read or parsed.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	// Read the configuration file.
	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// No file: defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply default values.
	applyMainConfigDefaults(&config)

	// Validate the configuration.
	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "~/Downloads"
	}
	config.InputDir = ExpandHome(config.InputDir)

	config.OutputDir = ExpandHome(config.OutputDir)

	if config.ArchiveDir == "" {
		config.ArchiveDir = filepath.Join(config.InputDir, "input_archive")
	}
	config.ArchiveDir = ExpandHome(config.ArchiveDir)

	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}

	// CSV settings defaults.
	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ","
	}
	if config.CSVSettings.Encoding == "" {
		config.CSVSettings.Encoding = "UTF-8"
	}

	// Marker defaults.
	if config.Markers.Production == "" {
		config.Markers.Production = "Production"
	}
	if config.Markers.Bin == "" {
		config.Markers.Bin = "Bin"
	}

	// Report defaults.
	if config.Report.DateLayout == "" {
		config.Report.DateLayout = DefaultDateLayout
	}
	if config.Report.DisplayFormat == "" {
		config.Report.DisplayFormat = DefaultDisplayFormat
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}

	if config.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must not be negative")
	}

	if config.Markers.Production == config.Markers.Bin {
		return fmt.Errorf("markers.production and markers.bin must differ")
	}

	return nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
