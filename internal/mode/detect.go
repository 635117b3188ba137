// Package mode decides which reports a file produces. It is the only place
// where the input's name is inspected; everything downstream receives an
// explicit types.Mode.
package mode

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/production-sorter/internal/config"
	"github.com/ginjaninja78/production-sorter/internal/types"
)

// Flag values accepted by --mode.
const (
	Auto = "auto"
	Both = "both"
)

// Detect returns the modes whose marker occurs in baseName, in AllModes
// order. Matching is case-sensitive. A path is reduced to its base name
// without a .csv extension first.
func Detect(baseName string, markers config.Markers) []types.Mode {
	name := filepath.Base(baseName)
	if ext := filepath.Ext(name); strings.EqualFold(ext, ".csv") {
		name = strings.TrimSuffix(name, ext)
	}

	var modes []types.Mode
	if markers.Production != "" && strings.Contains(name, markers.Production) {
		modes = append(modes, types.ModePicking)
	}
	if markers.Bin != "" && strings.Contains(name, markers.Bin) {
		modes = append(modes, types.ModeBinCount)
	}
	return modes
}

// Select resolves the --mode flag for one input.
//
// "auto" (or empty) defers to Detect; "both" forces both reports; any other
// value is parsed with types.ParseMode.
func Select(flag, baseName string, markers config.Markers) ([]types.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "", Auto:
		return Detect(baseName, markers), nil
	case Both:
		return append([]types.Mode(nil), types.AllModes...), nil
	default:
		m, err := types.ParseMode(flag)
		if err != nil {
			return nil, fmt.Errorf("invalid --mode: %w", err)
		}
		return []types.Mode{m}, nil
	}
}
