// =============================================================================
// Production Sorter - Aggregation
// =============================================================================
//
// This package holds the two fixed report pipelines:
//   - Picking:  filter PICKING rows, collapse duplicates, sum TXN_QTY
//   - BinCount: sort by COUNT_DATE, keep the latest count per bin and day
//
// Both take typed records and return a *types.Report whose rows are aligned
// with an explicit schema. Neither touches the loaded table, so the two can
// run against the same file independently.
//
// =============================================================================

package aggregator

import (
	"fmt"

	"github.com/ginjaninja78/production-sorter/internal/config"
	"github.com/ginjaninja78/production-sorter/internal/csvparser"
	"github.com/ginjaninja78/production-sorter/internal/records"
	"github.com/ginjaninja78/production-sorter/internal/types"
)

// Run decodes data for mode and builds its report.
//
// PARAMETERS:
//   - mode: The report to build.
//   - data: The loaded table. It is only read.
//   - settings: Source date layout and timestamp display format.
//
// RETURNS:
//   - The aggregated report.
//   - A *types.ColumnError or *types.FieldError if the table does not fit the
//     mode; no partial report is returned.
func Run(mode types.Mode, data *csvparser.CSVData, settings config.ReportSettings) (*types.Report, error) {
	decoder := records.NewDecoder(settings)

	switch mode {
	case types.ModePicking:
		txns, err := decoder.DecodePicking(data)
		if err != nil {
			return nil, err
		}
		return Picking(txns, PickingSchema(settings.DisplayFormat)), nil

	case types.ModeBinCount:
		entries, err := decoder.DecodeBinCount(data)
		if err != nil {
			return nil, err
		}
		return BinCount(entries, BinCountSchema(settings.DisplayFormat)), nil

	default:
		return nil, fmt.Errorf("unknown report mode: %s", mode)
	}
}
