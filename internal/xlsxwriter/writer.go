// =============================================================================
// Production Sorter - XLSX Writer Module
// =============================================================================
//
// This module renders an aggregated report into a single-sheet workbook.
//
// WORKBOOK LAYOUT:
//
//   Sheet "<mode title>"         (Picking / Bin Count)
//   Row 1   header, bold, frozen, with an autofilter
//   Row 2+  one row per report row, in report order
//
// CELL TYPES:
//   - Text columns are written as strings (part numbers keep leading zeros)
//   - Number columns are written as exact numeric literals; blanks stay empty
//   - Timestamp columns are written as date serials with the column's
//     display format (default "m/d/yyyy hh:mm")
//
// Every cell address comes from excelize.CoordinatesToCellName.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/ginjaninja78/production-sorter/internal/types"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// WRITE OPTIONS
// =============================================================================

// Options carries workbook metadata.
type Options struct {
	// RunID is stored as the workbook identifier so a report can be traced
	// back to the log lines of the run that produced it.
	RunID string

	// SourceFile is the input the report was built from.
	SourceFile string

	// Creator is written to the workbook properties.
	// Default: "production-sorter"
	Creator string
}

const (
	minColumnWidth = 10.0
	maxColumnWidth = 50.0

	// timestampWidth fits "12/31/2024 23:59".
	timestampWidth = 17.0
)

// =============================================================================
// WRITE FUNCTION
// =============================================================================

// Write renders report to path, replacing any existing file.
//
// PARAMETERS:
//   - path: Destination .xlsx path. The directory must exist.
//   - report: The report to render. Row values must match the schema kinds.
//   - opts: Workbook metadata.
//
// RETURNS:
//   - An error if a value does not match its column kind or the file cannot
//     be saved. Nothing is written in that case.
func Write(path string, report *types.Report, opts Options) (err error) {
	if report == nil {
		return fmt.Errorf("no report to write")
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close workbook: %w", cerr)
		}
	}()

	sheet := report.Mode.SheetTitle()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeHeader(f, sheet, report.Schema); err != nil {
		return err
	}

	widths := headerWidths(report.Schema)
	for i, row := range report.Rows {
		if err := writeRow(f, sheet, i+2, report.Schema, row, widths); err != nil {
			return err
		}
	}

	if err := styleTimestampColumns(f, sheet, report.Schema, len(report.Rows)); err != nil {
		return err
	}

	if err := finishSheet(f, sheet, report.Schema, widths); err != nil {
		return err
	}

	if err := setProperties(f, report, opts); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// writeHeader writes the column names to row 1 in bold.
func writeHeader(f *excelize.File, sheet string, schema types.Schema) error {
	headers := schema.Headers()
	if len(headers) == 0 {
		return fmt.Errorf("report schema has no columns")
	}

	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, bold)
}

// writeRow writes one report row at rowNum.
func writeRow(f *excelize.File, sheet string, rowNum int, schema types.Schema, row types.Row, widths []float64) error {
	if len(row) != len(schema.Columns) {
		return fmt.Errorf("row %d has %d values, schema has %d columns", rowNum-1, len(row), len(schema.Columns))
	}

	for i, col := range schema.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}

		switch col.Kind {
		case types.KindText:
			s, ok := row[i].(string)
			if !ok {
				return kindError(col, rowNum, row[i])
			}
			if err := f.SetCellStr(sheet, cell, s); err != nil {
				return err
			}
			widths[i] = fitWidth(widths[i], s)

		case types.KindNumber:
			s, ok := numberLiteral(row[i])
			if !ok {
				return kindError(col, rowNum, row[i])
			}
			if s == "" {
				continue
			}
			// SetCellDefault stores numeric text as a number without
			// passing through float64.
			if err := f.SetCellDefault(sheet, cell, s); err != nil {
				return err
			}
			widths[i] = fitWidth(widths[i], s)

		case types.KindTimestamp:
			ts, ok := row[i].(time.Time)
			if !ok {
				return kindError(col, rowNum, row[i])
			}
			if err := f.SetCellValue(sheet, cell, ts); err != nil {
				return err
			}
			if widths[i] < timestampWidth {
				widths[i] = timestampWidth
			}

		default:
			return fmt.Errorf("column %s: unknown kind %d", col.Name, col.Kind)
		}
	}

	return nil
}

// numberLiteral renders a number cell; blank NullDecimals yield "".
func numberLiteral(v interface{}) (string, bool) {
	switch d := v.(type) {
	case decimal.Decimal:
		return d.String(), true
	case decimal.NullDecimal:
		return types.FormatNullDecimal(d), true
	default:
		return "", false
	}
}

func kindError(col types.Column, rowNum int, v interface{}) error {
	return fmt.Errorf("row %d, column %s: unexpected value type %T", rowNum-1, col.Name, v)
}

// styleTimestampColumns applies each timestamp column's display format to its
// data cells.
func styleTimestampColumns(f *excelize.File, sheet string, schema types.Schema, rowCount int) error {
	if rowCount == 0 {
		return nil
	}

	styles := make(map[string]int)
	for i, col := range schema.Columns {
		if col.Kind != types.KindTimestamp {
			continue
		}

		styleID, ok := styles[col.Render]
		if !ok {
			format := col.Render
			var err error
			styleID, err = f.NewStyle(&excelize.Style{CustomNumFmt: &format})
			if err != nil {
				return fmt.Errorf("failed to create date style %q: %w", format, err)
			}
			styles[col.Render] = styleID
		}

		top, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return err
		}
		bottom, err := excelize.CoordinatesToCellName(i+1, rowCount+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, top, bottom, styleID); err != nil {
			return fmt.Errorf("failed to style %s: %w", col.Name, err)
		}
	}

	return nil
}

// finishSheet freezes the header row, adds the autofilter and sets widths.
func finishSheet(f *excelize.File, sheet string, schema types.Schema, widths []float64) error {
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(len(schema.Columns), 1)
	if err != nil {
		return err
	}
	if err := f.AutoFilter(sheet, "A1:"+last, nil); err != nil {
		return fmt.Errorf("failed to add autofilter: %w", err)
	}

	for i, w := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, w); err != nil {
			return fmt.Errorf("failed to size column %s: %w", name, err)
		}
	}

	return nil
}

func setProperties(f *excelize.File, report *types.Report, opts Options) error {
	creator := opts.Creator
	if creator == "" {
		creator = "production-sorter"
	}

	props := &excelize.DocProperties{
		Creator:     creator,
		Title:       report.Mode.SheetTitle() + " report",
		Identifier:  opts.RunID,
		Description: fmt.Sprintf("%d rows from %d source rows", len(report.Rows), report.SourceRows),
	}
	if opts.SourceFile != "" {
		props.Subject = filepath.Base(opts.SourceFile)
	}

	if err := f.SetDocProps(props); err != nil {
		return fmt.Errorf("failed to set workbook properties: %w", err)
	}
	return nil
}

func headerWidths(schema types.Schema) []float64 {
	widths := make([]float64, len(schema.Columns))
	for i, col := range schema.Columns {
		widths[i] = fitWidth(minColumnWidth, col.Name)
	}
	return widths
}

// fitWidth grows width to fit s, up to maxColumnWidth.
func fitWidth(width float64, s string) float64 {
	w := float64(utf8.RuneCountInString(s)) + 2
	if w > maxColumnWidth {
		w = maxColumnWidth
	}
	if w > width {
		return w
	}
	return width
}
