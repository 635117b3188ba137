// =============================================================================
// Production Sorter - Record Decoding
// =============================================================================
//
// This module converts the loaded table into strongly typed records, once,
// before any aggregation runs:
//   - PickingTransaction for production exports
//   - BinCountEntry for bin-count exports
//
// Each mode declares the columns it needs. A missing column fails the whole
// decode with a *types.ColumnError; a value that cannot be converted fails it
// with a *types.FieldError naming the source line.
//
// =============================================================================

package records

import (
	"fmt"
	"strings"
	"time"

	"github.com/ginjaninja78/production-sorter/internal/config"
	"github.com/ginjaninja78/production-sorter/internal/csvparser"
	"github.com/ginjaninja78/production-sorter/internal/types"
	"github.com/shopspring/decimal"
)

// =============================================================================
// COLUMN NAMES
// =============================================================================

const (
	ColApplication = "APPLICATION"
	ColPartNumber  = "PART_NBR"
	ColBinID       = "BIN_ID"
	ColTxnQty      = "TXN_QTY"
	ColUserName    = "USER_NAME"
	ColTxnDate     = "TXN_DATE"
	ColSubCode     = "SUB_CODE"

	ColFacilityID = "FACILITY_ID"
	ColBinSource  = "BIN_SOURCE"
	ColBuilding   = "BUILDING"
	ColPartDesc   = "PART_DESC"
	ColSystemQty  = "SYSTEM_QTY"
	ColCountQty   = "COUNT_QTY"
	ColDelta      = "DELTA"
	ColCountDate  = "COUNT_DATE"
	ColCountedBy  = "COUNTED_BY"
)

// PickingApplication is the APPLICATION value of rows kept by the picking
// report. The comparison is exact and case-sensitive.
const PickingApplication = "PICKING"

// ColumnSpec names a required input column and the header spellings accepted
// for it.
type ColumnSpec struct {
	Name    string
	Aliases []string
}

// candidates returns the canonical name followed by its aliases.
func (c ColumnSpec) candidates() []string {
	return append([]string{c.Name}, c.Aliases...)
}

var pickingColumns = []ColumnSpec{
	{Name: ColApplication},
	{Name: ColPartNumber},
	{Name: ColBinID},
	{Name: ColTxnQty},
	{Name: ColUserName, Aliases: []string{"USER NAME"}},
	{Name: ColTxnDate},
	{Name: ColSubCode, Aliases: []string{"SUB CODE"}},
}

var binCountColumns = []ColumnSpec{
	{Name: ColFacilityID},
	{Name: ColBinSource},
	{Name: ColBuilding},
	{Name: ColBinID},
	{Name: ColPartNumber},
	{Name: ColPartDesc},
	{Name: ColSystemQty},
	{Name: ColCountQty},
	{Name: ColDelta},
	{Name: ColCountDate},
	{Name: ColCountedBy},
}

// RequiredColumns returns the columns the mode reads from the table.
func RequiredColumns(mode types.Mode) []ColumnSpec {
	switch mode {
	case types.ModePicking:
		return pickingColumns
	case types.ModeBinCount:
		return binCountColumns
	default:
		return nil
	}
}

// TimestampColumn returns the column holding the mode's date values.
func TimestampColumn(mode types.Mode) string {
	if mode == types.ModeBinCount {
		return ColCountDate
	}
	return ColTxnDate
}

// MissingColumns lists every required column of mode absent from data.
func MissingColumns(mode types.Mode, data *csvparser.CSVData) []string {
	var missing []string
	for _, spec := range RequiredColumns(mode) {
		if _, ok := data.ResolveColumn(spec.candidates()...); !ok {
			missing = append(missing, spec.Name)
		}
	}
	return missing
}

// resolve maps every canonical column name to the header used in data.
func resolve(mode types.Mode, data *csvparser.CSVData) (map[string]string, error) {
	resolved := make(map[string]string)
	for _, spec := range RequiredColumns(mode) {
		header, ok := data.ResolveColumn(spec.candidates()...)
		if !ok {
			return nil, &types.ColumnError{Mode: mode, Column: spec.Name}
		}
		resolved[spec.Name] = header
	}
	return resolved, nil
}

// =============================================================================
// DECODERS
// =============================================================================

// Decoder converts table rows into typed records.
type Decoder struct {
	// DateLayout is the Go layout of the export's timestamps.
	DateLayout string
}

// NewDecoder creates a Decoder using the layout from the report settings.
func NewDecoder(settings config.ReportSettings) *Decoder {
	layout := settings.DateLayout
	if layout == "" {
		layout = config.DefaultDateLayout
	}
	return &Decoder{DateLayout: layout}
}

// rowReader reads canonical columns of one row.
type rowReader struct {
	row     map[string]string
	columns map[string]string
	line    int
}

func (r rowReader) text(column string) string {
	return r.row[r.columns[column]]
}

// DecodePicking converts every row into a PickingTransaction.
//
// Every timestamp is parsed, including rows that the picking filter will
// later drop, so a malformed date anywhere in the file fails the report.
// Quantities are only parsed for PICKING rows; other rows get zero.
func (d *Decoder) DecodePicking(data *csvparser.CSVData) ([]types.PickingTransaction, error) {
	columns, err := resolve(types.ModePicking, data)
	if err != nil {
		return nil, err
	}

	txns := make([]types.PickingTransaction, 0, len(data.Rows))
	for i, row := range data.Rows {
		r := rowReader{row: row, columns: columns, line: lineOf(data, i)}

		txnDate, err := d.timestamp(r, ColTxnDate)
		if err != nil {
			return nil, err
		}

		application := r.text(ColApplication)

		var qty decimal.NullDecimal
		if application == PickingApplication {
			if qty, err = quantity(r, ColTxnQty); err != nil {
				return nil, err
			}
		}

		txns = append(txns, types.PickingTransaction{
			PartNumber:  r.text(ColPartNumber),
			BinID:       r.text(ColBinID),
			Quantity:    qty.Decimal, // blank counts as zero in the sum
			UserName:    r.text(ColUserName),
			TxnDate:     txnDate,
			SubCode:     r.text(ColSubCode),
			Application: application,
			Row:         r.line,
		})
	}

	return txns, nil
}

// DecodeBinCount converts every row into a BinCountEntry.
func (d *Decoder) DecodeBinCount(data *csvparser.CSVData) ([]types.BinCountEntry, error) {
	columns, err := resolve(types.ModeBinCount, data)
	if err != nil {
		return nil, err
	}

	entries := make([]types.BinCountEntry, 0, len(data.Rows))
	for i, row := range data.Rows {
		r := rowReader{row: row, columns: columns, line: lineOf(data, i)}

		countDate, err := d.timestamp(r, ColCountDate)
		if err != nil {
			return nil, err
		}

		var qty [3]decimal.NullDecimal
		for j, col := range []string{ColSystemQty, ColCountQty, ColDelta} {
			if qty[j], err = quantity(r, col); err != nil {
				return nil, err
			}
		}

		entries = append(entries, types.BinCountEntry{
			FacilityID: r.text(ColFacilityID),
			BinSource:  r.text(ColBinSource),
			Building:   r.text(ColBuilding),
			BinID:      r.text(ColBinID),
			PartNumber: r.text(ColPartNumber),
			PartDesc:   r.text(ColPartDesc),
			SystemQty:  qty[0],
			CountQty:   qty[1],
			Delta:      qty[2],
			CountDate:  countDate,
			CountedBy:  r.text(ColCountedBy),
			Row:        r.line,
		})
	}

	return entries, nil
}

// =============================================================================
// VALUE CONVERSION
// =============================================================================

func (d *Decoder) timestamp(r rowReader, column string) (time.Time, error) {
	value := r.text(column)
	t, err := ParseTimestamp(value, d.DateLayout)
	if err != nil {
		return time.Time{}, &types.FieldError{Row: r.line, Column: column, Value: value, Err: err}
	}
	return t, nil
}

func quantity(r rowReader, column string) (decimal.NullDecimal, error) {
	value := r.text(column)
	q, err := ParseQuantity(value)
	if err != nil {
		return decimal.NullDecimal{}, &types.FieldError{Row: r.line, Column: column, Value: value, Err: err}
	}
	return q, nil
}

// ParseTimestamp parses an export timestamp such as "01/02/2024 08:00:00 AM".
// The AM/PM marker is accepted in either case. The error wraps
// types.ErrMalformedTimestamp.
func ParseTimestamp(value, layout string) (time.Time, error) {
	if layout == "" {
		layout = config.DefaultDateLayout
	}
	value = strings.TrimSpace(value)
	if strings.Contains(layout, "PM") {
		// Go matches month and day names in any case, but "PM" only in upper case.
		value = strings.ToUpper(value)
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: expected layout %q", types.ErrMalformedTimestamp, layout)
	}
	return t, nil
}

// ParseQuantity parses a numeric cell. Blank cells yield an invalid
// NullDecimal; anything else that is not a number wraps
// types.ErrMalformedNumber.
func ParseQuantity(value string) (decimal.NullDecimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %v", types.ErrMalformedNumber, err)
	}
	return decimal.NewNullDecimal(d), nil
}

// lineOf returns the source line of row i, falling back to its position when
// the table was built without line numbers.
func lineOf(data *csvparser.CSVData, i int) int {
	if i < len(data.LineNumbers) {
		return data.LineNumbers[i]
	}
	return i + 2
}
