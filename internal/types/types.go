// =============================================================================
// Production Sorter - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - records     (typed decoding of the loaded table)
//   - aggregator  (picking and bin-count pipelines)
//   - xlsxwriter  (report rendering)
//   - converter   (orchestration)
//
// =============================================================================

package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// REPORT MODES
// =============================================================================

// Mode selects one of the two fixed aggregation pipelines.
// It is determined once at the boundary (file name or --mode flag) and passed
// to the core explicitly.
type Mode int

const (
	// ModePicking summarises production-picking transactions.
	ModePicking Mode = iota + 1

	// ModeBinCount reconciles per-day bin count entries.
	ModeBinCount
)

// AllModes lists every mode in the order reports are produced.
var AllModes = []Mode{ModePicking, ModeBinCount}

// String returns the mode name used in logs and flags.
func (m Mode) String() string {
	switch m {
	case ModePicking:
		return "picking"
	case ModeBinCount:
		return "bincount"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// SheetTitle is the worksheet name used for the mode's report.
func (m Mode) SheetTitle() string {
	switch m {
	case ModePicking:
		return "Picking"
	case ModeBinCount:
		return "Bin Count"
	default:
		return "Report"
	}
}

// FileSuffix disambiguates output names when more than one mode runs for the
// same input.
func (m Mode) FileSuffix() string {
	switch m {
	case ModePicking:
		return "Picking"
	case ModeBinCount:
		return "BinCount"
	default:
		return "Report"
	}
}

// ParseMode converts a flag value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "picking", "production":
		return ModePicking, nil
	case "bincount", "bin", "bin-count":
		return ModeBinCount, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

// =============================================================================
// SCHEMA
// =============================================================================

// ColumnKind is the semantic type of an output column.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindNumber
	KindTimestamp
)

// Column describes one output column of a report.
type Column struct {
	// Name is the header text written to row 1.
	Name string

	// Kind tells the writer how to store the value.
	Kind ColumnKind

	// Render is the display pattern for the column.
	// Only timestamp columns use it (for example "m/d/yyyy hh:mm").
	Render string
}

// Schema is the ordered list of columns of a report.
type Schema struct {
	Columns []Column
}

// Headers returns the column names in order.
func (s Schema) Headers() []string {
	headers := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		headers[i] = c.Name
	}
	return headers
}

// Index returns the position of the named column, or -1.
func (s Schema) Index(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// =============================================================================
// REPORT
// =============================================================================

// Row holds one output row. Values are aligned with Schema.Columns:
//   - KindText:      string
//   - KindNumber:    decimal.Decimal or decimal.NullDecimal
//   - KindTimestamp: time.Time
type Row []interface{}

// Report is an aggregated, deduplicated table ready for rendering.
type Report struct {
	Mode   Mode
	Schema Schema
	Rows   []Row

	// SourceRows is the number of table rows the report was built from.
	SourceRows int
}

// =============================================================================
// TYPED RECORDS
// =============================================================================

// PickingTransaction is one row of a production export.
type PickingTransaction struct {
	PartNumber  string
	BinID       string
	Quantity    decimal.Decimal
	UserName    string
	TxnDate     time.Time
	SubCode     string
	Application string

	// Row is the 1-based line number in the source file.
	Row int
}

// BinCountEntry is one row of a bin-count export.
type BinCountEntry struct {
	FacilityID string
	BinSource  string
	Building   string
	BinID      string
	PartNumber string
	PartDesc   string
	SystemQty  decimal.NullDecimal
	CountQty   decimal.NullDecimal
	Delta      decimal.NullDecimal
	CountDate  time.Time
	CountedBy  string

	// Row is the 1-based line number in the source file.
	Row int
}

// KeyTimeLayout formats a timestamp truncated to the minute for identity keys.
const KeyTimeLayout = "200601021504"

// DayLayout formats the calendar day used to partition bin counts.
const DayLayout = "2006-01-02"

// IdentityKey returns the string used to recognise duplicate submissions of
// the same picking transaction.
func (t PickingTransaction) IdentityKey() string {
	var b strings.Builder
	b.WriteString(t.PartNumber)
	b.WriteString(t.BinID)
	b.WriteString(t.UserName)
	b.WriteString(t.TxnDate.Truncate(time.Minute).Format(KeyTimeLayout))
	b.WriteString(t.SubCode)
	return b.String()
}

// IdentityKey returns the string used to recognise repeated counts of the same
// bin. It is combined with CountDay when grouping.
func (e BinCountEntry) IdentityKey() string {
	var b strings.Builder
	b.WriteString(e.FacilityID)
	b.WriteString(e.BinSource)
	b.WriteString(e.Building)
	b.WriteString(e.BinID)
	b.WriteString(e.PartNumber)
	b.WriteString(FormatNullDecimal(e.SystemQty))
	b.WriteString(e.CountDate.Truncate(time.Minute).Format(KeyTimeLayout))
	b.WriteString(e.CountedBy)
	return b.String()
}

// CountDay is the calendar date of the count, without time.
func (e BinCountEntry) CountDay() string {
	return e.CountDate.Format(DayLayout)
}

// FormatNullDecimal renders a nullable quantity; blanks render as "".
func FormatNullDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
