// =============================================================================
// Production Sorter - Validation Engine
// =============================================================================
//
// This module performs a preflight check of a loaded export against the
// report modes it is going to feed. Unlike the decoders in internal/records,
// which stop at the first problem, the validator collects every problem so
// an operator can fix a file in one pass.
//
// CHECKS:
//   1. Column-level: every required column (or an accepted alias) is present
//   2. Field-level:  timestamps match the date layout, quantities are numeric
//   3. Row-level:    blank identity-key fields and blank quantities (warnings)
//   4. Report-level: a picking export with no PICKING rows (warning)
//
// ERROR HANDLING:
//   - Errors are collected, not returned immediately
//   - Each error includes its mode, row, column and value
//   - "error" severity means the report for that mode would fail
//   - "warning" severity means the report would be produced but may surprise
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/production-sorter/internal/csvparser"
	"github.com/ginjaninja78/production-sorter/internal/records"
	"github.com/ginjaninja78/production-sorter/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names.
const (
	RuleRequiredColumn = "required_column"
	RuleTimestamp      = "timestamp"
	RuleNumeric        = "numeric"
	RuleBlankKey       = "blank_key"
	RuleBlankQuantity  = "blank_quantity"
	RuleNoPickingRows  = "no_picking_rows"
)

// ValidationError represents a single validation problem.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Mode is the report the problem affects.
	Mode types.Mode

	// Field is the canonical column name. Empty for report-level problems.
	Field string

	// Value is the offending cell value.
	Value string

	// Rule is the check that failed.
	Rule string

	// Message is a human-readable description.
	Message string

	// RowNumber is the source line, or 0 for column- and report-level problems.
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", strings.ToUpper(e.Severity), e.Mode)
	if e.RowNumber > 0 {
		fmt.Fprintf(&b, ", row %d", e.RowNumber)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ", field '%s'", e.Field)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	if e.RowNumber > 0 {
		fmt.Fprintf(&b, " (value: '%s')", e.Value)
	}
	return b.String()
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all problems, warnings included, in discovery order.
	Errors []*ValidationError

	// ErrorCount is the number of fatal errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// RowsValidated is the number of table rows inspected.
	RowsValidated int

	// Truncated is set when MaxErrors stopped the scan early.
	Truncated bool
}

// ErrorsFor returns the fatal problems of one mode.
func (r *ValidationResult) ErrorsFor(mode types.Mode) []*ValidationError {
	var out []*ValidationError
	for _, e := range r.Errors {
		if e.Mode == mode && e.Severity == SeverityError {
			out = append(out, e)
		}
	}
	return out
}

func (r *ValidationResult) add(e *ValidationError) {
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
	} else {
		r.WarningCount++
	}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// DateLayout is the Go layout timestamps must match.
	DateLayout string

	// MaxErrors stops the scan once this many problems were found.
	// Default: 0 (no limit)
	MaxErrors int

	// SkipWarnings drops warning-level checks.
	SkipWarnings bool
}

// Validator checks a loaded table against report modes.
type Validator struct {
	options ValidationOptions
}

// NewValidator creates a new Validator instance.
func NewValidator(options ValidationOptions) *Validator {
	return &Validator{options: options}
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// ValidateAll checks data against every mode in modes.
//
// PARAMETERS:
//   - data: The loaded table.
//   - modes: The reports the file will feed.
//
// RETURNS:
//   - A ValidationResult. IsValid is false if any mode would fail.
func (v *Validator) ValidateAll(data *csvparser.CSVData, modes []types.Mode) *ValidationResult {
	result := &ValidationResult{IsValid: true, RowsValidated: len(data.Rows)}

	for _, mode := range modes {
		if v.full(result) {
			break
		}
		v.validateMode(data, mode, result)
	}

	return result
}

// validateMode runs every check of one mode.
func (v *Validator) validateMode(data *csvparser.CSVData, mode types.Mode, result *ValidationResult) {
	// =========================================================================
	// COLUMN-LEVEL VALIDATION
	// =========================================================================
	// Field checks need every column, so a missing column ends the mode.

	missing := records.MissingColumns(mode, data)
	for _, col := range missing {
		result.add(&ValidationError{
			Severity: SeverityError,
			Mode:     mode,
			Field:    col,
			Rule:     RuleRequiredColumn,
			Message:  fmt.Sprintf("required column '%s' is missing", col),
		})
	}
	if len(missing) > 0 {
		return
	}

	columns := resolveColumns(mode, data)
	pickingRows := 0

	// =========================================================================
	// FIELD- AND ROW-LEVEL VALIDATION
	// =========================================================================

	for i, row := range data.Rows {
		line := lineOf(data, i)
		field := func(col string) string { return row[columns[col]] }

		dateCol := records.TimestampColumn(mode)
		if _, err := records.ParseTimestamp(field(dateCol), v.options.DateLayout); err != nil {
			result.add(&ValidationError{
				Severity:  SeverityError,
				Mode:      mode,
				Field:     dateCol,
				Value:     field(dateCol),
				Rule:      RuleTimestamp,
				Message:   "timestamp does not match the expected format",
				RowNumber: line,
			})
		}

		// Non-PICKING rows never reach the picking report.
		inReport := mode != types.ModePicking || field(records.ColApplication) == records.PickingApplication

		for _, col := range quantityColumns(mode) {
			if !inReport {
				break
			}
			value := field(col)
			if _, err := records.ParseQuantity(value); err != nil {
				result.add(&ValidationError{
					Severity:  SeverityError,
					Mode:      mode,
					Field:     col,
					Value:     value,
					Rule:      RuleNumeric,
					Message:   "value is not a number",
					RowNumber: line,
				})
			}
		}

		if mode == types.ModePicking && inReport {
			pickingRows++
			if !v.options.SkipWarnings && strings.TrimSpace(field(records.ColTxnQty)) == "" {
				result.add(&ValidationError{
					Severity:  SeverityWarning,
					Mode:      mode,
					Field:     records.ColTxnQty,
					Rule:      RuleBlankQuantity,
					Message:   "blank quantity counts as zero",
					RowNumber: line,
				})
			}
		}

		if inReport && !v.options.SkipWarnings {
			for _, col := range keyColumns(mode) {
				if field(col) == "" {
					result.add(&ValidationError{
						Severity:  SeverityWarning,
						Mode:      mode,
						Field:     col,
						Rule:      RuleBlankKey,
						Message:   "blank identity field; rows differing only here will merge",
						RowNumber: line,
					})
				}
			}
		}

		if v.full(result) {
			result.Truncated = true
			return
		}
	}

	// =========================================================================
	// REPORT-LEVEL VALIDATION
	// =========================================================================

	if mode == types.ModePicking && pickingRows == 0 && !v.options.SkipWarnings {
		result.add(&ValidationError{
			Severity: SeverityWarning,
			Mode:     mode,
			Field:    records.ColApplication,
			Rule:     RuleNoPickingRows,
			Message:  "no PICKING rows; the report will contain only the header",
		})
	}
}

func (v *Validator) full(result *ValidationResult) bool {
	return v.options.MaxErrors > 0 && len(result.Errors) >= v.options.MaxErrors
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// resolveColumns maps canonical names to the headers present in data.
// Callers have already checked that every column resolves.
func resolveColumns(mode types.Mode, data *csvparser.CSVData) map[string]string {
	columns := make(map[string]string)
	for _, spec := range records.RequiredColumns(mode) {
		header, _ := data.ResolveColumn(append([]string{spec.Name}, spec.Aliases...)...)
		columns[spec.Name] = header
	}
	return columns
}

func quantityColumns(mode types.Mode) []string {
	if mode == types.ModeBinCount {
		return []string{records.ColSystemQty, records.ColCountQty, records.ColDelta}
	}
	return []string{records.ColTxnQty}
}

// keyColumns lists the text fields of the identity key.
func keyColumns(mode types.Mode) []string {
	if mode == types.ModeBinCount {
		return []string{records.ColFacilityID, records.ColBinID, records.ColPartNumber}
	}
	return []string{records.ColPartNumber, records.ColBinID}
}

func lineOf(data *csvparser.CSVData, i int) int {
	if i < len(data.LineNumbers) {
		return data.LineNumbers[i]
	}
	return i + 2
}
