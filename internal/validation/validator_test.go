package validation

import (
	"strings"
	"testing"

	"github.com/ginjaninja78/production-sorter/internal/config"
	"github.com/ginjaninja78/production-sorter/internal/csvparser"
	"github.com/ginjaninja78/production-sorter/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pickingHeader = "APPLICATION,PART_NBR,BIN_ID,TXN_QTY,USER NAME,TXN_DATE,SUB CODE\n"

func load(t *testing.T, content string) *csvparser.CSVData {
	t.Helper()
	data, err := csvparser.ParseReader(strings.NewReader(content), config.CSVSettings{})
	require.NoError(t, err)
	return data
}

func rules(result *ValidationResult) []string {
	var out []string
	for _, e := range result.Errors {
		out = append(out, e.Rule)
	}
	return out
}

func TestValidateAll_Clean(t *testing.T) {
	data := load(t, pickingHeader+"PICKING,P1,B1,5,alice,01/02/2024 08:00:00 AM,S1\n")

	result := NewValidator(ValidationOptions{}).ValidateAll(data, []types.Mode{types.ModePicking})

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.RowsValidated)
}

func TestValidateAll_CollectsEveryProblem(t *testing.T) {
	data := load(t, pickingHeader+
		"PICKING,P1,B1,five,alice,2024-01-02,S1\n"+
		"PICKING,,B1,,alice,01/02/2024 08:00:00 AM,S1\n"+
		"PUTAWAY,,,x,alice,bad,S1\n")

	result := NewValidator(ValidationOptions{}).ValidateAll(data, []types.Mode{types.ModePicking})

	assert.False(t, result.IsValid)
	assert.Equal(t, []string{
		RuleTimestamp, RuleNumeric, // row 2
		RuleBlankQuantity, RuleBlankKey, // row 3
		RuleTimestamp, // row 4, filtered: date still parsed, quantity not
	}, rules(result))
	assert.Equal(t, 3, result.ErrorCount)
	assert.Equal(t, 2, result.WarningCount)

	first := result.Errors[0]
	assert.Equal(t, 2, first.RowNumber)
	assert.Equal(t, "TXN_DATE", first.Field)
	assert.Equal(t, "2024-01-02", first.Value)
	assert.Contains(t, first.Error(), "[ERROR] picking, row 2, field 'TXN_DATE'")
}

func TestValidateAll_MissingColumnsPerMode(t *testing.T) {
	data := load(t, pickingHeader+"PICKING,P1,B1,5,alice,01/02/2024 08:00:00 AM,S1\n")

	result := NewValidator(ValidationOptions{}).ValidateAll(data, types.AllModes)

	assert.False(t, result.IsValid)
	assert.Empty(t, result.ErrorsFor(types.ModePicking))

	binErrors := result.ErrorsFor(types.ModeBinCount)
	require.NotEmpty(t, binErrors)
	for _, e := range binErrors {
		assert.Equal(t, RuleRequiredColumn, e.Rule)
		assert.Zero(t, e.RowNumber)
	}
	assert.Equal(t, "FACILITY_ID", binErrors[0].Field)
}

func TestValidateAll_NoPickingRows(t *testing.T) {
	data := load(t, pickingHeader+"PUTAWAY,P1,B1,5,alice,01/02/2024 08:00:00 AM,S1\n")

	result := NewValidator(ValidationOptions{}).ValidateAll(data, []types.Mode{types.ModePicking})

	assert.True(t, result.IsValid)
	assert.Equal(t, []string{RuleNoPickingRows}, rules(result))

	quiet := NewValidator(ValidationOptions{SkipWarnings: true}).ValidateAll(data, []types.Mode{types.ModePicking})
	assert.Empty(t, quiet.Errors)
}

func TestValidateAll_FilteredRowQuantityIgnored(t *testing.T) {
	data := load(t, pickingHeader+
		"PICKING,P1,B1,5,alice,01/02/2024 08:00:00 AM,S1\n"+
		"PUTAWAY,P2,B2,N/A,alice,01/02/2024 08:00:00 AM,S1\n")

	result := NewValidator(ValidationOptions{}).ValidateAll(data, []types.Mode{types.ModePicking})

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestValidateAll_MaxErrors(t *testing.T) {
	content := pickingHeader
	for i := 0; i < 10; i++ {
		content += "PICKING,P1,B1,5,alice,nope,S1\n"
	}

	result := NewValidator(ValidationOptions{MaxErrors: 3}).ValidateAll(load(t, content), []types.Mode{types.ModePicking})

	assert.Len(t, result.Errors, 3)
	assert.True(t, result.Truncated)
}

func TestValidateAll_BinCount(t *testing.T) {
	data := load(t, "FACILITY_ID,BIN_SOURCE,BUILDING,BIN_ID,PART_NBR,PART_DESC,SYSTEM_QTY,COUNT_QTY,DELTA,COUNT_DATE,COUNTED_BY\n"+
		"F1,S,BLD,B1,P1,Widget,10,,n/a,01/02/2024 08:00:00 AM,carol\n")

	result := NewValidator(ValidationOptions{}).ValidateAll(data, []types.Mode{types.ModeBinCount})

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "DELTA", result.Errors[0].Field)
	assert.Equal(t, RuleNumeric, result.Errors[0].Rule)
}
