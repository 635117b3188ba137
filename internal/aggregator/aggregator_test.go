package aggregator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/production-sorter/internal/config"
	"github.com/ginjaninja78/production-sorter/internal/csvparser"
	"github.com/ginjaninja78/production-sorter/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pickingHeader = "PART_NBR,BIN_ID,USER_NAME,TXN_DATE,SUB_CODE,TXN_QTY,APPLICATION\n"

const binHeader = "FACILITY_ID,BIN_SOURCE,BUILDING,BIN_ID,PART_NBR,PART_DESC,SYSTEM_QTY,COUNT_QTY,DELTA,COUNT_DATE,COUNTED_BY\n"

func table(t *testing.T, content string) *csvparser.CSVData {
	t.Helper()
	data, err := csvparser.ParseReader(strings.NewReader(content), config.CSVSettings{})
	require.NoError(t, err)
	return data
}

func run(t *testing.T, mode types.Mode, content string) *types.Report {
	t.Helper()
	report, err := Run(mode, table(t, content), config.ReportSettings{})
	require.NoError(t, err)
	return report
}

func dec(t *testing.T, v interface{}) string {
	t.Helper()
	switch d := v.(type) {
	case decimal.Decimal:
		return d.String()
	case decimal.NullDecimal:
		return types.FormatNullDecimal(d)
	default:
		t.Fatalf("not a decimal: %T", v)
		return ""
	}
}

// =============================================================================
// PICKING
// =============================================================================

func TestPicking_ScenarioA_DuplicatesAreSummed(t *testing.T) {
	report := run(t, types.ModePicking, pickingHeader+
		"100,A1,jdoe,01/02/2024 08:00:00 AM,S1,5,PICKING\n"+
		"100,A1,jdoe,01/02/2024 08:00:00 AM,S1,3,PICKING\n")

	require.Len(t, report.Rows, 1)
	row := report.Rows[0]
	assert.Equal(t, "100", row[0])
	assert.Equal(t, "A1", row[1])
	assert.Equal(t, "8", dec(t, row[2]))
	assert.Equal(t, "jdoe", row[3])
	assert.Equal(t, time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), row[4])
	assert.Equal(t, "S1", row[5])
}

func TestPicking_ScenarioB_NonPickingExcluded(t *testing.T) {
	report := run(t, types.ModePicking, pickingHeader+
		"100,A1,jdoe,01/02/2024 08:00:00 AM,S1,5,PICKING\n"+
		"200,B2,jdoe,01/02/2024 08:00:00 AM,S1,7,PUTAWAY\n"+
		"300,C3,jdoe,01/02/2024 08:00:00 AM,S1,1,picking\n")

	require.Len(t, report.Rows, 1)
	assert.Equal(t, "100", report.Rows[0][0])
	assert.Equal(t, 3, report.SourceRows)
}

func TestPicking_NonPickingQuantityNotChecked(t *testing.T) {
	report := run(t, types.ModePicking, pickingHeader+
		"100,A1,jdoe,01/02/2024 08:00:00 AM,S1,5,PICKING\n"+
		"200,B2,jdoe,01/02/2024 08:00:00 AM,S1,N/A,PUTAWAY\n")

	require.Len(t, report.Rows, 1)
	assert.Equal(t, "100", report.Rows[0][0])
	assert.Equal(t, "5", dec(t, report.Rows[0][2]))
}

func TestPicking_ScenarioD_EmptyFilteredInput(t *testing.T) {
	report := run(t, types.ModePicking, pickingHeader+
		"200,B2,jdoe,01/02/2024 08:00:00 AM,S1,7,PUTAWAY\n")

	assert.Empty(t, report.Rows)
	assert.Equal(t, PickingSchema("").Headers(), report.Schema.Headers())
}

func TestPicking_SameMinuteMerges(t *testing.T) {
	report := run(t, types.ModePicking, pickingHeader+
		"100,A1,jdoe,01/02/2024 08:00:10 AM,S1,1.5,PICKING\n"+
		"100,A1,jdoe,01/02/2024 08:00:50 AM,S1,2.25,PICKING\n"+
		"100,A1,jdoe,01/02/2024 08:01:00 AM,S1,4,PICKING\n")

	require.Len(t, report.Rows, 2)
	assert.Equal(t, "3.75", dec(t, report.Rows[0][2]))
	// Full-precision timestamp of the first row is kept.
	assert.Equal(t, time.Date(2024, 1, 2, 8, 0, 10, 0, time.UTC), report.Rows[0][4])
	assert.Equal(t, "4", dec(t, report.Rows[1][2]))
}

func TestPicking_FirstOccurrenceOrderAndBlankQuantity(t *testing.T) {
	report := run(t, types.ModePicking, pickingHeader+
		"200,B2,amy,01/02/2024 09:00:00 AM,S2,1,PICKING\n"+
		"100,A1,jdoe,01/02/2024 08:00:00 AM,S1,,PICKING\n"+
		"200,B2,amy,01/02/2024 09:00:00 AM,S2,2,PICKING\n"+
		"100,A1,jdoe,01/02/2024 08:00:00 AM,S1,6,PICKING\n")

	require.Len(t, report.Rows, 2)
	assert.Equal(t, "200", report.Rows[0][0])
	assert.Equal(t, "3", dec(t, report.Rows[0][2]))
	assert.Equal(t, "100", report.Rows[1][0])
	assert.Equal(t, "6", dec(t, report.Rows[1][2]))
}

func TestPicking_SumIsExact(t *testing.T) {
	content := pickingHeader
	for i := 0; i < 10; i++ {
		content += "100,A1,jdoe,01/02/2024 08:00:00 AM,S1,0.1,PICKING\n"
	}

	report := run(t, types.ModePicking, content)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "1", dec(t, report.Rows[0][2]))
}

func TestPicking_Idempotent(t *testing.T) {
	txns := []types.PickingTransaction{
		{PartNumber: "1", BinID: "A", UserName: "u", SubCode: "s", Application: "PICKING",
			TxnDate: time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), Quantity: decimal.NewFromInt(2)},
		{PartNumber: "1", BinID: "A", UserName: "u", SubCode: "s", Application: "PICKING",
			TxnDate: time.Date(2024, 1, 2, 8, 0, 30, 0, time.UTC), Quantity: decimal.NewFromInt(3)},
		{PartNumber: "2", BinID: "B", UserName: "u", SubCode: "s", Application: "PICKING",
			TxnDate: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), Quantity: decimal.NewFromInt(1)},
	}

	first := Picking(txns, PickingSchema(""))

	again := make([]types.PickingTransaction, 0, len(first.Rows))
	for _, row := range first.Rows {
		again = append(again, types.PickingTransaction{
			PartNumber:  row[0].(string),
			BinID:       row[1].(string),
			Quantity:    row[2].(decimal.Decimal),
			UserName:    row[3].(string),
			TxnDate:     row[4].(time.Time),
			SubCode:     row[5].(string),
			Application: PickingApplication,
		})
	}
	second := Picking(again, PickingSchema(""))

	require.Len(t, second.Rows, len(first.Rows))
	for i := range first.Rows {
		for col := range first.Rows[i] {
			if col == 2 {
				assert.Equal(t, dec(t, first.Rows[i][col]), dec(t, second.Rows[i][col]))
				continue
			}
			assert.Equal(t, first.Rows[i][col], second.Rows[i][col])
		}
	}
}

func TestPicking_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		sentinel error
	}{
		{
			name:     "missing application",
			content:  "PART_NBR,BIN_ID,USER_NAME,TXN_DATE,SUB_CODE,TXN_QTY\n1,A,u,01/02/2024 08:00:00 AM,S,1\n",
			sentinel: types.ErrMissingColumn,
		},
		{
			name:     "malformed date",
			content:  pickingHeader + "1,A,u,2024-01-02,S,1,PICKING\n",
			sentinel: types.ErrMalformedTimestamp,
		},
		{
			name:     "malformed quantity",
			content:  pickingHeader + "1,A,u,01/02/2024 08:00:00 AM,S,lots,PICKING\n",
			sentinel: types.ErrMalformedNumber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Run(types.ModePicking, table(t, tt.content), config.ReportSettings{})
			require.Error(t, err)
			assert.Nil(t, report)
			assert.True(t, errors.Is(err, tt.sentinel))
		})
	}
}

// =============================================================================
// BIN COUNT
// =============================================================================

func TestBinCount_LatestWins(t *testing.T) {
	report := run(t, types.ModeBinCount, binHeader+
		"F1,S,BLD,B1,P1,Widget,10,7,-3,01/02/2024 08:00:20 AM,carol\n"+
		"F1,S,BLD,B1,P1,Widget v2,10,9,-1,01/02/2024 08:00:40 AM,carol\n"+
		"F1,S,BLD,B1,P1,Widget v0,10,1,-9,01/02/2024 08:00:05 AM,carol\n")

	require.Len(t, report.Rows, 1)
	row := report.Rows[0]
	assert.Equal(t, "Widget v2", row[5])
	assert.Equal(t, "9", dec(t, row[7]))
	assert.Equal(t, "-1", dec(t, row[8]))
	assert.Equal(t, time.Date(2024, 1, 2, 8, 0, 40, 0, time.UTC), row[9])
}

func TestBinCount_TieResolvedByFileOrder(t *testing.T) {
	report := run(t, types.ModeBinCount, binHeader+
		"F1,S,BLD,B1,P1,first,10,7,-3,01/02/2024 08:00:00 AM,carol\n"+
		"F1,S,BLD,B1,P1,second,10,8,-2,01/02/2024 08:00:00 AM,carol\n")

	require.Len(t, report.Rows, 1)
	assert.Equal(t, "second", report.Rows[0][5])
}

func TestBinCount_ScenarioC_DaysPartition(t *testing.T) {
	report := run(t, types.ModeBinCount, binHeader+
		"F1,S,BLD,B1,P1,Widget,10,9,-1,01/03/2024 08:00:00 AM,carol\n"+
		"F1,S,BLD,B1,P1,Widget,10,7,-3,01/02/2024 08:00:00 AM,carol\n")

	require.Len(t, report.Rows, 2)
	// Sorted by COUNT_DATE, so the earlier day comes first.
	assert.Equal(t, time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), report.Rows[0][9])
	assert.Equal(t, "7", dec(t, report.Rows[0][7]))
	assert.Equal(t, time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC), report.Rows[1][9])
	assert.Equal(t, "9", dec(t, report.Rows[1][7]))
}

func TestBinCount_DistinctKeysKept(t *testing.T) {
	report := run(t, types.ModeBinCount, binHeader+
		"F1,S,BLD,B1,P1,Widget,10,9,-1,01/02/2024 08:00:00 AM,carol\n"+
		"F1,S,BLD,B1,P1,Widget,11,9,-2,01/02/2024 08:00:00 AM,carol\n"+
		"F1,S,BLD,B1,P1,Widget,10,9,-1,01/02/2024 08:05:00 AM,carol\n")

	assert.Len(t, report.Rows, 3)
}

func TestBinCount_BlankQuantitiesStayBlank(t *testing.T) {
	report := run(t, types.ModeBinCount, binHeader+
		"F1,S,BLD,B1,P1,Widget,,,,01/02/2024 08:00:00 AM,carol\n")

	require.Len(t, report.Rows, 1)
	for _, i := range []int{6, 7, 8} {
		nd, ok := report.Rows[0][i].(decimal.NullDecimal)
		require.True(t, ok)
		assert.False(t, nd.Valid)
	}
}

func TestBinCount_ScenarioD_Empty(t *testing.T) {
	report := run(t, types.ModeBinCount, binHeader)
	assert.Empty(t, report.Rows)
	assert.Len(t, report.Schema.Columns, 11)
}

func TestBinCount_DoesNotReorderInput(t *testing.T) {
	entries := []types.BinCountEntry{
		{BinID: "late", CountDate: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)},
		{BinID: "early", CountDate: time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)},
	}

	report := BinCount(entries, BinCountSchema(""))

	assert.Equal(t, "late", entries[0].BinID)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, "early", report.Rows[0][3])
}

func TestBinCount_MissingColumn(t *testing.T) {
	_, err := Run(types.ModeBinCount, table(t, pickingHeader), config.ReportSettings{})
	require.Error(t, err)

	var colErr *types.ColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, types.ModeBinCount, colErr.Mode)
}

// =============================================================================
// DISPATCH
// =============================================================================

func TestRun_BothModesShareTable(t *testing.T) {
	content := "PART_NBR,BIN_ID,USER_NAME,TXN_DATE,SUB_CODE,TXN_QTY,APPLICATION," +
		"FACILITY_ID,BIN_SOURCE,BUILDING,PART_DESC,SYSTEM_QTY,COUNT_QTY,DELTA,COUNT_DATE,COUNTED_BY\n" +
		"1,A,u,01/02/2024 08:00:00 AM,S,2,PICKING,F,SRC,BLD,desc,5,5,0,01/02/2024 08:00:00 AM,u\n"
	data := table(t, content)

	picking, err := Run(types.ModePicking, data, config.ReportSettings{})
	require.NoError(t, err)
	bins, err := Run(types.ModeBinCount, data, config.ReportSettings{})
	require.NoError(t, err)

	assert.Len(t, picking.Rows, 1)
	assert.Len(t, bins.Rows, 1)
	assert.Equal(t, "2", data.Rows[0]["TXN_QTY"], "table is left untouched")
}

func TestRun_UnknownMode(t *testing.T) {
	_, err := Run(types.Mode(99), table(t, pickingHeader), config.ReportSettings{})
	assert.Error(t, err)
}

func TestSchemas(t *testing.T) {
	assert.Equal(t,
		[]string{"PART_NBR", "BIN_ID", "TXN_QTY", "USER_NAME", "TXN_DATE", "SUB_CODE"},
		PickingSchema("").Headers())
	assert.Equal(t,
		[]string{"FACILITY_ID", "BIN_SOURCE", "BUILDING", "BIN_ID", "PART_NBR", "PART_DESC",
			"SYSTEM_QTY", "COUNT_QTY", "DELTA", "COUNT_DATE", "COUNTED_BY"},
		BinCountSchema("").Headers())

	s := PickingSchema("")
	assert.Equal(t, "m/d/yyyy hh:mm", s.Columns[s.Index("TXN_DATE")].Render)
	assert.Equal(t, types.KindNumber, s.Columns[s.Index("TXN_QTY")].Kind)
}
