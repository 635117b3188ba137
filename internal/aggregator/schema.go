package aggregator

import (
	"github.com/ginjaninja78/production-sorter/internal/config"
	"github.com/ginjaninja78/production-sorter/internal/records"
	"github.com/ginjaninja78/production-sorter/internal/types"
)

// PickingSchema returns the output columns of the picking report.
// displayFormat is the number format applied to TXN_DATE.
func PickingSchema(displayFormat string) types.Schema {
	return types.Schema{Columns: []types.Column{
		{Name: records.ColPartNumber, Kind: types.KindText},
		{Name: records.ColBinID, Kind: types.KindText},
		{Name: records.ColTxnQty, Kind: types.KindNumber},
		{Name: records.ColUserName, Kind: types.KindText},
		{Name: records.ColTxnDate, Kind: types.KindTimestamp, Render: renderOrDefault(displayFormat)},
		{Name: records.ColSubCode, Kind: types.KindText},
	}}
}

// BinCountSchema returns the output columns of the bin-count report.
// COUNT_DAY is a grouping key only and is not part of the schema.
func BinCountSchema(displayFormat string) types.Schema {
	return types.Schema{Columns: []types.Column{
		{Name: records.ColFacilityID, Kind: types.KindText},
		{Name: records.ColBinSource, Kind: types.KindText},
		{Name: records.ColBuilding, Kind: types.KindText},
		{Name: records.ColBinID, Kind: types.KindText},
		{Name: records.ColPartNumber, Kind: types.KindText},
		{Name: records.ColPartDesc, Kind: types.KindText},
		{Name: records.ColSystemQty, Kind: types.KindNumber},
		{Name: records.ColCountQty, Kind: types.KindNumber},
		{Name: records.ColDelta, Kind: types.KindNumber},
		{Name: records.ColCountDate, Kind: types.KindTimestamp, Render: renderOrDefault(displayFormat)},
		{Name: records.ColCountedBy, Kind: types.KindText},
	}}
}

func renderOrDefault(format string) string {
	if format == "" {
		return config.DefaultDisplayFormat
	}
	return format
}
