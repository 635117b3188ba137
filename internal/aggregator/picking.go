package aggregator

import (
	"github.com/ginjaninja78/production-sorter/internal/records"
	"github.com/ginjaninja78/production-sorter/internal/types"
	"github.com/shopspring/decimal"
)

// PickingApplication is the APPLICATION value kept by the picking report.
const PickingApplication = records.PickingApplication

// Picking collapses duplicate picking transactions.
//
// PARAMETERS:
//   - txns: Every decoded row of the export, in file order.
//   - schema: The output columns (see PickingSchema).
//
// RETURNS:
//   - A report with one row per identity key. TXN_QTY is the sum over the
//     group; every other field comes from the group's first row. Rows appear
//     in the order their key was first seen.
//
// Rows whose APPLICATION is not PICKING are dropped before grouping.
func Picking(txns []types.PickingTransaction, schema types.Schema) *types.Report {
	type group struct {
		first types.PickingTransaction
		total decimal.Decimal
	}

	groups := make(map[string]*group)
	groupOrder := []string{} // Maintain order of first occurrence

	for _, txn := range txns {
		if txn.Application != PickingApplication {
			continue
		}

		key := txn.IdentityKey()
		g, exists := groups[key]
		if !exists {
			g = &group{first: txn, total: decimal.Zero}
			groups[key] = g
			groupOrder = append(groupOrder, key)
		}
		g.total = g.total.Add(txn.Quantity)
	}

	report := &types.Report{
		Mode:       types.ModePicking,
		Schema:     schema,
		Rows:       make([]types.Row, 0, len(groupOrder)),
		SourceRows: len(txns),
	}

	for _, key := range groupOrder {
		g := groups[key]
		report.Rows = append(report.Rows, types.Row{
			g.first.PartNumber,
			g.first.BinID,
			g.total,
			g.first.UserName,
			g.first.TxnDate,
			g.first.SubCode,
		})
	}

	return report
}
