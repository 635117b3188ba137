package aggregator

import (
	"sort"

	"github.com/ginjaninja78/production-sorter/internal/types"
)

// BinCount keeps the latest count of every bin per day.
//
// Entries are stable-sorted by COUNT_DATE, then grouped by identity key and
// calendar day. Each group is represented by its last entry in sorted order,
// so among identical timestamps the later file row wins. Groups are emitted in
// the order their first entry appears in the sorted sequence.
//
// The input slice is not modified.
func BinCount(entries []types.BinCountEntry, schema types.Schema) *types.Report {
	sorted := make([]types.BinCountEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CountDate.Before(sorted[j].CountDate)
	})

	type groupKey struct {
		identity string
		day      string
	}

	latest := make(map[groupKey]types.BinCountEntry)
	groupOrder := []groupKey{}

	for _, e := range sorted {
		key := groupKey{identity: e.IdentityKey(), day: e.CountDay()}
		if _, exists := latest[key]; !exists {
			groupOrder = append(groupOrder, key)
		}
		latest[key] = e
	}

	report := &types.Report{
		Mode:       types.ModeBinCount,
		Schema:     schema,
		Rows:       make([]types.Row, 0, len(groupOrder)),
		SourceRows: len(entries),
	}

	for _, key := range groupOrder {
		e := latest[key]
		report.Rows = append(report.Rows, types.Row{
			e.FacilityID,
			e.BinSource,
			e.Building,
			e.BinID,
			e.PartNumber,
			e.PartDesc,
			e.SystemQty,
			e.CountQty,
			e.Delta,
			e.CountDate,
			e.CountedBy,
		})
	}

	return report
}
