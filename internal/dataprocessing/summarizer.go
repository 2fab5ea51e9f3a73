package dataprocessing

import (
	"math"

	"ipedsprep/pkg/contracts/domain"
)

// ColumnProfile summarizes one numeric column of an award table
type ColumnProfile struct {
	Column  string   `json:"column"`
	NonNull int      `json:"non_null"`
	Nulls   int      `json:"nulls"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Mean    *float64 `json:"mean,omitempty"`
}

// AwardSummary is the profile printed by the verify command
type AwardSummary struct {
	Rows            int             `json:"rows"`
	DistinctUnitIDs int             `json:"distinct_unit_ids"`
	Columns         []ColumnProfile `json:"columns"`
}

// SummarizeAwards profiles every measure column, in canonical order.
func SummarizeAwards(records []domain.AwardRecord) AwardSummary {
	measureCols := domain.AwardColumns[2:]
	profiles := make([]ColumnProfile, len(measureCols))
	sums := make([]float64, len(measureCols))
	for i, col := range measureCols {
		profiles[i].Column = col
	}

	ids := make(map[int64]struct{}, len(records))
	for r := range records {
		ids[records[r].UnitID] = struct{}{}
		for i, v := range records[r].Measures() {
			p := &profiles[i]
			if *v == nil {
				p.Nulls++
				continue
			}
			val := **v
			p.NonNull++
			sums[i] += val
			if p.Min == nil || val < *p.Min {
				p.Min = floatPtr(val)
			}
			if p.Max == nil || val > *p.Max {
				p.Max = floatPtr(val)
			}
		}
	}
	for i := range profiles {
		if profiles[i].NonNull > 0 {
			mean := sums[i] / float64(profiles[i].NonNull)
			if !math.IsNaN(mean) {
				profiles[i].Mean = floatPtr(mean)
			}
		}
	}

	return AwardSummary{Rows: len(records), DistinctUnitIDs: len(ids), Columns: profiles}
}

func floatPtr(v float64) *float64 {
	return &v
}
