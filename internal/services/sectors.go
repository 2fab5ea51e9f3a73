package services

import (
	"sort"

	"ipedsprep/internal/dataprocessing"
	"ipedsprep/pkg/contracts/domain"
)

// AllSectors is the catch-all option offered before the individual sectors
const AllSectors = "All Sectors"

// SectorOptions returns the filter choices for a merged dataset: AllSectors
// followed by every distinct non-null sector, sorted, excluding the
// administrative-unit sector.
func SectorOptions(records []domain.MergedRecord) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.Sector == nil || *r.Sector == dataprocessing.AdminUnitSector {
			continue
		}
		seen[*r.Sector] = struct{}{}
	}

	sectors := make([]string, 0, len(seen))
	for s := range seen {
		sectors = append(sectors, s)
	}
	sort.Strings(sectors)
	return append([]string{AllSectors}, sectors...)
}
