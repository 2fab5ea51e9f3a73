package dataprocessing

import (
	"regexp"
	"strings"

	"ipedsprep/pkg/contracts/domain"
)

var opeIDPattern = regexp.MustCompile(`^\d{7,8}$`)

// maxSample bounds the diagnostic sample in identifier reports
const maxSample = 5

// NormalizeOPEID trims the value and removes a trailing ".0" left by
// spreadsheet exports.
func NormalizeOPEID(s string) string {
	return trimExcelInteger(strings.TrimSpace(s))
}

// ConformingOPEID reports whether the normalized value is 7 or 8 digits
func ConformingOPEID(s string) bool {
	return opeIDPattern.MatchString(NormalizeOPEID(s))
}

// IdentifierReport is a diagnostic. Non-conforming identifiers never fail a run.
type IdentifierReport struct {
	Total         int      `json:"total"`
	Conforming    int      `json:"conforming"`
	NonConforming int      `json:"non_conforming"`
	Sample        []string `json:"sample,omitempty"`
}

// ValidateIdentifiers normalizes every ope_id in place and classifies it.
// Rows are never removed.
func ValidateIdentifiers(records []domain.InstitutionRecord) IdentifierReport {
	report := IdentifierReport{Total: len(records)}
	for i := range records {
		conforming := ConformingOPEID(records[i].OPEID)
		records[i].OPEID = NormalizeOPEID(records[i].OPEID)
		if conforming {
			report.Conforming++
			continue
		}
		report.NonConforming++
		if len(report.Sample) < maxSample {
			report.Sample = append(report.Sample, records[i].OPEID)
		}
	}
	return report
}

// ReferenceReport describes award rows whose unit_id has no institution row
type ReferenceReport struct {
	Awards    int     `json:"awards"`
	Matched   int     `json:"matched"`
	Unmatched int     `json:"unmatched"`
	Sample    []int64 `json:"sample,omitempty"`
}

// CheckReferences compares award unit_ids against the institution table.
// Like ValidateIdentifiers it only reports.
func CheckReferences(awards []domain.AwardRecord, institutions []domain.InstitutionRecord) ReferenceReport {
	known := make(map[int64]struct{}, len(institutions))
	for _, inst := range institutions {
		known[inst.UnitID] = struct{}{}
	}

	report := ReferenceReport{Awards: len(awards)}
	for _, a := range awards {
		if _, ok := known[a.UnitID]; ok {
			report.Matched++
			continue
		}
		report.Unmatched++
		if len(report.Sample) < maxSample {
			report.Sample = append(report.Sample, a.UnitID)
		}
	}
	return report
}
