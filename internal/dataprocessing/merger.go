package dataprocessing

import "ipedsprep/pkg/contracts/domain"

// Merge joins one year's awards to the institution and graduation-rate tables
// on unit_id. Every award row appears exactly once, in input order; missing
// matches leave the joined fields nil. The award table's own name is replaced
// by the institution table's. Inputs are not modified and may be shared.
func Merge(awards []domain.AwardRecord, institutions []domain.InstitutionRecord, gradRates []domain.GradRateRecord) []domain.MergedRecord {
	instByID := make(map[int64]*domain.InstitutionRecord, len(institutions))
	for i := range institutions {
		if _, dup := instByID[institutions[i].UnitID]; !dup {
			instByID[institutions[i].UnitID] = &institutions[i]
		}
	}
	gradByID := make(map[int64]*float64, len(gradRates))
	for i := range gradRates {
		if _, dup := gradByID[gradRates[i].UnitID]; !dup {
			gradByID[gradRates[i].UnitID] = gradRates[i].GradRate2023
		}
	}

	out := make([]domain.MergedRecord, len(awards))
	for i, a := range awards {
		m := domain.MergedRecord{
			UnitID:          a.UnitID,
			TotalUndergrad:  cloneFloat(a.TotalUndergrad),
			NumPellGrant:    cloneFloat(a.NumPellGrant),
			PctPellGrant:    cloneFloat(a.PctPellGrant),
			TotalPellAmount: cloneFloat(a.TotalPellAmount),
			AvgPellAmount:   cloneFloat(a.AvgPellAmount),
			NumFedLoan:      cloneFloat(a.NumFedLoan),
			PctFedLoan:      cloneFloat(a.PctFedLoan),
			TotalLoanAmount: cloneFloat(a.TotalLoanAmount),
			AvgLoanAmount:   cloneFloat(a.AvgLoanAmount),
		}
		if inst, ok := instByID[a.UnitID]; ok {
			m.InstitutionName = stringPtr(inst.InstitutionName)
			m.State = stringPtr(inst.State)
			m.Sector = stringPtr(inst.Sector)
			m.DegreeGranting = stringPtr(inst.DegreeGranting)
			m.Control = stringPtr(inst.Control)
			m.Level = stringPtr(inst.Level)
		}
		if rate, ok := gradByID[a.UnitID]; ok {
			m.GradRate2023 = cloneFloat(rate)
		}
		out[i] = m
	}
	return out
}

// CloneMerged deep-copies a merged dataset so callers cannot alias each other.
func CloneMerged(in []domain.MergedRecord) []domain.MergedRecord {
	if in == nil {
		return nil
	}
	out := make([]domain.MergedRecord, len(in))
	for i, r := range in {
		out[i] = domain.MergedRecord{
			UnitID:          r.UnitID,
			TotalUndergrad:  cloneFloat(r.TotalUndergrad),
			NumPellGrant:    cloneFloat(r.NumPellGrant),
			PctPellGrant:    cloneFloat(r.PctPellGrant),
			TotalPellAmount: cloneFloat(r.TotalPellAmount),
			AvgPellAmount:   cloneFloat(r.AvgPellAmount),
			NumFedLoan:      cloneFloat(r.NumFedLoan),
			PctFedLoan:      cloneFloat(r.PctFedLoan),
			TotalLoanAmount: cloneFloat(r.TotalLoanAmount),
			AvgLoanAmount:   cloneFloat(r.AvgLoanAmount),
			InstitutionName: cloneString(r.InstitutionName),
			State:           cloneString(r.State),
			Sector:          cloneString(r.Sector),
			DegreeGranting:  cloneString(r.DegreeGranting),
			Control:         cloneString(r.Control),
			Level:           cloneString(r.Level),
			GradRate2023:    cloneFloat(r.GradRate2023),
		}
	}
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func stringPtr(s string) *string {
	return &s
}
